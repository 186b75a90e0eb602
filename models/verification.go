package models

import "fmt"

// Reason classifies a verification verdict.
type Reason string

const (
	ReasonAdmitted      Reason = "admitted"
	ReasonMissingKey    Reason = "missing_key"
	ReasonNotFound      Reason = "not_found"
	ReasonExpired       Reason = "expired"
	ReasonQuotaExceeded Reason = "quota_exceeded"
)

// Wire messages of the verification endpoint.
const (
	MessageMissingKey         = "Missing license key"
	MessageMissingDeviceID    = "Missing device id"
	MessageInvalidKey         = "Invalid license key"
	MessageExpired            = "License expired"
	MessageActivated          = "License activated successfully"
	MessageActivatedUnlimited = "License activated successfully (unlimited devices)"
	MessageServerError        = "Server error during verification"
	MessageMethodNotAllowed   = "Method not allowed"
	MessageTooManyRequests    = "Too many requests"
)

// VerificationResult is the structured verdict of a verify call. Rejections
// are values, never errors.
type VerificationResult struct {
	Valid       bool
	Reason      Reason
	ExpiryDate  string
	DeviceCount int
	DeviceLimit DeviceLimit
}

// Unlimited reports whether the license has no device cap.
func (r VerificationResult) Unlimited() bool {
	return r.DeviceLimit.IsUnlimited()
}

// VerifyRequest 검증 요청 본문
type VerifyRequest struct {
	LicenseKey string `json:"licenseKey"`
}

// VerifyResponse 검증 응답 본문
type VerifyResponse struct {
	Valid       bool   `json:"valid"`
	Message     string `json:"message"`
	ExpiryDate  string `json:"expiryDate,omitempty"`
	DeviceCount *int   `json:"deviceCount,omitempty"`
	DeviceLimit *int   `json:"deviceLimit,omitempty"`
	Unlimited   *bool  `json:"unlimited,omitempty"`
}

// ActivateResponse 활성화 응답 본문
type ActivateResponse struct {
	VerifyResponse
	RegistrationID string `json:"registrationId,omitempty"`
	DeviceID       string `json:"deviceId,omitempty"`
}

// MethodNotAllowedResponse is the 405 body of the verification endpoint.
type MethodNotAllowedResponse struct {
	Error string `json:"error"`
}

// NewVerifyResponse maps a verdict onto the wire shape.
func NewVerifyResponse(r VerificationResult) VerifyResponse {
	switch r.Reason {
	case ReasonMissingKey:
		return VerifyResponse{Valid: false, Message: MessageMissingKey}
	case ReasonNotFound:
		return VerifyResponse{Valid: false, Message: MessageInvalidKey}
	case ReasonExpired:
		return VerifyResponse{Valid: false, Message: MessageExpired, ExpiryDate: r.ExpiryDate}
	case ReasonQuotaExceeded:
		return VerifyResponse{
			Valid:       false,
			Message:     fmt.Sprintf("License activation limit reached (%d devices)", r.DeviceLimit.Raw()),
			ExpiryDate:  r.ExpiryDate,
			DeviceCount: intPtr(r.DeviceCount),
			DeviceLimit: intPtr(r.DeviceLimit.Raw()),
			Unlimited:   boolPtr(false),
		}
	}

	message := MessageActivated
	if r.Unlimited() {
		message = MessageActivatedUnlimited
	}
	return VerifyResponse{
		Valid:       true,
		Message:     message,
		ExpiryDate:  r.ExpiryDate,
		DeviceCount: intPtr(r.DeviceCount),
		DeviceLimit: intPtr(r.DeviceLimit.Raw()),
		Unlimited:   boolPtr(r.Unlimited()),
	}
}

// ServerErrorResponse is returned for storage failures; no detail is leaked.
func ServerErrorResponse() VerifyResponse {
	return VerifyResponse{Valid: false, Message: MessageServerError}
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
