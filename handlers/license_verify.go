package handlers

import (
	"net/http"

	"licensepanel/logger"
	"licensepanel/middleware"
	"licensepanel/models"
	"licensepanel/services"
)

// Endpoint labels reported to the VerificationObserver.
const (
	EndpointVerify   = "verify"
	EndpointActivate = "activate"
)

// VerificationObserver receives every verdict and storage failure of the
// public endpoints. *metrics.Metrics satisfies it.
type VerificationObserver interface {
	ObserveVerification(endpoint string, result models.VerificationResult)
	ObserveVerificationError(endpoint string)
}

type nopObserver struct{}

func (nopObserver) ObserveVerification(string, models.VerificationResult) {}
func (nopObserver) ObserveVerificationError(string)                      {}

// LicenseVerifyHandler는 클라이언트용 공개 라이선스 검증/활성화 요청을 처리한다.
type LicenseVerifyHandler struct {
	verifier services.VerificationService
	devices  services.DeviceService
	observer VerificationObserver
}

// NewLicenseVerifyHandler는 공개 검증 핸들러를 생성한다. observer는 nil일 수 있다.
func NewLicenseVerifyHandler(verifier services.VerificationService, devices services.DeviceService, observer VerificationObserver) *LicenseVerifyHandler {
	if observer == nil {
		observer = nopObserver{}
	}
	return &LicenseVerifyHandler{verifier: verifier, devices: devices, observer: observer}
}

func verdictStatus(result models.VerificationResult) int {
	if result.Reason == models.ReasonMissingKey {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// Verify 라이선스 검증
// @Summary 라이선스 검증
// @Description 라이선스 키를 검증하고 디바이스 슬롯을 하나 사용합니다
// @Tags 클라이언트 - 라이선스
// @Accept json
// @Produce json
// @Param request body models.VerifyRequest true "검증할 라이선스 키"
// @Success 200 {object} models.VerifyResponse "검증 결과 (valid=false 포함)"
// @Failure 400 {object} models.VerifyResponse "라이선스 키 누락"
// @Failure 405 {object} models.MethodNotAllowedResponse "허용되지 않은 메서드"
// @Failure 429 {object} models.VerifyResponse "요청 과다"
// @Failure 500 {object} models.VerifyResponse "서버 에러"
// @Router /api/license/verify [post]
func (h *LicenseVerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, models.MethodNotAllowedResponse{Error: models.MessageMethodNotAllowed})
		return
	}

	// 본문이 깨졌으면 키가 없는 것으로 취급
	var req models.VerifyRequest
	if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		req.LicenseKey = ""
	}

	result, err := h.verifier.Verify(r.Context(), req.LicenseKey)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"request_id":  middleware.RequestIDFromContext(r.Context()),
			"license_key": req.LicenseKey,
			"error":       err.Error(),
		}).Error("License verification failed")
		h.observer.ObserveVerificationError(EndpointVerify)
		writeJSON(w, http.StatusInternalServerError, models.ServerErrorResponse())
		return
	}

	h.observer.ObserveVerification(EndpointVerify, result)
	logger.WithFields(map[string]interface{}{
		"request_id":   middleware.RequestIDFromContext(r.Context()),
		"license_key":  req.LicenseKey,
		"reason":       string(result.Reason),
		"device_count": result.DeviceCount,
	}).Info("License verification")

	writeJSON(w, verdictStatus(result), models.NewVerifyResponse(result))
}

// Activate 라이선스 활성화
// @Summary 라이선스 활성화
// @Description 라이선스 키를 검증하고 디바이스를 등록합니다. 이미 등록된 디바이스는 슬롯을 사용하지 않습니다
// @Tags 클라이언트 - 라이선스
// @Accept json
// @Produce json
// @Param request body models.ActivateRequest true "활성화 정보"
// @Success 200 {object} models.ActivateResponse "활성화 결과 (valid=false 포함)"
// @Failure 400 {object} models.VerifyResponse "라이선스 키 또는 디바이스 ID 누락"
// @Failure 405 {object} models.MethodNotAllowedResponse "허용되지 않은 메서드"
// @Failure 429 {object} models.VerifyResponse "요청 과다"
// @Failure 500 {object} models.VerifyResponse "서버 에러"
// @Router /api/license/activate [post]
func (h *LicenseVerifyHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, models.MethodNotAllowedResponse{Error: models.MessageMethodNotAllowed})
		return
	}

	var req models.ActivateRequest
	if err := decodeJSON(w, r, maxBodyBytes, &req); err != nil {
		req = models.ActivateRequest{}
	}

	fields := map[string]interface{}{
		"request_id":  middleware.RequestIDFromContext(r.Context()),
		"license_key": req.LicenseKey,
		"device_id":   req.Device.DeviceID,
	}

	result, err := h.devices.Activate(r.Context(), req.LicenseKey, req.Device)
	if err != nil {
		if statusForError(err) == http.StatusBadRequest {
			logger.WithFields(fields).Warn("Invalid activate request: %v", err)
			writeJSON(w, http.StatusBadRequest, models.VerifyResponse{Valid: false, Message: models.MessageMissingDeviceID})
			return
		}
		fields["error"] = err.Error()
		logger.WithFields(fields).Error("License activation failed")
		h.observer.ObserveVerificationError(EndpointActivate)
		writeJSON(w, http.StatusInternalServerError, models.ServerErrorResponse())
		return
	}

	h.observer.ObserveVerification(EndpointActivate, result.Verdict)
	fields["reason"] = string(result.Verdict.Reason)
	logger.WithFields(fields).Info("License activation")

	resp := models.ActivateResponse{VerifyResponse: models.NewVerifyResponse(result.Verdict)}
	if result.Registration != nil {
		resp.RegistrationID = result.Registration.ID
		resp.DeviceID = result.Registration.DeviceID
	}
	writeJSON(w, verdictStatus(result.Verdict), resp)
}
