package models

import (
	"fmt"
	"strings"
	"time"
)

// License 라이선스 레코드
type License struct {
	ID          string `json:"id,omitempty"`
	LicenseID   string `json:"licenseId"`
	ExpiryDate  string `json:"expiryDate"`
	Status      string `json:"status,omitempty"` // 저장값은 참고용, 조회 시 항상 재계산
	Notes       string `json:"notes"`
	CreatedAt   string `json:"createdAt,omitempty"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}

// LicenseStatus 상태 상수
const (
	LicenseStatusActive  = "Active"
	LicenseStatusExpired = "Expired"
)

const dateOnlyLayout = "2006-01-02"

// CreateLicenseRequest 라이선스 생성 요청
type CreateLicenseRequest struct {
	LicenseID  string `json:"licenseId"`
	ExpiryDate string `json:"expiryDate"`
	Notes      string `json:"notes"`
}

// UpdateLicenseRequest 라이선스 수정 요청
type UpdateLicenseRequest struct {
	LicenseID  string `json:"licenseId"`
	ExpiryDate string `json:"expiryDate"`
	Notes      string `json:"notes"`
}

// ParseExpiryDate parses an ISO calendar date (YYYY-MM-DD) in loc. Full
// RFC 3339 timestamps are accepted and truncated to their calendar date.
func ParseExpiryDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty expiry date")
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(dateOnlyLayout, value, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("unsupported expiry date format: %q", value)
}

// IsExpired reports whether expiryDate lies strictly before the calendar day
// of now. Both sides are compared at midnight in now's location, so a license
// expiring today is still valid for the rest of the day. A date that cannot be
// parsed counts as expired.
func IsExpired(expiryDate string, now time.Time) bool {
	loc := now.Location()
	expiry, err := ParseExpiryDate(expiryDate, loc)
	if err != nil {
		return true
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return expiry.Before(today)
}

// CalculateStatus derives the display status from the expiry date. Every read
// path goes through here; a persisted status value is never trusted.
func CalculateStatus(expiryDate string, now time.Time) string {
	if IsExpired(expiryDate, now) {
		return LicenseStatusExpired
	}
	return LicenseStatusActive
}

// WithStatus returns a copy of l with Status recomputed for now.
func (l License) WithStatus(now time.Time) License {
	l.Status = CalculateStatus(l.ExpiryDate, now)
	return l
}
