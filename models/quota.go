package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// UnlimitedSentinel is the wire and storage encoding of an unlimited device limit.
const UnlimitedSentinel = -1

// DefaultDeviceLimit is the limit given to a quota record created lazily.
const DefaultDeviceLimit = 1

// ErrInvalidLimit is returned for a limit that is neither -1 nor a positive integer.
var ErrInvalidLimit = errors.New("device limit must be -1 or a positive integer")

// DeviceLimit is either Limited(n) with n >= 1 or Unlimited. The -1 sentinel
// only exists at the storage and API boundary (Raw / ParseDeviceLimit).
// The zero value behaves as Limited(DefaultDeviceLimit).
type DeviceLimit struct {
	n         int
	unlimited bool
}

// Limited returns a bounded limit. n below 1 is clamped to 1.
func Limited(n int) DeviceLimit {
	if n < 1 {
		n = DefaultDeviceLimit
	}
	return DeviceLimit{n: n}
}

// Unlimited returns the limit that disables capacity enforcement.
func Unlimited() DeviceLimit {
	return DeviceLimit{unlimited: true}
}

// ParseDeviceLimit translates a raw stored or submitted value.
func ParseDeviceLimit(raw int) (DeviceLimit, error) {
	switch {
	case raw == UnlimitedSentinel:
		return Unlimited(), nil
	case raw >= 1:
		return Limited(raw), nil
	default:
		return DeviceLimit{}, fmt.Errorf("%w: %d", ErrInvalidLimit, raw)
	}
}

// StoredDeviceLimit decodes a persisted limit. Values that are neither -1
// nor positive fall back to the default limit.
func StoredDeviceLimit(raw int) DeviceLimit {
	if l, err := ParseDeviceLimit(raw); err == nil {
		return l
	}
	return Limited(DefaultDeviceLimit)
}

// IsUnlimited reports whether capacity enforcement is disabled.
func (l DeviceLimit) IsUnlimited() bool {
	return l.unlimited
}

// Max returns the bounded device count. It is meaningless for Unlimited.
func (l DeviceLimit) Max() int {
	if l.n < 1 {
		return DefaultDeviceLimit
	}
	return l.n
}

// Raw returns the storage/wire encoding: -1 for Unlimited, else the bound.
func (l DeviceLimit) Raw() int {
	if l.unlimited {
		return UnlimitedSentinel
	}
	return l.Max()
}

// Admits reports whether one more activation fits on top of count.
// count == limit is the rejection threshold.
func (l DeviceLimit) Admits(count int) bool {
	if l.unlimited {
		return true
	}
	return count < l.Max()
}

func (l DeviceLimit) String() string {
	if l.unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", l.Max())
}

// MarshalJSON encodes the limit as its raw sentinel form.
func (l DeviceLimit) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Raw())
}

// UnmarshalJSON decodes -1 or a positive integer.
func (l *DeviceLimit) UnmarshalJSON(data []byte) error {
	var raw int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDeviceLimit(raw)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// DeviceQuota 라이선스별 디바이스 카운터 (license_devices_count/{licenseId})
type DeviceQuota struct {
	LicenseID   string      `json:"licenseId"`
	Count       int         `json:"count"`
	Limit       DeviceLimit `json:"limit"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// NewDeviceQuota returns the lazily-created baseline record.
func NewDeviceQuota(licenseID string, now time.Time) DeviceQuota {
	return DeviceQuota{
		LicenseID:   licenseID,
		Count:       0,
		Limit:       Limited(DefaultDeviceLimit),
		LastUpdated: now,
	}
}

// Full reports whether the next activation would be refused.
func (q DeviceQuota) Full() bool {
	return !q.Limit.Admits(q.Count)
}

// SetLimitRequest 디바이스 한도 변경 요청
type SetLimitRequest struct {
	LicenseID string `json:"licenseId"`
	Limit     int    `json:"limit"`
}

// QuotaRequest 카운터 초기화/재계산 요청
type QuotaRequest struct {
	LicenseID string `json:"licenseId"`
}

// QuotaDrift describes a counter that disagrees with its registrations.
type QuotaDrift struct {
	LicenseID     string `json:"licenseId"`
	Count         int    `json:"count"`
	Registrations int    `json:"registrations"`
}
