package services

import (
	"context"
	"errors"
	"time"

	"licensepanel/models"
)

var (
	// ErrLicenseNotFound는 licenseId 또는 문서 ID에 해당하는 라이선스가 없을 때 반환됩니다.
	ErrLicenseNotFound = errors.New("license not found")
	// ErrLicenseConflict는 동일한 licenseId가 이미 존재할 때 반환됩니다.
	ErrLicenseConflict = errors.New("license id already exists")
	// ErrQuotaNotFound는 카운터 레코드가 아직 생성되지 않았을 때 반환됩니다.
	ErrQuotaNotFound = errors.New("device quota not found")
	// ErrRegistrationNotFound는 디바이스 등록 정보가 없을 때 반환됩니다.
	ErrRegistrationNotFound = errors.New("device registration not found")
	// ErrDeviceConflict는 동일 디바이스가 이미 라이선스에 등록되어 있을 때 반환됩니다.
	ErrDeviceConflict = errors.New("device already registered to license")
	// ErrProfileNotFound는 사용자 프로필이 없을 때 반환됩니다.
	ErrProfileNotFound = errors.New("user profile not found")
	// ErrInvalidLimit는 -1 또는 양의 정수가 아닌 한도가 주어졌을 때 반환됩니다.
	ErrInvalidLimit = models.ErrInvalidLimit
	// ErrValidation은 요청 값 검증 실패를 나타냅니다.
	ErrValidation = errors.New("validation failed")
)

// LicenseListOptions controls License listing. Results are ordered by licenseId.
type LicenseListOptions struct {
	// After is the exclusive licenseId cursor.
	After string
	// Prefix restricts results to licenseIds starting with it.
	Prefix string
	// Limit <= 0 means no limit.
	Limit int
}

// LicenseStore persists license records (licenses/{autoId}).
type LicenseStore interface {
	// FindByKey looks a license up by its business key.
	FindByKey(ctx context.Context, licenseID string) (models.License, error)
	Get(ctx context.Context, id string) (models.License, error)
	// Create assigns ID when empty. A duplicate licenseId yields ErrLicenseConflict.
	Create(ctx context.Context, license models.License) (models.License, error)
	Update(ctx context.Context, license models.License) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts LicenseListOptions) ([]models.License, error)
}

// QuotaStore persists the per-license device counter (license_devices_count/{licenseId}).
//
// Every mutation is atomic for a single licenseId. Counts never go below zero.
type QuotaStore interface {
	// Get returns ErrQuotaNotFound when no record exists.
	Get(ctx context.Context, licenseID string) (models.DeviceQuota, error)
	// GetOrCreate returns the record, creating the {count: 0, limit: 1} baseline if absent.
	GetOrCreate(ctx context.Context, licenseID string, now time.Time) (models.DeviceQuota, error)
	// TryIncrement adds one to count if the limit admits it, as a single
	// conditional operation. admitted is false when the record was full;
	// the returned quota is then the unchanged record.
	TryIncrement(ctx context.Context, licenseID string, now time.Time) (quota models.DeviceQuota, admitted bool, err error)
	// Decrement subtracts one from count, floored at zero.
	Decrement(ctx context.Context, licenseID string, now time.Time) (models.DeviceQuota, error)
	// SetCount overwrites count, creating the record with the default limit if absent.
	SetCount(ctx context.Context, licenseID string, count int, now time.Time) (models.DeviceQuota, error)
	// SetLimit overwrites limit and leaves count untouched, creating the record if absent.
	SetLimit(ctx context.Context, licenseID string, limit models.DeviceLimit, now time.Time) (models.DeviceQuota, error)
	List(ctx context.Context) ([]models.DeviceQuota, error)
}

// DeviceStore persists device registrations (license_device_mapping/{autoId}).
type DeviceStore interface {
	// Create yields ErrDeviceConflict when deviceId is already registered to the license.
	Create(ctx context.Context, reg models.DeviceRegistration) (models.DeviceRegistration, error)
	Get(ctx context.Context, id string) (models.DeviceRegistration, error)
	FindByDevice(ctx context.Context, licenseID, deviceID string) (models.DeviceRegistration, error)
	ListByLicense(ctx context.Context, licenseID string) ([]models.DeviceRegistration, error)
	CountByLicense(ctx context.Context, licenseID string) (int, error)
	Touch(ctx context.Context, id string, lastAccessed string) error
	Delete(ctx context.Context, id string) error
}

// ActivityStore appends to and reads the audit log (activity_logs/{autoId}).
type ActivityStore interface {
	Append(ctx context.Context, entry models.ActivityLogEntry) (models.ActivityLogEntry, error)
	// List returns entries newest first. An empty licenseID returns every license.
	List(ctx context.Context, licenseID string, limit int) ([]models.ActivityLogEntry, error)
}

// ProfileStore persists admin panel user profiles (user_profiles/{userId}).
type ProfileStore interface {
	Get(ctx context.Context, userID string) (models.UserProfile, error)
	Put(ctx context.Context, profile models.UserProfile) error
}

// Clock supplies the current time. A nil Clock means utils.Now.
type Clock func() time.Time
