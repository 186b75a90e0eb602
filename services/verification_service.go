package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"licensepanel/logger"
	"licensepanel/models"
	"licensepanel/utils"
)

// VerificationService decides whether a license key may activate one more device.
type VerificationService interface {
	// Verify runs the full check and, when admitted, consumes one device slot.
	// Business rejections are returned as results; err is only a storage failure.
	Verify(ctx context.Context, licenseKey string) (models.VerificationResult, error)
	// Inspect runs the existence and expiry checks and reports the current
	// quota without creating or mutating it.
	Inspect(ctx context.Context, licenseKey string) (models.VerificationResult, error)
}

type verificationService struct {
	licenses LicenseStore
	quotas   QuotaStore
	now      Clock
}

// NewVerificationService는 VerificationService 구현체를 생성합니다.
func NewVerificationService(licenses LicenseStore, quotas QuotaStore, clock Clock) VerificationService {
	if clock == nil {
		clock = utils.Now
	}
	return &verificationService{licenses: licenses, quotas: quotas, now: clock}
}

// lookup covers the existence and expiry steps. ok is false when the returned
// result is already a rejection.
func (s *verificationService) lookup(ctx context.Context, key string, now time.Time) (models.License, models.VerificationResult, bool, error) {
	// 공백뿐인 키는 누락으로 취급하고, 조회는 입력 키 그대로 정확히 일치시킨다.
	if strings.TrimSpace(key) == "" {
		return models.License{}, models.VerificationResult{Reason: models.ReasonMissingKey}, false, nil
	}

	license, err := s.licenses.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrLicenseNotFound) {
			return models.License{}, models.VerificationResult{Reason: models.ReasonNotFound}, false, nil
		}
		return models.License{}, models.VerificationResult{}, false, fmt.Errorf("find license: %w", err)
	}

	if models.IsExpired(license.ExpiryDate, now) {
		return license, models.VerificationResult{
			Reason:     models.ReasonExpired,
			ExpiryDate: license.ExpiryDate,
		}, false, nil
	}
	return license, models.VerificationResult{}, true, nil
}

func (s *verificationService) Verify(ctx context.Context, licenseKey string) (models.VerificationResult, error) {
	now := s.now()
	license, result, ok, err := s.lookup(ctx, licenseKey, now)
	if err != nil || !ok {
		return result, err
	}

	quota, err := s.quotas.GetOrCreate(ctx, license.LicenseID, now)
	if err != nil {
		return models.VerificationResult{}, fmt.Errorf("load device quota: %w", err)
	}

	// Snapshot check. TryIncrement repeats it atomically, this only skips
	// the write when the record is already full.
	if !quota.Limit.Admits(quota.Count) {
		return quotaExceeded(license, quota), nil
	}

	updated, admitted, err := s.quotas.TryIncrement(ctx, license.LicenseID, now)
	if err != nil {
		return models.VerificationResult{}, fmt.Errorf("increment device count: %w", err)
	}
	if !admitted {
		logger.WithFields(map[string]interface{}{
			"license_id": license.LicenseID,
			"count":      updated.Count,
			"limit":      updated.Limit.Raw(),
		}).Info("Concurrent activation lost the last device slot")
		return quotaExceeded(license, updated), nil
	}

	return models.VerificationResult{
		Valid:       true,
		Reason:      models.ReasonAdmitted,
		ExpiryDate:  license.ExpiryDate,
		DeviceCount: updated.Count,
		DeviceLimit: updated.Limit,
	}, nil
}

func (s *verificationService) Inspect(ctx context.Context, licenseKey string) (models.VerificationResult, error) {
	now := s.now()
	license, result, ok, err := s.lookup(ctx, licenseKey, now)
	if err != nil || !ok {
		return result, err
	}

	quota, err := s.quotas.Get(ctx, license.LicenseID)
	if err != nil {
		if !errors.Is(err, ErrQuotaNotFound) {
			return models.VerificationResult{}, fmt.Errorf("load device quota: %w", err)
		}
		quota = models.NewDeviceQuota(license.LicenseID, now)
	}

	return models.VerificationResult{
		Valid:       true,
		Reason:      models.ReasonAdmitted,
		ExpiryDate:  license.ExpiryDate,
		DeviceCount: quota.Count,
		DeviceLimit: quota.Limit,
	}, nil
}

func quotaExceeded(license models.License, quota models.DeviceQuota) models.VerificationResult {
	return models.VerificationResult{
		Reason:      models.ReasonQuotaExceeded,
		ExpiryDate:  license.ExpiryDate,
		DeviceCount: quota.Count,
		DeviceLimit: quota.Limit,
	}
}
