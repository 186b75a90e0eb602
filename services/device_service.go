package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"licensepanel/logger"
	"licensepanel/models"
	"licensepanel/utils"
)

// ActivationResult is the outcome of Activate. Registration is nil unless
// the verdict is valid.
type ActivationResult struct {
	Verdict      models.VerificationResult
	Registration *models.DeviceRegistration
}

// DeviceService keeps device registrations and the per-license counter in step.
type DeviceService interface {
	// RegisterDevice records a device. Capacity is not re-checked here; the
	// caller has already consumed a slot through Verify.
	RegisterDevice(ctx context.Context, licenseID string, device models.DeviceIdentity) (models.DeviceRegistration, error)
	// RevokeDevice deletes the registration, then decrements the counter.
	RevokeDevice(ctx context.Context, registrationID, licenseID string) error
	// ResetQuota sets count to 0 and keeps every registration.
	ResetQuota(ctx context.Context, licenseID string) (models.DeviceQuota, error)
	// SetLimit accepts -1 or a positive integer and leaves count untouched.
	SetLimit(ctx context.Context, licenseID string, raw int) (models.DeviceQuota, error)
	GetQuota(ctx context.Context, licenseID string) (models.DeviceQuota, error)
	// ReconcileQuota overwrites count with the number of registrations. Idempotent.
	ReconcileQuota(ctx context.Context, licenseID string) (models.DeviceQuota, error)
	ListDevices(ctx context.Context, licenseID string) ([]models.DeviceRegistration, error)
	TouchDevice(ctx context.Context, registrationID string) error
	// Activate verifies the key and registers the device. A device already
	// registered to the license is re-admitted without consuming a slot.
	Activate(ctx context.Context, licenseKey string, device models.DeviceIdentity) (ActivationResult, error)
	// AuditQuotas reports every counter that disagrees with its registrations. Read only.
	AuditQuotas(ctx context.Context) ([]models.QuotaDrift, error)
}

type deviceService struct {
	verifier VerificationService
	quotas   QuotaStore
	devices  DeviceStore
	now      Clock
}

// NewDeviceService는 DeviceService 구현체를 생성합니다.
func NewDeviceService(verifier VerificationService, quotas QuotaStore, devices DeviceStore, clock Clock) DeviceService {
	if clock == nil {
		clock = utils.Now
	}
	return &deviceService{verifier: verifier, quotas: quotas, devices: devices, now: clock}
}

func requireLicenseID(licenseID string) (string, error) {
	licenseID = strings.TrimSpace(licenseID)
	if licenseID == "" {
		return "", fmt.Errorf("%w: licenseId is required", ErrValidation)
	}
	return licenseID, nil
}

func (s *deviceService) RegisterDevice(ctx context.Context, licenseID string, device models.DeviceIdentity) (models.DeviceRegistration, error) {
	licenseID, err := requireLicenseID(licenseID)
	if err != nil {
		return models.DeviceRegistration{}, err
	}
	device.DeviceID = strings.TrimSpace(device.DeviceID)
	if device.DeviceID == "" {
		return models.DeviceRegistration{}, fmt.Errorf("%w: deviceId is required", ErrValidation)
	}

	now := utils.FormatTimestamp(s.now())
	hostname := device.Hostname
	if hostname == "" {
		hostname = device.DeviceInfo.Hostname
	}
	reg := models.DeviceRegistration{
		ID:           utils.GenerateID("dev"),
		LicenseID:    licenseID,
		DeviceID:     device.DeviceID,
		Hostname:     hostname,
		DeviceInfo:   device.DeviceInfo,
		RegisteredAt: now,
		LastAccessed: now,
	}

	created, err := s.devices.Create(ctx, reg)
	if err != nil {
		return models.DeviceRegistration{}, err
	}

	logger.WithFields(map[string]interface{}{
		"license_id":      licenseID,
		"device_id":       created.DeviceID,
		"registration_id": created.ID,
	}).Info("Device registered")
	return created, nil
}

func (s *deviceService) RevokeDevice(ctx context.Context, registrationID, licenseID string) error {
	licenseID, err := requireLicenseID(licenseID)
	if err != nil {
		return err
	}

	reg, err := s.devices.Get(ctx, registrationID)
	if err != nil {
		return err
	}
	if reg.LicenseID != licenseID {
		return fmt.Errorf("%w: registration %s does not belong to license %s", ErrRegistrationNotFound, registrationID, licenseID)
	}

	if err := s.devices.Delete(ctx, registrationID); err != nil {
		return err
	}

	// A failure here leaves the counter overstated; AuditQuotas reports it.
	quota, err := s.quotas.Decrement(ctx, licenseID, s.now())
	if err != nil && !errors.Is(err, ErrQuotaNotFound) {
		logger.WithFields(map[string]interface{}{
			"license_id":      licenseID,
			"registration_id": registrationID,
			"error":           err.Error(),
		}).Error("Registration deleted but device count decrement failed")
		return fmt.Errorf("decrement device count: %w", err)
	}

	logger.WithFields(map[string]interface{}{
		"license_id":      licenseID,
		"registration_id": registrationID,
		"count":           quota.Count,
	}).Info("Device revoked")
	return nil
}

func (s *deviceService) ResetQuota(ctx context.Context, licenseID string) (models.DeviceQuota, error) {
	licenseID, err := requireLicenseID(licenseID)
	if err != nil {
		return models.DeviceQuota{}, err
	}
	quota, err := s.quotas.SetCount(ctx, licenseID, 0, s.now())
	if err != nil {
		return models.DeviceQuota{}, err
	}
	logger.WithFields(map[string]interface{}{"license_id": licenseID}).Warn("Device count reset to 0, registrations kept")
	return quota, nil
}

func (s *deviceService) SetLimit(ctx context.Context, licenseID string, raw int) (models.DeviceQuota, error) {
	licenseID, err := requireLicenseID(licenseID)
	if err != nil {
		return models.DeviceQuota{}, err
	}
	limit, err := models.ParseDeviceLimit(raw)
	if err != nil {
		return models.DeviceQuota{}, err
	}
	quota, err := s.quotas.SetLimit(ctx, licenseID, limit, s.now())
	if err != nil {
		return models.DeviceQuota{}, err
	}
	logger.WithFields(map[string]interface{}{
		"license_id": licenseID,
		"limit":      limit.String(),
	}).Info("Device limit updated")
	return quota, nil
}

func (s *deviceService) GetQuota(ctx context.Context, licenseID string) (models.DeviceQuota, error) {
	licenseID, err := requireLicenseID(licenseID)
	if err != nil {
		return models.DeviceQuota{}, err
	}
	return s.quotas.Get(ctx, licenseID)
}

func (s *deviceService) ReconcileQuota(ctx context.Context, licenseID string) (models.DeviceQuota, error) {
	licenseID, err := requireLicenseID(licenseID)
	if err != nil {
		return models.DeviceQuota{}, err
	}

	registered, err := s.devices.CountByLicense(ctx, licenseID)
	if err != nil {
		return models.DeviceQuota{}, fmt.Errorf("count registrations: %w", err)
	}

	before, err := s.quotas.Get(ctx, licenseID)
	if err != nil && !errors.Is(err, ErrQuotaNotFound) {
		return models.DeviceQuota{}, err
	}

	quota, err := s.quotas.SetCount(ctx, licenseID, registered, s.now())
	if err != nil {
		return models.DeviceQuota{}, err
	}

	if before.Count != registered {
		logger.WithFields(map[string]interface{}{
			"license_id":    licenseID,
			"previous":      before.Count,
			"registrations": registered,
		}).Info("Device count reconciled")
	}
	return quota, nil
}

func (s *deviceService) ListDevices(ctx context.Context, licenseID string) ([]models.DeviceRegistration, error) {
	licenseID, err := requireLicenseID(licenseID)
	if err != nil {
		return nil, err
	}
	return s.devices.ListByLicense(ctx, licenseID)
}

func (s *deviceService) TouchDevice(ctx context.Context, registrationID string) error {
	return s.devices.Touch(ctx, registrationID, utils.FormatTimestamp(s.now()))
}

func (s *deviceService) Activate(ctx context.Context, licenseKey string, device models.DeviceIdentity) (ActivationResult, error) {
	if strings.TrimSpace(licenseKey) == "" {
		return ActivationResult{Verdict: models.VerificationResult{Reason: models.ReasonMissingKey}}, nil
	}
	device.DeviceID = strings.TrimSpace(device.DeviceID)
	if device.DeviceID == "" {
		return ActivationResult{}, fmt.Errorf("%w: deviceId is required", ErrValidation)
	}

	existing, err := s.devices.FindByDevice(ctx, licenseKey, device.DeviceID)
	switch {
	case err == nil:
		return s.readmit(ctx, licenseKey, existing)
	case !errors.Is(err, ErrRegistrationNotFound):
		return ActivationResult{}, fmt.Errorf("find registration: %w", err)
	}

	verdict, err := s.verifier.Verify(ctx, licenseKey)
	if err != nil {
		return ActivationResult{}, err
	}
	if !verdict.Valid {
		return ActivationResult{Verdict: verdict}, nil
	}

	reg, err := s.RegisterDevice(ctx, licenseKey, device)
	if err == nil {
		return ActivationResult{Verdict: verdict, Registration: &reg}, nil
	}

	// Give the slot back. Verify already counted this device.
	if _, derr := s.quotas.Decrement(ctx, licenseKey, s.now()); derr != nil {
		logger.WithFields(map[string]interface{}{
			"license_id": licenseKey,
			"device_id":  device.DeviceID,
			"error":      derr.Error(),
		}).Error("Failed to release device slot after registration failure")
	}

	if errors.Is(err, ErrDeviceConflict) {
		// The same device activated concurrently and won the registration.
		existing, ferr := s.devices.FindByDevice(ctx, licenseKey, device.DeviceID)
		if ferr != nil {
			return ActivationResult{}, fmt.Errorf("find registration: %w", ferr)
		}
		return s.readmit(ctx, licenseKey, existing)
	}
	return ActivationResult{}, fmt.Errorf("register device: %w", err)
}

func (s *deviceService) readmit(ctx context.Context, licenseKey string, reg models.DeviceRegistration) (ActivationResult, error) {
	verdict, err := s.verifier.Inspect(ctx, licenseKey)
	if err != nil {
		return ActivationResult{}, err
	}
	if !verdict.Valid {
		return ActivationResult{Verdict: verdict}, nil
	}

	reg.LastAccessed = utils.FormatTimestamp(s.now())
	if err := s.devices.Touch(ctx, reg.ID, reg.LastAccessed); err != nil {
		logger.WithFields(map[string]interface{}{
			"registration_id": reg.ID,
			"error":           err.Error(),
		}).Warn("Failed to update device last access")
	}
	return ActivationResult{Verdict: verdict, Registration: &reg}, nil
}

func (s *deviceService) AuditQuotas(ctx context.Context) ([]models.QuotaDrift, error) {
	quotas, err := s.quotas.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list device quotas: %w", err)
	}

	drifts := make([]models.QuotaDrift, 0)
	for _, quota := range quotas {
		registered, err := s.devices.CountByLicense(ctx, quota.LicenseID)
		if err != nil {
			return nil, fmt.Errorf("count registrations for %s: %w", quota.LicenseID, err)
		}
		if registered != quota.Count {
			drifts = append(drifts, models.QuotaDrift{
				LicenseID:     quota.LicenseID,
				Count:         quota.Count,
				Registrations: registered,
			})
		}
	}
	return drifts, nil
}
