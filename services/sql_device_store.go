package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"licensepanel/models"
	"licensepanel/utils"
)

type sqlDeviceStore struct {
	db SQLExecutor
}

// NewSQLDeviceStore는 license_device_mapping 테이블 기반 DeviceStore를 생성합니다.
func NewSQLDeviceStore(db SQLExecutor) DeviceStore {
	return &sqlDeviceStore{db: db}
}

const deviceColumns = `id, license_id, device_id, hostname, device_info, registered_at, last_accessed`

func scanDevice(row interface{ Scan(dest ...any) error }) (models.DeviceRegistration, error) {
	var (
		reg  models.DeviceRegistration
		info sql.NullString
	)
	if err := row.Scan(&reg.ID, &reg.LicenseID, &reg.DeviceID, &reg.Hostname, &info, &reg.RegisteredAt, &reg.LastAccessed); err != nil {
		return models.DeviceRegistration{}, err
	}
	if raw := nullString(info); raw != "" {
		if err := json.Unmarshal([]byte(raw), &reg.DeviceInfo); err != nil {
			return models.DeviceRegistration{}, err
		}
	}
	return reg, nil
}

func (s *sqlDeviceStore) Create(ctx context.Context, reg models.DeviceRegistration) (models.DeviceRegistration, error) {
	if reg.ID == "" {
		reg.ID = utils.GenerateID("dev")
	}
	info, err := json.Marshal(reg.DeviceInfo)
	if err != nil {
		return models.DeviceRegistration{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO license_device_mapping (`+deviceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		reg.ID, reg.LicenseID, reg.DeviceID, reg.Hostname, string(info), reg.RegisteredAt, reg.LastAccessed,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return models.DeviceRegistration{}, ErrDeviceConflict
		}
		return models.DeviceRegistration{}, err
	}
	return reg, nil
}

func (s *sqlDeviceStore) Get(ctx context.Context, id string) (models.DeviceRegistration, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+deviceColumns+` FROM license_device_mapping WHERE id = ?`, id)
	reg, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DeviceRegistration{}, ErrRegistrationNotFound
	}
	return reg, err
}

func (s *sqlDeviceStore) FindByDevice(ctx context.Context, licenseID, deviceID string) (models.DeviceRegistration, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+deviceColumns+` FROM license_device_mapping
		WHERE license_id = ? AND device_id = ?`, licenseID, deviceID)
	reg, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DeviceRegistration{}, ErrRegistrationNotFound
	}
	return reg, err
}

func (s *sqlDeviceStore) ListByLicense(ctx context.Context, licenseID string) ([]models.DeviceRegistration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+deviceColumns+` FROM license_device_mapping
		WHERE license_id = ? ORDER BY registered_at ASC, id ASC`, licenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devices := make([]models.DeviceRegistration, 0)
	for rows.Next() {
		reg, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, reg)
	}
	return devices, rows.Err()
}

func (s *sqlDeviceStore) CountByLicense(ctx context.Context, licenseID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM license_device_mapping WHERE license_id = ?`, licenseID).Scan(&count)
	return count, err
}

func (s *sqlDeviceStore) Touch(ctx context.Context, id string, lastAccessed string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE license_device_mapping SET last_accessed = ? WHERE id = ?`, lastAccessed, id)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrRegistrationNotFound)
}

func (s *sqlDeviceStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM license_device_mapping WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrRegistrationNotFound)
}
