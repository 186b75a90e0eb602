package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"licensepanel/models"
	"licensepanel/utils"
)

type sqlQuotaStore struct {
	db      SQLExecutor
	dialect Dialect
}

// NewSQLQuotaStore는 license_devices_count 테이블 기반 QuotaStore를 생성합니다.
func NewSQLQuotaStore(db SQLExecutor, dialect Dialect) QuotaStore {
	return &sqlQuotaStore{db: db, dialect: dialect}
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *sqlQuotaStore) insertIgnore() string {
	if s.dialect == DialectMySQL {
		return `INSERT IGNORE INTO license_devices_count (license_id, device_count, device_limit, last_updated) VALUES (?, ?, ?, ?)`
	}
	return `INSERT OR IGNORE INTO license_devices_count (license_id, device_count, device_limit, last_updated) VALUES (?, ?, ?, ?)`
}

// upsert inserts a baseline row or overwrites column on an existing one.
func (s *sqlQuotaStore) upsert(column string) string {
	if s.dialect == DialectMySQL {
		return fmt.Sprintf(`INSERT INTO license_devices_count (license_id, device_count, device_limit, last_updated) VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE %[1]s = VALUES(%[1]s), last_updated = VALUES(last_updated)`, column)
	}
	return fmt.Sprintf(`INSERT INTO license_devices_count (license_id, device_count, device_limit, last_updated) VALUES (?, ?, ?, ?)
		ON CONFLICT(license_id) DO UPDATE SET %[1]s = excluded.%[1]s, last_updated = excluded.last_updated`, column)
}

func selectQuota(ctx context.Context, q rowQuerier, licenseID string) (models.DeviceQuota, error) {
	var (
		quota       models.DeviceQuota
		rawLimit    int
		lastUpdated string
	)
	err := q.QueryRowContext(ctx, `
		SELECT license_id, device_count, device_limit, last_updated
		FROM license_devices_count WHERE license_id = ?`, licenseID,
	).Scan(&quota.LicenseID, &quota.Count, &rawLimit, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DeviceQuota{}, ErrQuotaNotFound
	}
	if err != nil {
		return models.DeviceQuota{}, err
	}
	quota.Limit = models.StoredDeviceLimit(rawLimit)
	quota.LastUpdated, _ = utils.ParseTimestamp(lastUpdated)
	return quota, nil
}

func (s *sqlQuotaStore) Get(ctx context.Context, licenseID string) (models.DeviceQuota, error) {
	return selectQuota(ctx, s.db, licenseID)
}

func (s *sqlQuotaStore) GetOrCreate(ctx context.Context, licenseID string, now time.Time) (models.DeviceQuota, error) {
	var quota models.DeviceQuota
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.insertIgnore(),
			licenseID, 0, models.DefaultDeviceLimit, utils.FormatTimestamp(now)); err != nil {
			return err
		}
		var err error
		quota, err = selectQuota(ctx, tx, licenseID)
		return err
	})
	return quota, err
}

func (s *sqlQuotaStore) TryIncrement(ctx context.Context, licenseID string, now time.Time) (models.DeviceQuota, bool, error) {
	var (
		quota    models.DeviceQuota
		admitted bool
	)
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		// 한도 검사와 증가를 하나의 조건부 UPDATE로 처리.
		// 잘못 저장된 한도(-1이 아닌 1 미만)는 StoredDeviceLimit과 같이 기본값으로 본다.
		result, err := tx.ExecContext(ctx, `
			UPDATE license_devices_count
			SET device_count = device_count + 1, last_updated = ?
			WHERE license_id = ? AND (device_limit = ? OR
				device_count < CASE WHEN device_limit < 1 THEN ? ELSE device_limit END)`,
			utils.FormatTimestamp(now), licenseID, models.UnlimitedSentinel, models.DefaultDeviceLimit,
		)
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		admitted = n > 0
		quota, err = selectQuota(ctx, tx, licenseID)
		return err
	})
	if err != nil {
		return models.DeviceQuota{}, false, err
	}
	return quota, admitted, nil
}

func (s *sqlQuotaStore) Decrement(ctx context.Context, licenseID string, now time.Time) (models.DeviceQuota, error) {
	var quota models.DeviceQuota
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE license_devices_count
			SET device_count = device_count - 1, last_updated = ?
			WHERE license_id = ? AND device_count > 0`,
			utils.FormatTimestamp(now), licenseID,
		); err != nil {
			return err
		}
		var err error
		quota, err = selectQuota(ctx, tx, licenseID)
		return err
	})
	return quota, err
}

func (s *sqlQuotaStore) SetCount(ctx context.Context, licenseID string, count int, now time.Time) (models.DeviceQuota, error) {
	if count < 0 {
		count = 0
	}
	var quota models.DeviceQuota
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.upsert("device_count"),
			licenseID, count, models.DefaultDeviceLimit, utils.FormatTimestamp(now)); err != nil {
			return err
		}
		var err error
		quota, err = selectQuota(ctx, tx, licenseID)
		return err
	})
	return quota, err
}

func (s *sqlQuotaStore) SetLimit(ctx context.Context, licenseID string, limit models.DeviceLimit, now time.Time) (models.DeviceQuota, error) {
	var quota models.DeviceQuota
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.upsert("device_limit"),
			licenseID, 0, limit.Raw(), utils.FormatTimestamp(now)); err != nil {
			return err
		}
		var err error
		quota, err = selectQuota(ctx, tx, licenseID)
		return err
	})
	return quota, err
}

func (s *sqlQuotaStore) List(ctx context.Context) ([]models.DeviceQuota, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT license_id, device_count, device_limit, last_updated
		FROM license_devices_count ORDER BY license_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotas := make([]models.DeviceQuota, 0)
	for rows.Next() {
		var (
			quota       models.DeviceQuota
			rawLimit    int
			lastUpdated string
		)
		if err := rows.Scan(&quota.LicenseID, &quota.Count, &rawLimit, &lastUpdated); err != nil {
			return nil, err
		}
		quota.Limit = models.StoredDeviceLimit(rawLimit)
		quota.LastUpdated, _ = utils.ParseTimestamp(lastUpdated)
		quotas = append(quotas, quota)
	}
	return quotas, rows.Err()
}
