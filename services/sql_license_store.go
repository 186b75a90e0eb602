package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"licensepanel/models"
	"licensepanel/utils"
)

type sqlLicenseStore struct {
	db SQLExecutor
}

// NewSQLLicenseStore는 licenses 테이블 기반 LicenseStore를 생성합니다.
func NewSQLLicenseStore(db SQLExecutor) LicenseStore {
	return &sqlLicenseStore{db: db}
}

const licenseColumns = `id, license_id, expiry_date, status, notes, created_at, last_updated`

func scanLicense(row interface{ Scan(dest ...any) error }) (models.License, error) {
	var (
		l     models.License
		notes sql.NullString
	)
	if err := row.Scan(&l.ID, &l.LicenseID, &l.ExpiryDate, &l.Status, &notes, &l.CreatedAt, &l.LastUpdated); err != nil {
		return models.License{}, err
	}
	l.Notes = nullString(notes)
	return l, nil
}

func (s *sqlLicenseStore) FindByKey(ctx context.Context, licenseID string) (models.License, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+licenseColumns+` FROM licenses WHERE license_id = ?`, licenseID)
	l, err := scanLicense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.License{}, ErrLicenseNotFound
	}
	return l, err
}

func (s *sqlLicenseStore) Get(ctx context.Context, id string) (models.License, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+licenseColumns+` FROM licenses WHERE id = ?`, id)
	l, err := scanLicense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.License{}, ErrLicenseNotFound
	}
	return l, err
}

func (s *sqlLicenseStore) Create(ctx context.Context, license models.License) (models.License, error) {
	if license.ID == "" {
		license.ID = utils.GenerateID("lic")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO licenses (`+licenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		license.ID, license.LicenseID, license.ExpiryDate, license.Status, license.Notes, license.CreatedAt, license.LastUpdated,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return models.License{}, ErrLicenseConflict
		}
		return models.License{}, err
	}
	return license, nil
}

func (s *sqlLicenseStore) Update(ctx context.Context, license models.License) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE licenses SET license_id = ?, expiry_date = ?, status = ?, notes = ?, last_updated = ?
		WHERE id = ?`,
		license.LicenseID, license.ExpiryDate, license.Status, license.Notes, license.LastUpdated, license.ID,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrLicenseConflict
		}
		return err
	}
	return requireAffected(result, ErrLicenseNotFound)
}

func (s *sqlLicenseStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM licenses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrLicenseNotFound)
}

func (s *sqlLicenseStore) List(ctx context.Context, opts LicenseListOptions) ([]models.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses WHERE 1=1`
	args := make([]any, 0)

	if opts.Prefix != "" {
		query += " AND license_id >= ? AND license_id <= ?"
		args = append(args, opts.Prefix, prefixUpperBound(opts.Prefix))
	}
	if strings.TrimSpace(opts.After) != "" {
		query += " AND license_id > ?"
		args = append(args, opts.After)
	}

	query += " ORDER BY license_id ASC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	licenses := make([]models.License, 0)
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, l)
	}
	return licenses, rows.Err()
}

// requireAffected maps a zero-row UPDATE/DELETE to notFound.
func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
