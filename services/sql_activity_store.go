package services

import (
	"context"
	"database/sql"

	"licensepanel/models"
	"licensepanel/utils"
)

type sqlActivityStore struct {
	db SQLExecutor
}

// NewSQLActivityStore는 activity_logs 테이블 기반 ActivityStore를 생성합니다.
func NewSQLActivityStore(db SQLExecutor) ActivityStore {
	return &sqlActivityStore{db: db}
}

func (s *sqlActivityStore) Append(ctx context.Context, entry models.ActivityLogEntry) (models.ActivityLogEntry, error) {
	if entry.ID == "" {
		entry.ID = utils.GenerateID("act")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_logs (id, action, license_id, logged_at, details, actor)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Action, entry.LicenseID, entry.Timestamp, entry.Details, entry.User,
	)
	if err != nil {
		return models.ActivityLogEntry{}, err
	}
	return entry, nil
}

func (s *sqlActivityStore) List(ctx context.Context, licenseID string, limit int) ([]models.ActivityLogEntry, error) {
	query := `SELECT id, action, license_id, logged_at, details, actor FROM activity_logs`
	args := make([]any, 0, 2)
	if licenseID != "" {
		query += " WHERE license_id = ?"
		args = append(args, licenseID)
	}
	// 같은 초에 기록된 항목은 삽입 순서의 역순
	query += " ORDER BY logged_at DESC, seq DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.ActivityLogEntry, 0)
	for rows.Next() {
		var (
			entry   models.ActivityLogEntry
			details sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.LicenseID, &entry.Timestamp, &details, &entry.User); err != nil {
			return nil, err
		}
		entry.Details = nullString(details)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
