package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"licensepanel/models"
)

type sqlProfileStore struct {
	db      SQLExecutor
	dialect Dialect
}

// NewSQLProfileStore는 user_profiles 테이블 기반 ProfileStore를 생성합니다.
func NewSQLProfileStore(db SQLExecutor, dialect Dialect) ProfileStore {
	return &sqlProfileStore{db: db, dialect: dialect}
}

func (s *sqlProfileStore) Get(ctx context.Context, userID string) (models.UserProfile, error) {
	var (
		p           models.UserProfile
		avatar      sql.NullString
		preferences sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, first_name, last_name, role, avatar_url, preferences, created_at, last_login, last_updated
		FROM user_profiles WHERE id = ?`, userID,
	).Scan(&p.ID, &p.Username, &p.Email, &p.FirstName, &p.LastName, &p.Role, &avatar, &preferences, &p.CreatedAt, &p.LastLogin, &p.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UserProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.UserProfile{}, err
	}

	p.AvatarURL = nullString(avatar)
	if raw := nullString(preferences); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.Preferences); err != nil {
			return models.UserProfile{}, err
		}
	}
	return p, nil
}

func (s *sqlProfileStore) Put(ctx context.Context, p models.UserProfile) error {
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return err
	}

	query := `INSERT INTO user_profiles (id, username, email, first_name, last_name, role, avatar_url, preferences, created_at, last_login, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if s.dialect == DialectMySQL {
		query += ` ON DUPLICATE KEY UPDATE username = VALUES(username), email = VALUES(email), first_name = VALUES(first_name),
			last_name = VALUES(last_name), role = VALUES(role), avatar_url = VALUES(avatar_url), preferences = VALUES(preferences),
			last_login = VALUES(last_login), last_updated = VALUES(last_updated)`
	} else {
		query += ` ON CONFLICT(id) DO UPDATE SET username = excluded.username, email = excluded.email, first_name = excluded.first_name,
			last_name = excluded.last_name, role = excluded.role, avatar_url = excluded.avatar_url, preferences = excluded.preferences,
			last_login = excluded.last_login, last_updated = excluded.last_updated`
	}

	_, err = s.db.ExecContext(ctx, query,
		p.ID, p.Username, p.Email, p.FirstName, p.LastName, p.Role, p.AvatarURL, string(prefs), p.CreatedAt, p.LastLogin, p.LastUpdated,
	)
	return err
}
