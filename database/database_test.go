package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeCreatesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "panel.db")

	db, err := Initialize(ctx, DriverSQLite, path)
	require.NoError(t, err)
	defer Close(db)

	for _, table := range []string{"licenses", "license_devices_count", "license_device_mapping", "activity_logs", "user_profiles"} {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	// 재실행해도 실패하지 않아야 함
	require.NoError(t, Migrate(ctx, db, DriverSQLite))
}

func TestInitializeRejectsBadMySQLDSN(t *testing.T) {
	_, err := Initialize(context.Background(), DriverMySQL, "not a dsn")
	assert.Error(t, err)
}

func TestQuotaTableDefaults(t *testing.T) {
	ctx := context.Background()
	db, err := Initialize(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer Close(db)

	_, err = db.ExecContext(ctx, `INSERT INTO license_devices_count (license_id) VALUES ('ABC-1')`)
	require.NoError(t, err)

	var count, limit int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT device_count, device_limit FROM license_devices_count WHERE license_id = 'ABC-1'`,
	).Scan(&count, &limit))
	assert.Equal(t, 0, count)
	assert.Equal(t, 1, limit)
}
