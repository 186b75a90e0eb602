package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensepanel/database"
	"licensepanel/models"
)

func newTestSQLStores(t *testing.T) Stores {
	t.Helper()
	db, err := database.Initialize(context.Background(), database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return NewSQLStores(NewSQLExecutor(db), DialectSQLite)
}

var testNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func TestSQLLicenseStore(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLStores(t).Licenses

	for _, id := range []string{"BETA-1", "ALPHA-2", "ALPHA-1", "alpha-3"} {
		_, err := store.Create(ctx, models.License{LicenseID: id, ExpiryDate: "2030-01-01", Notes: "n"})
		require.NoError(t, err)
	}

	_, err := store.Create(ctx, models.License{LicenseID: "ALPHA-1", ExpiryDate: "2030-01-01"})
	assert.ErrorIs(t, err, ErrLicenseConflict)

	found, err := store.FindByKey(ctx, "ALPHA-2")
	require.NoError(t, err)
	assert.NotEmpty(t, found.ID)
	assert.Equal(t, "n", found.Notes)

	// exact, case-sensitive match
	_, err = store.FindByKey(ctx, "Alpha-2")
	assert.ErrorIs(t, err, ErrLicenseNotFound)

	all, err := store.List(ctx, LicenseListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "ALPHA-1", all[0].LicenseID)

	prefixed, err := store.List(ctx, LicenseListOptions{Prefix: "ALPHA"})
	require.NoError(t, err)
	assert.Len(t, prefixed, 2)

	page, err := store.List(ctx, LicenseListOptions{After: "ALPHA-2", Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "BETA-1", page[0].LicenseID)

	found.ExpiryDate = "2031-02-02"
	require.NoError(t, store.Update(ctx, found))
	got, err := store.Get(ctx, found.ID)
	require.NoError(t, err)
	assert.Equal(t, "2031-02-02", got.ExpiryDate)

	found.LicenseID = "BETA-1"
	assert.ErrorIs(t, store.Update(ctx, found), ErrLicenseConflict)

	require.NoError(t, store.Delete(ctx, found.ID))
	assert.ErrorIs(t, store.Delete(ctx, found.ID), ErrLicenseNotFound)
	assert.ErrorIs(t, store.Update(ctx, models.License{ID: "missing"}), ErrLicenseNotFound)
}

func TestSQLExecutorInTx(t *testing.T) {
	ctx := context.Background()
	db, err := database.Initialize(ctx, database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	exec := NewSQLExecutor(db)

	insert := func(tx *sql.Tx, id string) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO user_profiles (id) VALUES (?)`, id)
		return err
	}
	count := func() int {
		var n int
		require.NoError(t, exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_profiles`).Scan(&n))
		return n
	}

	require.NoError(t, exec.InTx(ctx, func(tx *sql.Tx) error { return insert(tx, "u-1") }))
	assert.Equal(t, 1, count())

	boom := errors.New("boom")
	err = exec.InTx(ctx, func(tx *sql.Tx) error {
		require.NoError(t, insert(tx, "u-2"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, count())
}

func TestSQLQuotaStoreIncrementRespectsLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLStores(t).Quotas

	_, _, err := store.TryIncrement(ctx, "XYZ-9", testNow)
	assert.ErrorIs(t, err, ErrQuotaNotFound)

	quota, err := store.GetOrCreate(ctx, "XYZ-9", testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, quota.Count)
	assert.Equal(t, 1, quota.Limit.Raw())

	quota, admitted, err := store.TryIncrement(ctx, "XYZ-9", testNow)
	require.NoError(t, err)
	assert.True(t, admitted)
	assert.Equal(t, 1, quota.Count)

	quota, admitted, err = store.TryIncrement(ctx, "XYZ-9", testNow)
	require.NoError(t, err)
	assert.False(t, admitted)
	assert.Equal(t, 1, quota.Count)

	// GetOrCreate never resets an existing record
	quota, err = store.GetOrCreate(ctx, "XYZ-9", testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, quota.Count)
}

func TestSQLQuotaStoreInvalidStoredLimitActsAsDefault(t *testing.T) {
	ctx := context.Background()
	db, err := database.Initialize(ctx, database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	store := NewSQLStores(NewSQLExecutor(db), DialectSQLite).Quotas

	for _, raw := range []int{0, -5} {
		licenseID := fmt.Sprintf("BAD-%d", raw)
		_, err := store.GetOrCreate(ctx, licenseID, testNow)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `UPDATE license_devices_count SET device_limit = ? WHERE license_id = ?`, raw, licenseID)
		require.NoError(t, err)

		quota, err := store.Get(ctx, licenseID)
		require.NoError(t, err)
		assert.Equal(t, 1, quota.Limit.Raw())

		// the decoded limit and the conditional UPDATE agree
		quota, admitted, err := store.TryIncrement(ctx, licenseID, testNow)
		require.NoError(t, err)
		assert.True(t, admitted, "limit %d", raw)
		assert.Equal(t, 1, quota.Count)

		_, admitted, err = store.TryIncrement(ctx, licenseID, testNow)
		require.NoError(t, err)
		assert.False(t, admitted, "limit %d", raw)
	}
}

func TestSQLQuotaStoreUnlimitedAndLimits(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLStores(t).Quotas

	quota, err := store.SetLimit(ctx, "UNL-1", models.Unlimited(), testNow)
	require.NoError(t, err)
	assert.True(t, quota.Limit.IsUnlimited())
	assert.Equal(t, 0, quota.Count)

	for i := 0; i < 5; i++ {
		_, admitted, err := store.TryIncrement(ctx, "UNL-1", testNow)
		require.NoError(t, err)
		assert.True(t, admitted)
	}

	// limit change leaves count untouched
	quota, err = store.SetLimit(ctx, "UNL-1", models.Limited(2), testNow)
	require.NoError(t, err)
	assert.Equal(t, 5, quota.Count)
	assert.Equal(t, 2, quota.Limit.Raw())

	_, admitted, err := store.TryIncrement(ctx, "UNL-1", testNow)
	require.NoError(t, err)
	assert.False(t, admitted)
}

func TestSQLQuotaStoreDecrementFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLStores(t).Quotas

	_, err := store.Decrement(ctx, "NONE", testNow)
	assert.ErrorIs(t, err, ErrQuotaNotFound)

	_, err = store.GetOrCreate(ctx, "ZERO", testNow)
	require.NoError(t, err)
	quota, err := store.Decrement(ctx, "ZERO", testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, quota.Count)

	quota, err = store.SetCount(ctx, "ZERO", 3, testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, quota.Count)
	quota, err = store.Decrement(ctx, "ZERO", testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, quota.Count)

	quotas, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, quotas, 1)
	assert.True(t, quotas[0].LastUpdated.Equal(testNow))
}

func TestSQLQuotaStoreConcurrentIncrementNeverOverAdmits(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLStores(t).Quotas

	_, err := store.SetLimit(ctx, "RACE", models.Limited(3), testNow)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := store.TryIncrement(ctx, "RACE", testNow)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, admitted)
	quota, err := store.Get(ctx, "RACE")
	require.NoError(t, err)
	assert.Equal(t, 3, quota.Count)
}

func TestSQLDeviceStore(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLStores(t).Devices

	reg, err := store.Create(ctx, models.DeviceRegistration{
		LicenseID:    "ABC-1",
		DeviceID:     "dev-a",
		Hostname:     "host-a",
		DeviceInfo:   models.DeviceInfo{System: "Linux", IP: "10.0.0.1"},
		RegisteredAt: "2026-05-01T09:00:00Z",
		LastAccessed: "2026-05-01T09:00:00Z",
	})
	require.NoError(t, err)
	require.NotEmpty(t, reg.ID)

	_, err = store.Create(ctx, models.DeviceRegistration{LicenseID: "ABC-1", DeviceID: "dev-a"})
	assert.ErrorIs(t, err, ErrDeviceConflict)

	// the same device may be registered to another license
	_, err = store.Create(ctx, models.DeviceRegistration{LicenseID: "ABC-2", DeviceID: "dev-a"})
	require.NoError(t, err)

	found, err := store.FindByDevice(ctx, "ABC-1", "dev-a")
	require.NoError(t, err)
	assert.Equal(t, "Linux", found.DeviceInfo.System)
	assert.Equal(t, "10.0.0.1", found.DeviceInfo.IP)

	require.NoError(t, store.Touch(ctx, reg.ID, "2026-05-02T09:00:00Z"))
	got, err := store.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-05-02T09:00:00Z", got.LastAccessed)

	count, err := store.CountByLicense(ctx, "ABC-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	list, err := store.ListByLicense(ctx, "ABC-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.Delete(ctx, reg.ID))
	assert.ErrorIs(t, store.Delete(ctx, reg.ID), ErrRegistrationNotFound)
	_, err = store.Get(ctx, reg.ID)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
	assert.ErrorIs(t, store.Touch(ctx, reg.ID, "x"), ErrRegistrationNotFound)
}

func TestSQLActivityStoreNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLStores(t).Activity

	entries := []models.ActivityLogEntry{
		{Action: "create", LicenseID: "A", Timestamp: "2026-05-01T09:00:00Z", Details: "first"},
		{Action: "update", LicenseID: "A", Timestamp: "2026-05-01T10:00:00Z", Details: "second"},
		{Action: "create", LicenseID: "B", Timestamp: "2026-05-01T10:00:00Z", Details: "third"},
	}
	for _, e := range entries {
		_, err := store.Append(ctx, e)
		require.NoError(t, err)
	}

	all, err := store.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Details)
	assert.Equal(t, "second", all[1].Details)
	assert.Equal(t, "first", all[2].Details)

	limited, err := store.List(ctx, "A", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "second", limited[0].Details)
}

func TestSQLProfileStoreUpsert(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLStores(t).Profiles

	_, err := store.Get(ctx, "user-1")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	profile := models.UserProfile{
		ID:          "user-1",
		Username:    "kim",
		Role:        models.RoleUser,
		CreatedAt:   "2026-05-01T09:00:00Z",
		Preferences: models.UserPreferences{DarkMode: true},
	}
	require.NoError(t, store.Put(ctx, profile))

	profile.Role = models.RoleAdmin
	profile.CreatedAt = "ignored on update"
	require.NoError(t, store.Put(ctx, profile))

	got, err := store.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Equal(t, "2026-05-01T09:00:00Z", got.CreatedAt)
	assert.True(t, got.Preferences.DarkMode)
}
