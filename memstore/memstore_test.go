package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensepanel/models"
	"licensepanel/services"
)

var now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func TestLicenseViewCursorAndPrefix(t *testing.T) {
	ctx := context.Background()
	licenses := New().Stores().Licenses

	for _, id := range []string{"B-2", "A-1", "B-1", "b-3"} {
		_, err := licenses.Create(ctx, models.License{LicenseID: id, ExpiryDate: "2030-01-01"})
		require.NoError(t, err)
	}
	_, err := licenses.Create(ctx, models.License{LicenseID: "A-1"})
	assert.ErrorIs(t, err, services.ErrLicenseConflict)

	rows, err := licenses.List(ctx, services.LicenseListOptions{Prefix: "B"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "B-1", rows[0].LicenseID)

	rows, err = licenses.List(ctx, services.LicenseListOptions{After: "A-1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "B-1", rows[0].LicenseID)
	assert.Equal(t, "B-2", rows[1].LicenseID)
}

func TestQuotaViewConditionalIncrement(t *testing.T) {
	ctx := context.Background()
	quotas := New().Stores().Quotas

	_, _, err := quotas.TryIncrement(ctx, "Q-1", now)
	assert.ErrorIs(t, err, services.ErrQuotaNotFound)

	_, err = quotas.SetLimit(ctx, "Q-1", models.Limited(2), now)
	require.NoError(t, err)

	for i := 1; i <= 2; i++ {
		q, ok, err := quotas.TryIncrement(ctx, "Q-1", now)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, i, q.Count)
	}
	q, ok, err := quotas.TryIncrement(ctx, "Q-1", now)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, q.Count)

	q, err = quotas.SetCount(ctx, "Q-1", -4, now)
	require.NoError(t, err)
	assert.Equal(t, 0, q.Count)

	q, err = quotas.Decrement(ctx, "Q-1", now)
	require.NoError(t, err)
	assert.Equal(t, 0, q.Count)
	assert.Equal(t, 2, q.Limit.Raw())
}

func TestActivityViewNewestFirst(t *testing.T) {
	ctx := context.Background()
	activity := New().Stores().Activity

	for _, e := range []models.ActivityLogEntry{
		{LicenseID: "A", Timestamp: "2026-05-01T09:00:00Z", Details: "old"},
		{LicenseID: "A", Timestamp: "2026-05-01T10:00:00Z", Details: "new"},
		{LicenseID: "A", Timestamp: "2026-05-01T10:00:00Z", Details: "newest"},
		{LicenseID: "B", Timestamp: "2026-05-01T11:00:00Z", Details: "other"},
	} {
		entry, err := activity.Append(ctx, e)
		require.NoError(t, err)
		assert.NotEmpty(t, entry.ID)
	}

	rows, err := activity.List(ctx, "A", 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"newest", "new", "old"}, []string{rows[0].Details, rows[1].Details, rows[2].Details})

	rows, err = activity.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "other", rows[0].Details)
}

func TestDeviceViewUniquePerLicense(t *testing.T) {
	ctx := context.Background()
	devices := New().Stores().Devices

	_, err := devices.Create(ctx, models.DeviceRegistration{LicenseID: "L", DeviceID: "d", RegisteredAt: "2026-05-01T09:00:00Z"})
	require.NoError(t, err)
	_, err = devices.Create(ctx, models.DeviceRegistration{LicenseID: "L", DeviceID: "d"})
	assert.ErrorIs(t, err, services.ErrDeviceConflict)
	_, err = devices.Create(ctx, models.DeviceRegistration{LicenseID: "M", DeviceID: "d"})
	require.NoError(t, err)

	n, err := devices.CountByLicense(ctx, "L")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
