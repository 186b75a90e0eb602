package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensepanel/memstore"
	"licensepanel/models"
	"licensepanel/services"
)

var (
	today     = time.Date(2026, 5, 1, 15, 30, 0, 0, time.UTC)
	yesterday = "2026-04-30"
	nextYear  = "2027-05-01"
)

func fixedClock() time.Time { return today }

type fixture struct {
	stores   services.Stores
	verifier services.VerificationService
	devices  services.DeviceService
	licenses services.LicenseService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores := memstore.New().Stores()
	return newFixtureWith(stores)
}

func newFixtureWith(stores services.Stores) *fixture {
	verifier := services.NewVerificationService(stores.Licenses, stores.Quotas, fixedClock)
	return &fixture{
		stores:   stores,
		verifier: verifier,
		devices:  services.NewDeviceService(verifier, stores.Quotas, stores.Devices, fixedClock),
		licenses: services.NewLicenseService(stores.Licenses, stores.Activity, fixedClock),
	}
}

func (f *fixture) addLicense(t *testing.T, licenseID, expiry string) {
	t.Helper()
	_, err := f.stores.Licenses.Create(context.Background(), models.License{LicenseID: licenseID, ExpiryDate: expiry})
	require.NoError(t, err)
}

// countingQuotaStore records every call so tests can assert that rejection
// paths never touch the counter.
type countingQuotaStore struct {
	services.QuotaStore
	mu    sync.Mutex
	calls int
}

func (c *countingQuotaStore) touch() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *countingQuotaStore) Get(ctx context.Context, id string) (models.DeviceQuota, error) {
	c.touch()
	return c.QuotaStore.Get(ctx, id)
}

func (c *countingQuotaStore) GetOrCreate(ctx context.Context, id string, now time.Time) (models.DeviceQuota, error) {
	c.touch()
	return c.QuotaStore.GetOrCreate(ctx, id, now)
}

func (c *countingQuotaStore) TryIncrement(ctx context.Context, id string, now time.Time) (models.DeviceQuota, bool, error) {
	c.touch()
	return c.QuotaStore.TryIncrement(ctx, id, now)
}

func TestVerifyMissingKeyTouchesNoStore(t *testing.T) {
	quotas := &countingQuotaStore{QuotaStore: memstore.New().Stores().Quotas}
	verifier := services.NewVerificationService(nil, quotas, fixedClock)

	for _, key := range []string{"", "   "} {
		result, err := verifier.Verify(context.Background(), key)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, models.ReasonMissingKey, result.Reason)
	}
	assert.Zero(t, quotas.calls)
}

func TestVerifyUnknownKeyNeverMutatesQuota(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, key := range []string{"NOPE", "nope-2", "ABC-1 "} {
		result, err := f.verifier.Verify(ctx, key)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, models.ReasonNotFound, result.Reason)
	}

	quotas, err := f.stores.Quotas.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, quotas)
}

func TestVerifyPaddedKeyDoesNotMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLicense(t, "XYZ-9", nextYear)

	for _, key := range []string{" XYZ-9", "XYZ-9 ", "  XYZ-9\n", "\tXYZ-9"} {
		result, err := f.verifier.Verify(ctx, key)
		require.NoError(t, err)
		assert.False(t, result.Valid, key)
		assert.Equal(t, models.ReasonNotFound, result.Reason, key)

		inspected, err := f.verifier.Inspect(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, models.ReasonNotFound, inspected.Reason, key)
	}

	_, err := f.stores.Quotas.Get(ctx, "XYZ-9")
	assert.ErrorIs(t, err, services.ErrQuotaNotFound)

	result := mustVerify(t, f, "XYZ-9")
	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.DeviceCount)
}

func TestVerifyExpiredTakesPrecedence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLicense(t, "ABC-1", yesterday)

	for _, count := range []int{0, 1, 5} {
		_, err := f.stores.Quotas.SetCount(ctx, "ABC-1", count, today)
		require.NoError(t, err)

		result, err := f.verifier.Verify(ctx, "ABC-1")
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, models.ReasonExpired, result.Reason)
		assert.Equal(t, yesterday, result.ExpiryDate)

		quota, err := f.stores.Quotas.Get(ctx, "ABC-1")
		require.NoError(t, err)
		assert.Equal(t, count, quota.Count)
	}

	resp := models.NewVerifyResponse(mustVerify(t, f, "ABC-1"))
	assert.Equal(t, "License expired", resp.Message)
}

func TestVerifyExpiredDoesNotCreateQuota(t *testing.T) {
	f := newFixture(t)
	f.addLicense(t, "OLD-1", yesterday)

	mustVerify(t, f, "OLD-1")
	_, err := f.stores.Quotas.Get(context.Background(), "OLD-1")
	assert.ErrorIs(t, err, services.ErrQuotaNotFound)
}

func TestVerifyLicenseExpiringTodayIsValid(t *testing.T) {
	f := newFixture(t)
	f.addLicense(t, "TODAY-1", "2026-05-01")

	result := mustVerify(t, f, "TODAY-1")
	assert.True(t, result.Valid)
}

func TestVerifyFirstActivationCreatesBaseline(t *testing.T) {
	f := newFixture(t)
	f.addLicense(t, "XYZ-9", nextYear)

	first := mustVerify(t, f, "XYZ-9")
	assert.True(t, first.Valid)
	assert.Equal(t, 1, first.DeviceCount)
	assert.Equal(t, 1, first.DeviceLimit.Raw())
	assert.False(t, first.Unlimited())

	second := mustVerify(t, f, "XYZ-9")
	assert.False(t, second.Valid)
	assert.Equal(t, models.ReasonQuotaExceeded, second.Reason)
	assert.Contains(t, models.NewVerifyResponse(second).Message, "limit reached (1 devices)")
}

func TestVerifyCapacityBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLicense(t, "CAP-3", nextYear)
	_, err := f.stores.Quotas.SetLimit(ctx, "CAP-3", models.Limited(3), today)
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		result := mustVerify(t, f, "CAP-3")
		require.True(t, result.Valid)
		assert.Equal(t, i, result.DeviceCount)
	}

	rejected := mustVerify(t, f, "CAP-3")
	assert.False(t, rejected.Valid)
	assert.Equal(t, models.ReasonQuotaExceeded, rejected.Reason)
	assert.Equal(t, 3, rejected.DeviceCount)
	assert.Equal(t, 3, rejected.DeviceLimit.Raw())

	quota, err := f.stores.Quotas.Get(ctx, "CAP-3")
	require.NoError(t, err)
	assert.Equal(t, 3, quota.Count)
}

func TestVerifyUnlimitedStillCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLicense(t, "UNL-1", nextYear)
	_, err := f.stores.Quotas.SetLimit(ctx, "UNL-1", models.Unlimited(), today)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.True(t, mustVerify(t, f, "UNL-1").Valid)
	}

	sixth := mustVerify(t, f, "UNL-1")
	assert.True(t, sixth.Valid)
	assert.True(t, sixth.Unlimited())
	assert.Equal(t, 6, sixth.DeviceCount)

	resp := models.NewVerifyResponse(sixth)
	require.NotNil(t, resp.Unlimited)
	assert.True(t, *resp.Unlimited)
	assert.Equal(t, 6, *resp.DeviceCount)
}

func TestVerifyRejectsLostRace(t *testing.T) {
	// The snapshot says there is room, the conditional increment says otherwise.
	stores := memstore.New().Stores()
	stores.Quotas = &racingQuotaStore{QuotaStore: stores.Quotas}
	f := newFixtureWith(stores)
	f.addLicense(t, "RACE-1", nextYear)

	result := mustVerify(t, f, "RACE-1")
	assert.False(t, result.Valid)
	assert.Equal(t, models.ReasonQuotaExceeded, result.Reason)
	assert.Equal(t, 1, result.DeviceCount)
}

type racingQuotaStore struct {
	services.QuotaStore
}

func (r *racingQuotaStore) TryIncrement(ctx context.Context, id string, now time.Time) (models.DeviceQuota, bool, error) {
	// another caller takes the slot first
	if _, _, err := r.QuotaStore.TryIncrement(ctx, id, now); err != nil {
		return models.DeviceQuota{}, false, err
	}
	return r.QuotaStore.TryIncrement(ctx, id, now)
}

func TestVerifyConcurrentActivationsNeverOverAdmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLicense(t, "HOT-5", nextYear)
	_, err := f.stores.Quotas.SetLimit(ctx, "HOT-5", models.Limited(5), today)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.verifier.Verify(ctx, "HOT-5")
			assert.NoError(t, err)
			if result.Valid {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, admitted)
	quota, err := f.stores.Quotas.Get(ctx, "HOT-5")
	require.NoError(t, err)
	assert.Equal(t, 5, quota.Count)
}

type failingLicenseStore struct {
	services.LicenseStore
}

func (failingLicenseStore) FindByKey(context.Context, string) (models.License, error) {
	return models.License{}, errors.New("connection reset")
}

func TestVerifyStorageFailureIsAnError(t *testing.T) {
	stores := memstore.New().Stores()
	verifier := services.NewVerificationService(failingLicenseStore{stores.Licenses}, stores.Quotas, fixedClock)

	_, err := verifier.Verify(context.Background(), "ABC-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrLicenseNotFound)
}

func TestInspectDoesNotCreateOrIncrement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addLicense(t, "INS-1", nextYear)

	result, err := f.verifier.Inspect(ctx, "INS-1")
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 0, result.DeviceCount)
	assert.Equal(t, 1, result.DeviceLimit.Raw())

	_, err = f.stores.Quotas.Get(ctx, "INS-1")
	assert.ErrorIs(t, err, services.ErrQuotaNotFound)

	f.addLicense(t, "INS-OLD", yesterday)
	result, err = f.verifier.Inspect(ctx, "INS-OLD")
	require.NoError(t, err)
	assert.Equal(t, models.ReasonExpired, result.Reason)
}

func mustVerify(t *testing.T, f *fixture, key string) models.VerificationResult {
	t.Helper()
	result, err := f.verifier.Verify(context.Background(), key)
	require.NoError(t, err)
	return result
}
