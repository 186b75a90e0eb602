package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensepanel/database"
	"licensepanel/memstore"
	"licensepanel/models"
	"licensepanel/services"
)

func TestCreateLicenseValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []models.CreateLicenseRequest{
		{LicenseID: "", ExpiryDate: nextYear},
		{LicenseID: "   ", ExpiryDate: nextYear},
		{LicenseID: "ABC-1", ExpiryDate: ""},
		{LicenseID: "ABC-1", ExpiryDate: "next tuesday"},
		{LicenseID: "ABC-1", ExpiryDate: "2026-13-40"},
	}
	for _, req := range cases {
		_, err := f.licenses.Create(ctx, req, "admin")
		assert.ErrorIs(t, err, services.ErrValidation, "%+v", req)
	}

	created, err := f.licenses.Create(ctx, models.CreateLicenseRequest{LicenseID: " ABC-1 ", ExpiryDate: nextYear, Notes: "pilot"}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "ABC-1", created.LicenseID)
	assert.Equal(t, models.LicenseStatusActive, created.Status)
	assert.NotEmpty(t, created.ID)

	_, err = f.licenses.Create(ctx, models.CreateLicenseRequest{LicenseID: "ABC-1", ExpiryDate: nextYear}, "admin")
	assert.ErrorIs(t, err, services.ErrLicenseConflict)

	logs, err := f.licenses.ActivityLogs(ctx, "ABC-1", 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActivityActionCreate, logs[0].Action)
	assert.Equal(t, "License created with expiry date: "+nextYear, logs[0].Details)
	assert.Equal(t, "admin", logs[0].User)
}

func TestCreateLicenseDerivesStatus(t *testing.T) {
	f := newFixture(t)

	created, err := f.licenses.Create(context.Background(), models.CreateLicenseRequest{LicenseID: "OLD-1", ExpiryDate: yesterday}, "")
	require.NoError(t, err)
	assert.Equal(t, models.LicenseStatusExpired, created.Status)
}

func TestUpdateLicenseRecordsChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.licenses.Create(ctx, models.CreateLicenseRequest{LicenseID: "UPD-1", ExpiryDate: yesterday}, "admin")
	require.NoError(t, err)

	updated, err := f.licenses.Update(ctx, created.ID, models.UpdateLicenseRequest{LicenseID: "UPD-1", ExpiryDate: nextYear}, "admin")
	require.NoError(t, err)
	assert.Equal(t, nextYear, updated.ExpiryDate)
	assert.Equal(t, models.LicenseStatusActive, updated.Status)

	logs, err := f.licenses.ActivityLogs(ctx, "UPD-1", 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActivityActionUpdate, logs[0].Action)
	assert.Equal(t, "License updated: Expiry date changed from "+yesterday+" to "+nextYear, logs[0].Details)
}

func TestUpdateLicenseRename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.licenses.Create(ctx, models.CreateLicenseRequest{LicenseID: "REN-1", ExpiryDate: nextYear}, "")
	require.NoError(t, err)
	_, err = f.licenses.Create(ctx, models.CreateLicenseRequest{LicenseID: "TAKEN", ExpiryDate: nextYear}, "")
	require.NoError(t, err)

	_, err = f.licenses.Update(ctx, first.ID, models.UpdateLicenseRequest{LicenseID: "TAKEN", ExpiryDate: nextYear}, "")
	assert.ErrorIs(t, err, services.ErrLicenseConflict)

	renamed, err := f.licenses.Update(ctx, first.ID, models.UpdateLicenseRequest{LicenseID: "REN-2", ExpiryDate: nextYear}, "")
	require.NoError(t, err)
	assert.Equal(t, "REN-2", renamed.LicenseID)

	logs, err := f.licenses.ActivityLogs(ctx, "REN-2", 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Details, "(renamed from REN-1)")

	_, err = f.licenses.Update(ctx, "missing", models.UpdateLicenseRequest{LicenseID: "X", ExpiryDate: nextYear}, "")
	assert.ErrorIs(t, err, services.ErrLicenseNotFound)
}

func TestDeleteLicense(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.licenses.Create(ctx, models.CreateLicenseRequest{LicenseID: "DEL-1", ExpiryDate: nextYear}, "")
	require.NoError(t, err)

	require.NoError(t, f.licenses.Delete(ctx, created.ID, "admin"))
	assert.ErrorIs(t, f.licenses.Delete(ctx, created.ID, "admin"), services.ErrLicenseNotFound)

	_, err = f.licenses.Get(ctx, created.ID)
	assert.ErrorIs(t, err, services.ErrLicenseNotFound)

	logs, err := f.licenses.ActivityLogs(ctx, "DEL-1", 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.ActivityActionDelete, logs[0].Action)
	assert.Equal(t, "License deleted with expiry date: "+nextYear, logs[0].Details)

	// the key no longer verifies
	assert.Equal(t, models.ReasonNotFound, mustVerify(t, f, "DEL-1").Reason)
}

func TestListLicensesPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{"E", "A", "C", "B", "D"} {
		f.addLicense(t, id, nextYear)
	}

	page, err := f.licenses.List(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, page.Licenses, 2)
	assert.Equal(t, "A", page.Licenses[0].LicenseID)
	assert.Equal(t, "B", page.Next)

	page, err = f.licenses.List(ctx, page.Next, 2)
	require.NoError(t, err)
	require.Len(t, page.Licenses, 2)
	assert.Equal(t, "C", page.Licenses[0].LicenseID)
	assert.Equal(t, "D", page.Next)

	page, err = f.licenses.List(ctx, page.Next, 2)
	require.NoError(t, err)
	require.Len(t, page.Licenses, 1)
	assert.Equal(t, "E", page.Licenses[0].LicenseID)
	assert.Empty(t, page.Next)

	page, err = f.licenses.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, page.Licenses, 5)
	assert.Empty(t, page.Next)
}

func TestSearchLicenses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addLicense(t, "ACME-1", nextYear)
	f.addLicense(t, "ACME-2", yesterday)
	f.addLicense(t, "acme-3", nextYear)
	f.addLicense(t, "OTHER", yesterday)

	byPrefix, err := f.licenses.Search(ctx, services.SearchFieldLicenseID, "ACME")
	require.NoError(t, err)
	require.Len(t, byPrefix, 2)
	assert.Equal(t, "ACME-1", byPrefix[0].LicenseID)
	assert.Equal(t, "ACME-2", byPrefix[1].LicenseID)

	expired, err := f.licenses.Search(ctx, services.SearchFieldStatus, "expired")
	require.NoError(t, err)
	require.Len(t, expired, 2)
	for _, l := range expired {
		assert.Equal(t, models.LicenseStatusExpired, l.Status)
	}

	active, err := f.licenses.Search(ctx, services.SearchFieldStatus, "Active")
	require.NoError(t, err)
	assert.Len(t, active, 2)

	_, err = f.licenses.Search(ctx, "notes", "x")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestStoredStatusIsIgnored(t *testing.T) {
	backends := map[string]func(t *testing.T) services.Stores{
		"memory": func(t *testing.T) services.Stores { return memstore.New().Stores() },
		"sqlite": func(t *testing.T) services.Stores {
			db, err := database.Initialize(context.Background(), database.DriverSQLite, ":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { _ = database.Close(db) })
			return services.NewSQLStores(services.NewSQLExecutor(db), services.DialectSQLite)
		},
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			f := newFixtureWith(open(t))
			ctx := context.Background()

			// 저장된 status 값은 읽을 때 항상 만료일로 다시 계산된다.
			stale, err := f.stores.Licenses.Create(ctx, models.License{
				LicenseID: "STALE-1", ExpiryDate: yesterday, Status: models.LicenseStatusActive,
			})
			require.NoError(t, err)
			_, err = f.stores.Licenses.Create(ctx, models.License{
				LicenseID: "STALE-2", ExpiryDate: nextYear, Status: models.LicenseStatusExpired,
			})
			require.NoError(t, err)

			got, err := f.licenses.Get(ctx, stale.ID)
			require.NoError(t, err)
			assert.Equal(t, models.LicenseStatusExpired, got.Status)

			want := map[string]string{
				"STALE-1": models.LicenseStatusExpired,
				"STALE-2": models.LicenseStatusActive,
			}
			statuses := func(rows []models.License) map[string]string {
				out := map[string]string{}
				for _, l := range rows {
					out[l.LicenseID] = l.Status
				}
				return out
			}

			page, err := f.licenses.List(ctx, "", 0)
			require.NoError(t, err)
			assert.Equal(t, want, statuses(page.Licenses))

			byPrefix, err := f.licenses.Search(ctx, services.SearchFieldLicenseID, "STALE")
			require.NoError(t, err)
			assert.Equal(t, want, statuses(byPrefix))

			expired, err := f.licenses.Search(ctx, services.SearchFieldStatus, models.LicenseStatusExpired)
			require.NoError(t, err)
			require.Len(t, expired, 1)
			assert.Equal(t, "STALE-1", expired[0].LicenseID)

			active, err := f.licenses.Search(ctx, services.SearchFieldStatus, models.LicenseStatusActive)
			require.NoError(t, err)
			require.Len(t, active, 1)
			assert.Equal(t, "STALE-2", active[0].LicenseID)

			exported, err := f.licenses.Export(ctx, "admin")
			require.NoError(t, err)
			assert.Equal(t, want, statuses(exported))

			result, err := f.verifier.Verify(ctx, "STALE-1")
			require.NoError(t, err)
			assert.Equal(t, models.ReasonExpired, result.Reason)
		})
	}
}

func TestExportImport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addLicense(t, "KEEP-1", nextYear)

	imported, err := f.licenses.Import(ctx, []models.License{
		{LicenseID: "KEEP-1", ExpiryDate: yesterday},
		{LicenseID: "NEW-1", ExpiryDate: nextYear, Notes: "migrated"},
		{LicenseID: "NEW-2", ExpiryDate: "2027-01-15T00:00:00Z"},
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	// existing records are left alone
	kept, err := f.stores.Licenses.FindByKey(ctx, "KEEP-1")
	require.NoError(t, err)
	assert.Equal(t, nextYear, kept.ExpiryDate)

	normalized, err := f.stores.Licenses.FindByKey(ctx, "NEW-2")
	require.NoError(t, err)
	assert.Equal(t, "2027-01-15", normalized.ExpiryDate)

	_, err = f.licenses.Import(ctx, []models.License{{LicenseID: "BAD", ExpiryDate: "soon"}}, "admin")
	assert.ErrorIs(t, err, services.ErrValidation)

	exported, err := f.licenses.Export(ctx, "admin")
	require.NoError(t, err)
	require.Len(t, exported, 3)
	for _, l := range exported {
		assert.NotEmpty(t, l.Status)
	}

	logs, err := f.licenses.ActivityLogs(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ActivityActionExport, logs[0].Action)
	assert.Equal(t, "Exported 3 licenses", logs[0].Details)

	importLogs, err := f.licenses.ActivityLogs(ctx, "NEW-1", 0)
	require.NoError(t, err)
	require.Len(t, importLogs, 1)
	assert.Equal(t, models.ActivityActionImport, importLogs[0].Action)
}

type failingActivityStore struct {
	services.ActivityStore
}

func (failingActivityStore) Append(context.Context, models.ActivityLogEntry) (models.ActivityLogEntry, error) {
	return models.ActivityLogEntry{}, errors.New("quota exceeded on audit table")
}

func TestActivityFailureDoesNotFailOperation(t *testing.T) {
	stores := memstore.New().Stores()
	licenses := services.NewLicenseService(stores.Licenses, failingActivityStore{stores.Activity}, fixedClock)

	created, err := licenses.Create(context.Background(), models.CreateLicenseRequest{LicenseID: "AUD-1", ExpiryDate: nextYear}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "AUD-1", created.LicenseID)

	_, err = stores.Licenses.FindByKey(context.Background(), "AUD-1")
	assert.NoError(t, err)
}
