package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensepanel/memstore"
	"licensepanel/models"
	"licensepanel/services"
)

func TestProfileUpsert(t *testing.T) {
	ctx := context.Background()
	profiles := services.NewProfileService(memstore.New().Stores().Profiles, fixedClock)

	_, err := profiles.Get(ctx, "user-1")
	assert.ErrorIs(t, err, services.ErrProfileNotFound)

	_, err = profiles.Upsert(ctx, " ", models.UserProfile{Username: "kim"})
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = profiles.Upsert(ctx, "user-1", models.UserProfile{Role: "root"})
	assert.ErrorIs(t, err, services.ErrValidation)

	created, err := profiles.Upsert(ctx, "user-1", models.UserProfile{Username: "kim", Email: "kim@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, created.Role)
	assert.Equal(t, "2026-05-01T15:30:00Z", created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.LastLogin)

	updated, err := profiles.Upsert(ctx, "user-1", models.UserProfile{
		Username:    "kim",
		Role:        models.RoleViewer,
		Preferences: models.UserPreferences{DarkMode: true},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, updated.Role)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Empty(t, updated.Email)

	got, err := profiles.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	assert.True(t, got.Preferences.DarkMode)

	// an empty role keeps the stored one
	kept, err := profiles.Upsert(ctx, "user-1", models.UserProfile{Username: "kim"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, kept.Role)
}
