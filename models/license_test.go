package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry string
		want   string
	}{
		{name: "yesterday", expiry: "2026-03-14", want: LicenseStatusExpired},
		{name: "today is still active", expiry: "2026-03-15", want: LicenseStatusActive},
		{name: "tomorrow", expiry: "2026-03-16", want: LicenseStatusActive},
		{name: "timestamp form truncated to date", expiry: "2026-03-15T00:00:00Z", want: LicenseStatusActive},
		{name: "garbage fails closed", expiry: "not-a-date", want: LicenseStatusExpired},
		{name: "empty fails closed", expiry: "", want: LicenseStatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateStatus(tt.expiry, now))
		})
	}
}

func TestCalculateStatusUsesLocationOfNow(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	// 2026-03-15 01:00 in Seoul is still 2026-03-14 in UTC.
	now := time.Date(2026, 3, 15, 1, 0, 0, 0, seoul)

	assert.Equal(t, LicenseStatusExpired, CalculateStatus("2026-03-14", now))
	assert.Equal(t, LicenseStatusActive, CalculateStatus("2026-03-14", now.UTC()))
}

func TestWithStatusIgnoresPersistedValue(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	l := License{LicenseID: "ABC-1", ExpiryDate: "2026-01-01", Status: LicenseStatusActive}

	assert.Equal(t, LicenseStatusExpired, l.WithStatus(now).Status)
	assert.Equal(t, LicenseStatusActive, l.Status, "receiver must not be modified")
}

func TestParseExpiryDate(t *testing.T) {
	got, err := ParseExpiryDate("2027-12-31", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseExpiryDate("31/12/2027", time.UTC)
	assert.Error(t, err)
}
