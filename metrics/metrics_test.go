package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licensepanel/memstore"
	"licensepanel/models"
)

func TestObserveVerification(t *testing.T) {
	m := New()

	m.ObserveVerification("verify", models.VerificationResult{Valid: true, Reason: models.ReasonAdmitted})
	m.ObserveVerification("verify", models.VerificationResult{Reason: models.ReasonExpired})
	m.ObserveVerification("verify", models.VerificationResult{Reason: models.ReasonExpired})
	m.ObserveVerificationError("activate")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.verifications.WithLabelValues("verify", "admitted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.verifications.WithLabelValues("verify", "expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.verifications.WithLabelValues("activate", "error")))
}

func TestInstrumentQuotaStore(t *testing.T) {
	m := New()
	store := m.InstrumentQuotaStore("memory", memstore.New().Stores().Quotas)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	_, err := store.Get(ctx, "missing")
	require.Error(t, err)

	_, err = store.GetOrCreate(ctx, "ABC-1", now)
	require.NoError(t, err)
	quota, admitted, err := store.TryIncrement(ctx, "ABC-1", now)
	require.NoError(t, err)
	assert.True(t, admitted)
	assert.Equal(t, 1, quota.Count)

	assert.Equal(t, 3, testutil.CollectAndCount(m.quotaLatency))
	assert.Equal(t, 0, testutil.CollectAndCount(m.quotaErrors), "not found is not a failure")
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/license/verify", "POST", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `licensepanel_http_requests_total{method="POST",route="/api/license/verify",status="200"} 1`)
}
