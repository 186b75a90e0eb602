package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"licensepanel/logger"
	"licensepanel/models"
)

type stubAuditor struct {
	drifts []models.QuotaDrift
	err    error
	calls  chan struct{}
}

func (s *stubAuditor) AuditQuotas(context.Context) ([]models.QuotaDrift, error) {
	if s.calls != nil {
		s.calls <- struct{}{}
	}
	return s.drifts, s.err
}

func TestRunQuotaAuditLogsDrift(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	defer logger.UseCore(core)()

	n := RunQuotaAudit(context.Background(), &stubAuditor{drifts: []models.QuotaDrift{
		{LicenseID: "ABC-1", Count: 0, Registrations: 2},
	}})
	assert.Equal(t, 1, n)

	warnings := logs.FilterLevelExact(zap.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "ABC-1", warnings[0].ContextMap()["license_id"])
}

func TestRunQuotaAuditFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	defer logger.UseCore(core)()

	n := RunQuotaAudit(context.Background(), &stubAuditor{err: errors.New("store down")})
	assert.Equal(t, -1, n)
	assert.Equal(t, 1, logs.FilterLevelExact(zap.ErrorLevel).Len())
}

func TestStartQuotaAuditRunsImmediatelyAndOnTick(t *testing.T) {
	core, _ := observer.New(zap.DebugLevel)
	defer logger.UseCore(core)()

	auditor := &stubAuditor{calls: make(chan struct{}, 8)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartQuotaAudit(ctx, auditor, 10*time.Millisecond)

	for i := 0; i < 2; i++ {
		select {
		case <-auditor.calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("audit run %d did not happen", i+1)
		}
	}
}

func TestStartQuotaAuditDisabled(t *testing.T) {
	core, _ := observer.New(zap.DebugLevel)
	defer logger.UseCore(core)()

	auditor := &stubAuditor{calls: make(chan struct{}, 1)}
	StartQuotaAudit(context.Background(), auditor, 0)
	assert.Len(t, auditor.calls, 0)
}
