package scheduler

import (
	"context"
	"time"

	"licensepanel/logger"
	"licensepanel/models"
)

// Auditor reports quota counters that disagree with their registrations.
type Auditor interface {
	AuditQuotas(ctx context.Context) ([]models.QuotaDrift, error)
}

// StartQuotaAudit runs the audit once immediately and then every interval
// until ctx is done. It only reports; repair is the reconcile operation.
// An interval of 0 disables the job.
func StartQuotaAudit(ctx context.Context, auditor Auditor, interval time.Duration) {
	if interval <= 0 {
		logger.Info("Quota audit disabled")
		return
	}
	logger.Info("Quota audit scheduler started (every %s)", interval)

	// 서버 시작 시 즉시 한 번 실행
	RunQuotaAudit(ctx, auditor)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info("Quota audit scheduler stopped")
				return
			case <-ticker.C:
				logger.Debug("Scheduler tick: running quota audit")
				RunQuotaAudit(ctx, auditor)
			}
		}
	}()
}

// RunQuotaAudit performs one audit pass and logs every drift as a warning.
// It returns the number of drifting counters, or -1 when the audit failed.
func RunQuotaAudit(ctx context.Context, auditor Auditor) int {
	drifts, err := auditor.AuditQuotas(ctx)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Error("Quota audit failed")
		return -1
	}

	for _, d := range drifts {
		logger.WithFields(map[string]interface{}{
			"license_id":    d.LicenseID,
			"count":         d.Count,
			"registrations": d.Registrations,
		}).Warn("Device count does not match registrations; run reconcile to repair")
	}

	logger.WithFields(map[string]interface{}{
		"drifts": len(drifts),
	}).Info("Quota audit finished")
	return len(drifts)
}
