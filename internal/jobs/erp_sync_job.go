package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ErpSyncJobName is the name of the ERP payment sync job
const ErpSyncJobName = "erp_payment_sync"

// PaymentSyncService reconciles unpaid invoices against the ERP mirror
type PaymentSyncService interface {
	SyncPayments(ctx context.Context) (int, error)
}

// ErpSyncJob periodically marks invoices as paid based on settled
// payments found in the ERP mirror.
type ErpSyncJob struct {
	sync    PaymentSyncService
	logger  *zap.Logger
	timeout time.Duration
}

// NewErpSyncJob creates a new ERP sync job
func NewErpSyncJob(sync PaymentSyncService, logger *zap.Logger, timeout time.Duration) *ErpSyncJob {
	return &ErpSyncJob{
		sync:    sync,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one reconciliation pass
func (j *ErpSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	paid, err := j.sync.SyncPayments(ctx)
	if err != nil {
		j.logger.Error("ERP payment sync failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("ERP payment sync completed",
		zap.Int("invoices_paid", paid),
		zap.Duration("duration", time.Since(start)))
}

// RegisterErpSyncJob registers the ERP payment sync job with the scheduler
func RegisterErpSyncJob(scheduler *Scheduler, sync PaymentSyncService, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewErpSyncJob(sync, logger, timeout)
	return scheduler.AddJob(ErpSyncJobName, cronExpr, job.Run)
}
