package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ProposalExpiryJobName is the name of the proposal expiry job
const ProposalExpiryJobName = "proposal_expiry"

// ProposalExpiryService expires proposals whose validity window has passed.
// The interface lets the job call the service without importing the service
// package directly.
type ProposalExpiryService interface {
	ExpireStale(ctx context.Context) (int, error)
}

// InvoiceOverdueService flags sent invoices past their due date
type InvoiceOverdueService interface {
	MarkOverdue(ctx context.Context) (int, error)
}

// ProposalExpiryJob expires stale proposals and flags overdue invoices.
// Both checks are date-driven and share the same cadence.
type ProposalExpiryJob struct {
	proposals ProposalExpiryService
	invoices  InvoiceOverdueService
	logger    *zap.Logger
	timeout   time.Duration
}

// NewProposalExpiryJob creates a new expiry job.
// The timeout controls how long one run is allowed to take.
func NewProposalExpiryJob(proposals ProposalExpiryService, invoices InvoiceOverdueService, logger *zap.Logger, timeout time.Duration) *ProposalExpiryJob {
	return &ProposalExpiryJob{
		proposals: proposals,
		invoices:  invoices,
		logger:    logger,
		timeout:   timeout,
	}
}

// Run executes the expiry job.
// This is called by the scheduler according to the cron expression.
func (j *ProposalExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	expired, err := j.proposals.ExpireStale(ctx)
	if err != nil {
		j.logger.Error("proposal expiry failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		// Still check invoices; the two sweeps are independent
	}

	var overdue int
	if j.invoices != nil {
		overdue, err = j.invoices.MarkOverdue(ctx)
		if err != nil {
			j.logger.Error("invoice overdue sweep failed",
				zap.Error(err),
				zap.Duration("duration", time.Since(start)))
		}
	}

	j.logger.Info("expiry job completed",
		zap.Int("proposals_expired", expired),
		zap.Int("invoices_overdue", overdue),
		zap.Duration("duration", time.Since(start)))
}

// RegisterProposalExpiryJob registers the expiry job with the scheduler.
// invoices can be nil if overdue flagging is not needed.
func RegisterProposalExpiryJob(scheduler *Scheduler, proposals ProposalExpiryService, invoices InvoiceOverdueService, logger *zap.Logger, cronExpr string, timeout time.Duration) error {
	job := NewProposalExpiryJob(proposals, invoices, logger, timeout)
	return scheduler.AddJob(ProposalExpiryJobName, cronExpr, job.Run)
}
