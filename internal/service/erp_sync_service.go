package service

import (
	"context"
	"fmt"

	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/erp"
	"github.com/salesbridge/crm-api/internal/repository"
	"go.uber.org/zap"
)

// ErpSyncService reconciles invoice payment status against the accounting
// ERP mirror. The ERP is the source of truth for settlements: an invoice the
// ERP reports as settled is marked paid here, with the ERP reference stored.
// The sync is read-only towards the ERP and idempotent on the CRM side.
type ErpSyncService struct {
	client      *erp.Client
	invoiceRepo *repository.InvoiceRepository
	logger      *zap.Logger
}

func NewErpSyncService(client *erp.Client, invoiceRepo *repository.InvoiceRepository, logger *zap.Logger) *ErpSyncService {
	return &ErpSyncService{
		client:      client,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// IsEnabled reports whether the ERP connection is configured
func (s *ErpSyncService) IsEnabled() bool {
	return s.client.IsEnabled()
}

// SyncPayments checks every unreconciled invoice (sent or overdue) against
// the ERP and marks the settled ones paid. Returns the number of invoices
// reconciled.
func (s *ErpSyncService) SyncPayments(ctx context.Context) (int, error) {
	if !s.client.IsEnabled() {
		return 0, ErrErpDisabled
	}

	invoices, err := s.invoiceRepo.ListUnreconciled(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list unreconciled invoices: %w", err)
	}
	if len(invoices) == 0 {
		return 0, nil
	}

	numbers := make([]string, len(invoices))
	for i, invoice := range invoices {
		numbers[i] = invoice.Number
	}

	settled, err := s.client.FetchSettledPayments(ctx, numbers)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch settlements from erp: %w", err)
	}

	reconciled := 0
	for i := range invoices {
		invoice := &invoices[i]
		record, ok := settled[invoice.Number]
		if !ok {
			continue
		}

		paidAt := record.PaidAt
		invoice.Status = domain.InvoiceStatusPaid
		invoice.PaidAt = &paidAt
		invoice.ERPReference = record.Reference

		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			s.logger.Warn("Failed to reconcile invoice",
				zap.String("invoice_number", invoice.Number),
				zap.Error(err),
			)
			continue
		}

		reconciled++
		s.logger.Info("Invoice reconciled from ERP",
			zap.String("invoice_number", invoice.Number),
			zap.String("erp_reference", record.Reference),
		)
	}

	return reconciled, nil
}
