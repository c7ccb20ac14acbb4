package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultPaymentTermDays is the due window applied when no due date is given
const defaultPaymentTermDays = 14

// InvoiceService generates invoices from accepted proposals and tracks
// payment status. Amounts are copied from the proposal at generation time
// and never recomputed afterwards.
type InvoiceService struct {
	invoiceRepo  *repository.InvoiceRepository
	proposalRepo *repository.ProposalRepository
	activityRepo *repository.ActivityRepository
	sequences    *NumberSequenceService
	logger       *zap.Logger
}

func NewInvoiceService(
	invoiceRepo *repository.InvoiceRepository,
	proposalRepo *repository.ProposalRepository,
	activityRepo *repository.ActivityRepository,
	sequences *NumberSequenceService,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		proposalRepo: proposalRepo,
		activityRepo: activityRepo,
		sequences:    sequences,
		logger:       logger,
	}
}

// GenerateFromProposal creates an invoice from an accepted proposal. One
// invoice per proposal; a second call returns ErrInvoiceAlreadyExists.
func (s *InvoiceService) GenerateFromProposal(ctx context.Context, proposalID uuid.UUID, dueDate *time.Time) (*domain.Invoice, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}

	if proposal.Status != domain.ProposalStatusAccepted {
		return nil, ErrProposalNotAccepted
	}

	if _, err := s.invoiceRepo.GetByProposalID(ctx, proposalID); err == nil {
		return nil, ErrInvoiceAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing invoice: %w", err)
	}

	number, err := s.sequences.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	due := dueDate
	if due == nil {
		d := now.AddDate(0, 0, defaultPaymentTermDays)
		due = &d
	}

	invoice := &domain.Invoice{
		Number:         number,
		ProposalID:     proposal.ID,
		CustomerID:     proposal.CustomerID,
		CustomerName:   proposal.CustomerName,
		Status:         domain.InvoiceStatusSent,
		Subtotal:       proposal.Subtotal,
		DiscountAmount: proposal.DiscountAmount,
		TaxAmount:      proposal.TaxAmount,
		Total:          proposal.Total,
		Currency:       proposal.Currency,
		IssuedAt:       now,
		DueDate:        due,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logActivity(ctx, invoice, "Invoice generated",
		fmt.Sprintf("Generated from proposal %s", proposal.Number))

	s.logger.Info("Invoice generated",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number),
		zap.String("proposal_number", proposal.Number),
		zap.Float64("total", invoice.Total),
	)

	return invoice, nil
}

func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

func (s *InvoiceService) List(ctx context.Context, page, pageSize int, search string, customerID *uuid.UUID, status domain.InvoiceStatus) ([]domain.Invoice, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	if status != "" && !status.IsValid() {
		return nil, 0, fmt.Errorf("%w: invalid invoice status %q", ErrInvalidInput, status)
	}
	return s.invoiceRepo.List(ctx, page, pageSize, search, customerID, status)
}

// MarkPaid records payment of a sent or overdue invoice
func (s *InvoiceService) MarkPaid(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if invoice.Status != domain.InvoiceStatusSent && invoice.Status != domain.InvoiceStatusOverdue {
		return nil, ErrInvoiceNotPayable
	}

	now := time.Now().UTC()
	invoice.Status = domain.InvoiceStatusPaid
	invoice.PaidAt = &now

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	s.logActivity(ctx, invoice, "Invoice paid", "")

	s.logger.Info("Invoice marked paid",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number),
	)

	return invoice, nil
}

// MarkOverdue flags sent invoices past their due date. Returns the number of
// invoices flagged. Called by the scheduler.
func (s *InvoiceService) MarkOverdue(ctx context.Context) (int, error) {
	candidates, err := s.invoiceRepo.ListOverdueCandidates(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue candidates: %w", err)
	}

	flagged := 0
	for i := range candidates {
		invoice := &candidates[i]
		invoice.Status = domain.InvoiceStatusOverdue
		if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
			s.logger.Warn("Failed to flag overdue invoice",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(err),
			)
			continue
		}
		flagged++
	}

	return flagged, nil
}

func (s *InvoiceService) logActivity(ctx context.Context, invoice *domain.Invoice, title, body string) {
	activity := &domain.Activity{
		TargetType:   domain.ActivityTargetInvoice,
		TargetID:     invoice.ID,
		Title:        title,
		Body:         body,
		ActivityType: domain.ActivityTypeSystem,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("Failed to log invoice activity", zap.Error(err))
	}
}
