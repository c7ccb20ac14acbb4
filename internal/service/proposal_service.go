package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/auth"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/pricing"
	"github.com/salesbridge/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// proposalTransitions lists the allowed status transitions. Accepted,
// rejected and expired are terminal.
var proposalTransitions = map[domain.ProposalStatus][]domain.ProposalStatus{
	domain.ProposalStatusDraft:  {domain.ProposalStatusSent},
	domain.ProposalStatusSent:   {domain.ProposalStatusViewed, domain.ProposalStatusAccepted, domain.ProposalStatusRejected, domain.ProposalStatusExpired},
	domain.ProposalStatusViewed: {domain.ProposalStatusAccepted, domain.ProposalStatusRejected, domain.ProposalStatusExpired},
}

func canTransition(from, to domain.ProposalStatus) bool {
	for _, allowed := range proposalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ProposalService manages quote documents. Derived totals are recomputed on
// every items or percentages edit, and every mutation (create, update,
// delete, status change) triggers a revaluation of the attached deal.
type ProposalService struct {
	proposalRepo     *repository.ProposalRepository
	customerRepo     *repository.CustomerRepository
	dealRepo         *repository.DealRepository
	activityRepo     *repository.ActivityRepository
	notificationRepo *repository.NotificationRepository
	valuation        *ValuationService
	sequences        *NumberSequenceService
	invoices         *InvoiceService
	logger           *zap.Logger
}

func NewProposalService(
	proposalRepo *repository.ProposalRepository,
	customerRepo *repository.CustomerRepository,
	dealRepo *repository.DealRepository,
	activityRepo *repository.ActivityRepository,
	notificationRepo *repository.NotificationRepository,
	valuation *ValuationService,
	sequences *NumberSequenceService,
	invoices *InvoiceService,
	logger *zap.Logger,
) *ProposalService {
	return &ProposalService{
		proposalRepo:     proposalRepo,
		customerRepo:     customerRepo,
		dealRepo:         dealRepo,
		activityRepo:     activityRepo,
		notificationRepo: notificationRepo,
		valuation:        valuation,
		sequences:        sequences,
		invoices:         invoices,
		logger:           logger,
	}
}

func (s *ProposalService) Create(ctx context.Context, req *domain.CreateProposalRequest) (*domain.Proposal, error) {
	customer, err := s.customerRepo.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, req.CustomerID)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if req.DealID != nil {
		deal, err := s.dealRepo.GetByID(ctx, *req.DealID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: deal %s", ErrNotFound, *req.DealID)
			}
			return nil, fmt.Errorf("failed to get deal: %w", err)
		}
		if deal.CustomerID != customer.ID {
			return nil, fmt.Errorf("%w: deal belongs to a different customer", ErrInvalidInput)
		}
	}

	number, err := s.sequences.NextProposalNumber(ctx)
	if err != nil {
		return nil, err
	}

	proposal := &domain.Proposal{
		Number:             number,
		Title:              req.Title,
		DealID:             req.DealID,
		CustomerID:         customer.ID,
		CustomerName:       customer.Name,
		Status:             domain.ProposalStatusDraft,
		Items:              buildItems(req.Items),
		DiscountPercentage: req.DiscountPercentage,
		TaxPercentage:      req.TaxPercentage,
		ValidUntil:         req.ValidUntil,
		Notes:              req.Notes,
	}
	if req.Currency != "" {
		proposal.Currency = req.Currency
	}
	if user, ok := auth.FromContext(ctx); ok {
		proposal.OwnerID = user.UserID
		proposal.OwnerName = user.DisplayName
	}

	pricing.ComputeProposalTotals(proposal)

	if err := s.proposalRepo.Create(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	if err := s.valuation.RecalculateIfAttached(ctx, proposal); err != nil {
		return nil, err
	}

	s.logActivity(ctx, proposal, "Proposal created", proposal.Title)

	s.logger.Info("Proposal created",
		zap.String("proposal_id", proposal.ID.String()),
		zap.String("number", proposal.Number),
		zap.Float64("total", proposal.Total),
	)

	return proposal, nil
}

func (s *ProposalService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return proposal, nil
}

// Update replaces the proposal's editable fields and items, recomputes the
// totals and revaluates the attached deal. When the proposal is moved
// between deals, both the old and the new deal are revaluated.
func (s *ProposalService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateProposalRequest) (*domain.Proposal, error) {
	proposal, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if proposal.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: proposal is %s", ErrInvalidStatusTransition, proposal.Status)
	}

	previousDealID := proposal.DealID

	if req.DealID != nil {
		deal, err := s.dealRepo.GetByID(ctx, *req.DealID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: deal %s", ErrNotFound, *req.DealID)
			}
			return nil, fmt.Errorf("failed to get deal: %w", err)
		}
		if deal.CustomerID != proposal.CustomerID {
			return nil, fmt.Errorf("%w: deal belongs to a different customer", ErrInvalidInput)
		}
	}

	proposal.Title = req.Title
	proposal.DealID = req.DealID
	proposal.Items = buildItems(req.Items)
	proposal.DiscountPercentage = req.DiscountPercentage
	proposal.TaxPercentage = req.TaxPercentage
	proposal.ValidUntil = req.ValidUntil
	proposal.Notes = req.Notes
	if req.Currency != "" {
		proposal.Currency = req.Currency
	}

	pricing.ComputeProposalTotals(proposal)

	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to update proposal: %w", err)
	}

	if err := s.valuation.RecalculateIfAttached(ctx, proposal); err != nil {
		return nil, err
	}
	if previousDealID != nil && (proposal.DealID == nil || *previousDealID != *proposal.DealID) {
		if err := s.valuation.RecalculateDeal(ctx, *previousDealID); err != nil {
			return nil, err
		}
	}

	return proposal, nil
}

func (s *ProposalService) Delete(ctx context.Context, id uuid.UUID) error {
	proposal, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.proposalRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete proposal: %w", err)
	}

	if proposal.DealID != nil {
		if err := s.valuation.RecalculateDeal(ctx, *proposal.DealID); err != nil {
			return err
		}
	}

	s.logger.Info("Proposal deleted", zap.String("proposal_id", id.String()))
	return nil
}

func (s *ProposalService) List(ctx context.Context, page, pageSize int, search string, customerID, dealID *uuid.UUID, status domain.ProposalStatus) ([]domain.Proposal, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	if status != "" && !status.IsValid() {
		return nil, 0, fmt.Errorf("%w: invalid proposal status %q", ErrInvalidInput, status)
	}
	return s.proposalRepo.List(ctx, page, pageSize, search, customerID, dealID, status)
}

// Send transitions a draft proposal to sent
func (s *ProposalService) Send(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	return s.transition(ctx, id, domain.ProposalStatusSent, "Proposal sent", "")
}

// MarkViewed records that the customer opened the proposal
func (s *ProposalService) MarkViewed(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	return s.transition(ctx, id, domain.ProposalStatusViewed, "Proposal viewed", "")
}

// Accept transitions the proposal to accepted and generates the invoice
func (s *ProposalService) Accept(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	proposal, err := s.transition(ctx, id, domain.ProposalStatusAccepted, "Proposal accepted", "")
	if err != nil {
		return nil, err
	}

	// Invoice generation is a follow-on effect; the acceptance stands even
	// when it fails, and the invoice can be generated again explicitly.
	if _, err := s.invoices.GenerateFromProposal(ctx, proposal.ID, nil); err != nil {
		s.logger.Warn("Failed to generate invoice for accepted proposal",
			zap.String("proposal_id", proposal.ID.String()),
			zap.Error(err),
		)
	}

	if proposal.OwnerID != "" {
		s.notify(ctx, proposal.OwnerID, "proposal_accepted", "Proposal accepted",
			fmt.Sprintf("%s (%s) was accepted", proposal.Title, proposal.Number), proposal.ID)
	}

	return proposal, nil
}

// Reject transitions the proposal to rejected
func (s *ProposalService) Reject(ctx context.Context, id uuid.UUID, reason string) (*domain.Proposal, error) {
	proposal, err := s.transition(ctx, id, domain.ProposalStatusRejected, "Proposal rejected", reason)
	if err != nil {
		return nil, err
	}

	if proposal.OwnerID != "" {
		s.notify(ctx, proposal.OwnerID, "proposal_rejected", "Proposal rejected",
			fmt.Sprintf("%s (%s) was rejected", proposal.Title, proposal.Number), proposal.ID)
	}

	return proposal, nil
}

// Expire transitions a sent or viewed proposal past its validity window to
// expired. Called by the expiry job.
func (s *ProposalService) Expire(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	return s.transition(ctx, id, domain.ProposalStatusExpired, "Proposal expired", "")
}

// ExpireStale expires every sent or viewed proposal whose validity window
// has passed. Returns the number of proposals expired. Called by the
// scheduler; each expiry revaluates the attached deal like any transition.
func (s *ProposalService) ExpireStale(ctx context.Context) (int, error) {
	stale, err := s.proposalRepo.ListExpirable(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to list expirable proposals: %w", err)
	}

	expired := 0
	for _, proposal := range stale {
		if _, err := s.Expire(ctx, proposal.ID); err != nil {
			s.logger.Warn("Failed to expire proposal",
				zap.String("proposal_id", proposal.ID.String()),
				zap.Error(err),
			)
			continue
		}
		expired++
	}

	return expired, nil
}

func (s *ProposalService) transition(ctx context.Context, id uuid.UUID, to domain.ProposalStatus, activityTitle, activityBody string) (*domain.Proposal, error) {
	proposal, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canTransition(proposal.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, proposal.Status, to)
	}

	now := time.Now().UTC()
	if err := s.proposalRepo.UpdateStatus(ctx, id, to, now); err != nil {
		return nil, fmt.Errorf("failed to update proposal status: %w", err)
	}

	proposal.Status = to
	switch to {
	case domain.ProposalStatusSent:
		proposal.SentAt = &now
	case domain.ProposalStatusAccepted, domain.ProposalStatusRejected:
		proposal.DecidedAt = &now
	}

	// Status transitions revaluate the deal like any other mutation
	if err := s.valuation.RecalculateIfAttached(ctx, proposal); err != nil {
		return nil, err
	}

	s.logActivity(ctx, proposal, activityTitle, activityBody)

	s.logger.Info("Proposal status changed",
		zap.String("proposal_id", proposal.ID.String()),
		zap.String("status", string(to)),
	)

	return proposal, nil
}

func buildItems(reqs []domain.CreateProposalItemRequest) []domain.ProposalItem {
	items := make([]domain.ProposalItem, len(reqs))
	for i, req := range reqs {
		order := req.DisplayOrder
		if order == 0 {
			order = i
		}
		items[i] = domain.ProposalItem{
			Description:    req.Description,
			Quantity:       req.Quantity,
			UnitPrice:      req.UnitPrice,
			IsSubscription: req.IsSubscription,
			DisplayOrder:   order,
		}
	}
	return items
}

func (s *ProposalService) logActivity(ctx context.Context, proposal *domain.Proposal, title, body string) {
	activity := &domain.Activity{
		TargetType:   domain.ActivityTargetProposal,
		TargetID:     proposal.ID,
		Title:        title,
		Body:         body,
		ActivityType: domain.ActivityTypeSystem,
	}
	if user, ok := auth.FromContext(ctx); ok {
		activity.CreatorID = user.UserID
		activity.CreatorName = user.DisplayName
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("Failed to log proposal activity", zap.Error(err))
	}
}

func (s *ProposalService) notify(ctx context.Context, userID, notifType, title, message string, entityID uuid.UUID) {
	notification := &domain.Notification{
		UserID:     userID,
		Type:       notifType,
		Title:      title,
		Message:    message,
		EntityID:   &entityID,
		EntityType: string(domain.ActivityTargetProposal),
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("Failed to create notification", zap.Error(err))
	}
}
