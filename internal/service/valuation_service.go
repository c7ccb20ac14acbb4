package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/pricing"
	"github.com/salesbridge/crm-api/internal/repository"
	"go.uber.org/zap"
)

// ValuationService derives a deal's value fields from its proposals.
//
// Every proposal mutation (create, update, delete, status change) triggers a
// full recalculation: all proposals referencing the deal are re-read, their
// item totals summed into subscription and one-time buckets, and the three
// value columns written back. There is no delta bookkeeping; the proposal
// rows are the single source of truth and recalculation is idempotent.
type ValuationService struct {
	dealRepo     *repository.DealRepository
	proposalRepo *repository.ProposalRepository
	logger       *zap.Logger

	// mu guards locks; locks serializes recalculations per deal so that two
	// concurrent proposal edits cannot interleave read and write and lose an
	// update.
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewValuationService(
	dealRepo *repository.DealRepository,
	proposalRepo *repository.ProposalRepository,
	logger *zap.Logger,
) *ValuationService {
	return &ValuationService{
		dealRepo:     dealRepo,
		proposalRepo: proposalRepo,
		logger:       logger,
		locks:        make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *ValuationService) dealLock(dealID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[dealID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[dealID] = lock
	}
	return lock
}

// RecalculateDeal re-reads every proposal attached to the deal, any status
// included (drafts and rejected proposals still count), and writes the
// aggregated values onto the deal row.
//
// If the proposal read fails, the deal is left untouched and the error is
// returned; a transient read failure must never zero out the stored values.
func (s *ValuationService) RecalculateDeal(ctx context.Context, dealID uuid.UUID) error {
	lock := s.dealLock(dealID)
	lock.Lock()
	defer lock.Unlock()

	proposals, err := s.proposalRepo.ListByDeal(ctx, dealID)
	if err != nil {
		return fmt.Errorf("failed to load proposals for deal %s: %w", dealID, err)
	}

	var subscriptionValue, oneTimeValue float64
	for _, proposal := range proposals {
		sub, one := pricing.SplitByBillingType(proposal.Items)
		subscriptionValue += sub
		oneTimeValue += one
	}
	subscriptionValue = pricing.Round2(subscriptionValue)
	oneTimeValue = pricing.Round2(oneTimeValue)
	value := pricing.Round2(subscriptionValue + oneTimeValue)

	if err := s.dealRepo.UpdateValuation(ctx, dealID, value, subscriptionValue, oneTimeValue); err != nil {
		return fmt.Errorf("failed to update deal valuation: %w", err)
	}

	s.logger.Debug("Deal valuation recalculated",
		zap.String("deal_id", dealID.String()),
		zap.Int("proposal_count", len(proposals)),
		zap.Float64("value", value),
		zap.Float64("subscription_value", subscriptionValue),
		zap.Float64("one_time_value", oneTimeValue),
	)

	return nil
}

// RecalculateIfAttached recalculates the deal when the proposal references
// one; proposals without a deal are a no-op.
func (s *ValuationService) RecalculateIfAttached(ctx context.Context, proposal *domain.Proposal) error {
	if proposal == nil || proposal.DealID == nil {
		return nil
	}
	return s.RecalculateDeal(ctx, *proposal.DealID)
}
