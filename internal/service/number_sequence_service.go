package service

import (
	"context"
	"fmt"
	"time"

	"github.com/salesbridge/crm-api/internal/repository"
)

// Entity types with their own yearly number sequences
const (
	SequenceEntityProposal = "proposal"
	SequenceEntityInvoice  = "invoice"
)

// NumberSequenceService generates document numbers like P-2026-0001 and
// INV-2026-0001. Sequences restart each year per entity type.
type NumberSequenceService struct {
	sequenceRepo *repository.NumberSequenceRepository
}

func NewNumberSequenceService(sequenceRepo *repository.NumberSequenceRepository) *NumberSequenceService {
	return &NumberSequenceService{sequenceRepo: sequenceRepo}
}

// NextProposalNumber returns the next proposal number for the current year
func (s *NumberSequenceService) NextProposalNumber(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()
	n, err := s.sequenceRepo.GetNextNumber(ctx, SequenceEntityProposal, year)
	if err != nil {
		return "", fmt.Errorf("failed to get next proposal number: %w", err)
	}
	return fmt.Sprintf("P-%d-%04d", year, n), nil
}

// NextInvoiceNumber returns the next invoice number for the current year
func (s *NumberSequenceService) NextInvoiceNumber(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()
	n, err := s.sequenceRepo.GetNextNumber(ctx, SequenceEntityInvoice, year)
	if err != nil {
		return "", fmt.Errorf("failed to get next invoice number: %w", err)
	}
	return fmt.Sprintf("INV-%d-%04d", year, n), nil
}
