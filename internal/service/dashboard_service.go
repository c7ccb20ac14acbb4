package service

import (
	"context"
	"fmt"

	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/repository"
	"go.uber.org/zap"
)

// DashboardService aggregates pipeline metrics for the UI landing page
type DashboardService struct {
	customerRepo *repository.CustomerRepository
	dealRepo     *repository.DealRepository
	proposalRepo *repository.ProposalRepository
	invoiceRepo  *repository.InvoiceRepository
	logger       *zap.Logger
}

func NewDashboardService(
	customerRepo *repository.CustomerRepository,
	dealRepo *repository.DealRepository,
	proposalRepo *repository.ProposalRepository,
	invoiceRepo *repository.InvoiceRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		customerRepo: customerRepo,
		dealRepo:     dealRepo,
		proposalRepo: proposalRepo,
		invoiceRepo:  invoiceRepo,
		logger:       logger,
	}
}

func (s *DashboardService) Metrics(ctx context.Context) (*domain.DashboardMetricsDTO, error) {
	customerCount, err := s.customerRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	openDeals, openDealValue, err := s.dealRepo.OpenDealStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open deal stats: %w", err)
	}

	openProposals, openProposalValue, err := s.proposalRepo.OpenProposalStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open proposal stats: %w", err)
	}

	unpaid, err := s.invoiceRepo.UnpaidSum(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum unpaid invoices: %w", err)
	}

	breakdown, err := s.dealRepo.StageBreakdown(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stage breakdown: %w", err)
	}
	if breakdown == nil {
		breakdown = []domain.StageBreakdownItem{}
	}

	return &domain.DashboardMetricsDTO{
		CustomerCount:     customerCount,
		OpenDealCount:     openDeals,
		OpenDealValue:     openDealValue,
		OpenProposalCount: openProposals,
		OpenProposalValue: openProposalValue,
		UnpaidInvoiceSum:  unpaid,
		StageBreakdown:    breakdown,
	}, nil
}
