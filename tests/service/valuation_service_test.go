package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/repository"
	"github.com/salesbridge/crm-api/internal/service"
	"github.com/salesbridge/crm-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createValuationService(db *gorm.DB) *service.ValuationService {
	dealRepo := repository.NewDealRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	return service.NewValuationService(dealRepo, proposalRepo, zap.NewNop())
}

func createProposalForDeal(t *testing.T, db *gorm.DB, deal *domain.Deal, status domain.ProposalStatus, items []domain.ProposalItem) *domain.Proposal {
	proposal := &domain.Proposal{
		Number:       "P-2026-" + uuid.NewString()[:8],
		Title:        "Test Proposal",
		DealID:       &deal.ID,
		CustomerID:   deal.CustomerID,
		CustomerName: deal.CustomerName,
		Status:       status,
		Currency:     "EUR",
		Items:        items,
	}
	require.NoError(t, db.Create(proposal).Error)
	return proposal
}

func reloadDeal(t *testing.T, db *gorm.DB, id uuid.UUID) *domain.Deal {
	var deal domain.Deal
	require.NoError(t, db.First(&deal, "id = ?", id).Error)
	return &deal
}

func TestRecalculateDealSplitsBillingTypes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createValuationService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Acme Corp")
	stage := testutil.CreateTestStage(t, db, "Qualified", 1)
	deal := testutil.CreateTestDeal(t, db, customer, stage, "Platform rollout")

	createProposalForDeal(t, db, deal, domain.ProposalStatusSent, []domain.ProposalItem{
		{Description: "Subscription seats", Quantity: 12, UnitPrice: 10, IsSubscription: true},
		{Description: "Setup fee", Quantity: 1, UnitPrice: 50},
		{Description: "Training", Quantity: 2, UnitPrice: 60},
	})

	require.NoError(t, svc.RecalculateDeal(ctx, deal.ID))

	updated := reloadDeal(t, db, deal.ID)
	assert.Equal(t, 120.0, updated.SubscriptionValue)
	assert.Equal(t, 170.0, updated.OneTimeValue)
	assert.Equal(t, 290.0, updated.Value)
}

func TestRecalculateDealSumsAllStatuses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createValuationService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Globex")
	stage := testutil.CreateTestStage(t, db, "Proposal", 2)
	deal := testutil.CreateTestDeal(t, db, customer, stage, "Renewal 2026")

	// Drafts and rejected proposals still contribute to the deal's value
	createProposalForDeal(t, db, deal, domain.ProposalStatusDraft, []domain.ProposalItem{
		{Description: "Licenses", Quantity: 1, UnitPrice: 100, IsSubscription: true},
	})
	createProposalForDeal(t, db, deal, domain.ProposalStatusRejected, []domain.ProposalItem{
		{Description: "Consulting", Quantity: 1, UnitPrice: 250},
	})

	require.NoError(t, svc.RecalculateDeal(ctx, deal.ID))

	updated := reloadDeal(t, db, deal.ID)
	assert.Equal(t, 100.0, updated.SubscriptionValue)
	assert.Equal(t, 250.0, updated.OneTimeValue)
	assert.Equal(t, 350.0, updated.Value)
}

func TestRecalculateDealIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createValuationService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Initech")
	stage := testutil.CreateTestStage(t, db, "Lead", 0)
	deal := testutil.CreateTestDeal(t, db, customer, stage, "Pilot")

	createProposalForDeal(t, db, deal, domain.ProposalStatusSent, []domain.ProposalItem{
		{Description: "Pilot package", Quantity: 3, UnitPrice: 99.99, IsSubscription: true},
	})

	require.NoError(t, svc.RecalculateDeal(ctx, deal.ID))
	first := reloadDeal(t, db, deal.ID)

	require.NoError(t, svc.RecalculateDeal(ctx, deal.ID))
	second := reloadDeal(t, db, deal.ID)

	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, first.SubscriptionValue, second.SubscriptionValue)
	assert.Equal(t, first.OneTimeValue, second.OneTimeValue)
	assert.Equal(t, second.Value, second.SubscriptionValue+second.OneTimeValue)
}

func TestRecalculateDealZeroesValuesWhenNoProposalsRemain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createValuationService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Umbrella")
	stage := testutil.CreateTestStage(t, db, "Negotiation", 3)
	deal := testutil.CreateTestDeal(t, db, customer, stage, "Expansion")

	proposal := createProposalForDeal(t, db, deal, domain.ProposalStatusSent, []domain.ProposalItem{
		{Description: "Add-on", Quantity: 1, UnitPrice: 500},
	})
	require.NoError(t, svc.RecalculateDeal(ctx, deal.ID))
	require.Equal(t, 500.0, reloadDeal(t, db, deal.ID).Value)

	require.NoError(t, db.Delete(&domain.ProposalItem{}, "proposal_id = ?", proposal.ID).Error)
	require.NoError(t, db.Delete(proposal).Error)
	require.NoError(t, svc.RecalculateDeal(ctx, deal.ID))

	updated := reloadDeal(t, db, deal.ID)
	assert.Equal(t, 0.0, updated.Value)
	assert.Equal(t, 0.0, updated.SubscriptionValue)
	assert.Equal(t, 0.0, updated.OneTimeValue)
}

func TestRecalculateIfAttachedSkipsDetachedProposals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createValuationService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Hooli")
	proposal := &domain.Proposal{
		Number:     "P-2026-" + uuid.NewString()[:8],
		Title:      "Standalone quote",
		CustomerID: customer.ID,
		Status:     domain.ProposalStatusDraft,
		Currency:   "EUR",
		Items: []domain.ProposalItem{
			{Description: "One-off audit", Quantity: 1, UnitPrice: 900},
		},
	}
	require.NoError(t, db.Create(proposal).Error)

	assert.NoError(t, svc.RecalculateIfAttached(ctx, proposal))
	assert.NoError(t, svc.RecalculateIfAttached(ctx, nil))
}

func TestRecalculateDealKeepsValuesWhenProposalReadFails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createValuationService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Vandelay")
	stage := testutil.CreateTestStage(t, db, "Lead", 0)
	deal := testutil.CreateTestDeal(t, db, customer, stage, "Fragile deal")

	createProposalForDeal(t, db, deal, domain.ProposalStatusSent, []domain.ProposalItem{
		{Description: "Retainer", Quantity: 1, UnitPrice: 500, IsSubscription: true},
	})
	require.NoError(t, svc.RecalculateDeal(ctx, deal.ID))
	require.Equal(t, 500.0, reloadDeal(t, db, deal.ID).Value)

	// Make the proposal read fail and check the stored values survive
	require.NoError(t, db.Migrator().DropTable(&domain.Proposal{}))

	err := svc.RecalculateDeal(ctx, deal.ID)
	require.Error(t, err)

	kept := reloadDeal(t, db, deal.ID)
	assert.Equal(t, 500.0, kept.Value)
	assert.Equal(t, 500.0, kept.SubscriptionValue)
	assert.Equal(t, 0.0, kept.OneTimeValue)
}
