package service_test

import (
	"fmt"
	"testing"
	"time"

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

func createProposalService(db *gorm.DB) *service.ProposalService {
	proposalRepo := repository.NewProposalRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	dealRepo := repository.NewDealRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	sequenceRepo := repository.NewNumberSequenceRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)

	valuation := service.NewValuationService(dealRepo, proposalRepo, zap.NewNop())
	sequences := service.NewNumberSequenceService(sequenceRepo)
	invoices := service.NewInvoiceService(invoiceRepo, proposalRepo, activityRepo, sequences, zap.NewNop())

	return service.NewProposalService(
		proposalRepo, customerRepo, dealRepo, activityRepo, notificationRepo,
		valuation, sequences, invoices, zap.NewNop(),
	)
}

func TestCreateProposalComputesTotalsAndNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createProposalService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Acme Corp")

	proposal, err := svc.Create(ctx, &domain.CreateProposalRequest{
		Title:              "Annual platform license",
		CustomerID:         customer.ID,
		DiscountPercentage: 10,
		TaxPercentage:      25,
		Items: []domain.CreateProposalItemRequest{
			{Description: "Seats", Quantity: 4, UnitPrice: 100, IsSubscription: true},
			{Description: "Onboarding", Quantity: 1, UnitPrice: 600},
		},
	})
	require.NoError(t, err)

	year := time.Now().UTC().Year()
	assert.Equal(t, fmt.Sprintf("P-%d-0001", year), proposal.Number)
	assert.Equal(t, domain.ProposalStatusDraft, proposal.Status)
	assert.Equal(t, 1000.0, proposal.Subtotal)
	assert.Equal(t, 100.0, proposal.DiscountAmount)
	assert.Equal(t, 225.0, proposal.TaxAmount)
	assert.Equal(t, 1125.0, proposal.Total)
	assert.Equal(t, customer.Name, proposal.CustomerName)

	// Numbers increment within the year
	second, err := svc.Create(ctx, &domain.CreateProposalRequest{
		Title:      "Follow-up quote",
		CustomerID: customer.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("P-%d-0002", year), second.Number)
}

func TestCreateProposalRevaluatesDeal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createProposalService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Globex")
	stage := testutil.CreateTestStage(t, db, "Qualified", 1)
	deal := testutil.CreateTestDeal(t, db, customer, stage, "Platform rollout")

	_, err := svc.Create(ctx, &domain.CreateProposalRequest{
		Title:      "Rollout quote",
		CustomerID: customer.ID,
		DealID:     &deal.ID,
		Items: []domain.CreateProposalItemRequest{
			{Description: "Seats", Quantity: 12, UnitPrice: 10, IsSubscription: true},
			{Description: "Setup", Quantity: 1, UnitPrice: 50},
		},
	})
	require.NoError(t, err)

	var updated domain.Deal
	require.NoError(t, db.First(&updated, "id = ?", deal.ID).Error)
	assert.Equal(t, 120.0, updated.SubscriptionValue)
	assert.Equal(t, 50.0, updated.OneTimeValue)
	assert.Equal(t, 170.0, updated.Value)
}

func TestCreateProposalRejectsForeignDeal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createProposalService(db)
	ctx := testutil.TestContext()

	owner := testutil.CreateTestCustomer(t, db, "Owner Corp")
	other := testutil.CreateTestCustomer(t, db, "Other Corp")
	stage := testutil.CreateTestStage(t, db, "Lead", 0)
	deal := testutil.CreateTestDeal(t, db, owner, stage, "Owned deal")

	_, err := svc.Create(ctx, &domain.CreateProposalRequest{
		Title:      "Mismatched quote",
		CustomerID: other.ID,
		DealID:     &deal.ID,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestProposalLifecycleAcceptGeneratesInvoice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createProposalService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Initech")
	proposal, err := svc.Create(ctx, &domain.CreateProposalRequest{
		Title:         "TPS migration",
		CustomerID:    customer.ID,
		TaxPercentage: 25,
		Items: []domain.CreateProposalItemRequest{
			{Description: "Migration", Quantity: 1, UnitPrice: 1000},
		},
	})
	require.NoError(t, err)

	sent, err := svc.Send(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusSent, sent.Status)
	assert.NotNil(t, sent.SentAt)

	viewed, err := svc.MarkViewed(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusViewed, viewed.Status)

	accepted, err := svc.Accept(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusAccepted, accepted.Status)

	var invoice domain.Invoice
	require.NoError(t, db.First(&invoice, "proposal_id = ?", proposal.ID).Error)
	assert.Equal(t, domain.InvoiceStatusSent, invoice.Status)
	assert.Equal(t, 1000.0, invoice.Subtotal)
	assert.Equal(t, 250.0, invoice.TaxAmount)
	assert.Equal(t, 1250.0, invoice.Total)
	assert.Equal(t, customer.ID, invoice.CustomerID)
	year := time.Now().UTC().Year()
	assert.Equal(t, fmt.Sprintf("INV-%d-0001", year), invoice.Number)
}

func TestProposalInvalidTransitions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createProposalService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Umbrella")
	proposal, err := svc.Create(ctx, &domain.CreateProposalRequest{
		Title:      "Draft quote",
		CustomerID: customer.ID,
	})
	require.NoError(t, err)

	// A draft cannot be accepted without being sent first
	_, err = svc.Accept(ctx, proposal.ID)
	assert.ErrorIs(t, err, service.ErrInvalidStatusTransition)

	_, err = svc.Send(ctx, proposal.ID)
	require.NoError(t, err)
	_, err = svc.Reject(ctx, proposal.ID, "too expensive")
	require.NoError(t, err)

	// Rejected is terminal: no further transitions, no edits
	_, err = svc.Send(ctx, proposal.ID)
	assert.ErrorIs(t, err, service.ErrInvalidStatusTransition)

	_, err = svc.Update(ctx, proposal.ID, &domain.UpdateProposalRequest{Title: "Revised quote"})
	assert.ErrorIs(t, err, service.ErrInvalidStatusTransition)
}

func TestDeleteProposalRevaluatesDeal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createProposalService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Hooli")
	stage := testutil.CreateTestStage(t, db, "Proposal", 2)
	deal := testutil.CreateTestDeal(t, db, customer, stage, "Box rollout")

	proposal, err := svc.Create(ctx, &domain.CreateProposalRequest{
		Title:      "Box quote",
		CustomerID: customer.ID,
		DealID:     &deal.ID,
		Items: []domain.CreateProposalItemRequest{
			{Description: "Boxes", Quantity: 5, UnitPrice: 100},
		},
	})
	require.NoError(t, err)

	var valued domain.Deal
	require.NoError(t, db.First(&valued, "id = ?", deal.ID).Error)
	require.Equal(t, 500.0, valued.Value)

	require.NoError(t, svc.Delete(ctx, proposal.ID))

	var cleared domain.Deal
	require.NoError(t, db.First(&cleared, "id = ?", deal.ID).Error)
	assert.Equal(t, 0.0, cleared.Value)
	assert.Equal(t, 0.0, cleared.SubscriptionValue)
	assert.Equal(t, 0.0, cleared.OneTimeValue)
}

func TestExpireStaleProposals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createProposalService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Stark Industries")

	past := time.Now().UTC().AddDate(0, 0, -1)
	future := time.Now().UTC().AddDate(0, 0, 30)

	stale, err := svc.Create(ctx, &domain.CreateProposalRequest{
		Title: "Stale quote", CustomerID: customer.ID, ValidUntil: &past,
	})
	require.NoError(t, err)
	_, err = svc.Send(ctx, stale.ID)
	require.NoError(t, err)

	fresh, err := svc.Create(ctx, &domain.CreateProposalRequest{
		Title: "Fresh quote", CustomerID: customer.ID, ValidUntil: &future,
	})
	require.NoError(t, err)
	_, err = svc.Send(ctx, fresh.ID)
	require.NoError(t, err)

	// Drafts never expire, whatever their validity date
	_, err = svc.Create(ctx, &domain.CreateProposalRequest{
		Title: "Stale draft", CustomerID: customer.ID, ValidUntil: &past,
	})
	require.NoError(t, err)

	expired, err := svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	var reloadedStale domain.Proposal
	require.NoError(t, db.First(&reloadedStale, "id = ?", stale.ID).Error)
	assert.Equal(t, domain.ProposalStatusExpired, reloadedStale.Status)

	var reloadedFresh domain.Proposal
	require.NoError(t, db.First(&reloadedFresh, "id = ?", fresh.ID).Error)
	assert.Equal(t, domain.ProposalStatusSent, reloadedFresh.Status)
}

func TestGetProposalNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createProposalService(db)
	ctx := testutil.TestContext()

	_, err := svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
