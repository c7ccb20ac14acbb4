package service_test

import (
	"testing"

	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/repository"
	"github.com/salesbridge/crm-api/internal/service"
	"github.com/salesbridge/crm-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createDealService(db *gorm.DB) *service.DealService {
	dealRepo := repository.NewDealRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	stageRepo := repository.NewStageRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	return service.NewDealService(dealRepo, customerRepo, stageRepo, activityRepo, notificationRepo, zap.NewNop())
}

func TestCreateDealDefaultsToFirstStage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDealService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Acme Corp")
	testutil.CreateTestStage(t, db, "Qualified", 1)
	lead := testutil.CreateTestStage(t, db, "Lead", 0)

	deal, err := svc.Create(ctx, &domain.CreateDealRequest{
		Title:      "Platform rollout",
		CustomerID: customer.ID,
		Value:      15000,
	})
	require.NoError(t, err)

	assert.Equal(t, lead.ID, deal.StageID)
	assert.Equal(t, "Lead", deal.StageName)
	assert.Equal(t, 50, deal.Probability)
	assert.Equal(t, domain.DealTypeNewBusiness, deal.DealType)
	assert.Equal(t, customer.Name, deal.CustomerName)
}

func TestCreateDealWithoutStagesFails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDealService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Stageless Corp")

	_, err := svc.Create(ctx, &domain.CreateDealRequest{
		Title:      "Doomed deal",
		CustomerID: customer.ID,
	})
	assert.ErrorIs(t, err, service.ErrStageNotFound)
}

func TestUpdateDealValueRejectedWhileProposalsExist(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDealService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Globex")
	stage := testutil.CreateTestStage(t, db, "Lead", 0)
	deal := testutil.CreateTestDeal(t, db, customer, stage, "Managed deal")

	proposal := &domain.Proposal{
		Number:     "P-2026-9001",
		Title:      "Attached quote",
		DealID:     &deal.ID,
		CustomerID: customer.ID,
		Status:     domain.ProposalStatusDraft,
		Currency:   "EUR",
	}
	require.NoError(t, db.Create(proposal).Error)

	newValue := 99999.0
	_, err := svc.Update(ctx, deal.ID, &domain.UpdateDealRequest{
		Title: deal.Title,
		Value: &newValue,
	})
	assert.ErrorIs(t, err, service.ErrValueManagedByProposals)

	// Submitting the current value unchanged is not a manual edit
	sameValue := deal.Value
	updated, err := svc.Update(ctx, deal.ID, &domain.UpdateDealRequest{
		Title: "Managed deal renamed",
		Value: &sameValue,
	})
	require.NoError(t, err)
	assert.Equal(t, "Managed deal renamed", updated.Title)
}

func TestDeleteDealWithProposalsRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDealService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Initech")
	stage := testutil.CreateTestStage(t, db, "Lead", 0)
	deal := testutil.CreateTestDeal(t, db, customer, stage, "Referenced deal")

	proposal := &domain.Proposal{
		Number:     "P-2026-9002",
		Title:      "Blocking quote",
		DealID:     &deal.ID,
		CustomerID: customer.ID,
		Status:     domain.ProposalStatusDraft,
		Currency:   "EUR",
	}
	require.NoError(t, db.Create(proposal).Error)

	err := svc.Delete(ctx, deal.ID)
	assert.ErrorIs(t, err, service.ErrDealHasProposals)

	// The deal survives the rejected delete
	var count int64
	require.NoError(t, db.Model(&domain.Deal{}).Where("id = ?", deal.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Detaching the proposal unblocks deletion
	require.NoError(t, db.Model(proposal).Update("deal_id", nil).Error)
	require.NoError(t, svc.Delete(ctx, deal.ID))
}

func TestUpdateDealValueAllowedWithoutProposals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDealService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Initech")
	stage := testutil.CreateTestStage(t, db, "Lead", 0)
	deal := testutil.CreateTestDeal(t, db, customer, stage, "Manual deal")

	newValue := 4200.0
	updated, err := svc.Update(ctx, deal.ID, &domain.UpdateDealRequest{
		Title: deal.Title,
		Value: &newValue,
	})
	require.NoError(t, err)
	assert.Equal(t, 4200.0, updated.Value)
}

func TestMoveDealToStage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDealService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Umbrella")
	lead := testutil.CreateTestStage(t, db, "Lead", 0)
	negotiation := testutil.CreateTestStage(t, db, "Negotiation", 3)
	deal := testutil.CreateTestDeal(t, db, customer, lead, "Moving deal")

	moved, err := svc.MoveToStage(ctx, deal.ID, &domain.MoveDealStageRequest{
		StageID: negotiation.ID,
		Notes:   "Customer asked for final terms",
	})
	require.NoError(t, err)
	assert.Equal(t, negotiation.ID, moved.StageID)
	assert.Equal(t, "Negotiation", moved.StageName)

	// The move is recorded as an activity on the deal
	var activity domain.Activity
	require.NoError(t, db.First(&activity, "target_id = ? AND title = ?", deal.ID, "Deal stage changed").Error)
	assert.Contains(t, activity.Body, "Moved from Lead to Negotiation")
	assert.Contains(t, activity.Body, "Customer asked for final terms")
}

func TestMoveDealToSameStageIsNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDealService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Hooli")
	stage := testutil.CreateTestStage(t, db, "Lead", 0)
	deal := testutil.CreateTestDeal(t, db, customer, stage, "Static deal")

	moved, err := svc.MoveToStage(ctx, deal.ID, &domain.MoveDealStageRequest{StageID: stage.ID})
	require.NoError(t, err)
	assert.Equal(t, stage.ID, moved.StageID)

	var count int64
	require.NoError(t, db.Model(&domain.Activity{}).Where("target_id = ?", deal.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPipelineOverview(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDealService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Stark Industries")
	lead := testutil.CreateTestStage(t, db, "Lead", 0)
	qualified := testutil.CreateTestStage(t, db, "Qualified", 1)

	testutil.CreateTestDeal(t, db, customer, lead, "First")
	testutil.CreateTestDeal(t, db, customer, lead, "Second")
	testutil.CreateTestDeal(t, db, customer, qualified, "Third")

	stages, dealsByStage, err := svc.PipelineOverview(ctx)
	require.NoError(t, err)

	require.Len(t, stages, 2)
	// Stages come back in display order
	assert.Equal(t, "Lead", stages[0].Name)
	assert.Equal(t, "Qualified", stages[1].Name)
	assert.Len(t, dealsByStage[lead.ID], 2)
	assert.Len(t, dealsByStage[qualified.ID], 1)
}
