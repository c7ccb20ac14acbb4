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

func createStageService(db *gorm.DB) *service.StageService {
	return service.NewStageService(repository.NewStageRepository(db), zap.NewNop())
}

func TestCreateStage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createStageService(db)
	ctx := testutil.TestContext()

	stage, err := svc.Create(ctx, &domain.CreateStageRequest{
		Name:         "Qualified",
		DisplayOrder: 1,
		Color:        "#0ea5e9",
	})
	require.NoError(t, err)
	assert.Equal(t, "Qualified", stage.Name)
	assert.Equal(t, "#0ea5e9", stage.Color)
	assert.False(t, stage.IsClosed)
}

func TestDefaultStageIsFirstByDisplayOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createStageService(db)
	ctx := testutil.TestContext()

	testutil.CreateTestStage(t, db, "Negotiation", 3)
	lead := testutil.CreateTestStage(t, db, "Lead", 0)
	testutil.CreateTestStage(t, db, "Qualified", 1)

	stage, err := svc.Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, lead.ID, stage.ID)
}

func TestDefaultStageWithoutStages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createStageService(db)
	ctx := testutil.TestContext()

	_, err := svc.Default(ctx)
	assert.ErrorIs(t, err, service.ErrStageNotFound)
}

func TestDeleteStageInUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createStageService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Acme Corp")
	stage := testutil.CreateTestStage(t, db, "Lead", 0)
	empty := testutil.CreateTestStage(t, db, "Qualified", 1)
	testutil.CreateTestDeal(t, db, customer, stage, "Blocking deal")

	err := svc.Delete(ctx, stage.ID)
	assert.ErrorIs(t, err, service.ErrStageInUse)

	require.NoError(t, svc.Delete(ctx, empty.ID))
	_, err = svc.GetByID(ctx, empty.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestReorderStages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createStageService(db)
	ctx := testutil.TestContext()

	a := testutil.CreateTestStage(t, db, "A", 0)
	b := testutil.CreateTestStage(t, db, "B", 1)
	c := testutil.CreateTestStage(t, db, "C", 2)

	require.NoError(t, svc.Reorder(ctx, []uuid.UUID{c.ID, a.ID, b.ID}))

	stages, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, stages, 3)
	assert.Equal(t, "C", stages[0].Name)
	assert.Equal(t, "A", stages[1].Name)
	assert.Equal(t, "B", stages[2].Name)
}

func TestReorderStagesUnknownID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createStageService(db)
	ctx := testutil.TestContext()

	a := testutil.CreateTestStage(t, db, "A", 0)

	err := svc.Reorder(ctx, []uuid.UUID{a.ID, uuid.New()})
	assert.ErrorIs(t, err, service.ErrNotFound)
}
