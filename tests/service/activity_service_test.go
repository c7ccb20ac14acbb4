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

func createActivityService(db *gorm.DB) *service.ActivityService {
	return service.NewActivityService(repository.NewActivityRepository(db), zap.NewNop())
}

func TestCreateActivityDefaultsToNote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createActivityService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Acme Corp")

	activity, err := svc.Create(ctx, &domain.CreateActivityRequest{
		TargetType: domain.ActivityTargetCustomer,
		TargetID:   customer.ID,
		Title:      "Kickoff call scheduled",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ActivityTypeNote, activity.ActivityType)
	assert.False(t, activity.OccurredAt.IsZero())
	// Creator comes from the authenticated user
	assert.Equal(t, "Test User", activity.CreatorName)
	assert.NotEmpty(t, activity.CreatorID)
}

func TestCreateActivityInvalidType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createActivityService(db)
	ctx := testutil.TestContext()

	_, err := svc.Create(ctx, &domain.CreateActivityRequest{
		TargetType:   domain.ActivityTargetDeal,
		TargetID:     uuid.New(),
		Title:        "Bad type",
		ActivityType: "telepathy",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestListActivitiesByTarget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createActivityService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Globex")
	other := testutil.CreateTestCustomer(t, db, "Initech")

	for _, title := range []string{"First note", "Second note"} {
		_, err := svc.Create(ctx, &domain.CreateActivityRequest{
			TargetType: domain.ActivityTargetCustomer,
			TargetID:   customer.ID,
			Title:      title,
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, &domain.CreateActivityRequest{
		TargetType: domain.ActivityTargetCustomer,
		TargetID:   other.ID,
		Title:      "Unrelated note",
	})
	require.NoError(t, err)

	activities, err := svc.ListByTarget(ctx, domain.ActivityTargetCustomer, customer.ID, 50)
	require.NoError(t, err)
	assert.Len(t, activities, 2)
}

func TestDeleteActivity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createActivityService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Umbrella")
	activity, err := svc.Create(ctx, &domain.CreateActivityRequest{
		TargetType: domain.ActivityTargetCustomer,
		TargetID:   customer.ID,
		Title:      "Disposable",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, activity.ID))
	_, err = svc.GetByID(ctx, activity.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), service.ErrNotFound)
}
