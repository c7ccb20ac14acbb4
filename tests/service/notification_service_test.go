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

func createNotificationService(db *gorm.DB) *service.NotificationService {
	return service.NewNotificationService(repository.NewNotificationRepository(db), zap.NewNop())
}

func createTestNotification(t *testing.T, db *gorm.DB, userID, title string) *domain.Notification {
	notification := &domain.Notification{
		UserID:  userID,
		Type:    "proposal_accepted",
		Title:   title,
		Message: "Something happened",
	}
	require.NoError(t, db.Create(notification).Error)
	return notification
}

func TestListNotificationsForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createNotificationService(db)
	ctx := testutil.TestContext()

	createTestNotification(t, db, "user-a", "First")
	createTestNotification(t, db, "user-a", "Second")
	createTestNotification(t, db, "user-b", "Other user")

	notifications, err := svc.ListForUser(ctx, "user-a", false, 50)
	require.NoError(t, err)
	assert.Len(t, notifications, 2)
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createNotificationService(db)
	ctx := testutil.TestContext()

	first := createTestNotification(t, db, "user-a", "First")
	createTestNotification(t, db, "user-a", "Second")

	count, err := svc.CountUnread(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkRead(ctx, first.ID, "user-a"))

	count, err = svc.CountUnread(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	unread, err := svc.ListForUser(ctx, "user-a", true, 50)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "Second", unread[0].Title)
}

func TestMarkReadBelongsToOtherUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createNotificationService(db)
	ctx := testutil.TestContext()

	notification := createTestNotification(t, db, "user-a", "Private")

	assert.ErrorIs(t, svc.MarkRead(ctx, notification.ID, "user-b"), service.ErrPermissionDenied)
	assert.ErrorIs(t, svc.Delete(ctx, notification.ID, "user-b"), service.ErrPermissionDenied)
	assert.ErrorIs(t, svc.MarkRead(ctx, uuid.New(), "user-a"), service.ErrNotFound)
}

func TestMarkAllRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createNotificationService(db)
	ctx := testutil.TestContext()

	createTestNotification(t, db, "user-a", "First")
	createTestNotification(t, db, "user-a", "Second")
	createTestNotification(t, db, "user-b", "Untouched")

	require.NoError(t, svc.MarkAllRead(ctx, "user-a"))

	count, err := svc.CountUnread(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = svc.CountUnread(ctx, "user-b")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteNotification(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createNotificationService(db)
	ctx := testutil.TestContext()

	notification := createTestNotification(t, db, "user-a", "Disposable")

	require.NoError(t, svc.Delete(ctx, notification.ID, "user-a"))

	var count int64
	require.NoError(t, db.Model(&domain.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
