package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/salesbridge/crm-api/internal/auth"
	"github.com/salesbridge/crm-api/internal/database"
	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh in-memory SQLite database and migrates the
// full schema. Each test gets its own database, so there is no cross-test
// state to clean up.
func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open in-memory test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every session on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "Failed to migrate test database")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// TestContext returns a context carrying an authenticated admin user
func TestContext() context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.NewString(),
		DisplayName: "Test User",
		Email:       "test.user@example.com",
		Roles:       []domain.UserRoleType{domain.RoleAdmin},
	})
}

// CreateTestCustomer creates a customer with a unique email and returns it
func CreateTestCustomer(t *testing.T, db *gorm.DB, name string) *domain.Customer {
	customer := &domain.Customer{
		Name:   name,
		Email:  fmt.Sprintf("%s-%d@example.com", uuid.NewString()[:8], time.Now().UnixNano()),
		Status: domain.CustomerStatusActive,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// CreateTestStage creates a pipeline stage
func CreateTestStage(t *testing.T, db *gorm.DB, name string, displayOrder int) *domain.PipelineStage {
	stage := &domain.PipelineStage{
		Name:         name,
		DisplayOrder: displayOrder,
		Color:        "#3b82f6",
	}
	require.NoError(t, db.Create(stage).Error)
	return stage
}

// CreateTestDeal creates a deal attached to the given customer and stage
func CreateTestDeal(t *testing.T, db *gorm.DB, customer *domain.Customer, stage *domain.PipelineStage, title string) *domain.Deal {
	deal := &domain.Deal{
		Title:        title,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		StageID:      stage.ID,
		StageName:    stage.Name,
		Probability:  50,
		Currency:     "EUR",
		DealType:     domain.DealTypeNewBusiness,
	}
	require.NoError(t, db.Create(deal).Error)
	return deal
}
