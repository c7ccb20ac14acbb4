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

func createDashboardService(db *gorm.DB) *service.DashboardService {
	return service.NewDashboardService(
		repository.NewCustomerRepository(db),
		repository.NewDealRepository(db),
		repository.NewProposalRepository(db),
		repository.NewInvoiceRepository(db),
		zap.NewNop(),
	)
}

func TestDashboardMetricsEmptyDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDashboardService(db)
	ctx := testutil.TestContext()

	metrics, err := svc.Metrics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, metrics.CustomerCount)
	assert.Equal(t, 0, metrics.OpenDealCount)
	assert.Equal(t, 0.0, metrics.OpenDealValue)
	assert.Equal(t, 0, metrics.OpenProposalCount)
	assert.Equal(t, 0.0, metrics.UnpaidInvoiceSum)
	assert.NotNil(t, metrics.StageBreakdown)
	assert.Empty(t, metrics.StageBreakdown)
}

func TestDashboardMetrics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createDashboardService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Acme Corp")
	open := testutil.CreateTestStage(t, db, "Qualified", 1)
	closed := &domain.PipelineStage{Name: "Closed Won", DisplayOrder: 9, IsClosed: true, Color: "#22c55e"}
	require.NoError(t, db.Create(closed).Error)

	openDeal := testutil.CreateTestDeal(t, db, customer, open, "Open deal")
	require.NoError(t, db.Model(openDeal).Update("value", 1000).Error)

	wonDeal := testutil.CreateTestDeal(t, db, customer, closed, "Won deal")
	require.NoError(t, db.Model(wonDeal).Updates(map[string]interface{}{
		"value": 5000, "stage_name": closed.Name,
	}).Error)

	// One open proposal counts toward the pipeline, one rejected does not
	sent := &domain.Proposal{
		Number: "P-2026-" + uuid.NewString()[:8], Title: "Open quote",
		CustomerID: customer.ID, Status: domain.ProposalStatusSent,
		Total: 750, Currency: "EUR",
	}
	require.NoError(t, db.Create(sent).Error)
	rejected := &domain.Proposal{
		Number: "P-2026-" + uuid.NewString()[:8], Title: "Dead quote",
		CustomerID: customer.ID, Status: domain.ProposalStatusRejected,
		Total: 9999, Currency: "EUR",
	}
	require.NoError(t, db.Create(rejected).Error)

	// Sent and overdue invoices are unpaid, paid ones are not
	for _, inv := range []*domain.Invoice{
		{Number: "INV-2026-0001", ProposalID: sent.ID, CustomerID: customer.ID, Status: domain.InvoiceStatusSent, Total: 300},
		{Number: "INV-2026-0002", ProposalID: rejected.ID, CustomerID: customer.ID, Status: domain.InvoiceStatusOverdue, Total: 200},
		{Number: "INV-2026-0003", ProposalID: uuid.New(), CustomerID: customer.ID, Status: domain.InvoiceStatusPaid, Total: 400},
	} {
		require.NoError(t, db.Create(inv).Error)
	}

	metrics, err := svc.Metrics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.CustomerCount)
	assert.Equal(t, 1, metrics.OpenDealCount)
	assert.Equal(t, 1000.0, metrics.OpenDealValue)
	assert.Equal(t, 1, metrics.OpenProposalCount)
	assert.Equal(t, 750.0, metrics.OpenProposalValue)
	assert.Equal(t, 500.0, metrics.UnpaidInvoiceSum)
	// Breakdown covers every stage with deals, closed ones included
	assert.Len(t, metrics.StageBreakdown, 2)
}
