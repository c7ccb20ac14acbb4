package service_test

import (
	"strings"
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

func createImportService(db *gorm.DB) *service.ImportService {
	customerRepo := repository.NewCustomerRepository(db)
	dealRepo := repository.NewDealRepository(db)
	stageRepo := repository.NewStageRepository(db)
	return service.NewImportService(customerRepo, dealRepo, stageRepo, zap.NewNop())
}

func TestImportCustomersSuccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createImportService(db)
	ctx := testutil.TestContext()

	csv := "name,email,phone,company\n" +
		"Acme Corp,billing@acme.example,+47 555 0100,Acme Corporation\n" +
		"Globex,contact@globex.example,,Globex Inc\n"

	result, err := svc.ImportCustomers(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)
	assert.Empty(t, result.Errors)

	var count int64
	require.NoError(t, db.Model(&domain.Customer{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestImportCustomersRowErrorsDoNotAbortBatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createImportService(db)
	ctx := testutil.TestContext()

	csv := "name,email\n" +
		"Acme Corp,billing@acme.example\n" +
		",missing-name@example.com\n" +
		"Globex,contact@globex.example\n"

	result, err := svc.ImportCustomers(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Row 3: Missing required fields (name, email)", result.Errors[0])
}

func TestImportCustomersDuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createImportService(db)
	ctx := testutil.TestContext()

	existing := &domain.Customer{Name: "Existing", Email: "existing@example.com", Status: domain.CustomerStatusActive}
	require.NoError(t, db.Create(existing).Error)

	csv := "name,email\n" +
		"Existing Again,existing@example.com\n" +
		"Fresh,fresh@example.com\n" +
		"Fresh Again,fresh@example.com\n"

	result, err := svc.ImportCustomers(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	require.Len(t, result.Errors, 2)
	// Row 2 collides with the database, row 4 with a row inserted earlier in the same batch
	assert.Equal(t, "Row 2: Customer with email existing@example.com already exists", result.Errors[0])
	assert.Equal(t, "Row 4: Customer with email fresh@example.com already exists", result.Errors[1])
}

func TestImportCustomersMissingHeaderColumn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createImportService(db)
	ctx := testutil.TestContext()

	csv := "name,phone\nAcme Corp,+47 555 0100\n"

	result, err := svc.ImportCustomers(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 0, result.SuccessCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Missing required fields: email", result.Errors[0])
}

func TestImportCustomersQuotedFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createImportService(db)
	ctx := testutil.TestContext()

	csv := "name,email,address\n" +
		"\"Smith, Jones & Co\",smith@example.com,\"1 Main St, Oslo\"\n"

	result, err := svc.ImportCustomers(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, result.SuccessCount)

	var customer domain.Customer
	require.NoError(t, db.First(&customer, "email = ?", "smith@example.com").Error)
	assert.Equal(t, "Smith, Jones & Co", customer.Name)
	assert.Equal(t, "1 Main St, Oslo", customer.Address)
}

func TestImportDealsSuccessWithDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createImportService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Acme Corp")
	testutil.CreateTestStage(t, db, "Negotiation", 3)
	first := testutil.CreateTestStage(t, db, "Lead", 0)

	csv := "title,customerEmail,value\n" +
		"Platform rollout," + customer.Email + ",15000\n"

	result, err := svc.ImportDeals(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, result.SuccessCount)
	assert.Empty(t, result.Errors)

	var deal domain.Deal
	require.NoError(t, db.First(&deal, "title = ?", "Platform rollout").Error)
	assert.Equal(t, customer.ID, deal.CustomerID)
	assert.Equal(t, 15000.0, deal.Value)
	assert.Equal(t, 50, deal.Probability)
	// No stage named in the row, so the first stage by display order is used
	assert.Equal(t, first.ID, deal.StageID)
	assert.Equal(t, domain.DealTypeNewBusiness, deal.DealType)
}

func TestImportDealsResolvesStageByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createImportService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Globex")
	testutil.CreateTestStage(t, db, "Lead", 0)
	negotiation := testutil.CreateTestStage(t, db, "Negotiation", 3)

	csv := "title,customerEmail,value,probability,stage,type\n" +
		"Renewal 2026," + customer.Email + ",8000,75,negotiation,renewal\n"

	result, err := svc.ImportDeals(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, result.SuccessCount)

	var deal domain.Deal
	require.NoError(t, db.First(&deal, "title = ?", "Renewal 2026").Error)
	assert.Equal(t, negotiation.ID, deal.StageID)
	assert.Equal(t, 75, deal.Probability)
	assert.Equal(t, domain.DealTypeRenewal, deal.DealType)
}

func TestImportDealsRowErrors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createImportService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Initech")
	testutil.CreateTestStage(t, db, "Lead", 0)

	csv := "title,customerEmail,value\n" +
		"Good deal," + customer.Email + ",1000\n" +
		"Orphan deal,nobody@example.com,500\n" +
		"Bad value," + customer.Email + ",abc\n" +
		",missing@example.com,\n"

	result, err := svc.ImportDeals(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, "Row 3: No customer found with email nobody@example.com", result.Errors[0])
	assert.Equal(t, "Row 4: Invalid value \"abc\"", result.Errors[1])
	assert.Equal(t, "Row 5: Missing required fields (title, customerEmail, value)", result.Errors[2])
}

func TestImportDealsNoStagesConfigured(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createImportService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Hooli")

	csv := "title,customerEmail,value\n" +
		"Stageless deal," + customer.Email + ",100\n"

	result, err := svc.ImportDeals(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 0, result.SuccessCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 2:")
}
