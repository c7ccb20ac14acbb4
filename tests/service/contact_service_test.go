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

func createContactService(db *gorm.DB) *service.ContactService {
	contactRepo := repository.NewContactRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	return service.NewContactService(contactRepo, customerRepo, zap.NewNop())
}

func TestCreateContact(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createContactService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Acme Corp")

	contact, err := svc.Create(ctx, customer.ID, &domain.CreateContactRequest{
		FirstName: "Kari",
		LastName:  "Nordmann",
		Email:     "kari@acme.example",
		Title:     "CTO",
		IsPrimary: true,
	})
	require.NoError(t, err)
	assert.Equal(t, customer.ID, contact.CustomerID)
	assert.Equal(t, "Kari Nordmann", contact.FullName())
	assert.True(t, contact.IsPrimary)
}

func TestCreateContactUnknownCustomer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createContactService(db)
	ctx := testutil.TestContext()

	_, err := svc.Create(ctx, uuid.New(), &domain.CreateContactRequest{
		FirstName: "Ola", LastName: "Nordmann",
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestPrimaryContactIsExclusive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createContactService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Globex")

	first, err := svc.Create(ctx, customer.ID, &domain.CreateContactRequest{
		FirstName: "First", LastName: "Contact", IsPrimary: true,
	})
	require.NoError(t, err)

	second, err := svc.Create(ctx, customer.ID, &domain.CreateContactRequest{
		FirstName: "Second", LastName: "Contact", IsPrimary: true,
	})
	require.NoError(t, err)
	assert.True(t, second.IsPrimary)

	// The previous primary was demoted
	reloaded, err := svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsPrimary)
}

func TestUpdateContactPromoteToPrimary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createContactService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Initech")

	primary, err := svc.Create(ctx, customer.ID, &domain.CreateContactRequest{
		FirstName: "Old", LastName: "Primary", IsPrimary: true,
	})
	require.NoError(t, err)
	other, err := svc.Create(ctx, customer.ID, &domain.CreateContactRequest{
		FirstName: "New", LastName: "Primary",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, other.ID, &domain.UpdateContactRequest{
		FirstName: "New", LastName: "Primary", IsPrimary: true,
	})
	require.NoError(t, err)
	assert.True(t, updated.IsPrimary)

	reloaded, err := svc.GetByID(ctx, primary.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsPrimary)
}

func TestListContactsByCustomer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createContactService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Umbrella")
	otherCustomer := testutil.CreateTestCustomer(t, db, "Hooli")

	for _, name := range []string{"Anna", "Bjorn"} {
		_, err := svc.Create(ctx, customer.ID, &domain.CreateContactRequest{FirstName: name, LastName: "Hansen"})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, otherCustomer.ID, &domain.CreateContactRequest{FirstName: "Carl", LastName: "Berg"})
	require.NoError(t, err)

	contacts, err := svc.ListByCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}

func TestDeleteContact(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createContactService(db)
	ctx := testutil.TestContext()

	customer := testutil.CreateTestCustomer(t, db, "Stark Industries")
	contact, err := svc.Create(ctx, customer.ID, &domain.CreateContactRequest{
		FirstName: "Pepper", LastName: "Potts",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, contact.ID))
	_, err = svc.GetByID(ctx, contact.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), service.ErrNotFound)
}
