package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/repository"
	"github.com/salesbridge/crm-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createProposalRow(t *testing.T, db *gorm.DB, customer *domain.Customer, number string, status domain.ProposalStatus, total float64, validUntil *time.Time) *domain.Proposal {
	t.Helper()
	proposal := &domain.Proposal{
		Number:     number,
		Title:      "Proposal " + number,
		CustomerID: customer.ID,
		Status:     status,
		Total:      total,
		Currency:   "EUR",
		ValidUntil: validUntil,
	}
	require.NoError(t, db.Create(proposal).Error)
	return proposal
}

func TestProposalRepository_ListExpirable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProposalRepository(db)
	ctx := context.Background()

	customer := testutil.CreateTestCustomer(t, db, "Expiry Corp")
	now := time.Now().UTC()
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	expired := createProposalRow(t, db, customer, "P-2026-0001", domain.ProposalStatusSent, 100, &past)
	createProposalRow(t, db, customer, "P-2026-0002", domain.ProposalStatusSent, 100, &future)
	createProposalRow(t, db, customer, "P-2026-0003", domain.ProposalStatusDraft, 100, &past)
	createProposalRow(t, db, customer, "P-2026-0004", domain.ProposalStatusViewed, 100, nil)

	expirable, err := repo.ListExpirable(ctx, now)
	require.NoError(t, err)
	require.Len(t, expirable, 1)
	assert.Equal(t, expired.ID, expirable[0].ID)
}

func TestProposalRepository_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProposalRepository(db)
	ctx := context.Background()

	customer := testutil.CreateTestCustomer(t, db, "Status Corp")
	proposal := createProposalRow(t, db, customer, "P-2026-0010", domain.ProposalStatusDraft, 500, nil)

	at := time.Now().UTC()
	require.NoError(t, repo.UpdateStatus(ctx, proposal.ID, domain.ProposalStatusSent, at))

	reloaded, err := repo.GetByID(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusSent, reloaded.Status)
	require.NotNil(t, reloaded.SentAt)
	assert.WithinDuration(t, at, *reloaded.SentAt, time.Second)
}

func TestProposalRepository_OpenProposalStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProposalRepository(db)
	ctx := context.Background()

	customer := testutil.CreateTestCustomer(t, db, "Stats Corp")
	createProposalRow(t, db, customer, "P-2026-0020", domain.ProposalStatusDraft, 100, nil)
	createProposalRow(t, db, customer, "P-2026-0021", domain.ProposalStatusSent, 200, nil)
	createProposalRow(t, db, customer, "P-2026-0022", domain.ProposalStatusViewed, 300, nil)
	createProposalRow(t, db, customer, "P-2026-0023", domain.ProposalStatusAccepted, 1000, nil)
	createProposalRow(t, db, customer, "P-2026-0024", domain.ProposalStatusRejected, 1000, nil)

	count, sum, err := repo.OpenProposalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 600.0, sum)
}

func TestProposalRepository_GetByIDPreloadsItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProposalRepository(db)
	ctx := context.Background()

	customer := testutil.CreateTestCustomer(t, db, "Preload Corp")
	proposal := &domain.Proposal{
		Number:     "P-2026-0030",
		Title:      "With items",
		CustomerID: customer.ID,
		Status:     domain.ProposalStatusDraft,
		Currency:   "EUR",
		Items: []domain.ProposalItem{
			{Description: "Licenses", Quantity: 5, UnitPrice: 99, Total: 495, IsSubscription: true},
			{Description: "Setup", Quantity: 1, UnitPrice: 500, Total: 500, DisplayOrder: 1},
		},
	}
	require.NoError(t, db.Create(proposal).Error)

	reloaded, err := repo.GetByID(ctx, proposal.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 2)
	assert.Equal(t, "Licenses", reloaded.Items[0].Description)
}

func TestProposalRepository_DeleteRemovesItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewProposalRepository(db)
	ctx := context.Background()

	customer := testutil.CreateTestCustomer(t, db, "Cascade Corp")
	proposal := &domain.Proposal{
		Number:     "P-2026-0040",
		Title:      "Doomed",
		CustomerID: customer.ID,
		Status:     domain.ProposalStatusDraft,
		Currency:   "EUR",
		Items: []domain.ProposalItem{
			{Description: "Anything", Quantity: 1, UnitPrice: 10, Total: 10},
		},
	}
	require.NoError(t, db.Create(proposal).Error)

	require.NoError(t, repo.Delete(ctx, proposal.ID))

	var itemCount int64
	require.NoError(t, db.Model(&domain.ProposalItem{}).Where("proposal_id = ?", proposal.ID).Count(&itemCount).Error)
	assert.Equal(t, int64(0), itemCount)
}
