package service_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/salesbridge/crm-api/internal/domain"
	"github.com/salesbridge/crm-api/internal/repository"
	"github.com/salesbridge/crm-api/internal/service"
	"github.com/salesbridge/crm-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProposalNumbersIncrement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db))
	ctx := testutil.TestContext()

	year := time.Now().UTC().Year()
	for i := 1; i <= 3; i++ {
		number, err := svc.NextProposalNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("P-%d-%04d", year, i), number)
	}
}

func TestProposalAndInvoiceSequencesAreIndependent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db))
	ctx := testutil.TestContext()

	year := time.Now().UTC().Year()

	proposalNumber, err := svc.NextProposalNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("P-%d-0001", year), proposalNumber)

	// The proposal draw does not advance the invoice sequence
	invoiceNumber, err := svc.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("INV-%d-0001", year), invoiceNumber)
}

func TestSequencesRestartPerYear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := testutil.TestContext()

	lastYear, err := repo.GetNextNumber(ctx, service.SequenceEntityProposal, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, lastYear)

	lastYear, err = repo.GetNextNumber(ctx, service.SequenceEntityProposal, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, lastYear)

	thisYear, err := repo.GetNextNumber(ctx, service.SequenceEntityProposal, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, thisYear)
}

func TestSequenceNumbersNeverRepeat(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNumberSequenceRepository(db)
	ctx := testutil.TestContext()

	var mu sync.Mutex
	seen := make(map[int]bool)
	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := repo.GetNextNumber(ctx, service.SequenceEntityInvoice, 2026)
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[n] {
				errs <- fmt.Errorf("number %d issued twice", n)
				return
			}
			seen[n] = true
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	var seq domain.NumberSequence
	require.NoError(t, db.First(&seq, "entity_type = ? AND year = ?", service.SequenceEntityInvoice, 2026).Error)
	assert.Equal(t, 20, seq.LastNumber)
}
