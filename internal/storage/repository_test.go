package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

func testLedger() []core.Transaction {
	txns := []core.Transaction{
		{
			Date:        time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			Description: "january salary",
			Amount:      decimal.NewFromInt(2500000),
			Category:    "salary",
			Memo:        "payday",
		},
		{
			Date:        time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			Description: "coffee-chain-x",
			Amount:      decimal.NewFromInt(-4500),
			Predicted:   "cafe",
			Category:    "cafe",
		},
	}
	for i := range txns {
		txns[i].Derive()
	}
	return txns
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	require.NoError(t, repo.SaveLedger(ctx, "batch-1", testLedger()))

	got, err := repo.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// sorted ascending by date on the way out
	assert.Equal(t, "coffee-chain-x", got[0].Description)
	assert.Equal(t, "-4500", got[0].Amount.String())
	assert.Equal(t, "cafe", got[0].Category)
	assert.Equal(t, "cafe", got[0].Predicted)
	assert.Equal(t, core.Expense, got[0].Direction)
	assert.Equal(t, "2025-01", got[0].YearMonth)

	assert.Equal(t, "january salary", got[1].Description)
	assert.Equal(t, "payday", got[1].Memo)
	assert.Equal(t, core.Income, got[1].Direction)
}

func TestSQLiteRepositorySaveReplacesWholesale(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	require.NoError(t, repo.SaveLedger(ctx, "batch-1", testLedger()))
	require.NoError(t, repo.SaveLedger(ctx, "batch-2", testLedger()[:1]))

	got, err := repo.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLiteRepositoryKeepsIntradayTimes(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer repo.Close()

	evening := core.Transaction{
		Date:        time.Date(2025, 1, 2, 19, 30, 45, 0, time.UTC),
		Description: "late dinner",
		Amount:      decimal.NewFromInt(-23000),
		Category:    "dining",
	}
	evening.Derive()

	ctx := context.Background()
	require.NoError(t, repo.SaveLedger(ctx, "batch-1", []core.Transaction{evening}))

	got, err := repo.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, evening.Date.Equal(got[0].Date))
}

func TestSQLiteRepositoryEmptyLedger(t *testing.T) {
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.LoadLedger(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveLedger(ctx, "batch-1", testLedger()))
	assert.Equal(t, "batch-1", store.BatchID())

	got, err := store.LoadLedger(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "coffee-chain-x", got[0].Description)
	assert.Equal(t, "january salary", got[1].Description)
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	original := testLedger()
	require.NoError(t, store.SaveLedger(ctx, "batch-1", original))

	got, err := store.LoadLedger(ctx)
	require.NoError(t, err)
	got[0].Category = "mutated"

	again, err := store.LoadLedger(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again[0].Category)
}
