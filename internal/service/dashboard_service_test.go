package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financial-ledger/internal/domain"
	"financial-ledger/internal/repository"
)

func newTestDashboard(t *testing.T) (*DashboardService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDashboardService(store, logger), store
}

func TestSummarizeUnfiltered(t *testing.T) {
	svc, store := newTestDashboard(t)
	seed(t, store, seedOpts{id: "c1", txType: domain.TypeCredit, amount: "100.00"})
	seed(t, store, seedOpts{id: "c2", txType: domain.TypeCredit, amount: "250.50"})
	seed(t, store, seedOpts{id: "d1", txType: domain.TypeDebit, amount: "75.25"})
	seed(t, store, seedOpts{id: "gone", txType: domain.TypeDebit, amount: "999.99", deleted: true})

	summary, err := svc.Summarize(domain.Filter{})
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.TotalTransactions, "soft-deleted rows never count")
	assert.Equal(t, int64(2), summary.CreditCount)
	assert.Equal(t, int64(1), summary.DebitCount)
	assert.True(t, summary.TotalCredit.Equal(decimal.RequireFromString("350.50")))
	assert.True(t, summary.TotalDebit.Equal(decimal.RequireFromString("75.25")))

	// credit+debit covers the whole live set: no double counting, no gaps.
	assert.Equal(t, summary.TotalTransactions, summary.CreditCount+summary.DebitCount)
}

func TestSummarizeMatchesListCount(t *testing.T) {
	dash, store := newTestDashboard(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	list := NewTransactionService(store, logger)

	seed(t, store, seedOpts{id: "p1", category: "Food", status: domain.StatusPending})
	seed(t, store, seedOpts{id: "p2", category: "Food", status: domain.StatusPending})
	seed(t, store, seedOpts{id: "s1", category: "Food", status: domain.StatusSuccess})
	seed(t, store, seedOpts{id: "p3", category: "Rent", status: domain.StatusPending})

	filter := domain.Filter{Category: "Food", Status: domain.StatusPending}

	summary, err := dash.Summarize(filter)
	require.NoError(t, err)

	rows, _, err := list.List(ListParams{Filter: filter})
	require.NoError(t, err)

	assert.Equal(t, int64(len(rows)), summary.TotalTransactions,
		"summary and list agree under the same filter")
}

func TestSummarizeByType(t *testing.T) {
	svc, store := newTestDashboard(t)
	seed(t, store, seedOpts{id: "c1", txType: domain.TypeCredit, amount: "10.00"})
	seed(t, store, seedOpts{id: "d1", txType: domain.TypeDebit, amount: "20.00"})

	summary, err := svc.Summarize(domain.Filter{TransactionType: domain.TypeCredit})
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalTransactions)
	assert.Equal(t, int64(1), summary.CreditCount)
	assert.Equal(t, int64(0), summary.DebitCount)
	assert.True(t, summary.TotalDebit.IsZero())
}

func TestSummarizeEmptyStore(t *testing.T) {
	svc, _ := newTestDashboard(t)

	summary, err := svc.Summarize(domain.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalTransactions)
	assert.True(t, summary.TotalCredit.IsZero())
	assert.True(t, summary.TotalDebit.IsZero())
}
