package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financial-ledger/internal/domain"
	"financial-ledger/internal/errors"
)

func memTx(id string) *domain.Transaction {
	return &domain.Transaction{
		TransactionID:   id,
		TransactionType: domain.TypeDebit,
		Amount:          decimal.NewFromInt(10),
		Status:          domain.StatusPending,
		Timestamp:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStoreInsertDuplicate(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Insert(memTx("a")))
	assert.Equal(t, errors.ErrDuplicateTransaction, store.Insert(memTx("a")))
}

func TestMemoryStoreGetIncludesDeleted(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Insert(memTx("a")))

	del := true
	ok, err := store.UpdateOne("a", domain.Patch{IsDeleted: &del})
	require.NoError(t, err)
	require.True(t, ok)

	// Find never sees the row again.
	rows, err := store.Find(domain.Filter{}, domain.DefaultSort(), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// Get is the explicit override.
	tx, err := store.Get("a")
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.True(t, tx.IsDeleted)

	// A second delete finds no live record.
	ok, err = store.UpdateOne("a", domain.Patch{IsDeleted: &del})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Insert(memTx("a")))

	tx, err := store.Get("a")
	require.NoError(t, err)
	tx.Status = domain.StatusFailed

	again, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, again.Status, "callers never alias store-owned records")
}

func TestMemoryStoreFindSkipPastEnd(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Insert(memTx("a")))

	rows, err := store.Find(domain.Filter{}, domain.DefaultSort(), 50, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
