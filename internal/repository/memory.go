package repository

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"financial-ledger/internal/domain"
	"financial-ledger/internal/errors"
)

// MemoryStore is a thread-safe in-memory TransactionStore. It backs the unit
// tests and local development without a database.
type MemoryStore struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]*domain.Transaction),
	}
}

var _ domain.TransactionStore = (*MemoryStore)(nil)

func (m *MemoryStore) Insert(tx *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[tx.TransactionID]; ok {
		return errors.ErrDuplicateTransaction
	}
	clone := *tx
	m.transactions[tx.TransactionID] = &clone
	return nil
}

func (m *MemoryStore) Get(transactionID string) (*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.transactions[transactionID]
	if !ok {
		return nil, nil
	}
	clone := *tx
	return &clone, nil
}

func (m *MemoryStore) Find(filter domain.Filter, sortBy domain.Sort, skip, limit int) ([]*domain.Transaction, error) {
	m.mu.RLock()
	matched := m.match(filter)
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return sortBy.Less(matched[i], matched[j])
	})

	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit >= 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MemoryStore) Count(filter domain.Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.match(filter))), nil
}

func (m *MemoryStore) UpdateOne(transactionID string, patch domain.Patch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[transactionID]
	if !ok || tx.IsDeleted {
		return false, nil
	}
	if patch.Status != nil {
		tx.Status = *patch.Status
	}
	if patch.IsDeleted != nil {
		tx.IsDeleted = *patch.IsDeleted
	}
	return true, nil
}

// Summarize runs under a single lock acquisition so the totals reflect one
// snapshot of the store.
func (m *MemoryStore) Summarize(filter domain.Filter) (*domain.Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := &domain.Summary{
		TotalCredit: decimal.Zero,
		TotalDebit:  decimal.Zero,
	}
	for _, tx := range m.match(filter) {
		summary.TotalTransactions++
		switch tx.TransactionType {
		case domain.TypeCredit:
			summary.CreditCount++
			summary.TotalCredit = summary.TotalCredit.Add(tx.Amount)
		case domain.TypeDebit:
			summary.DebitCount++
			summary.TotalDebit = summary.TotalDebit.Add(tx.Amount)
		}
	}
	return summary, nil
}

func (m *MemoryStore) Categories() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	for _, tx := range m.transactions {
		if !tx.IsDeleted && tx.Category != "" {
			seen[tx.Category] = true
		}
	}

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

// match returns copies so callers never alias store-owned records. Callers
// hold at least a read lock.
func (m *MemoryStore) match(filter domain.Filter) []*domain.Transaction {
	var matched []*domain.Transaction
	for _, tx := range m.transactions {
		if filter.Matches(tx) {
			clone := *tx
			matched = append(matched, &clone)
		}
	}
	return matched
}
