package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeCredit TransactionType = "credit"
	TypeDebit  TransactionType = "debit"
)

func (t TransactionType) Valid() bool {
	return t == TypeCredit || t == TypeDebit
}

type TransactionStatus string

const (
	StatusPending TransactionStatus = "pending"
	StatusSuccess TransactionStatus = "success"
	StatusFailed  TransactionStatus = "failed"
)

func (s TransactionStatus) Valid() bool {
	return s == StatusPending || s == StatusSuccess || s == StatusFailed
}

type Transaction struct {
	TransactionID   string            `json:"transaction_id"`
	UserID          string            `json:"user_id"`
	AccountNumber   string            `json:"account_number"`
	TransactionType TransactionType   `json:"transaction_type"`
	Amount          decimal.Decimal   `json:"amount"`
	Category        string            `json:"category"`
	Status          TransactionStatus `json:"status"`
	Timestamp       time.Time         `json:"timestamp"`
	Description     string            `json:"description"`
	IsDeleted       bool              `json:"is_deleted"`
}

// Patch carries the mutable subset of a transaction. Nil fields are left
// untouched by UpdateOne.
type Patch struct {
	Status    *TransactionStatus
	IsDeleted *bool
}

// Summary holds the dashboard running totals computed from one consistent
// read of the store.
type Summary struct {
	TotalTransactions int64           `json:"total_transactions"`
	TotalCredit       decimal.Decimal `json:"total_credit"`
	CreditCount       int64           `json:"credit_count"`
	TotalDebit        decimal.Decimal `json:"total_debit"`
	DebitCount        int64           `json:"debit_count"`
}

// TransactionStore is the persistence boundary for ledger transactions.
// Every method excludes soft-deleted rows except Get, which is the explicit
// override used to classify per-id bulk failures.
type TransactionStore interface {
	Insert(tx *Transaction) error
	// Get returns the record even when soft-deleted, or (nil, nil) when the
	// id does not exist at all.
	Get(transactionID string) (*Transaction, error)
	Find(filter Filter, sort Sort, skip, limit int) ([]*Transaction, error)
	Count(filter Filter) (int64, error)
	// UpdateOne reports whether a live record matched the id.
	UpdateOne(transactionID string, patch Patch) (bool, error)
	Summarize(filter Filter) (*Summary, error)
	Categories() ([]string, error)
}
