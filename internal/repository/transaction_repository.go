package repository

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"financial-ledger/internal/domain"
	"financial-ledger/internal/errors"
)

// sortColumns whitelists the ORDER BY targets; anything else never reaches
// the SQL layer.
var sortColumns = map[domain.SortKey]string{
	domain.SortByType:      "transaction_type",
	domain.SortByCategory:  "category",
	domain.SortByStatus:    "status",
	domain.SortByTimestamp: "timestamp",
	domain.SortByAmount:    "amount",
}

type transactionStore struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransactionStore(db SQLExecutor, logger *slog.Logger) domain.TransactionStore {
	return &transactionStore{
		db:     db,
		logger: logger,
	}
}

func (r *transactionStore) Insert(tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions
		(transaction_id, user_id, account_number, transaction_type, amount, category, status, timestamp, description, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(
		query,
		tx.TransactionID,
		tx.UserID,
		tx.AccountNumber,
		string(tx.TransactionType),
		tx.Amount.String(),
		tx.Category,
		string(tx.Status),
		tx.Timestamp,
		tx.Description,
		tx.IsDeleted,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				r.logger.Warn("Duplicate transaction id", "transaction_id", tx.TransactionID)
				return errors.ErrDuplicateTransaction
			}
		}
		r.logger.Error("Failed to insert transaction", "transaction_id", tx.TransactionID, "error", err)
		return errors.NewAppError(errors.StoreUnavailable, "failed to insert transaction").WithDetails(err.Error())
	}

	r.logger.Info("Transaction inserted", "transaction_id", tx.TransactionID)
	return nil
}

// Get looks the id up regardless of the soft-delete flag so callers can tell
// a missing record from a deleted one.
func (r *transactionStore) Get(transactionID string) (*domain.Transaction, error) {
	query := selectColumns + ` FROM transactions WHERE transaction_id = $1`

	row := r.db.QueryRow(query, transactionID)
	tx, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get transaction", "transaction_id", transactionID, "error", err)
		return nil, errors.NewAppError(errors.StoreUnavailable, "failed to get transaction").WithDetails(err.Error())
	}
	return tx, nil
}

func (r *transactionStore) Find(filter domain.Filter, sort domain.Sort, skip, limit int) ([]*domain.Transaction, error) {
	where, args := buildWhere(filter)

	column, ok := sortColumns[sort.Key]
	if !ok {
		column = "timestamp"
	}
	direction := "ASC"
	if sort.Direction == domain.SortDesc {
		direction = "DESC"
	}

	query := fmt.Sprintf(
		"%s FROM transactions %s ORDER BY %s %s, transaction_id ASC LIMIT $%d OFFSET $%d",
		selectColumns, where, column, direction, len(args)+1, len(args)+2,
	)
	args = append(args, limit, skip)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to query transactions", "error", err)
		return nil, errors.NewAppError(errors.StoreUnavailable, "failed to query transactions").WithDetails(err.Error())
	}
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to scan transaction").WithDetails(err.Error())
		}
		result = append(result, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.StoreUnavailable, "failed to read transactions").WithDetails(err.Error())
	}

	return result, nil
}

func (r *transactionStore) Count(filter domain.Filter) (int64, error) {
	where, args := buildWhere(filter)

	var count int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM transactions "+where, args...).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count transactions", "error", err)
		return 0, errors.NewAppError(errors.StoreUnavailable, "failed to count transactions").WithDetails(err.Error())
	}
	return count, nil
}

func (r *transactionStore) UpdateOne(transactionID string, patch domain.Patch) (bool, error) {
	sets := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)

	if patch.Status != nil {
		args = append(args, string(*patch.Status))
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if patch.IsDeleted != nil {
		args = append(args, *patch.IsDeleted)
		sets = append(sets, fmt.Sprintf("is_deleted = $%d", len(args)))
	}
	if len(sets) == 0 {
		return false, errors.NewAppError(errors.InvalidInput, "empty patch")
	}

	args = append(args, transactionID)
	query := fmt.Sprintf(
		"UPDATE transactions SET %s WHERE transaction_id = $%d AND is_deleted = FALSE",
		strings.Join(sets, ", "), len(args),
	)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		r.logger.Error("Failed to update transaction", "transaction_id", transactionID, "error", err)
		return false, errors.NewAppError(errors.StoreUnavailable, "failed to update transaction").WithDetails(err.Error())
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewAppError(errors.InternalError, "failed to get rows affected").WithDetails(err.Error())
	}

	return affected > 0, nil
}

// Summarize computes every dashboard total inside a single statement so the
// figures come from one consistent read.
func (r *transactionStore) Summarize(filter domain.Filter) (*domain.Summary, error) {
	where, args := buildWhere(filter)

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'credit'), 0),
			COUNT(*) FILTER (WHERE transaction_type = 'credit'),
			COALESCE(SUM(amount) FILTER (WHERE transaction_type = 'debit'), 0),
			COUNT(*) FILTER (WHERE transaction_type = 'debit')
		FROM transactions ` + where

	var summary domain.Summary
	var creditStr, debitStr string

	err := r.db.QueryRow(query, args...).Scan(
		&summary.TotalTransactions,
		&creditStr,
		&summary.CreditCount,
		&debitStr,
		&summary.DebitCount,
	)
	if err != nil {
		r.logger.Error("Failed to summarize transactions", "error", err)
		return nil, errors.NewAppError(errors.StoreUnavailable, "failed to summarize transactions").WithDetails(err.Error())
	}

	if summary.TotalCredit, err = decimal.NewFromString(creditStr); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to parse credit total").WithDetails(err.Error())
	}
	if summary.TotalDebit, err = decimal.NewFromString(debitStr); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to parse debit total").WithDetails(err.Error())
	}

	return &summary, nil
}

func (r *transactionStore) Categories() ([]string, error) {
	query := `
		SELECT DISTINCT category FROM transactions
		WHERE is_deleted = FALSE AND category <> ''
		ORDER BY category
	`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to query categories", "error", err)
		return nil, errors.NewAppError(errors.StoreUnavailable, "failed to query categories").WithDetails(err.Error())
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to scan category").WithDetails(err.Error())
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.StoreUnavailable, "failed to read categories").WithDetails(err.Error())
	}

	return categories, nil
}

const selectColumns = `SELECT transaction_id, user_id, account_number, transaction_type, amount, category, status, timestamp, description, is_deleted`

// buildWhere renders the AND-composed equality predicates. Soft-deleted rows
// are always excluded here; Get is the only override.
func buildWhere(filter domain.Filter) (string, []interface{}) {
	clauses := []string{"is_deleted = FALSE"}
	var args []interface{}

	if filter.TransactionType != "" {
		args = append(args, string(filter.TransactionType))
		clauses = append(clauses, fmt.Sprintf("transaction_type = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AccountNumber != "" {
		args = append(args, filter.AccountNumber)
		clauses = append(clauses, fmt.Sprintf("account_number = $%d", len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var tx domain.Transaction
	var amountStr, txType, status string

	err := row.Scan(
		&tx.TransactionID,
		&tx.UserID,
		&tx.AccountNumber,
		&txType,
		&amountStr,
		&tx.Category,
		&status,
		&tx.Timestamp,
		&tx.Description,
		&tx.IsDeleted,
	)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}

	tx.Amount = amount
	tx.TransactionType = domain.TransactionType(txType)
	tx.Status = domain.TransactionStatus(status)
	return &tx, nil
}
