package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"financial-ledger/internal/domain"
	"financial-ledger/internal/errors"
)

const (
	// DefaultPageSize applies when the caller omits or botches pageSize.
	DefaultPageSize = 10
	// DrillDownPageSize is the widened page for category drill-down. The UI
	// intent there is "show everything in this category", not paginate it.
	DrillDownPageSize = 100
)

type TransactionService struct {
	store  domain.TransactionStore
	logger *slog.Logger
}

func NewTransactionService(store domain.TransactionStore, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		store:  store,
		logger: logger,
	}
}

// ListParams is a (filters, sort, page) request. Zero values fall back to
// defaults rather than failing the caller.
type ListParams struct {
	Filter    domain.Filter
	Sort      domain.Sort
	Page      int
	PageSize  int
	DrillDown bool
}

// normalize corrects invalid query parameters to defaults. Bad input is
// logged, never surfaced as a hard failure, so a confused client still gets
// a usable page.
func (s *TransactionService) normalize(p ListParams) ListParams {
	if !p.Sort.Key.Valid() {
		if p.Sort.Key != "" {
			s.logger.Warn("Invalid sort key, falling back to default",
				"code", errors.InvalidQuery, "sort_key", string(p.Sort.Key))
		}
		p.Sort = domain.DefaultSort()
	} else if !p.Sort.Direction.Valid() {
		if p.Sort.Direction != "" {
			s.logger.Warn("Invalid sort direction, falling back to ascending",
				"code", errors.InvalidQuery, "sort_direction", string(p.Sort.Direction))
		}
		p.Sort.Direction = domain.SortAsc
	}

	if p.Page < 1 {
		if p.Page != 0 {
			s.logger.Warn("Invalid page, falling back to first page",
				"code", errors.InvalidQuery, "page", p.Page)
		}
		p.Page = 1
	}
	if p.PageSize < 1 {
		if p.PageSize != 0 {
			s.logger.Warn("Invalid page size, falling back to default",
				"code", errors.InvalidQuery, "page_size", p.PageSize)
		}
		p.PageSize = DefaultPageSize
	}
	if p.DrillDown && p.Filter.Category != "" {
		p.PageSize = DrillDownPageSize
	}
	return p
}

// List returns one stable page of the filtered, sorted transaction set and
// the total page count. Soft-deleted records never appear.
func (s *TransactionService) List(p ListParams) ([]*domain.Transaction, int, error) {
	p = s.normalize(p)

	count, err := s.store.Count(p.Filter)
	if err != nil {
		return nil, 0, err
	}

	totalPages := int((count + int64(p.PageSize) - 1) / int64(p.PageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	skip := (p.Page - 1) * p.PageSize
	rows, err := s.store.Find(p.Filter, p.Sort, skip, p.PageSize)
	if err != nil {
		return nil, 0, err
	}

	return rows, totalPages, nil
}

// SubmitParams carries a credit/debit submission. TransactionID is optional;
// one is generated when absent.
type SubmitParams struct {
	TransactionID   string
	UserID          string
	AccountNumber   string
	TransactionType domain.TransactionType
	Amount          decimal.Decimal
	Category        string
	Description     string
	Timestamp       time.Time
}

// Submit records a new transaction with status pending.
func (s *TransactionService) Submit(p SubmitParams) (*domain.Transaction, error) {
	if !p.TransactionType.Valid() {
		return nil, errors.NewAppError(errors.InvalidInput, "transaction_type must be credit or debit")
	}
	if !p.Amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	tx := &domain.Transaction{
		TransactionID:   p.TransactionID,
		UserID:          p.UserID,
		AccountNumber:   p.AccountNumber,
		TransactionType: p.TransactionType,
		Amount:          p.Amount,
		Category:        p.Category,
		Status:          domain.StatusPending,
		Timestamp:       p.Timestamp,
		Description:     p.Description,
	}
	if tx.TransactionID == "" {
		tx.TransactionID = uuid.New().String()
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now()
	}

	if err := s.store.Insert(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Categories lists the distinct categories of live transactions.
func (s *TransactionService) Categories() ([]string, error) {
	return s.store.Categories()
}

type BulkFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// BulkResult partitions a bulk action into per-id outcomes. Partial success
// is the normal case, not an exceptional one.
type BulkResult struct {
	Updated []string
	Failed  []BulkFailure
}

// BulkUpdateStatus sets status on each id independently. Repeating the
// action on an already-matching record succeeds trivially.
func (s *TransactionService) BulkUpdateStatus(ids []string, status domain.TransactionStatus) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, errors.ErrEmptySelection
	}
	if !status.Valid() {
		return nil, errors.NewAppError(errors.InvalidInput, "invalid status")
	}

	result := &BulkResult{Updated: make([]string, 0, len(ids))}
	for _, id := range ids {
		ok, err := s.store.UpdateOne(id, domain.Patch{Status: &status})
		if err != nil {
			return nil, err
		}
		if ok {
			result.Updated = append(result.Updated, id)
			continue
		}
		result.Failed = append(result.Failed, s.classifyFailure(id))
	}

	s.logger.Info("Bulk status update applied",
		"status", status, "updated", len(result.Updated), "failed", len(result.Failed))
	return result, nil
}

// BulkSoftDelete marks each id deleted. Re-deleting an already-deleted id is
// reported per-id so stale client state surfaces instead of vanishing.
func (s *TransactionService) BulkSoftDelete(ids []string) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, errors.ErrEmptySelection
	}

	deleted := true
	result := &BulkResult{Updated: make([]string, 0, len(ids))}
	for _, id := range ids {
		ok, err := s.store.UpdateOne(id, domain.Patch{IsDeleted: &deleted})
		if err != nil {
			return nil, err
		}
		if ok {
			result.Updated = append(result.Updated, id)
			continue
		}
		result.Failed = append(result.Failed, s.classifyFailure(id))
	}

	s.logger.Info("Bulk soft delete applied",
		"updated", len(result.Updated), "failed", len(result.Failed))
	return result, nil
}

// classifyFailure decides why an UpdateOne found no live record: the id is
// unknown, or the record was already soft-deleted.
func (s *TransactionService) classifyFailure(id string) BulkFailure {
	tx, err := s.store.Get(id)
	switch {
	case err != nil:
		return BulkFailure{ID: id, Reason: string(errors.StoreUnavailable)}
	case tx == nil:
		return BulkFailure{ID: id, Reason: string(errors.NotFound)}
	case tx.IsDeleted:
		return BulkFailure{ID: id, Reason: string(errors.AlreadyDeleted)}
	default:
		// Lost a race with a concurrent delete between update and lookup.
		return BulkFailure{ID: id, Reason: string(errors.NotFound)}
	}
}
