// Package controller owns the client-visible transaction list state: page,
// sort, filters, category drill-down and the multi-select set. Every state
// change goes through one transition method, and transitions are serialized,
// so no update can apply out of order relative to when it was issued.
package controller

import (
	"sort"
	"sync"

	"financial-ledger/internal/domain"
	"financial-ledger/internal/errors"
	"financial-ledger/internal/service"
)

// Credential is the explicit per-session credential attached to every
// backend call. Lifecycle: acquire on login, attach per request, clear on
// logout or a 401.
type Credential struct {
	Token string
}

func (c Credential) IsZero() bool {
	return c.Token == ""
}

// Querier executes a list request on behalf of the session.
type Querier interface {
	List(cred Credential, p service.ListParams) ([]*domain.Transaction, int, error)
}

// Mutator applies bulk actions on behalf of the session.
type Mutator interface {
	BulkUpdateStatus(cred Credential, ids []string, status domain.TransactionStatus) (*service.BulkResult, error)
	BulkSoftDelete(cred Credential, ids []string) (*service.BulkResult, error)
}

type FilterKey string

const (
	FilterType     FilterKey = "transaction_type"
	FilterCategory FilterKey = "category"
	FilterStatus   FilterKey = "status"
	FilterAccount  FilterKey = "account_number"
)

type Action string

const (
	ActionMarkSuccess Action = "markSuccess"
	ActionMarkFailed  Action = "markFailed"
	ActionSoftDelete  Action = "softDelete"
)

type Controller struct {
	mu      sync.Mutex
	querier Querier
	mutator Mutator
	cred    Credential

	page       int
	pageSize   int
	sortBy     domain.Sort
	filter     domain.Filter
	drillDown  string
	rows       []*domain.Transaction
	totalPages int
	selection  map[string]bool
}

func New(querier Querier, mutator Mutator) *Controller {
	return &Controller{
		querier:    querier,
		mutator:    mutator,
		page:       1,
		pageSize:   service.DefaultPageSize,
		sortBy:     domain.DefaultSort(),
		totalPages: 1,
		selection:  make(map[string]bool),
	}
}

// SetCredential installs the session credential acquired at login.
func (c *Controller) SetCredential(cred Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cred = cred
}

// ClearCredential drops the session credential, on logout or a rejected
// request.
func (c *Controller) ClearCredential() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cred = Credential{}
}

// Refresh re-runs the current query. Used for the initial load and after
// external mutations.
func (c *Controller) Refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requery()
}

// SetFilter applies an exact-match filter value (empty clears it), resets to
// the first page and re-queries. A drill-down that conflicts with the new
// filter is cleared.
func (c *Controller) SetFilter(key FilterKey, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch key {
	case FilterType:
		c.filter.TransactionType = domain.TransactionType(value)
	case FilterCategory:
		c.filter.Category = value
	case FilterStatus:
		c.filter.Status = domain.TransactionStatus(value)
	case FilterAccount:
		c.filter.AccountNumber = value
	default:
		return errors.NewAppErrorf(errors.InvalidInput, "unknown filter key %q", key)
	}

	// Only a category filter that moves away from the drilled category
	// conflicts with the drill-down; other filters narrow within it.
	if c.drillDown != "" && key == FilterCategory && value != c.drillDown {
		c.drillDown = ""
	}
	c.page = 1
	return c.requery()
}

// SetSort toggles direction when the key repeats, otherwise sorts ascending
// by the new key. The page is deliberately not reset.
func (c *Controller) SetSort(key domain.SortKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sortBy.Key == key && c.sortBy.Direction == domain.SortAsc {
		c.sortBy.Direction = domain.SortDesc
	} else {
		c.sortBy = domain.Sort{Key: key, Direction: domain.SortAsc}
	}
	return c.requery()
}

func (c *Controller) SetPage(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n < 1 {
		return errors.NewAppErrorf(errors.InvalidQuery, "page must be positive, got %d", n)
	}
	c.page = n
	return c.requery()
}

// DrillIntoCategory filters to one category and widens the page, because the
// intent is "show everything in this category".
func (c *Controller) DrillIntoCategory(category string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filter.Category = category
	c.drillDown = category
	c.page = 1
	return c.requery()
}

// ClearDrillDown removes the category filter and restores the default page
// size.
func (c *Controller) ClearDrillDown() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filter.Category = ""
	c.drillDown = ""
	c.page = 1
	return c.requery()
}

// Select marks or unmarks one row. Ids not on the current page are ignored;
// selection never refers to rows the user cannot see.
func (c *Controller) Select(id string, selected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !selected {
		delete(c.selection, id)
		return
	}
	for _, row := range c.rows {
		if row.TransactionID == id {
			c.selection[id] = true
			return
		}
	}
}

func (c *Controller) SelectAll(selected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selection = make(map[string]bool)
	if selected {
		for _, row := range c.rows {
			c.selection[row.TransactionID] = true
		}
	}
}

// BulkAction applies the action to the current selection, then clears the
// selection and re-queries regardless of partial failure. Failed ids come
// back to the caller for display.
func (c *Controller) BulkAction(action Action) (*service.BulkResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.selection) == 0 {
		return nil, errors.ErrEmptySelection
	}

	ids := make([]string, 0, len(c.selection))
	for id := range c.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var result *service.BulkResult
	var err error
	switch action {
	case ActionMarkSuccess:
		result, err = c.mutator.BulkUpdateStatus(c.cred, ids, domain.StatusSuccess)
	case ActionMarkFailed:
		result, err = c.mutator.BulkUpdateStatus(c.cred, ids, domain.StatusFailed)
	case ActionSoftDelete:
		result, err = c.mutator.BulkSoftDelete(c.cred, ids)
	default:
		return nil, errors.NewAppErrorf(errors.InvalidInput, "unknown bulk action %q", action)
	}
	if err != nil {
		return nil, err
	}

	c.selection = make(map[string]bool)
	if requeryErr := c.requery(); requeryErr != nil {
		// The mutation already happened; surface its outcome and let the
		// caller retry the fetch.
		return result, requeryErr
	}
	return result, nil
}

// requery executes the current query and reconciles the selection against
// the fetched page. Callers hold the lock. On failure the previous rows stay
// visible.
func (c *Controller) requery() error {
	rows, totalPages, err := c.querier.List(c.cred, service.ListParams{
		Filter:    c.filter,
		Sort:      c.sortBy,
		Page:      c.page,
		PageSize:  c.pageSize,
		DrillDown: c.drillDown != "",
	})
	if err != nil {
		return err
	}

	c.rows = rows
	c.totalPages = totalPages

	// Drop selected ids that are no longer on the loaded page.
	onPage := make(map[string]bool, len(rows))
	for _, row := range rows {
		onPage[row.TransactionID] = true
	}
	for id := range c.selection {
		if !onPage[id] {
			delete(c.selection, id)
		}
	}
	return nil
}

func (c *Controller) Rows() []*domain.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := make([]*domain.Transaction, len(c.rows))
	copy(rows, c.rows)
	return rows
}

func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

func (c *Controller) Sort() domain.Sort {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortBy
}

func (c *Controller) Filter() domain.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *Controller) DrillDown() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drillDown
}

// Selection returns the selected ids in stable order.
func (c *Controller) Selection() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.selection))
	for id := range c.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
