package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"financial-ledger/internal/domain"
	"financial-ledger/internal/errors"
	"financial-ledger/internal/service"
)

type TransactionHandler struct {
	transactionService *service.TransactionService
}

func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// filterFromQuery reads the shared filter grammar off the query string. The
// same parameters drive the list and the dashboard summary.
func filterFromQuery(r *http.Request) domain.Filter {
	q := r.URL.Query()
	return domain.Filter{
		TransactionType: domain.TransactionType(q.Get("transaction_type")),
		Category:        q.Get("category"),
		Status:          domain.TransactionStatus(q.Get("status")),
		AccountNumber:   q.Get("account_number"),
	}
}

// List handles GET /api/transactions. Invalid paging or sort input falls
// back to defaults inside the service rather than failing the page.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	drillDown, _ := strconv.ParseBool(q.Get("drilldown"))

	params := service.ListParams{
		Filter: filterFromQuery(r),
		Sort: domain.Sort{
			Key:       domain.SortKey(q.Get("sortBy")),
			Direction: domain.SortDirection(q.Get("sortDirection")),
		},
		Page:      page,
		PageSize:  pageSize,
		DrillDown: drillDown,
	}

	rows, totalPages, err := h.transactionService.List(params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if rows == nil {
		rows = []*domain.Transaction{}
	}

	writeJSON(w, http.StatusOK, Response{
		Success:    true,
		Data:       rows,
		Pagination: &Pagination{TotalPages: totalPages},
	})
}

type SubmitTransactionRequest struct {
	TransactionID   string      `json:"transaction_id,omitempty"`
	UserID          string      `json:"user_id"`
	AccountNumber   string      `json:"account_number"`
	TransactionType string      `json:"transaction_type"`
	Amount          json.Number `json:"amount"`
	Category        string      `json:"category"`
	Description     string      `json:"description,omitempty"`
}

func (r SubmitTransactionRequest) toParams() (service.SubmitParams, *errors.AppError) {
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return service.SubmitParams{}, errors.NewAppError(errors.InvalidAmount, "invalid amount format").WithDetails(err.Error())
	}
	return service.SubmitParams{
		TransactionID:   r.TransactionID,
		UserID:          r.UserID,
		AccountNumber:   r.AccountNumber,
		TransactionType: domain.TransactionType(r.TransactionType),
		Amount:          amount,
		Category:        r.Category,
		Description:     r.Description,
	}, nil
}

// Submit handles POST /api/transactions.
func (h *TransactionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	params, appErr := req.toParams()
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	tx, err := h.transactionService.Submit(params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusCreated, tx)
}

// Categories handles GET /api/transactions/categories.
func (h *TransactionHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.transactionService.Categories()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeData(w, http.StatusOK, categories)
}

type BulkUpdateStatusRequest struct {
	TransactionIDs []string `json:"transactionIds"`
	Status         string   `json:"status"`
}

type BulkDeleteRequest struct {
	TransactionIDs []string `json:"transactionIds"`
}

type BulkResponse struct {
	Success bool                  `json:"success"`
	Updated []string              `json:"updated"`
	Failed  []service.BulkFailure `json:"failed"`
}

func writeBulkResult(w http.ResponseWriter, result *service.BulkResult) {
	failed := result.Failed
	if failed == nil {
		failed = []service.BulkFailure{}
	}
	writeJSON(w, http.StatusOK, BulkResponse{
		Success: true,
		Updated: result.Updated,
		Failed:  failed,
	})
}

// BulkUpdateStatus handles POST /api/transactions/bulk-update-status.
// Per-id failures ride inside a 200; only request-level problems fail the
// call.
func (h *TransactionHandler) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req BulkUpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	result, err := h.transactionService.BulkUpdateStatus(req.TransactionIDs, domain.TransactionStatus(req.Status))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeBulkResult(w, result)
}

// BulkDelete handles POST /api/transactions/bulk-delete.
func (h *TransactionHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	result, err := h.transactionService.BulkSoftDelete(req.TransactionIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeBulkResult(w, result)
}
