package errors

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidQuery         ErrorCode = "invalid_query"
	EmptySelection       ErrorCode = "empty_selection"
	NotFound             ErrorCode = "not_found"
	AlreadyDeleted       ErrorCode = "already_deleted"
	StoreUnavailable     ErrorCode = "store_unavailable"
	InsufficientFunds    ErrorCode = "insufficient_funds"
	AccountNotFound      ErrorCode = "account_not_found"
	DuplicateAccount     ErrorCode = "duplicate_account"
	DuplicateTransaction ErrorCode = "duplicate_transaction"
	InvalidInput         ErrorCode = "invalid_input"
	InvalidAmount        ErrorCode = "invalid_amount"
	InternalError        ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// HTTPStatus maps the error code to the status for the API boundary.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case NotFound, AccountNotFound:
		return http.StatusNotFound
	case DuplicateAccount, DuplicateTransaction, AlreadyDeleted:
		return http.StatusConflict
	case InvalidQuery, EmptySelection, InvalidInput, InvalidAmount:
		return http.StatusBadRequest
	case InsufficientFunds:
		return http.StatusUnprocessableEntity
	case StoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Predefined errors for common cases
var (
	ErrEmptySelection         = NewAppError(EmptySelection, "no transactions selected")
	ErrTransactionNotFound    = NewAppError(NotFound, "transaction not found")
	ErrAlreadyDeleted         = NewAppError(AlreadyDeleted, "transaction already deleted")
	ErrAccountNotFound        = NewAppError(AccountNotFound, "account not found")
	ErrDuplicateAccount       = NewAppError(DuplicateAccount, "account already exists")
	ErrDuplicateTransaction   = NewAppError(DuplicateTransaction, "transaction already recorded")
	ErrInsufficientFunds      = NewAppError(InsufficientFunds, "Insufficient funds")
	ErrInvalidAmount          = NewAppError(InvalidAmount, "amount must be positive")
	ErrCannotBeginTransaction = NewAppError(InternalError, "executor cannot begin a transaction")
)
