package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"financial-ledger/internal/errors"
	"financial-ledger/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type CreateAccountRequest struct {
	AccountNumber  string `json:"account_number"`
	InitialBalance string `json:"initial_balance"`
}

type AccountResponse struct {
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	initialBalance, err := decimal.NewFromString(req.InitialBalance)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAmount, "invalid initial_balance format"))
		return
	}

	account, err := h.accountService.CreateAccount(req.AccountNumber, initialBalance)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusCreated, AccountResponse{
		AccountNumber: account.AccountNumber,
		Balance:       account.Balance.String(),
	})
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	accountNumber := vars["account_number"]

	account, err := h.accountService.GetAccount(accountNumber)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, AccountResponse{
		AccountNumber: account.AccountNumber,
		Balance:       account.Balance.String(),
	})
}

// SubmitTransaction handles POST /api/accounts/transaction: a credit/debit
// applied to the account balance together with the ledger record. A debit
// past the balance surfaces Insufficient funds verbatim.
func (h *AccountHandler) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
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

	tx, err := h.accountService.SubmitTransaction(params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeData(w, http.StatusCreated, tx)
}
