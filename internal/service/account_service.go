package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"financial-ledger/internal/domain"
	"financial-ledger/internal/errors"
	"financial-ledger/internal/repository"
)

// AccountService is the account-transfer collaborator: it applies a
// credit/debit submission to an account balance and records the resulting
// ledger transaction in one database transaction.
type AccountService struct {
	store  *repository.Store
	logger *slog.Logger
}

func NewAccountService(store *repository.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

func (s *AccountService) CreateAccount(accountNumber string, initialBalance decimal.Decimal) (*domain.Account, error) {
	s.logger.Info("Creating account", "account_number", accountNumber, "initial_balance", initialBalance)

	if accountNumber == "" {
		return nil, errors.NewAppError(errors.InvalidInput, "account number is required")
	}
	if initialBalance.IsNegative() {
		return nil, errors.ErrInvalidAmount
	}

	account := &domain.Account{
		AccountNumber: accountNumber,
		Balance:       initialBalance,
	}

	if err := s.store.Account().CreateAccount(account); err != nil {
		return nil, err
	}

	s.logger.Info("Account created successfully", "account_number", account.AccountNumber)
	return account, nil
}

func (s *AccountService) GetAccount(accountNumber string) (*domain.Account, error) {
	if accountNumber == "" {
		return nil, errors.NewAppError(errors.InvalidInput, "account number is required")
	}
	return s.store.Account().GetAccount(accountNumber)
}

// SubmitTransaction applies a credit or debit to the account and persists
// the transaction. A debit exceeding the balance fails with
// insufficient_funds and is still recorded as a failed transaction.
func (s *AccountService) SubmitTransaction(p SubmitParams) (*domain.Transaction, error) {
	if !p.TransactionType.Valid() {
		return nil, errors.NewAppError(errors.InvalidInput, "transaction_type must be credit or debit")
	}
	if !p.Amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}
	if p.AccountNumber == "" {
		return nil, errors.NewAppError(errors.InvalidInput, "account number is required")
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

	s.logger.Info("Processing account transaction",
		"transaction_id", tx.TransactionID,
		"account_number", tx.AccountNumber,
		"transaction_type", tx.TransactionType,
		"amount", tx.Amount)

	err := s.store.WithTransaction(func(txStore *repository.Store) error {
		account, err := txStore.Account().GetAccountForUpdate(tx.AccountNumber)
		if err != nil {
			return err
		}

		var newBalance decimal.Decimal
		if tx.TransactionType == domain.TypeCredit {
			newBalance = account.Balance.Add(tx.Amount)
		} else {
			if account.Balance.LessThan(tx.Amount) {
				return errors.ErrInsufficientFunds
			}
			newBalance = account.Balance.Sub(tx.Amount)
		}

		if err := txStore.Account().UpdateAccountBalance(tx.AccountNumber, newBalance); err != nil {
			return err
		}

		tx.Status = domain.StatusSuccess
		return txStore.Transactions().Insert(tx)
	})

	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.InsufficientFunds {
			// Keep the failed attempt in the ledger for the audit trail.
			tx.Status = domain.StatusFailed
			if insertErr := s.store.Transactions().Insert(tx); insertErr != nil {
				s.logger.Error("Failed to record failed transaction", "error", insertErr)
			}
		}
		s.logger.Error("Account transaction failed", "transaction_id", tx.TransactionID, "error", err)
		return nil, err
	}

	s.logger.Info("Account transaction completed", "transaction_id", tx.TransactionID)
	return tx, nil
}
