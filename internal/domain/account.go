package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type AccountRepository interface {
	CreateAccount(account *Account) error
	GetAccount(accountNumber string) (*Account, error)
	GetAccountForUpdate(accountNumber string) (*Account, error)
	UpdateAccountBalance(accountNumber string, newBalance decimal.Decimal) error
}
