package capability

import (
	"context"
	"time"
)

// AccountType classifies a bank account.
type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
	AccountCard     AccountType = "card"
	AccountLoan     AccountType = "loan"
	AccountMarket   AccountType = "market"
	AccountUnknown  AccountType = "unknown"
)

// Amount is a monetary value in minor units (cents) with its currency code.
// Minor units avoid the float rounding issues that plague balance math.
type Amount struct {
	Minor    int64  `json:"minor"`
	Currency string `json:"currency"`
}

// Float returns the amount in major units, for display only.
func (a Amount) Float() float64 {
	return float64(a.Minor) / 100
}

// Account is a bank account as exposed by a backend.
type Account struct {
	ID      string      `json:"id"`
	Label   string      `json:"label"`
	Number  string      `json:"number,omitempty"`
	IBAN    string      `json:"iban,omitempty"`
	Type    AccountType `json:"type"`
	Balance Amount      `json:"balance"`
}

// Transaction is a single account operation.
type Transaction struct {
	ID       string    `json:"id,omitempty"`
	Date     time.Time `json:"date"`
	Label    string    `json:"label"`
	RawLabel string    `json:"raw_label,omitempty"`
	Amount   Amount    `json:"amount"`
	Category string    `json:"category,omitempty"`
}

// CapBank is implemented by backends that expose bank accounts and their
// transaction history.
type CapBank interface {
	Accounts(ctx context.Context) ([]Account, error)
	Transactions(ctx context.Context, accountID string) ([]Transaction, error)
}
