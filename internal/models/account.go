package models

import "time"

// AccountType classifies a bank account.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountInvestment AccountType = "investment"
)

// Valid reports whether t is a supported account type.
func (t AccountType) Valid() bool {
	return t == AccountChecking || t == AccountSavings || t == AccountInvestment
}

// BankAccount represents a bank account. Only checking accounts participate
// in the today-estimate; investment balances are an additive buffer layered
// on top of a scenario balance, never simulated forward.
type BankAccount struct {
	ID               string      `json:"id"`
	OwnerID          string      `json:"owner_id"`
	Name             string      `json:"name"`
	Type             AccountType `json:"type"`
	BalanceCents     Cents       `json:"balance_cents"`
	BalanceUpdatedAt *time.Time  `json:"balance_updated_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}
