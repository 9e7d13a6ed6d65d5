package models

import "time"

// CreditCard represents a credit card tracked by its statement schedule. The
// card number itself is never stored; LastFour exists only so the UI can
// tell cards apart.
type CreditCard struct {
	ID                    string    `json:"id"`
	OwnerID               string    `json:"owner_id"`
	Name                  string    `json:"name"`
	LastFour              string    `json:"last_four"`
	StatementBalanceCents Cents     `json:"statement_balance_cents"`
	DueDay                int       `json:"due_day"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// FutureStatement is a forecasted, not-yet-billed statement for a specific
// future month. It overrides the card's implicit statement forecast for that
// month.
type FutureStatement struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	CreditCardID string     `json:"credit_card_id"`
	TargetMonth  time.Month `json:"target_month"`
	TargetYear   int        `json:"target_year"`
	AmountCents  Cents      `json:"amount_cents"`
	CreatedAt    time.Time  `json:"created_at"`
}
