package models

import "time"

// FixedExpense represents a monthly recurring expense (rent, subscriptions).
// DueDay anchors the occurrence; anchors past a short month's end clamp to
// the month's last day.
type FixedExpense struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	AmountCents Cents     `json:"amount_cents"`
	DueDay      int       `json:"due_day"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SingleShotExpense represents a one-off expense on a specific date.
type SingleShotExpense struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	AmountCents Cents     `json:"amount_cents"`
	Date        Date      `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}
