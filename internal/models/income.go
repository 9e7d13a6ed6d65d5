package models

import "time"

// Project represents a recurring monthly income (salary, freelance retainer).
type Project struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	AmountCents Cents     `json:"amount_cents"`
	Certainty   Certainty `json:"certainty"`
	DayOfMonth  int       `json:"day_of_month"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SingleShotIncome represents a one-off, non-recurring income.
type SingleShotIncome struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	AmountCents Cents     `json:"amount_cents"`
	Date        Date      `json:"date"`
	Certainty   Certainty `json:"certainty"`
	CreatedAt   time.Time `json:"created_at"`
}
