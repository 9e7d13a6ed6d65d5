// Package money converts integer cents to display amounts. The engine never
// divides; everything here is presentation only.
package money

import (
	"fmt"

	"github.com/cofrinho/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// Decimal converts cents to an exact two-decimal value.
func Decimal(c models.Cents) decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Format renders cents as a BRL display string, e.g. "R$ 1234.56".
func Format(c models.Cents) string {
	return "R$ " + Decimal(c).StringFixed(2)
}

// Parse converts a decimal amount string ("1234.56") to cents. Amounts with
// more than two decimal places are rejected rather than rounded.
func Parse(s string) (models.Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %q has sub-cent precision", s)
	}
	return models.Cents(cents.IntPart()), nil
}
