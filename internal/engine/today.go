package engine

import (
	"fmt"

	"github.com/cofrinho/cashflow-service/internal/models"
)

// EstimatedTodayBalance is the best-known "as of right now" balance pair.
// When HasBase is false no checking account had a usable sync timestamp and
// callers must fall back to a plain same-day projection.
type EstimatedTodayBalance struct {
	HasBase          bool         `json:"has_base"`
	Today            models.Date  `json:"today"`
	OptimisticCents  models.Cents `json:"optimistic_cents"`
	PessimisticCents models.Cents `json:"pessimistic_cents"`
}

// EstimateToday combines the last persisted checking balances with the
// events scheduled between each balance's sync day and today.
//
// The catch-up window for an account covers the calendar days
// day(balanceUpdatedAt)..today inclusive: the sync time within that day is
// unknowable, and counting the sync day is the only boundary under which
// catch-up plus a forward simulation starting tomorrow equals one
// simulation started at the sync day.
func EstimateToday(in Inputs, clock Clock) (EstimatedTodayBalance, error) {
	// Computed once, not per account, so multi-account households stay on
	// one calendar day.
	today := models.DateOf(clock.Now())

	est := EstimatedTodayBalance{Today: today}
	for _, acc := range in.Accounts {
		if acc.Type != models.AccountChecking {
			continue
		}
		est.OptimisticCents += acc.BalanceCents
		est.PessimisticCents += acc.BalanceCents

		if acc.BalanceUpdatedAt == nil {
			continue
		}
		est.HasBase = true

		from := models.DateOf(*acc.BalanceUpdatedAt)
		if from.After(today) {
			// A sync timestamp from the future contributes its balance but
			// has nothing to catch up on.
			continue
		}
		events, err := scheduleRange(in, from, from, today)
		if err != nil {
			return EstimatedTodayBalance{}, fmt.Errorf("estimate today: %w", err)
		}
		for _, ev := range events {
			switch ev.Kind {
			case EventIncome:
				est.OptimisticCents += ev.AmountCents
				if ev.Certainty == models.CertaintyGuaranteed {
					est.PessimisticCents += ev.AmountCents
				}
			case EventExpense:
				est.OptimisticCents -= ev.AmountCents
				est.PessimisticCents -= ev.AmountCents
			}
		}
	}
	return est, nil
}

// CheckingBalance sums the persisted balances of all checking accounts, the
// flat starting value used when no rebase is possible.
func CheckingBalance(accounts []models.BankAccount) models.Cents {
	var total models.Cents
	for _, acc := range accounts {
		if acc.Type == models.AccountChecking {
			total += acc.BalanceCents
		}
	}
	return total
}

// InvestmentBuffer sums investment account balances. These are reported as
// an additive buffer on top of a scenario balance and never simulated
// forward.
func InvestmentBuffer(accounts []models.BankAccount) models.Cents {
	var total models.Cents
	for _, acc := range accounts {
		if acc.Type == models.AccountInvestment {
			total += acc.BalanceCents
		}
	}
	return total
}
