package engine

import (
	"fmt"

	"github.com/cofrinho/cashflow-service/internal/models"
)

// ProjectionResult bundles a projection with the estimated-today balance it
// was (or was not) rebased on.
type ProjectionResult struct {
	Projection     *CashflowProjection   `json:"projection"`
	EstimatedToday EstimatedTodayBalance `json:"estimated_today"`
}

// BuildProjection stitches the estimated-today balance onto a forward
// simulation as a synthetic day 0.
//
// When a base exists, today's events are already folded into the estimate,
// so the simulator starts tomorrow and runs days-1 further steps; the
// returned horizon still holds exactly days entries. When no base exists the
// simulator starts today and includes today's events once, normally.
func BuildProjection(in Inputs, days int, clock Clock) (*ProjectionResult, error) {
	if days <= 0 {
		return nil, fmt.Errorf("build projection: %w: got %d", ErrInvalidHorizon, days)
	}

	est, err := EstimateToday(in, clock)
	if err != nil {
		return nil, fmt.Errorf("build projection: %w", err)
	}

	if !est.HasBase {
		p, err := Simulate(in, est.Today, days, FlatSeed(CheckingBalance(in.Accounts)))
		if err != nil {
			return nil, fmt.Errorf("build projection: %w", err)
		}
		return &ProjectionResult{Projection: p, EstimatedToday: est}, nil
	}

	day0 := DailySnapshot{
		Date:                est.Today,
		DayOffset:           0,
		OptimisticBalance:   est.OptimisticCents,
		PessimisticBalance:  est.PessimisticCents,
		IsOptimisticDanger:  est.OptimisticCents < 0,
		IsPessimisticDanger: est.PessimisticCents < 0,
	}

	if days == 1 {
		p := &CashflowProjection{
			StartDate:       est.Today,
			EndDate:         est.Today,
			StartingBalance: est.OptimisticCents,
			Days:            []DailySnapshot{day0},
			Optimistic:      rebasedTotals(est.OptimisticCents, day0.IsOptimisticDanger),
			Pessimistic:     rebasedTotals(est.PessimisticCents, day0.IsPessimisticDanger),
		}
		return &ProjectionResult{Projection: p, EstimatedToday: est}, nil
	}

	seed := ScenarioSeed{Optimistic: est.OptimisticCents, Pessimistic: est.PessimisticCents}
	forwardStart := est.Today.AddDays(1)

	// Card statements bill from the earliest sync day, not from tomorrow. A
	// statement whose due day fell inside a catch-up window is already part
	// of the estimate; re-anchoring the forward walk at tomorrow would bill
	// the same known balance a second time next month.
	anchor, ok := earliestSyncDay(in.Accounts, est.Today)
	if !ok {
		anchor = forwardStart
	}
	forward, err := simulateAnchored(in, anchor, forwardStart, days-1, seed)
	if err != nil {
		return nil, fmt.Errorf("build projection: %w", err)
	}

	p := &CashflowProjection{
		StartDate:       est.Today,
		EndDate:         forward.EndDate,
		StartingBalance: est.OptimisticCents,
		Days:            make([]DailySnapshot, 0, days),
		Optimistic:      forward.Optimistic,
		Pessimistic:     forward.Pessimistic,
	}
	p.Days = append(p.Days, day0)
	for _, snap := range forward.Days {
		snap.DayOffset++
		p.Days = append(p.Days, snap)
	}
	if day0.IsOptimisticDanger {
		p.Optimistic.DangerDayCount++
	}
	if day0.IsPessimisticDanger {
		p.Pessimistic.DangerDayCount++
	}
	return &ProjectionResult{Projection: p, EstimatedToday: est}, nil
}

// earliestSyncDay finds the oldest usable checking sync day on/before today.
// It is the day card billing is anchored at when composing catch-up with a
// forward simulation.
func earliestSyncDay(accounts []models.BankAccount, today models.Date) (models.Date, bool) {
	var earliest models.Date
	var found bool
	for _, acc := range accounts {
		if acc.Type != models.AccountChecking || acc.BalanceUpdatedAt == nil {
			continue
		}
		d := models.DateOf(*acc.BalanceUpdatedAt)
		if d.After(today) {
			continue
		}
		if !found || d.Before(earliest) {
			earliest = d
			found = true
		}
	}
	return earliest, found
}

func rebasedTotals(balance models.Cents, danger bool) ScenarioTotals {
	t := ScenarioTotals{StartingBalance: balance, EndBalance: balance}
	if danger {
		t.DangerDayCount = 1
	}
	return t
}
