package engine

import (
	"fmt"

	"github.com/cofrinho/cashflow-service/internal/models"
)

// DailySnapshot is one simulated day: both scenario balances after that
// day's events, the events themselves, and the danger flags.
type DailySnapshot struct {
	Date                models.Date  `json:"date"`
	DayOffset           int          `json:"day_offset"`
	OptimisticBalance   models.Cents `json:"optimistic_balance"`
	PessimisticBalance  models.Cents `json:"pessimistic_balance"`
	IncomeEvents        []Event      `json:"income_events,omitempty"`
	ExpenseEvents       []Event      `json:"expense_events,omitempty"`
	IsOptimisticDanger  bool         `json:"is_optimistic_danger"`
	IsPessimisticDanger bool         `json:"is_pessimistic_danger"`
}

// ScenarioTotals aggregates one scenario over the whole horizon.
type ScenarioTotals struct {
	StartingBalance models.Cents `json:"starting_balance"`
	TotalIncome     models.Cents `json:"total_income"`
	TotalExpenses   models.Cents `json:"total_expenses"`
	EndBalance      models.Cents `json:"end_balance"`
	DangerDayCount  int          `json:"danger_day_count"`
}

// CashflowProjection is the simulator's complete output. It is freshly
// allocated on every run and consumed read-only downstream.
type CashflowProjection struct {
	StartDate       models.Date     `json:"start_date"`
	EndDate         models.Date     `json:"end_date"`
	StartingBalance models.Cents    `json:"starting_balance"`
	Days            []DailySnapshot `json:"days"`
	Optimistic      ScenarioTotals  `json:"optimistic"`
	Pessimistic     ScenarioTotals  `json:"pessimistic"`
}

// ScenarioSeed carries the two starting balances. They differ only when the
// rebasing adapter seeds from an estimated-today pair.
type ScenarioSeed struct {
	Optimistic  models.Cents
	Pessimistic models.Cents
}

// FlatSeed seeds both scenarios from the same balance.
func FlatSeed(c models.Cents) ScenarioSeed {
	return ScenarioSeed{Optimistic: c, Pessimistic: c}
}

// Simulate walks the horizon one calendar day at a time for exactly days
// iterations, folding scheduled events into two running balances.
//
// The optimistic balance takes every income; the pessimistic balance takes
// only guaranteed income. Expenses hit both. All arithmetic is exact
// integer cents.
func Simulate(in Inputs, start models.Date, days int, seed ScenarioSeed) (*CashflowProjection, error) {
	return simulateAnchored(in, start, start, days, seed)
}

// simulateAnchored is Simulate with an explicit card-billing anchor. The
// rebasing adapter anchors the forward run at the sync day, so a statement
// already folded into the catch-up estimate falls before the simulated range
// and is not billed again.
func simulateAnchored(in Inputs, billAnchor, start models.Date, days int, seed ScenarioSeed) (*CashflowProjection, error) {
	if days <= 0 {
		return nil, fmt.Errorf("simulate: %w: got %d", ErrInvalidHorizon, days)
	}
	if start.IsZero() {
		return nil, fmt.Errorf("simulate: %w: zero start date", ErrInvalidDate)
	}

	events, err := scheduleRange(in, billAnchor, start, start.AddDays(days-1))
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	byDay := make(map[models.Date][]Event, len(events))
	for _, ev := range events {
		byDay[ev.Date] = append(byDay[ev.Date], ev)
	}

	p := &CashflowProjection{
		StartDate:       start,
		EndDate:         start.AddDays(days - 1),
		StartingBalance: seed.Optimistic,
		Days:            make([]DailySnapshot, 0, days),
		Optimistic:      ScenarioTotals{StartingBalance: seed.Optimistic},
		Pessimistic:     ScenarioTotals{StartingBalance: seed.Pessimistic},
	}

	optimistic := seed.Optimistic
	pessimistic := seed.Pessimistic

	for offset := 0; offset < days; offset++ {
		day := start.AddDays(offset)
		snap := DailySnapshot{Date: day, DayOffset: offset}

		for _, ev := range byDay[day] {
			switch ev.Kind {
			case EventIncome:
				optimistic += ev.AmountCents
				p.Optimistic.TotalIncome += ev.AmountCents
				if ev.Certainty == models.CertaintyGuaranteed {
					pessimistic += ev.AmountCents
					p.Pessimistic.TotalIncome += ev.AmountCents
				}
				snap.IncomeEvents = append(snap.IncomeEvents, ev)
			case EventExpense:
				optimistic -= ev.AmountCents
				pessimistic -= ev.AmountCents
				p.Optimistic.TotalExpenses += ev.AmountCents
				p.Pessimistic.TotalExpenses += ev.AmountCents
				snap.ExpenseEvents = append(snap.ExpenseEvents, ev)
			}
		}

		snap.OptimisticBalance = optimistic
		snap.PessimisticBalance = pessimistic
		snap.IsOptimisticDanger = optimistic < 0
		snap.IsPessimisticDanger = pessimistic < 0
		if snap.IsOptimisticDanger {
			p.Optimistic.DangerDayCount++
		}
		if snap.IsPessimisticDanger {
			p.Pessimistic.DangerDayCount++
		}
		p.Days = append(p.Days, snap)
	}

	p.Optimistic.EndBalance = optimistic
	p.Pessimistic.EndBalance = pessimistic
	return p, nil
}
