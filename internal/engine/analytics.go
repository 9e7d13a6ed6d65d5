package engine

import "github.com/cofrinho/cashflow-service/internal/models"

// DangerScenario is the scenario signature of a danger range.
type DangerScenario string

const (
	DangerOptimistic  DangerScenario = "optimistic"
	DangerPessimistic DangerScenario = "pessimistic"
	DangerBoth        DangerScenario = "both"
)

// DangerRange is a contiguous run of days sharing one danger signature,
// ready for chart shading.
type DangerRange struct {
	Start    models.Date    `json:"start"`
	End      models.Date    `json:"end"`
	Scenario DangerScenario `json:"scenario"`
}

// DangerRanges merges consecutive flagged days into ranges. A safe day
// closes the open range; a signature change on a still-dangerous day closes
// the range and opens a new one on that same day, leaving no gap.
func DangerRanges(days []DailySnapshot) []DangerRange {
	var (
		ranges []DangerRange
		open   bool
		cur    DangerRange
	)
	for _, snap := range days {
		sig, dangerous := signature(snap)
		switch {
		case !dangerous:
			if open {
				ranges = append(ranges, cur)
				open = false
			}
		case !open:
			cur = DangerRange{Start: snap.Date, End: snap.Date, Scenario: sig}
			open = true
		case cur.Scenario == sig:
			cur.End = snap.Date
		default:
			ranges = append(ranges, cur)
			cur = DangerRange{Start: snap.Date, End: snap.Date, Scenario: sig}
		}
	}
	if open {
		ranges = append(ranges, cur)
	}
	return ranges
}

func signature(snap DailySnapshot) (DangerScenario, bool) {
	switch {
	case snap.IsOptimisticDanger && snap.IsPessimisticDanger:
		return DangerBoth, true
	case snap.IsOptimisticDanger:
		return DangerOptimistic, true
	case snap.IsPessimisticDanger:
		return DangerPessimistic, true
	default:
		return "", false
	}
}

// ScenarioSummary is the per-scenario roll-up shown on summary cards.
type ScenarioSummary struct {
	TotalIncome    models.Cents `json:"total_income"`
	TotalExpenses  models.Cents `json:"total_expenses"`
	EndBalance     models.Cents `json:"end_balance"`
	MinBalance     models.Cents `json:"min_balance"`
	MinBalanceDate models.Date  `json:"min_balance_date"`
	Surplus        models.Cents `json:"surplus"`
	DangerDayCount int          `json:"danger_day_count"`
}

// Summarize derives both scenario summaries from a projection in one linear
// scan. MinBalanceDate is the first day achieving the minimum.
func Summarize(p *CashflowProjection) (optimistic, pessimistic ScenarioSummary) {
	optimistic = ScenarioSummary{
		TotalIncome:    p.Optimistic.TotalIncome,
		TotalExpenses:  p.Optimistic.TotalExpenses,
		EndBalance:     p.Optimistic.EndBalance,
		Surplus:        p.Optimistic.EndBalance - p.Optimistic.StartingBalance,
		DangerDayCount: p.Optimistic.DangerDayCount,
	}
	pessimistic = ScenarioSummary{
		TotalIncome:    p.Pessimistic.TotalIncome,
		TotalExpenses:  p.Pessimistic.TotalExpenses,
		EndBalance:     p.Pessimistic.EndBalance,
		Surplus:        p.Pessimistic.EndBalance - p.Pessimistic.StartingBalance,
		DangerDayCount: p.Pessimistic.DangerDayCount,
	}
	for i, snap := range p.Days {
		if i == 0 || snap.OptimisticBalance < optimistic.MinBalance {
			optimistic.MinBalance = snap.OptimisticBalance
			optimistic.MinBalanceDate = snap.Date
		}
		if i == 0 || snap.PessimisticBalance < pessimistic.MinBalance {
			pessimistic.MinBalance = snap.PessimisticBalance
			pessimistic.MinBalanceDate = snap.Date
		}
	}
	return optimistic, pessimistic
}
