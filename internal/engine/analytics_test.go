package engine

import (
	"testing"
	"time"

	"github.com/cofrinho/cashflow-service/internal/models"
)

func snapshotRow(d models.Date, offset int, opt, pess models.Cents) DailySnapshot {
	return DailySnapshot{
		Date:                d,
		DayOffset:           offset,
		OptimisticBalance:   opt,
		PessimisticBalance:  pess,
		IsOptimisticDanger:  opt < 0,
		IsPessimisticDanger: pess < 0,
	}
}

func TestDangerRangesMergesAndSplitsOnSignature(t *testing.T) {
	start := date(2025, time.March, 1)
	balances := []struct{ opt, pess models.Cents }{
		{100, 50},    // safe
		{-10, -20},   // both
		{-5, -1},     // both (merge)
		{10, -30},    // pessimistic only: signature change, same-day split
		{10, -15},    // pessimistic only (merge)
		{200, 100},   // safe: closes range
		{-700, -800}, // both again
	}
	var days []DailySnapshot
	for i, b := range balances {
		days = append(days, snapshotRow(start.AddDays(i), i, b.opt, b.pess))
	}

	ranges := DangerRanges(days)
	want := []DangerRange{
		{Start: start.AddDays(1), End: start.AddDays(2), Scenario: DangerBoth},
		{Start: start.AddDays(3), End: start.AddDays(4), Scenario: DangerPessimistic},
		{Start: start.AddDays(6), End: start.AddDays(6), Scenario: DangerBoth},
	}
	if len(ranges) != len(want) {
		t.Fatalf("got %d ranges, want %d: %+v", len(ranges), len(want), ranges)
	}
	for i, r := range ranges {
		if !r.Start.Equal(want[i].Start) || !r.End.Equal(want[i].End) || r.Scenario != want[i].Scenario {
			t.Errorf("range %d = %+v, want %+v", i, r, want[i])
		}
	}
}

func TestDangerRangesCoverExactlyTheFlaggedDays(t *testing.T) {
	p, err := Simulate(householdInputs(), date(2025, time.January, 1), 90, FlatSeed(100000))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	ranges := DangerRanges(p.Days)

	covered := make(map[models.Date]bool)
	var prevEnd models.Date
	for i, r := range ranges {
		if i > 0 && !r.Start.After(prevEnd) {
			t.Fatalf("range %d starting %s overlaps previous ending %s", i, r.Start, prevEnd)
		}
		prevEnd = r.End
		for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
			covered[d] = true
		}
	}
	for _, snap := range p.Days {
		flagged := snap.IsOptimisticDanger || snap.IsPessimisticDanger
		if covered[snap.Date] != flagged {
			t.Fatalf("day %s: covered=%v flagged=%v", snap.Date, covered[snap.Date], flagged)
		}
	}
}

func TestDangerRangesEmptyInputs(t *testing.T) {
	if got := DangerRanges(nil); len(got) != 0 {
		t.Fatalf("nil input: got %+v, want none", got)
	}
	safe := []DailySnapshot{
		snapshotRow(date(2025, time.March, 1), 0, 10, 5),
		snapshotRow(date(2025, time.March, 2), 1, 20, 15),
	}
	if got := DangerRanges(safe); len(got) != 0 {
		t.Fatalf("all-safe horizon: got %+v, want none", got)
	}
}

func TestSummarizeFindsFirstMinimum(t *testing.T) {
	start := date(2025, time.March, 1)
	p := &CashflowProjection{
		StartDate:   start,
		EndDate:     start.AddDays(3),
		Optimistic:  ScenarioTotals{StartingBalance: 100, TotalIncome: 500, TotalExpenses: 450, EndBalance: 150, DangerDayCount: 2},
		Pessimistic: ScenarioTotals{StartingBalance: 100, TotalIncome: 200, TotalExpenses: 450, EndBalance: -150, DangerDayCount: 3},
		Days: []DailySnapshot{
			snapshotRow(start, 0, 50, -150),
			snapshotRow(start.AddDays(1), 1, -40, -150), // pess minimum ties day 0
			snapshotRow(start.AddDays(2), 2, -40, -100), // opt minimum ties day 1
			snapshotRow(start.AddDays(3), 3, 150, -150), // pess ties again
		},
	}

	opt, pess := Summarize(p)
	if opt.MinBalance != -40 || !opt.MinBalanceDate.Equal(start.AddDays(1)) {
		t.Fatalf("optimistic min = %d on %s, want -40 on first achieving day %s",
			opt.MinBalance, opt.MinBalanceDate, start.AddDays(1))
	}
	if pess.MinBalance != -150 || !pess.MinBalanceDate.Equal(start) {
		t.Fatalf("pessimistic min = %d on %s, want -150 on %s", pess.MinBalance, pess.MinBalanceDate, start)
	}
	if opt.Surplus != 50 {
		t.Fatalf("optimistic surplus = %d, want 50", opt.Surplus)
	}
	if pess.Surplus != -250 {
		t.Fatalf("pessimistic surplus = %d, want -250", pess.Surplus)
	}
	if opt.TotalIncome != 500 || pess.TotalIncome != 200 || opt.DangerDayCount != 2 || pess.DangerDayCount != 3 {
		t.Fatal("totals must pass through from the projection")
	}
}
