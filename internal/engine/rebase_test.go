package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/cofrinho/cashflow-service/internal/models"
)

func rebaseInputs(synced *time.Time) Inputs {
	return Inputs{
		Accounts: []models.BankAccount{
			{ID: "c1", Type: models.AccountChecking, BalanceCents: 100000, BalanceUpdatedAt: synced},
		},
		Projects: []models.Project{
			{ID: "salary", AmountCents: 500000, Certainty: models.CertaintyGuaranteed, DayOfMonth: 15},
		},
		FixedExpenses: []models.FixedExpense{
			{ID: "rent", AmountCents: 200000, DueDay: 10},
		},
	}
}

func TestBuildProjectionRebasesOnEstimatedToday(t *testing.T) {
	synced := spTime(2025, time.March, 10, 9)
	in := rebaseInputs(&synced)
	clock := FixedClock(spTime(2025, time.March, 20, 15))

	res, err := BuildProjection(in, 30, clock)
	if err != nil {
		t.Fatalf("BuildProjection: %v", err)
	}
	if !res.EstimatedToday.HasBase {
		t.Fatal("HasBase = false, want true")
	}

	p := res.Projection
	if len(p.Days) != 30 {
		t.Fatalf("got %d days, want exactly the requested horizon of 30", len(p.Days))
	}
	day0 := p.Days[0]
	if !day0.Date.Equal(date(2025, time.March, 20)) || day0.DayOffset != 0 {
		t.Fatalf("day 0 = %+v, want today at offset 0", day0)
	}
	if day0.OptimisticBalance != res.EstimatedToday.OptimisticCents ||
		day0.PessimisticBalance != res.EstimatedToday.PessimisticCents {
		t.Fatal("day 0 balances must come from the estimated-today pair")
	}
	if len(day0.IncomeEvents) != 0 || len(day0.ExpenseEvents) != 0 {
		t.Fatal("synthetic day 0 must carry no events")
	}
	// Forward simulation begins tomorrow.
	if !p.Days[1].Date.Equal(date(2025, time.March, 21)) {
		t.Fatalf("day 1 dated %s, want 2025-03-21", p.Days[1].Date)
	}
	for i, snap := range p.Days {
		if snap.DayOffset != i {
			t.Fatalf("offset %d at index %d, want contiguous renumbering", snap.DayOffset, i)
		}
	}

	// Catch-up: rent (Mar 10, the sync day) and salary (Mar 15) already
	// applied; forward walk crosses April's rent and salary.
	wantToday := models.Cents(100000 - 200000 + 500000)
	if day0.PessimisticBalance != wantToday {
		t.Fatalf("day 0 pessimistic = %d, want %d", day0.PessimisticBalance, wantToday)
	}
	wantEnd := wantToday - 200000 + 500000
	if p.Optimistic.EndBalance != wantEnd || p.Pessimistic.EndBalance != wantEnd {
		t.Fatalf("end balances = %d/%d, want %d", p.Optimistic.EndBalance, p.Pessimistic.EndBalance, wantEnd)
	}
}

// The total effect of catch-up plus forward simulation must equal one plain
// simulation started at the sync day over the same overall span. The card
// due day 15 falls inside the catch-up window; the one due day 25 lands in
// the forward window.
func TestBuildProjectionNeverDoubleCountsEvents(t *testing.T) {
	synced := spTime(2025, time.March, 10, 9)
	in := rebaseInputs(&synced)
	in.CreditCards = []models.CreditCard{
		{ID: "visa", Name: "Visa", StatementBalanceCents: 150000, DueDay: 15},
		{ID: "amex", Name: "Amex", StatementBalanceCents: 90000, DueDay: 25},
	}
	clock := FixedClock(spTime(2025, time.March, 20, 15))

	res, err := BuildProjection(in, 30, clock)
	if err != nil {
		t.Fatalf("BuildProjection: %v", err)
	}

	// Mar 10..Apr 18 is the same span the rebased run covers end to end.
	reference, err := Simulate(in, date(2025, time.March, 10), 40, FlatSeed(100000))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if res.Projection.Optimistic.EndBalance != reference.Optimistic.EndBalance {
		t.Fatalf("optimistic end = %d, reference = %d",
			res.Projection.Optimistic.EndBalance, reference.Optimistic.EndBalance)
	}
	if res.Projection.Pessimistic.EndBalance != reference.Pessimistic.EndBalance {
		t.Fatalf("pessimistic end = %d, reference = %d",
			res.Projection.Pessimistic.EndBalance, reference.Pessimistic.EndBalance)
	}
}

// A statement caught up between the sync day and today is part of the
// estimate and must not be billed again by the forward walk; a statement due
// after today is billed exactly once, in the forward walk.
func TestBuildProjectionBillsCardStatementsOnce(t *testing.T) {
	synced := spTime(2025, time.March, 10, 9)
	in := Inputs{
		Accounts: []models.BankAccount{
			{ID: "c1", Type: models.AccountChecking, BalanceCents: 1000000, BalanceUpdatedAt: &synced},
		},
		CreditCards: []models.CreditCard{
			{ID: "visa", Name: "Visa", StatementBalanceCents: 150000, DueDay: 15},
			{ID: "amex", Name: "Amex", StatementBalanceCents: 90000, DueDay: 25},
		},
	}
	clock := FixedClock(spTime(2025, time.March, 20, 15))

	res, err := BuildProjection(in, 30, clock)
	if err != nil {
		t.Fatalf("BuildProjection: %v", err)
	}

	// Visa's Mar 15 bill is inside the Mar 10..20 catch-up window.
	wantToday := models.Cents(1000000 - 150000)
	if res.EstimatedToday.PessimisticCents != wantToday {
		t.Fatalf("estimated today = %d, want %d", res.EstimatedToday.PessimisticCents, wantToday)
	}

	bills := map[string]int{}
	for _, day := range res.Projection.Days {
		for _, ev := range day.ExpenseEvents {
			bills[ev.SourceID]++
		}
	}
	if bills["visa"] != 0 {
		t.Fatalf("visa billed %d more times after catch-up, want 0", bills["visa"])
	}
	if bills["amex"] != 1 {
		t.Fatalf("amex billed %d times, want exactly 1 (Mar 25)", bills["amex"])
	}

	wantEnd := models.Cents(1000000 - 150000 - 90000)
	if res.Projection.Pessimistic.EndBalance != wantEnd {
		t.Fatalf("rebased end = %d, want %d", res.Projection.Pessimistic.EndBalance, wantEnd)
	}
	reference, err := Simulate(in, date(2025, time.March, 10), 40, FlatSeed(1000000))
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if reference.Pessimistic.EndBalance != wantEnd {
		t.Fatalf("reference end = %d, want %d", reference.Pessimistic.EndBalance, wantEnd)
	}
}

func TestBuildProjectionFallsBackWithoutBase(t *testing.T) {
	in := rebaseInputs(nil)
	// Today is the 10th: rent is due today and must be included once,
	// normally, by the same-day simulation.
	clock := FixedClock(spTime(2025, time.March, 10, 8))

	res, err := BuildProjection(in, 30, clock)
	if err != nil {
		t.Fatalf("BuildProjection: %v", err)
	}
	if res.EstimatedToday.HasBase {
		t.Fatal("HasBase = true, want false")
	}

	p := res.Projection
	if len(p.Days) != 30 {
		t.Fatalf("got %d days, want 30", len(p.Days))
	}
	day0 := p.Days[0]
	if !day0.Date.Equal(date(2025, time.March, 10)) {
		t.Fatalf("day 0 dated %s, want today", day0.Date)
	}
	if len(day0.ExpenseEvents) != 1 || day0.ExpenseEvents[0].SourceID != "rent" {
		t.Fatalf("day 0 events = %+v, want today's rent applied once", day0.ExpenseEvents)
	}
	if day0.PessimisticBalance != 100000-200000 {
		t.Fatalf("day 0 pessimistic = %d, want -100000", day0.PessimisticBalance)
	}
}

func TestBuildProjectionSingleDayHorizon(t *testing.T) {
	synced := spTime(2025, time.March, 10, 9)
	in := rebaseInputs(&synced)
	clock := FixedClock(spTime(2025, time.March, 20, 15))

	res, err := BuildProjection(in, 1, clock)
	if err != nil {
		t.Fatalf("BuildProjection: %v", err)
	}
	p := res.Projection
	if len(p.Days) != 1 {
		t.Fatalf("got %d days, want 1", len(p.Days))
	}
	if !p.StartDate.Equal(p.EndDate) || !p.StartDate.Equal(res.EstimatedToday.Today) {
		t.Fatalf("range = %s..%s, want today only", p.StartDate, p.EndDate)
	}
	if p.Optimistic.EndBalance != res.EstimatedToday.OptimisticCents {
		t.Fatal("single-day projection must carry the estimated balance through")
	}
}

func TestBuildProjectionRejectsNonPositiveHorizon(t *testing.T) {
	clock := FixedClock(spTime(2025, time.March, 20, 15))
	if _, err := BuildProjection(Inputs{}, 0, clock); !errors.Is(err, ErrInvalidHorizon) {
		t.Fatalf("err = %v, want ErrInvalidHorizon", err)
	}
}
