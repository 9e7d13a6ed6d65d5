package engine

import (
	"testing"
	"time"

	"github.com/cofrinho/cashflow-service/internal/models"
)

func spTime(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, models.Location())
}

func checkingAccount(id string, balance models.Cents, updatedAt *time.Time) models.BankAccount {
	return models.BankAccount{
		ID:               id,
		Type:             models.AccountChecking,
		BalanceCents:     balance,
		BalanceUpdatedAt: updatedAt,
	}
}

func TestEstimateTodayWithoutUsableTimestamp(t *testing.T) {
	in := Inputs{
		Accounts: []models.BankAccount{
			checkingAccount("c1", 100000, nil),
			{ID: "inv", Type: models.AccountInvestment, BalanceCents: 900000},
		},
	}
	clock := FixedClock(spTime(2025, time.March, 20, 15))

	est, err := EstimateToday(in, clock)
	if err != nil {
		t.Fatalf("EstimateToday: %v", err)
	}
	if est.HasBase {
		t.Fatal("HasBase = true, want false when no checking account has a sync timestamp")
	}
	if !est.Today.Equal(date(2025, time.March, 20)) {
		t.Fatalf("Today = %s, want 2025-03-20", est.Today)
	}
	// Balances still reflect the flat checking sum; investments never count.
	if est.OptimisticCents != 100000 || est.PessimisticCents != 100000 {
		t.Fatalf("balances = %d/%d, want 100000/100000", est.OptimisticCents, est.PessimisticCents)
	}
}

func TestEstimateTodayCatchUpSplitsScenarios(t *testing.T) {
	synced := spTime(2025, time.March, 10, 9)
	in := Inputs{
		Accounts: []models.BankAccount{
			checkingAccount("c1", 100000, &synced),
		},
		FixedExpenses: []models.FixedExpense{
			{ID: "rent", AmountCents: 200000, DueDay: 10},
		},
		Projects: []models.Project{
			{ID: "salary", AmountCents: 500000, Certainty: models.CertaintyGuaranteed, DayOfMonth: 15},
		},
		SingleIncomes: []models.SingleShotIncome{
			{ID: "gig", AmountCents: 30000, Date: date(2025, time.March, 18), Certainty: models.CertaintyProbable},
		},
	}
	clock := FixedClock(spTime(2025, time.March, 20, 15))

	est, err := EstimateToday(in, clock)
	if err != nil {
		t.Fatalf("EstimateToday: %v", err)
	}
	if !est.HasBase {
		t.Fatal("HasBase = false, want true")
	}
	// Window Mar 10..Mar 20: rent on the sync day itself counts, the
	// guaranteed salary counts in both scenarios, the probable gig only in
	// the optimistic one.
	wantPess := models.Cents(100000 - 200000 + 500000)
	wantOpt := wantPess + 30000
	if est.PessimisticCents != wantPess {
		t.Errorf("pessimistic = %d, want %d", est.PessimisticCents, wantPess)
	}
	if est.OptimisticCents != wantOpt {
		t.Errorf("optimistic = %d, want %d", est.OptimisticCents, wantOpt)
	}
}

func TestEstimateTodayIgnoresNonCheckingAccounts(t *testing.T) {
	synced := spTime(2025, time.March, 15, 9)
	in := Inputs{
		Accounts: []models.BankAccount{
			checkingAccount("c1", 50000, &synced),
			{ID: "sav", Type: models.AccountSavings, BalanceCents: 1000000, BalanceUpdatedAt: &synced},
			{ID: "inv", Type: models.AccountInvestment, BalanceCents: 2000000, BalanceUpdatedAt: &synced},
		},
	}
	clock := FixedClock(spTime(2025, time.March, 20, 15))

	est, err := EstimateToday(in, clock)
	if err != nil {
		t.Fatalf("EstimateToday: %v", err)
	}
	if est.OptimisticCents != 50000 || est.PessimisticCents != 50000 {
		t.Fatalf("balances = %d/%d, want 50000/50000 (checking only)", est.OptimisticCents, est.PessimisticCents)
	}
}

func TestEstimateTodayMultipleCheckingAccounts(t *testing.T) {
	syncedA := spTime(2025, time.March, 18, 9)
	in := Inputs{
		Accounts: []models.BankAccount{
			checkingAccount("a", 100000, &syncedA),
			checkingAccount("b", 40000, nil), // no timestamp, flat contribution
		},
		SingleExpenses: []models.SingleShotExpense{
			{ID: "mkt", AmountCents: 10000, Date: date(2025, time.March, 19)},
		},
	}
	clock := FixedClock(spTime(2025, time.March, 20, 15))

	est, err := EstimateToday(in, clock)
	if err != nil {
		t.Fatalf("EstimateToday: %v", err)
	}
	if !est.HasBase {
		t.Fatal("HasBase = false, want true (one account has a timestamp)")
	}
	want := models.Cents(100000 + 40000 - 10000)
	if est.OptimisticCents != want || est.PessimisticCents != want {
		t.Fatalf("balances = %d/%d, want %d", est.OptimisticCents, est.PessimisticCents, want)
	}
}

func TestCheckingBalanceAndInvestmentBuffer(t *testing.T) {
	accounts := []models.BankAccount{
		{Type: models.AccountChecking, BalanceCents: 100},
		{Type: models.AccountChecking, BalanceCents: 200},
		{Type: models.AccountSavings, BalanceCents: 5000},
		{Type: models.AccountInvestment, BalanceCents: 70000},
		{Type: models.AccountInvestment, BalanceCents: 30000},
	}
	if got := CheckingBalance(accounts); got != 300 {
		t.Fatalf("CheckingBalance = %d, want 300", got)
	}
	if got := InvestmentBuffer(accounts); got != 100000 {
		t.Fatalf("InvestmentBuffer = %d, want 100000", got)
	}
}
