package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/cofrinho/cashflow-service/internal/models"
)

// Inputs is the snapshot of household entities a projection run consumes.
// Entities arrive validated and deduplicated by the persistence layer; the
// engine only re-checks the anchors it depends on.
type Inputs struct {
	Accounts         []models.BankAccount
	Projects         []models.Project
	SingleIncomes    []models.SingleShotIncome
	FixedExpenses    []models.FixedExpense
	SingleExpenses   []models.SingleShotExpense
	CreditCards      []models.CreditCard
	FutureStatements []models.FutureStatement
}

// EventKind distinguishes money coming in from money going out.
type EventKind string

const (
	EventIncome  EventKind = "income"
	EventExpense EventKind = "expense"
)

// Event is one dated income or expense occurrence produced by the scheduler.
type Event struct {
	Date        models.Date      `json:"date"`
	Kind        EventKind        `json:"kind"`
	SourceID    string           `json:"source_id"`
	Description string           `json:"description"`
	AmountCents models.Cents     `json:"amount_cents"`
	Certainty   models.Certainty `json:"certainty,omitempty"` // income only
}

// ScheduleEvents expands all recurring and one-off definitions into a
// date-ordered occurrence list over the horizon [start, start+days).
func ScheduleEvents(in Inputs, start models.Date, days int) ([]Event, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHorizon, days)
	}
	return scheduleRange(in, start, start, start.AddDays(days-1))
}

// scheduleRange materializes occurrences over the inclusive day range
// [from, to]. Output is ascending by date; ties keep the collection
// iteration order so identical inputs always produce identical output.
//
// billAnchor is the day from which each card's known statement balance
// counts as unpaid: the implicit bill lands at the first due day on/after
// the anchor, and is dropped when that day falls before the range. Plain
// runs anchor at the range start; the rebasing adapter anchors the forward
// run at the sync day so a statement caught up between sync and today is
// never billed a second time.
func scheduleRange(in Inputs, billAnchor, from, to models.Date) ([]Event, error) {
	if to.Before(from) {
		return nil, nil
	}

	var events []Event

	for _, p := range in.Projects {
		if p.DayOfMonth < 1 || p.DayOfMonth > 31 {
			return nil, fmt.Errorf("project %s: %w: got %d", p.ID, ErrInvalidDueDay, p.DayOfMonth)
		}
		for _, d := range monthlyOccurrences(p.DayOfMonth, from, to) {
			events = append(events, Event{
				Date:        d,
				Kind:        EventIncome,
				SourceID:    p.ID,
				Description: p.Name,
				AmountCents: p.AmountCents,
				Certainty:   p.Certainty,
			})
		}
	}

	for _, inc := range in.SingleIncomes {
		if inRange(inc.Date, from, to) {
			events = append(events, Event{
				Date:        inc.Date,
				Kind:        EventIncome,
				SourceID:    inc.ID,
				Description: inc.Name,
				AmountCents: inc.AmountCents,
				Certainty:   inc.Certainty,
			})
		}
	}

	for _, fe := range in.FixedExpenses {
		if fe.DueDay < 1 || fe.DueDay > 31 {
			return nil, fmt.Errorf("fixed expense %s: %w: got %d", fe.ID, ErrInvalidDueDay, fe.DueDay)
		}
		for _, d := range monthlyOccurrences(fe.DueDay, from, to) {
			events = append(events, Event{
				Date:        d,
				Kind:        EventExpense,
				SourceID:    fe.ID,
				Description: fe.Name,
				AmountCents: fe.AmountCents,
			})
		}
	}

	for _, se := range in.SingleExpenses {
		if inRange(se.Date, from, to) {
			events = append(events, Event{
				Date:        se.Date,
				Kind:        EventExpense,
				SourceID:    se.ID,
				Description: se.Name,
				AmountCents: se.AmountCents,
			})
		}
	}

	cardEvents, err := scheduleStatements(in.CreditCards, in.FutureStatements, billAnchor, from, to)
	if err != nil {
		return nil, err
	}
	events = append(events, cardEvents...)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

// scheduleStatements expands credit-card bills. Each card contributes its
// currently-known statement balance exactly once, at the next occurrence of
// its due day on/after billAnchor. A FutureStatement covering that card/month
// wins over the implicit bill. A bill dated before the range is dropped, not
// deferred. Every FutureStatement inside the range contributes its own
// occurrence.
func scheduleStatements(cards []models.CreditCard, future []models.FutureStatement, billAnchor, from, to models.Date) ([]Event, error) {
	forecast := make(map[string]bool, len(future))
	for _, fs := range future {
		forecast[statementKey(fs.CreditCardID, fs.TargetYear, fs.TargetMonth)] = true
	}

	cardsByID := make(map[string]models.CreditCard, len(cards))
	var events []Event

	for _, c := range cards {
		if c.DueDay < 1 || c.DueDay > 31 {
			return nil, fmt.Errorf("credit card %s: %w: got %d", c.ID, ErrInvalidDueDay, c.DueDay)
		}
		cardsByID[c.ID] = c

		due := nextDueDate(c.DueDay, billAnchor)
		if !inRange(due, from, to) {
			continue
		}
		if forecast[statementKey(c.ID, due.Year, due.Month)] {
			continue
		}
		events = append(events, Event{
			Date:        due,
			Kind:        EventExpense,
			SourceID:    c.ID,
			Description: c.Name,
			AmountCents: c.StatementBalanceCents,
		})
	}

	for _, fs := range future {
		card, ok := cardsByID[fs.CreditCardID]
		if !ok {
			// Orphaned forecast; the persistence layer owns referential
			// integrity, so an unknown card is simply not schedulable.
			continue
		}
		due := models.ClampedDate(fs.TargetYear, fs.TargetMonth, card.DueDay)
		if inRange(due, from, to) {
			events = append(events, Event{
				Date:        due,
				Kind:        EventExpense,
				SourceID:    fs.CreditCardID,
				Description: card.Name,
				AmountCents: fs.AmountCents,
			})
		}
	}
	return events, nil
}

// monthlyOccurrences anchors day to every month the inclusive range [from,
// to] touches, clamping anchors past short months to the month's last day,
// and keeps the occurrences that land inside the range.
func monthlyOccurrences(day int, from, to models.Date) []models.Date {
	var out []models.Date
	for cursor := models.NewDate(from.Year, from.Month, 1); !cursor.After(to); cursor = cursor.AddMonths(1) {
		occ := models.ClampedDate(cursor.Year, cursor.Month, day)
		if inRange(occ, from, to) {
			out = append(out, occ)
		}
	}
	return out
}

// nextDueDate finds the first occurrence of dueDay on/after anchor.
func nextDueDate(dueDay int, anchor models.Date) models.Date {
	due := models.ClampedDate(anchor.Year, anchor.Month, dueDay)
	if due.Before(anchor) {
		next := anchor.AddMonths(1)
		due = models.ClampedDate(next.Year, next.Month, dueDay)
	}
	return due
}

func inRange(d, from, to models.Date) bool {
	return !d.Before(from) && !d.After(to)
}

func statementKey(cardID string, year int, month time.Month) string {
	return fmt.Sprintf("%s/%04d-%02d", cardID, year, int(month))
}
