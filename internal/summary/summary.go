// Package summary aggregates a user's transactions into totals, a realized
// balance as of a reference instant, and projected pending income.
//
// Every function here is pure: the caller supplies the transactions and the
// reference instant, and the result is recomputed from scratch on each call.
package summary

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"paisa/internal/models"
)

// Summary holds the aggregates over a collection of transactions.
type Summary struct {
	Income        decimal.Decimal `json:"income"`
	Expenses      decimal.Decimal `json:"expenses"`
	Balance       decimal.Decimal `json:"balance"`
	BalanceToDate decimal.Decimal `json:"balanceToDate"`
	PendingIncome decimal.Decimal `json:"pendingIncome"`
	Count         int             `json:"count"`
}

// Negative reports whether the all-time balance is below zero.
func (s Summary) Negative() bool {
	return s.Balance.IsNegative()
}

// Compute aggregates txs as of now.
//
// Income, Expenses and Balance ignore dates. BalanceToDate only counts
// transactions dated at or before now. PendingIncome counts income dated after
// now whose credit cycle has already elapsed by now; for non-negative cycles
// that window is empty, so it stays zero unless a negative cycle is supplied.
func Compute(txs []models.Transaction, now time.Time) Summary {
	s := Summary{
		Income:        decimal.Zero,
		Expenses:      decimal.Zero,
		BalanceToDate: decimal.Zero,
		PendingIncome: decimal.Zero,
		Count:         len(txs),
	}

	for _, t := range txs {
		switch t.Type {
		case models.TransactionTypeIncome:
			s.Income = s.Income.Add(t.Amount)
		case models.TransactionTypeExpense:
			s.Expenses = s.Expenses.Add(t.Amount)
		}

		if !t.Date.After(now) {
			s.BalanceToDate = s.BalanceToDate.Add(t.Signed())
		} else if isPending(t, now) {
			s.PendingIncome = s.PendingIncome.Add(t.Amount)
		}
	}

	s.Balance = s.Income.Sub(s.Expenses)
	return s
}

// isPending expects t.Date to be after now.
func isPending(t models.Transaction, now time.Time) bool {
	if t.Type != models.TransactionTypeIncome || t.CreditCycle == nil {
		return false
	}
	matures := t.Date.AddDate(0, 0, *t.CreditCycle)
	return !matures.After(now)
}

// InMonth returns the transactions whose date falls in the given calendar
// month, evaluated in loc.
func InMonth(txs []models.Transaction, year int, month time.Month, loc *time.Location) []models.Transaction {
	var out []models.Transaction
	for _, t := range txs {
		d := t.Date.In(loc)
		if d.Year() == year && d.Month() == month {
			out = append(out, t)
		}
	}
	return out
}

// ForMonth computes the summary of a single calendar month.
func ForMonth(txs []models.Transaction, year int, month time.Month, loc *time.Location, now time.Time) Summary {
	return Compute(InMonth(txs, year, month, loc), now)
}

// DayTotal is the per-day annotation shown on a calendar cell.
type DayTotal struct {
	Day      time.Time       `json:"day"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
	// Closing is the running balance over all days up to and including Day.
	Closing decimal.Decimal `json:"closing"`
	Count   int             `json:"count"`
}

// Days groups txs by calendar day in loc, in ascending day order, with a
// running closing balance carried across days.
func Days(txs []models.Transaction, loc *time.Location) []DayTotal {
	sorted := make([]models.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var days []DayTotal
	running := decimal.Zero
	for _, t := range sorted {
		day := StartOfDay(t.Date, loc)
		if len(days) == 0 || !days[len(days)-1].Day.Equal(day) {
			days = append(days, DayTotal{
				Day:      day,
				Income:   decimal.Zero,
				Expenses: decimal.Zero,
				Net:      decimal.Zero,
			})
		}
		cur := &days[len(days)-1]
		if t.Type == models.TransactionTypeIncome {
			cur.Income = cur.Income.Add(t.Amount)
		} else {
			cur.Expenses = cur.Expenses.Add(t.Amount)
		}
		cur.Net = cur.Net.Add(t.Signed())
		running = running.Add(t.Signed())
		cur.Closing = running
		cur.Count++
	}
	return days
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	d := t.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}
