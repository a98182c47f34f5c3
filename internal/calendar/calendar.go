// Package calendar maps transactions onto calendar days and drives the
// day-summary / edit interaction over a transaction backend.
package calendar

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"paisa/internal/models"
	"paisa/internal/summary"
)

// Event colours per transaction type.
const (
	ExpenseColor = "#ef4444"
	IncomeColor  = "#10b981"
)

// Event is one transaction rendered on the calendar.
type Event struct {
	Title       string             `json:"title"`
	Date        time.Time          `json:"date"`
	Color       string             `json:"color"`
	Transaction models.Transaction `json:"transaction"`
}

// DayOf returns the calendar day of t in loc, at midnight.
func DayOf(t time.Time, loc *time.Location) time.Time {
	return summary.StartOfDay(t, loc)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayOf(a, loc).Equal(DayOf(b, loc))
}

// TransactionsOn returns the transactions dated on day, ignoring time of day.
// Order is preserved.
func TransactionsOn(txs []models.Transaction, day time.Time, loc *time.Location) []models.Transaction {
	var out []models.Transaction
	for _, t := range txs {
		if SameDay(t.Date, day, loc) {
			out = append(out, t)
		}
	}
	return out
}

// Events builds one calendar event per transaction.
func Events(txs []models.Transaction, loc *time.Location) []Event {
	events := make([]Event, 0, len(txs))
	for _, t := range txs {
		events = append(events, Event{
			Title:       EventTitle(t),
			Date:        t.Date.In(loc),
			Color:       colorOf(t.Type),
			Transaction: t,
		})
	}
	return events
}

// EventTitle is "<TYPE>  <marker> <amount>", e.g. "EXPENSE  🔴 ₹500".
func EventTitle(t models.Transaction) string {
	return string(t.Type) + "  " + markerOf(t.Type) + " " + FormatINR(t.Amount)
}

func markerOf(tt models.TransactionType) string {
	if tt == models.TransactionTypeExpense {
		return "🔴"
	}
	return "🟢"
}

func colorOf(tt models.TransactionType) string {
	if tt == models.TransactionTypeExpense {
		return ExpenseColor
	}
	return IncomeColor
}

// FormatINR renders amount in rupees with Indian digit grouping and no
// fraction digits: 1234567.5 -> "₹12,34,568", -500 -> "-₹500".
func FormatINR(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + "₹" + groupIndian(rounded.StringFixed(0))
}

// groupIndian inserts separators after the last three digits, then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	parts = append([]string{head}, parts...)
	return strings.Join(parts, ",") + "," + tail
}
