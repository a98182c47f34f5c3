package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"paisa/internal/models"
	"paisa/internal/summary"
)

const cellWidth = 12

// RenderMonth writes a text month grid: the month's income, expenses and
// balance, a warning when the balance is negative, then one row of day
// numbers and one row of per-day net amounts for each week. Weeks start on
// Sunday; today is marked with '*'.
func RenderMonth(w io.Writer, year int, month time.Month, txs []models.Transaction, loc *time.Location, now time.Time) error {
	monthTxs := summary.InMonth(txs, year, month, loc)
	totals := summary.ForMonth(txs, year, month, loc, now)

	nets := make(map[int]string)
	for _, d := range summary.Days(monthTxs, loc) {
		nets[d.Day.Day()] = signedINR(d.Net)
	}

	var b strings.Builder
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	fmt.Fprintf(&b, "%s\n", first.Format("January 2006"))
	fmt.Fprintf(&b, "Income %s   Expenses %s   Balance %s\n",
		FormatINR(totals.Income), FormatINR(totals.Expenses), FormatINR(totals.Balance))
	fmt.Fprintf(&b, "Balance to date %s   Pending income %s\n",
		FormatINR(totals.BalanceToDate), FormatINR(totals.PendingIncome))
	if totals.Negative() {
		b.WriteString("Warning: Negative balance\n")
	}
	b.WriteString("\n")

	for _, wd := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		fmt.Fprintf(&b, "%-*s", cellWidth, wd)
	}
	b.WriteString("\n")

	today := DayOf(now, loc)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	offset := int(first.Weekday())

	for start := 1 - offset; start <= daysInMonth; start += 7 {
		var days, amounts strings.Builder
		for d := start; d < start+7; d++ {
			if d < 1 || d > daysInMonth {
				fmt.Fprintf(&days, "%-*s", cellWidth, "")
				fmt.Fprintf(&amounts, "%-*s", cellWidth, "")
				continue
			}
			label := fmt.Sprintf("%2d", d)
			if time.Date(year, month, d, 0, 0, 0, 0, loc).Equal(today) {
				label += "*"
			}
			fmt.Fprintf(&days, "%-*s", cellWidth, label)
			fmt.Fprintf(&amounts, "%-*s", cellWidth, nets[d])
		}
		b.WriteString(strings.TrimRight(days.String(), " ") + "\n")
		b.WriteString(strings.TrimRight(amounts.String(), " ") + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderDay writes the transactions of one day, one line each, followed by
// the day's net and the running balance at its close. txs may span many days;
// earlier days feed the closing balance.
func RenderDay(w io.Writer, day time.Time, txs []models.Transaction, loc *time.Location) error {
	day = DayOf(day, loc)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", day.Format("Mon 02 Jan 2006"))
	for _, t := range TransactionsOn(txs, day, loc) {
		fmt.Fprintf(&b, "  %s  %s  [%s] %s\n", t.ID, EventTitle(t), t.Category, t.Description)
	}

	for _, d := range summary.Days(txs, loc) {
		if d.Day.After(day) {
			break
		}
		if d.Day.Equal(day) {
			fmt.Fprintf(&b, "Net %s   Closing balance %s\n", signedINR(d.Net), signedINR(d.Closing))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// signedINR formats amount with an explicit '+' for non-negative values.
func signedINR(amount decimal.Decimal) string {
	if amount.Round(0).IsNegative() {
		return FormatINR(amount)
	}
	return "+" + FormatINR(amount)
}
