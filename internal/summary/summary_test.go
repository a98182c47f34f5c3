package summary

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"paisa/internal/models"
)

var now = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intPtr(n int) *int { return &n }

func tx(typ models.TransactionType, amount string, date time.Time) models.Transaction {
	return models.Transaction{Type: typ, Amount: dec(amount), Date: date, Description: "t", Category: "c"}
}

func income(amount string, date time.Time) models.Transaction {
	return tx(models.TransactionTypeIncome, amount, date)
}

func expense(amount string, date time.Time) models.Transaction {
	return tx(models.TransactionTypeExpense, amount, date)
}

func assertDec(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", field, got, want)
	}
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil, now)
	assertDec(t, "Income", s.Income, "0")
	assertDec(t, "Expenses", s.Expenses, "0")
	assertDec(t, "Balance", s.Balance, "0")
	assertDec(t, "BalanceToDate", s.BalanceToDate, "0")
	assertDec(t, "PendingIncome", s.PendingIncome, "0")
	if s.Count != 0 {
		t.Errorf("Count = %d, want 0", s.Count)
	}
}

func TestCompute_BalanceIsIncomeMinusExpenses(t *testing.T) {
	collections := map[string][]models.Transaction{
		"only_income":   {income("100", now), income("0.50", now.AddDate(0, 1, 0))},
		"only_expenses": {expense("20", now), expense("30.25", now.AddDate(0, 0, -3))},
		"mixed": {
			income("1000", now.AddDate(0, 0, -10)),
			expense("250.75", now.AddDate(0, 0, -2)),
			expense("99.99", now.AddDate(0, 0, 5)),
			income("10", now.AddDate(0, 0, 30)),
		},
	}

	for name, txs := range collections {
		t.Run(name, func(t *testing.T) {
			s := Compute(txs, now)
			if !s.Balance.Equal(s.Income.Sub(s.Expenses)) {
				t.Errorf("Balance %s != Income %s - Expenses %s", s.Balance, s.Income, s.Expenses)
			}
			if s.Income.IsNegative() || s.Expenses.IsNegative() {
				t.Errorf("expected non-negative totals, got income=%s expenses=%s", s.Income, s.Expenses)
			}
		})
	}
}

func TestCompute_FutureExcludedFromBalanceToDate(t *testing.T) {
	txs := []models.Transaction{
		income("1000", now.AddDate(0, 0, -1)),
		expense("200", now),
		expense("500", now.Add(time.Second)),
		income("300", now.AddDate(0, 0, 7)),
	}

	s := Compute(txs, now)
	assertDec(t, "BalanceToDate", s.BalanceToDate, "800")
	assertDec(t, "Balance", s.Balance, "600")
}

func TestCompute_PendingIncome(t *testing.T) {
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name string
		txs  []models.Transaction
		want string
	}{
		{
			name: "future_income_without_cycle",
			txs:  []models.Transaction{income("100", tomorrow)},
			want: "0",
		},
		{
			name: "future_income_with_positive_cycle_never_pending",
			txs: []models.Transaction{
				func() models.Transaction { t := income("100", tomorrow); t.CreditCycle = intPtr(30); return t }(),
			},
			want: "0",
		},
		{
			name: "future_income_with_zero_cycle_never_pending",
			txs: []models.Transaction{
				func() models.Transaction { t := income("100", tomorrow); t.CreditCycle = intPtr(0); return t }(),
			},
			want: "0",
		},
		{
			name: "negative_cycle_reaching_back_past_now",
			txs: []models.Transaction{
				func() models.Transaction { t := income("100", tomorrow); t.CreditCycle = intPtr(-2); return t }(),
			},
			want: "100",
		},
		{
			name: "past_income_is_realized_not_pending",
			txs: []models.Transaction{
				func() models.Transaction {
					t := income("100", now.AddDate(0, 0, -5))
					t.CreditCycle = intPtr(-10)
					return t
				}(),
			},
			want: "0",
		},
		{
			name: "future_expense_never_pending",
			txs: []models.Transaction{
				func() models.Transaction { t := expense("100", tomorrow); t.CreditCycle = intPtr(-2); return t }(),
			},
			want: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDec(t, "PendingIncome", Compute(tt.txs, now).PendingIncome, tt.want)
		})
	}
}

func TestCompute_Scenarios(t *testing.T) {
	base := []models.Transaction{
		income("5000", now.AddDate(0, 0, -20)),
		expense("1200", now.AddDate(0, 0, -3)),
	}
	before := Compute(base, now)

	t.Run("income_today_realized_immediately", func(t *testing.T) {
		after := Compute(append(append([]models.Transaction{}, base...), income("1000", now)), now)
		if !after.BalanceToDate.Sub(before.BalanceToDate).Equal(dec("1000")) {
			t.Errorf("BalanceToDate moved by %s, want 1000", after.BalanceToDate.Sub(before.BalanceToDate))
		}
		if !after.PendingIncome.Equal(before.PendingIncome) {
			t.Errorf("PendingIncome changed from %s to %s", before.PendingIncome, after.PendingIncome)
		}
	})

	t.Run("expense_tomorrow_only_moves_balance", func(t *testing.T) {
		after := Compute(append(append([]models.Transaction{}, base...), expense("500", now.AddDate(0, 0, 1))), now)
		if !before.Balance.Sub(after.Balance).Equal(dec("500")) {
			t.Errorf("Balance moved by %s, want -500", after.Balance.Sub(before.Balance))
		}
		if !after.BalanceToDate.Equal(before.BalanceToDate) {
			t.Errorf("BalanceToDate changed from %s to %s", before.BalanceToDate, after.BalanceToDate)
		}
		if !after.PendingIncome.Equal(before.PendingIncome) {
			t.Errorf("PendingIncome changed from %s to %s", before.PendingIncome, after.PendingIncome)
		}
	})
}

func TestForMonth(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	txs := []models.Transaction{
		income("100", time.Date(2024, time.March, 1, 0, 0, 0, 0, ist)),
		// 2024-02-29 20:00 UTC is already March 1 in IST.
		income("50", time.Date(2024, time.February, 29, 20, 0, 0, 0, time.UTC)),
		expense("30", time.Date(2024, time.March, 31, 23, 0, 0, 0, ist)),
		expense("999", time.Date(2024, time.April, 1, 0, 0, 0, 0, ist)),
	}

	s := ForMonth(txs, 2024, time.March, ist, now)
	assertDec(t, "Income", s.Income, "150")
	assertDec(t, "Expenses", s.Expenses, "30")
	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
}

func TestDays(t *testing.T) {
	d1 := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, time.March, 4, 18, 30, 0, 0, time.UTC)
	txs := []models.Transaction{
		expense("40", d2),
		income("100", d1),
		expense("25", d1.Add(3*time.Hour)),
		income("10", d2.Add(time.Hour)),
	}

	days := Days(txs, time.UTC)
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}

	if !days[0].Day.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first day = %s", days[0].Day)
	}
	assertDec(t, "day1.Income", days[0].Income, "100")
	assertDec(t, "day1.Expenses", days[0].Expenses, "25")
	assertDec(t, "day1.Net", days[0].Net, "75")
	assertDec(t, "day1.Closing", days[0].Closing, "75")
	if days[0].Count != 2 {
		t.Errorf("day1.Count = %d, want 2", days[0].Count)
	}

	assertDec(t, "day2.Net", days[1].Net, "-30")
	assertDec(t, "day2.Closing", days[1].Closing, "45")

	if txs[0].Date != d2 {
		t.Error("Days must not reorder the caller's slice")
	}
}

func TestNegative(t *testing.T) {
	if !Compute([]models.Transaction{expense("1", now)}, now).Negative() {
		t.Error("expected negative balance")
	}
	if Compute([]models.Transaction{income("1", now)}, now).Negative() {
		t.Error("expected non-negative balance")
	}
}
