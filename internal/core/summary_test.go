package core

import (
	"testing"
	"time"
)

func tx(id int64, typ TransactionType, cents int64, cat string, d Date) Transaction {
	return Transaction{ID: id, Type: typ, Amount: Money{Cents: cents}, Category: cat, Description: cat, Date: d}
}

func sampleTransactions() []Transaction {
	return []Transaction{
		tx(1, Income, 500000, "Salary", NewDate(2025, 3, 1)),
		tx(2, Expense, 12000, "Food", NewDate(2025, 3, 3)),
		tx(3, Expense, 8000, "Food", NewDate(2025, 3, 31)),
		tx(4, Expense, 150000, "Rent", NewDate(2025, 3, 5)),
		tx(5, Expense, 4000, "Food", NewDate(2025, 2, 28)),
		tx(6, Income, 20000, "Freelance", NewDate(2025, 2, 10)),
		tx(7, Expense, 3000, "Transport", NewDate(2025, 4, 1)),
	}
}

func sampleCategories() []Category {
	return []Category{
		{ID: 1, Name: "Food", Type: Expense},
		{ID: 2, Name: "Rent", Type: Expense},
		{ID: 3, Name: "Salary", Type: Income},
		{ID: 4, Name: "Transport", Type: Expense},
	}
}

func TestFilterTransactions(t *testing.T) {
	txs := sampleTransactions()

	got := FilterTransactions(txs, TransactionFilter{Type: Expense, Category: "Food"})
	if len(got) != 3 {
		t.Fatalf("expected 3 food expenses, got %d", len(got))
	}
	if got[0].ID != 3 || got[2].ID != 5 {
		t.Fatalf("expected newest first, got ids %d..%d", got[0].ID, got[2].ID)
	}

	got = FilterTransactions(txs, TransactionFilter{StartDate: NewDate(2025, 3, 1), EndDate: NewDate(2025, 3, 31)})
	if len(got) != 4 {
		t.Fatalf("inclusive date range expected 4, got %d", len(got))
	}

	withTime := append(txs, Transaction{ID: 8, Type: Expense, Amount: Money{Cents: 1}, Category: "Food",
		Description: "late snack", Notes: "Midnight", Date: Date{Time: time.Date(2025, 3, 31, 23, 30, 0, 0, time.UTC)}})
	got = FilterTransactions(withTime, TransactionFilter{EndDate: NewDate(2025, 3, 31), Search: "midnight"})
	if len(got) != 1 || got[0].ID != 8 {
		t.Fatalf("end date should include the whole day and search notes, got %+v", got)
	}

	got = FilterTransactions(txs, TransactionFilter{Search: "RENT"})
	if len(got) != 1 || got[0].ID != 4 {
		t.Fatalf("case-insensitive search failed: %+v", got)
	}
}

func TestMonthStatsAndRecent(t *testing.T) {
	txs := sampleTransactions()
	stats := MonthStats(txs, "2025-03")
	if stats.Income.Cents != 500000 || stats.Expenses.Cents != 170000 || stats.Balance.Cents != 330000 || stats.Count != 4 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	recent := RecentTransactions(txs, 2)
	if len(recent) != 2 || recent[0].ID != 7 || recent[1].ID != 3 {
		t.Fatalf("unexpected recent %+v", recent)
	}
	if txs[0].ID != 1 {
		t.Fatalf("RecentTransactions must not reorder its input")
	}
}

func TestBudgetsForMonth(t *testing.T) {
	budgets := []Budget{
		{ID: 1, CategoryID: 2, Amount: Money{Cents: 140000}, Month: "2025-03"},
		{ID: 2, CategoryID: 1, Amount: Money{Cents: 30000}, Month: "2025-03"},
		{ID: 3, CategoryID: 1, Amount: Money{Cents: 30000}, Month: "2025-02"},
		{ID: 4, CategoryID: 42, Amount: Money{Cents: 1000}, Month: "2025-03"},
	}
	got := BudgetsForMonth(budgets, sampleCategories(), sampleTransactions(), "2025-03")
	if len(got) != 3 {
		t.Fatalf("expected 3 budgets for March, got %d", len(got))
	}
	// Unknown category sorts first (empty name), then Food, then Rent.
	if got[0].ID != 4 || got[1].ID != 2 || got[2].ID != 1 {
		t.Fatalf("unexpected order: %d %d %d", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].Spent.Cents != 0 {
		t.Fatalf("unresolvable category must have zero spend")
	}
	if got[1].Spent.Cents != 20000 {
		t.Fatalf("food spend = %d, want 20000", got[1].Spent.Cents)
	}

	sum := SummarizeBudgets(got)
	if sum.TotalBudgeted.Cents != 171000 || sum.TotalSpent.Cents != 170000 || sum.Remaining.Cents != 1000 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.OverBudget != 1 || sum.BudgetCount != 3 {
		t.Fatalf("over=%d count=%d", sum.OverBudget, sum.BudgetCount)
	}
	if empty := SummarizeBudgets(nil); empty.Progress != 0 {
		t.Fatalf("empty progress must be 0")
	}

	described := DescribeBudgets(got, sampleCategories())
	if described[0].CategoryName != "" || described[0].Progress != 0 {
		t.Fatalf("unknown category should stay blank: %+v", described[0])
	}
	rent := described[2]
	if !rent.OverBudget || rent.Remaining.Cents != -10000 || rent.Progress != 107.14 {
		t.Fatalf("unexpected rent status %+v", rent)
	}
	if described[1].OverBudget || described[1].Progress != 66.67 {
		t.Fatalf("unexpected food status %+v", described[1])
	}
}

func TestGoalProgress(t *testing.T) {
	g := Goal{TargetAmount: Money{Cents: 1000}, CurrentAmount: Money{Cents: 250}}
	st := GoalProgress(g)
	if st.Progress != 25 || st.Remaining.Cents != 750 || st.IsCompleted {
		t.Fatalf("unexpected %+v", st)
	}

	g.CurrentAmount = Money{Cents: 1500}
	st = GoalProgress(g)
	if st.Progress != 100 || st.Remaining.Cents != 0 || !st.IsCompleted {
		t.Fatalf("overfunded goal: %+v", st)
	}

	st = GoalProgress(Goal{})
	if st.Progress != 0 {
		t.Fatalf("zero target must not divide: %+v", st)
	}

	active, completed := PartitionGoals([]Goal{
		{ID: 1, TargetAmount: Money{Cents: 10}, CurrentAmount: Money{Cents: 10}},
		{ID: 2, TargetAmount: Money{Cents: 10}, CurrentAmount: Money{Cents: 9}},
	})
	if len(active) != 1 || active[0].ID != 2 || len(completed) != 1 || completed[0].ID != 1 {
		t.Fatalf("partition mismatch")
	}

	savings := TotalSavings([]Goal{
		{TargetAmount: Money{Cents: 1000}, CurrentAmount: Money{Cents: 100}},
		{TargetAmount: Money{Cents: 3000}, CurrentAmount: Money{Cents: 900}},
	})
	if savings.Progress != 25 || savings.TotalTarget.Cents != 4000 || savings.TotalCurrent.Cents != 1000 {
		t.Fatalf("unexpected savings %+v", savings)
	}
}

func TestExpensesByCategory(t *testing.T) {
	got := ExpensesByCategory(sampleTransactions(), "2025-03")
	if len(got) != 2 {
		t.Fatalf("expected 2 slices, got %+v", got)
	}
	if got[0].Category != "Rent" || got[1].Category != "Food" || got[1].Amount.Cents != 20000 {
		t.Fatalf("unexpected slices %+v", got)
	}
	if empty := ExpensesByCategory(sampleTransactions(), "2020-01"); empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil slice")
	}
}

func TestSubMonths(t *testing.T) {
	cases := []struct {
		now    time.Time
		months int
		want   string
	}{
		{time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC), 6, "2025-02-28"},
		{time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC), 6, "2024-02-29"},
		{time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), 1, "2025-02-28"},
		{time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), 1, "2025-02-20"},
		{time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), 12, "2024-01-15"},
	}
	for _, tc := range cases {
		if got := SubMonths(tc.now, tc.months).Format(DateLayout); got != tc.want {
			t.Errorf("SubMonths(%s, %d) = %s, want %s", tc.now.Format(DateLayout), tc.months, got, tc.want)
		}
	}
}

func TestMonthlyTrend_NonPositiveMonths(t *testing.T) {
	now := time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)
	for _, months := range []int{0, -1} {
		if got := MonthlyTrend(sampleTransactions(), now, months); len(got) != 0 {
			t.Errorf("MonthlyTrend(%d) = %v, want empty", months, got)
		}
	}
}

func TestMonthlyTrend(t *testing.T) {
	now := time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)
	got := MonthlyTrend(sampleTransactions(), now, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 points")
	}
	want := []string{"2025-01-01", "2025-02-01", "2025-03-01"}
	for i, p := range got {
		if p.Month != want[i] {
			t.Fatalf("point %d month = %s, want %s", i, p.Month, want[i])
		}
	}
	if got[1].Income.Cents != 20000 || got[1].Expenses.Cents != 4000 {
		t.Fatalf("february mismatch %+v", got[1])
	}
	if got[0].Income.Cents != 0 || got[0].Expenses.Cents != 0 {
		t.Fatalf("january should be empty %+v", got[0])
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)
	stats := Summarize(sampleTransactions(), now, 1)
	// Window starts 2025-02-20: excludes id 6, includes the April row.
	if stats.TransactionCount != 6 {
		t.Fatalf("count = %d, want 6", stats.TransactionCount)
	}
	if stats.TotalIncome.Cents != 500000 || stats.TotalExpenses.Cents != 177000 {
		t.Fatalf("totals %+v", stats)
	}
	if stats.NetSavings.Cents != 323000 || stats.SavingsRate != 64.6 {
		t.Fatalf("net=%d rate=%v", stats.NetSavings.Cents, stats.SavingsRate)
	}
	if stats.TopCategory == nil || stats.TopCategory.Name != "Rent" {
		t.Fatalf("top category %+v", stats.TopCategory)
	}

	stats = Summarize(sampleTransactions(), now, 6)
	if stats.AvgMonthlyIncome.Cents != 86667 {
		t.Fatalf("avg income = %d", stats.AvgMonthlyIncome.Cents)
	}

	// Aug 31 minus 6 months clamps to Feb 28, not Mar 3.
	monthEnd := []Transaction{
		tx(10, Income, 100000, "Salary", NewDate(2025, 3, 1)),
		tx(11, Expense, 5000, "Food", NewDate(2025, 2, 28)),
		tx(12, Expense, 7000, "Food", NewDate(2025, 2, 27)),
	}
	stats = Summarize(monthEnd, time.Date(2025, 8, 31, 9, 0, 0, 0, time.UTC), 6)
	if stats.TransactionCount != 2 || stats.TotalIncome.Cents != 100000 || stats.TotalExpenses.Cents != 5000 {
		t.Fatalf("month-end cutoff summary %+v", stats)
	}

	empty := Summarize(nil, now, 3)
	if empty.SavingsRate != 0 || empty.TopCategory != nil || empty.TransactionCount != 0 {
		t.Fatalf("empty summary %+v", empty)
	}
}
