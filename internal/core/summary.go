package core

import (
	"sort"
	"strings"
	"time"
)

// Totals is the income/expense balance of a set of transactions.
type Totals struct {
	Income   Money `json:"income"`
	Expenses Money `json:"expenses"`
	Balance  Money `json:"balance"`
	Count    int   `json:"transactionCount"`
}

// TransactionFilter narrows a transaction list. Zero fields do not filter.
type TransactionFilter struct {
	Type      TransactionType
	Category  string
	StartDate Date
	EndDate   Date // inclusive through the end of the day
	Search    string
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category string `json:"category"`
	Amount   Money  `json:"amount"`
}

// TrendPoint is one month of the income vs expenses series.
type TrendPoint struct {
	Month    string `json:"month"` // YYYY-MM-01
	Income   Money  `json:"income"`
	Expenses Money  `json:"expenses"`
}

type BudgetSummary struct {
	TotalBudgeted Money   `json:"totalBudgeted"`
	TotalSpent    Money   `json:"totalSpent"`
	Remaining     Money   `json:"remaining"`
	Progress      float64 `json:"progress"`
	BudgetCount   int     `json:"budgetCount"`
	OverBudget    int     `json:"overBudget"`
}

// BudgetStatus is a budget joined with its category and its spend ratio.
type BudgetStatus struct {
	Budget
	CategoryName string  `json:"categoryName"`
	Color        string  `json:"color"`
	Progress     float64 `json:"progress"`
	Remaining    Money   `json:"remaining"`
	OverBudget   bool    `json:"overBudget"`
}

type GoalStatus struct {
	Progress    float64 `json:"progress"`
	Remaining   Money   `json:"remaining"`
	IsCompleted bool    `json:"isCompleted"`
}

type SavingsProgress struct {
	TotalTarget  Money   `json:"totalTarget"`
	TotalCurrent Money   `json:"totalCurrent"`
	Progress     float64 `json:"progress"`
}

// TopCategory is the largest expense category of a period.
type TopCategory struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

type SummaryStats struct {
	TotalIncome        Money           `json:"totalIncome"`
	TotalExpenses      Money           `json:"totalExpenses"`
	AvgMonthlyIncome   Money           `json:"avgMonthlyIncome"`
	AvgMonthlyExpenses Money           `json:"avgMonthlyExpenses"`
	NetSavings         Money           `json:"netSavings"`
	SavingsRate        float64         `json:"savingsRate"`
	TopCategory        *TopCategory    `json:"topCategory"`
	TransactionCount   int             `json:"transactionCount"`
}

func (f TransactionFilter) matches(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if !f.StartDate.IsZero() && t.Date.Before(f.StartDate.Time) {
		return false
	}
	if !f.EndDate.IsZero() && t.Date.After(f.EndDate.AddDate(0, 0, 1).Add(-time.Nanosecond)) {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(t.Description), term) &&
			!strings.Contains(strings.ToLower(t.Category), term) &&
			!strings.Contains(strings.ToLower(t.Notes), term) {
			return false
		}
	}
	return true
}

// FilterTransactions returns the matching transactions, newest first.
func FilterTransactions(txs []Transaction, f TransactionFilter) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if f.matches(t) {
			out = append(out, t)
		}
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders by date descending; ties keep their input order.
func SortNewestFirst(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date.Time)
	})
}

func SumTotals(txs []Transaction) Totals {
	var tot Totals
	for _, t := range txs {
		switch t.Type {
		case Income:
			tot.Income = tot.Income.Add(t.Amount)
		case Expense:
			tot.Expenses = tot.Expenses.Add(t.Amount)
		}
	}
	tot.Balance = tot.Income.Sub(tot.Expenses)
	tot.Count = len(txs)
	return tot
}

// InMonth keeps the transactions dated inside m.
func InMonth(txs []Transaction, m Month) []Transaction {
	var out []Transaction
	for _, t := range txs {
		if m.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

func MonthStats(txs []Transaction, m Month) Totals {
	return SumTotals(InMonth(txs, m))
}

// RecentTransactions returns up to n transactions, newest first.
func RecentTransactions(txs []Transaction, n int) []Transaction {
	out := append([]Transaction(nil), txs...)
	SortNewestFirst(out)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func categoryByID(categories []Category, id int64) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// BudgetSpent sums the expenses booked against the budget's category during
// the budget month. An unresolvable category yields zero.
func BudgetSpent(b Budget, categories []Category, txs []Transaction) Money {
	cat, ok := categoryByID(categories, b.CategoryID)
	if !ok {
		return Money{}
	}
	var spent Money
	for _, t := range txs {
		if t.Type == Expense && t.Category == cat.Name && b.Month.Contains(t.Date) {
			spent = spent.Add(t.Amount)
		}
	}
	return spent
}

// BudgetsForMonth returns the budgets of month m with Spent derived from
// txs, sorted by category name.
func BudgetsForMonth(budgets []Budget, categories []Category, txs []Transaction, m Month) []Budget {
	out := make([]Budget, 0)
	for _, b := range budgets {
		if b.Month != m {
			continue
		}
		b.Spent = BudgetSpent(b, categories, txs)
		out = append(out, b)
	}
	name := func(b Budget) string {
		c, _ := categoryByID(categories, b.CategoryID)
		return c.Name
	}
	sort.SliceStable(out, func(i, j int) bool {
		return name(out[i]) < name(out[j])
	})
	return out
}

// DescribeBudgets joins budgets (Spent already populated) with their
// categories. Unknown categories leave the name and color blank.
func DescribeBudgets(budgets []Budget, categories []Category) []BudgetStatus {
	out := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		c, _ := categoryByID(categories, b.CategoryID)
		out = append(out, BudgetStatus{
			Budget:       b,
			CategoryName: c.Name,
			Color:        c.Color,
			Progress:     Percent(b.Spent, b.Amount),
			Remaining:    b.Amount.Sub(b.Spent),
			OverBudget:   b.Spent.Cents > b.Amount.Cents,
		})
	}
	return out
}

// SummarizeBudgets totals budgets whose Spent is already populated.
func SummarizeBudgets(budgets []Budget) BudgetSummary {
	var s BudgetSummary
	for _, b := range budgets {
		s.TotalBudgeted = s.TotalBudgeted.Add(b.Amount)
		s.TotalSpent = s.TotalSpent.Add(b.Spent)
		if b.Spent.Cents > b.Amount.Cents {
			s.OverBudget++
		}
	}
	s.Remaining = s.TotalBudgeted.Sub(s.TotalSpent)
	s.Progress = Percent(s.TotalSpent, s.TotalBudgeted)
	s.BudgetCount = len(budgets)
	return s
}

func GoalProgress(g Goal) GoalStatus {
	progress := Percent(g.CurrentAmount, g.TargetAmount)
	if progress > 100 {
		progress = 100
	}
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.Cents < 0 {
		remaining = Money{}
	}
	return GoalStatus{
		Progress:    progress,
		Remaining:   remaining,
		IsCompleted: g.Completed(),
	}
}

// PartitionGoals splits goals into active (current < target) and completed.
func PartitionGoals(goals []Goal) (active, completed []Goal) {
	active, completed = make([]Goal, 0), make([]Goal, 0)
	for _, g := range goals {
		if g.Completed() {
			completed = append(completed, g)
		} else {
			active = append(active, g)
		}
	}
	return active, completed
}

func TotalSavings(goals []Goal) SavingsProgress {
	var s SavingsProgress
	for _, g := range goals {
		s.TotalTarget = s.TotalTarget.Add(g.TargetAmount)
		s.TotalCurrent = s.TotalCurrent.Add(g.CurrentAmount)
	}
	s.Progress = Percent(s.TotalCurrent, s.TotalTarget)
	return s
}

func sumByCategory(txs []Transaction) []CategoryAmount {
	idx := map[string]int{}
	var out []CategoryAmount
	for _, t := range txs {
		if t.Type != Expense {
			continue
		}
		i, ok := idx[t.Category]
		if !ok {
			i = len(out)
			idx[t.Category] = i
			out = append(out, CategoryAmount{Category: t.Category})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}

// ExpensesByCategory is the pie-chart series for month m, largest first.
func ExpensesByCategory(txs []Transaction, m Month) []CategoryAmount {
	out := sumByCategory(InMonth(txs, m))
	if out == nil {
		return []CategoryAmount{}
	}
	return out
}

// MonthlyTrend is the line-chart series for the months ending at now's
// month, oldest first.
func MonthlyTrend(txs []Transaction, now time.Time, months int) []TrendPoint {
	if months <= 0 {
		return []TrendPoint{}
	}
	current := MonthOf(now)
	out := make([]TrendPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		m := current.AddMonths(-i)
		tot := MonthStats(txs, m)
		out = append(out, TrendPoint{Month: m.FirstDay(), Income: tot.Income, Expenses: tot.Expenses})
	}
	return out
}

// Summarize computes the report statistics over transactions dated on or
// after now minus months. The cutoff day is clamped to the end of the
// target month, so Aug 31 minus 6 months is Feb 28.
func Summarize(txs []Transaction, now time.Time, months int) SummaryStats {
	if months <= 0 {
		months = 1
	}
	cutoff := SubMonths(now, months)
	var period []Transaction
	for _, t := range txs {
		if !t.Date.Before(cutoff.Time) {
			period = append(period, t)
		}
	}
	tot := SumTotals(period)
	stats := SummaryStats{
		TotalIncome:        tot.Income,
		TotalExpenses:      tot.Expenses,
		AvgMonthlyIncome:   tot.Income.DivInt(months),
		AvgMonthlyExpenses: tot.Expenses.DivInt(months),
		NetSavings:         tot.Balance,
		TransactionCount:   len(period),
	}
	stats.SavingsRate = Percent(tot.Balance, tot.Income)
	if cats := sumByCategory(period); len(cats) > 0 {
		stats.TopCategory = &TopCategory{Name: cats[0].Category, Amount: cats[0].Amount}
	}
	return stats
}
