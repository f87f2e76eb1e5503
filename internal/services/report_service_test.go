package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"smartfinance/internal/core"
	"smartfinance/internal/store"
	"smartfinance/internal/store/memory"
)

func TestReportService_Dashboard(t *testing.T) {
	svc, _, _ := newTestServices(t)

	d, err := svc.Reports.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if d.Month != "2025-03" {
		t.Errorf("Month = %s, want 2025-03", d.Month)
	}
	if d.Stats.Income.Cents != 300000 || d.Stats.Expenses.Cents != 104500 || d.Stats.Balance.Cents != 195500 || d.Stats.Count != 3 {
		t.Errorf("unexpected stats %+v", d.Stats)
	}
	if len(d.Recent) != 5 || d.Recent[0].ID != 3 {
		t.Errorf("unexpected recent transactions %+v", d.Recent)
	}
	if d.Savings.Progress != 50 {
		t.Errorf("savings progress = %v, want 50", d.Savings.Progress)
	}
	if len(d.Budgets) != 2 || d.BudgetSummary.OverBudget != 1 {
		t.Errorf("unexpected budget status %+v %+v", d.Budgets, d.BudgetSummary)
	}
}

func TestReportService_Report(t *testing.T) {
	svc, _, _ := newTestServices(t)

	r, err := svc.Reports.Report(context.Background(), 0, "")
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if r.Months != 6 || r.Period != "Last 6 months" || r.PieChartMonth != "2025-03" {
		t.Errorf("unexpected defaults %+v", r)
	}
	s := r.Summary
	if s.TotalIncome.Cents != 600000 || s.TotalExpenses.Cents != 107000 || s.NetSavings.Cents != 493000 {
		t.Errorf("unexpected totals %+v", s)
	}
	if s.SavingsRate != 82.17 {
		t.Errorf("SavingsRate = %v, want 82.17", s.SavingsRate)
	}
	if s.AvgMonthlyIncome.Cents != 100000 || s.AvgMonthlyExpenses.Cents != 17833 {
		t.Errorf("unexpected averages %+v", s)
	}
	if s.TopCategory == nil || s.TopCategory.Name != "Rent" {
		t.Errorf("unexpected top category %+v", s.TopCategory)
	}
	if len(r.ExpensesByCategory) != 2 || r.ExpensesByCategory[0].Category != "Rent" {
		t.Errorf("unexpected pie %+v", r.ExpensesByCategory)
	}
	if len(r.MonthlyTrend) != 6 || r.MonthlyTrend[5].Month != "2025-03-01" || r.MonthlyTrend[0].Month != "2024-10-01" {
		t.Errorf("unexpected trend %+v", r.MonthlyTrend)
	}

	pie, err := svc.Reports.Report(context.Background(), 3, "2025-02")
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(pie.ExpensesByCategory) != 1 || pie.ExpensesByCategory[0].Amount.Cents != 2500 {
		t.Errorf("unexpected February pie %+v", pie.ExpensesByCategory)
	}
}

func TestReportService_Validation(t *testing.T) {
	svc, _, _ := newTestServices(t)
	ctx := context.Background()

	for _, months := range []int{-1, 25} {
		if _, err := svc.Reports.Report(ctx, months, ""); !errors.Is(err, core.ErrValidation) {
			t.Errorf("Report(%d) error = %v, want validation", months, err)
		}
	}
	if _, err := svc.Reports.Report(ctx, 3, "2025-13"); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("expected invalid month, got %v", err)
	}
}

func TestReportService_CacheInvalidatedByWrites(t *testing.T) {
	svc, _, _ := newTestServices(t)
	ctx := context.Background()

	first, _ := svc.Reports.Report(ctx, 3, "")
	if _, err := svc.Reports.Report(ctx, 3, ""); err != nil {
		t.Fatal(err)
	}
	if hits := svc.Reports.Cache().Stats().Hits; hits != 1 {
		t.Fatalf("expected a cache hit, got %d", hits)
	}

	_, err := svc.Transactions.Create(ctx, core.Transaction{
		Type: core.Expense, Amount: core.Money{Cents: 1000}, Category: "Food", Description: "Snack", Date: core.NewDate(2025, 3, 15),
	})
	if err != nil {
		t.Fatal(err)
	}
	if svc.Reports.Cache().Size() != 0 {
		t.Fatal("write should purge the report cache")
	}

	second, _ := svc.Reports.Report(ctx, 3, "")
	if second.Summary.TotalExpenses.Cents != first.Summary.TotalExpenses.Cents+1000 {
		t.Fatalf("report not rebuilt after write: %v vs %v", second.Summary.TotalExpenses, first.Summary.TotalExpenses)
	}
}

func TestReportService_ConcurrentBuilds(t *testing.T) {
	svc, _, _ := newTestServices(t)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := svc.Reports.Report(context.Background(), 12, "2025-03")
			if err == nil && len(r.MonthlyTrend) != 12 {
				err = errors.New("short trend")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
}

// blockingTransactions holds List until release is closed and honours ctx
// like the SQLite repository does.
type blockingTransactions struct {
	store.TransactionRepository
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingTransactions) List(ctx context.Context) ([]core.Transaction, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-b.release:
	}
	return b.TransactionRepository.List(ctx)
}

func TestReportService_SharedBuildSurvivesCallerCancel(t *testing.T) {
	st := memory.NewWithClock(seed(), func() time.Time { return testNow })
	repos := st.Repositories()
	blocking := &blockingTransactions{
		TransactionRepository: repos.Transactions,
		started:               make(chan struct{}),
		release:               make(chan struct{}),
	}
	repos.Transactions = blocking
	reports := NewReportService(repos, func() time.Time { return testNow }, 10, time.Minute)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := reports.Report(ctxA, 6, "")
		errA <- err
	}()
	<-blocking.started

	type result struct {
		r   Report
		err error
	}
	resB := make(chan result, 1)
	go func() {
		r, err := reports.Report(context.Background(), 6, "")
		resB <- result{r, err}
	}()

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled caller error = %v, want context.Canceled", err)
	}

	time.Sleep(20 * time.Millisecond)
	close(blocking.release)

	b := <-resB
	if b.err != nil {
		t.Fatalf("second caller error = %v", b.err)
	}
	if b.r.Summary.TotalIncome.Cents != 600000 {
		t.Errorf("unexpected report %+v", b.r.Summary)
	}
	if calls := blocking.calls.Load(); calls != 1 {
		t.Errorf("List called %d times, want one shared build", calls)
	}
	if reports.Cache().Size() != 1 {
		t.Error("shared build should still be cached")
	}
}
