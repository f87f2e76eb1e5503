package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"smartfinance/internal/cache"
	"smartfinance/internal/core"
	"smartfinance/internal/log"
	"smartfinance/internal/store"
)

const (
	DefaultReportMonths = 6
	MaxReportMonths     = 24
	recentLimit         = 5
	reportBuildTimeout  = 30 * time.Second
)

// Dashboard is the landing page snapshot for the current month.
type Dashboard struct {
	Month         core.Month           `json:"month"`
	MonthLabel    string               `json:"monthLabel"`
	Stats         core.Totals          `json:"stats"`
	Recent        []core.Transaction   `json:"recentTransactions"`
	Savings       core.SavingsProgress `json:"savings"`
	Budgets       []core.BudgetStatus  `json:"budgetStatus"`
	BudgetSummary core.BudgetSummary   `json:"budgetSummary"`
}

// Report holds the reports page and is also the export document.
type Report struct {
	Period             string                `json:"period"`
	Months             int                   `json:"months"`
	PieChartMonth      core.Month            `json:"pieChartMonth"`
	PieChartMonthLabel string                `json:"pieChartMonthLabel"`
	Summary            core.SummaryStats     `json:"summary"`
	ExpensesByCategory []core.CategoryAmount `json:"expensesByCategory"`
	MonthlyTrend       []core.TrendPoint     `json:"monthlyTrend"`
	ExportDate         time.Time             `json:"exportDate"`
}

type ReportService struct {
	repos  store.Repositories
	now    func() time.Time
	cache  *cache.LRUCache[Report]
	group  singleflight.Group
	// gen changes on every invalidation so in-flight builds of stale data
	// are neither shared with new callers nor cached.
	gen    atomic.Uint64
	logger *log.Logger
}

func NewReportService(repos store.Repositories, now func() time.Time, cacheSize int, ttl time.Duration) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		repos:  repos,
		now:    now,
		cache:  cache.NewLRUCache[Report](cacheSize, ttl),
		logger: log.ForComponent(log.ComponentReport),
	}
}

// Cache exposes the report cache for registration with a cache.Manager.
func (s *ReportService) Cache() *cache.LRUCache[Report] {
	return s.cache
}

// Invalidate drops every cached report.
func (s *ReportService) Invalidate() {
	s.gen.Add(1)
	s.cache.Purge()
}

type snapshot struct {
	transactions []core.Transaction
	categories   []core.Category
	budgets      []core.Budget
	goals        []core.Goal
}

// load reads the requested collections concurrently.
func (s *ReportService) load(ctx context.Context, withBudgets, withGoals bool) (snapshot, error) {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.transactions, err = s.repos.Transactions.List(ctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	if withBudgets {
		g.Go(func() (err error) {
			snap.categories, err = s.repos.Categories.List(ctx)
			if err != nil {
				return fmt.Errorf("list categories: %w", err)
			}
			return nil
		})
		g.Go(func() (err error) {
			snap.budgets, err = s.repos.Budgets.List(ctx)
			if err != nil {
				return fmt.Errorf("list budgets: %w", err)
			}
			return nil
		})
	}
	if withGoals {
		g.Go(func() (err error) {
			snap.goals, err = s.repos.Goals.List(ctx)
			if err != nil {
				return fmt.Errorf("list goals: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

func (s *ReportService) Dashboard(ctx context.Context) (Dashboard, error) {
	snap, err := s.load(ctx, true, true)
	if err != nil {
		return Dashboard{}, err
	}

	month := core.MonthOf(s.now())
	budgets := core.BudgetsForMonth(snap.budgets, snap.categories, snap.transactions, month)
	return Dashboard{
		Month:         month,
		MonthLabel:    month.Label(),
		Stats:         core.MonthStats(snap.transactions, month),
		Recent:        core.RecentTransactions(snap.transactions, recentLimit),
		Savings:       core.TotalSavings(snap.goals),
		Budgets:       core.DescribeBudgets(budgets, snap.categories),
		BudgetSummary: core.SummarizeBudgets(budgets),
	}, nil
}

// Report builds the statistics for the last months months (default 6) and
// the pie chart for month (default: the current month). Results are cached
// per day and concurrent identical requests share one build.
func (s *ReportService) Report(ctx context.Context, months int, month core.Month) (Report, error) {
	if months == 0 {
		months = DefaultReportMonths
	}
	if months < 1 || months > MaxReportMonths {
		return Report{}, fmt.Errorf("%w: months must be between 1 and %d", core.ErrValidation, MaxReportMonths)
	}
	now := s.now()
	if month == "" {
		month = core.MonthOf(now)
	}
	if !month.Valid() {
		return Report{}, core.ErrInvalidMonth
	}

	key := fmt.Sprintf("%d|%s|%s", months, month, core.DateOf(now))
	if r, ok := s.cache.Get(key); ok {
		return r, nil
	}

	gen := s.gen.Load()
	// The shared build outlives any single caller: it runs on a detached
	// context and each caller only waits as long as its own ctx allows.
	ch := s.group.DoChan(fmt.Sprintf("%s|%d", key, gen), func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportBuildTimeout)
		defer cancel()
		snap, err := s.load(buildCtx, false, false)
		if err != nil {
			return Report{}, err
		}
		r := Report{
			Period:             fmt.Sprintf("Last %d months", months),
			Months:             months,
			PieChartMonth:      month,
			PieChartMonthLabel: month.Label(),
			Summary:            core.Summarize(snap.transactions, now, months),
			ExpensesByCategory: core.ExpensesByCategory(snap.transactions, month),
			MonthlyTrend:       core.MonthlyTrend(snap.transactions, now, months),
			ExportDate:         now.UTC(),
		}
		if s.gen.Load() == gen {
			s.cache.Set(key, r)
		}
		return r, nil
	})

	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Report{}, res.Err
		}
		s.logger.DebugContext(ctx, "Report built", "key", key, "shared", res.Shared)
		return res.Val.(Report), nil
	}
}
