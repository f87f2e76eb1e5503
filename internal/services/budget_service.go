package services

import (
	"context"
	"errors"
	"fmt"

	"smartfinance/internal/amqp"
	"smartfinance/internal/core"
	"smartfinance/internal/log"
	"smartfinance/internal/store"
)

type BudgetService struct {
	repo         store.BudgetRepository
	categories   store.CategoryRepository
	transactions store.TransactionRepository
	notify       *notifier
	log          *log.StructuredLogger
}

// BudgetOverview is the budgets page: one month, spend derived from the
// transactions of that month.
type BudgetOverview struct {
	Month      core.Month          `json:"month"`
	MonthLabel string              `json:"monthLabel"`
	Budgets    []core.BudgetStatus `json:"budgets"`
	Summary    core.BudgetSummary  `json:"summary"`
}

// List returns stored budgets, optionally narrowed to a month and/or a
// category id (zero values do not filter).
func (s *BudgetService) List(ctx context.Context, month core.Month, categoryID int64) ([]core.Budget, error) {
	var (
		budgets []core.Budget
		err     error
	)
	switch {
	case month != "":
		if !month.Valid() {
			return nil, core.ErrInvalidMonth
		}
		budgets, err = s.repo.ListByMonth(ctx, month)
	case categoryID > 0:
		budgets, err = s.repo.ListByCategory(ctx, categoryID)
	default:
		budgets, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	if month != "" && categoryID > 0 {
		out := budgets[:0]
		for _, b := range budgets {
			if b.CategoryID == categoryID {
				out = append(out, b)
			}
		}
		budgets = out
	}
	return budgets, nil
}

func (s *BudgetService) Get(ctx context.Context, id int64) (core.Budget, error) {
	return s.repo.Get(ctx, id)
}

func (s *BudgetService) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	s.log.LogRecordChanged(ctx, "Budget created", log.ComponentBudget, log.OpCreate, "budget", created.ID,
		log.NewFields().WithAmount(created.Amount.Cents, ""))
	s.notify.changed(ctx, budgetEvent(amqp.BudgetCreated, created))
	return created, nil
}

func (s *BudgetService) Update(ctx context.Context, id int64, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	updated, err := s.repo.Update(ctx, id, b)
	if err != nil {
		return core.Budget{}, err
	}
	s.log.LogRecordChanged(ctx, "Budget updated", log.ComponentBudget, log.OpUpdate, "budget", id,
		log.NewFields().WithAmount(updated.Amount.Cents, ""))
	s.notify.changed(ctx, budgetEvent(amqp.BudgetUpdated, updated))
	return updated, nil
}

func (s *BudgetService) Delete(ctx context.Context, id int64) (core.Budget, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return core.Budget{}, err
	}
	s.log.LogRecordChanged(ctx, "Budget deleted", log.ComponentBudget, log.OpDelete, "budget", id, nil)
	s.notify.changed(ctx, budgetEvent(amqp.BudgetDeleted, deleted))
	return deleted, nil
}

func budgetEvent(kind amqp.EventKind, b core.Budget) *amqp.Event {
	e := amqp.NewEvent(kind, b.ID)
	e.Month = b.Month
	return e
}

// Overview derives every budget's spend for month from the transactions.
func (s *BudgetService) Overview(ctx context.Context, month core.Month) (BudgetOverview, error) {
	if !month.Valid() {
		return BudgetOverview{}, core.ErrInvalidMonth
	}
	budgets, err := s.repo.ListByMonth(ctx, month)
	if err != nil {
		return BudgetOverview{}, fmt.Errorf("list budgets: %w", err)
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return BudgetOverview{}, fmt.Errorf("list categories: %w", err)
	}
	txs, err := s.transactions.ListByDateRange(ctx, core.DateOf(month.Start()), core.DateOf(month.End()))
	if err != nil {
		return BudgetOverview{}, fmt.Errorf("list transactions: %w", err)
	}

	withSpend := core.BudgetsForMonth(budgets, categories, txs, month)
	return BudgetOverview{
		Month:      month,
		MonthLabel: month.Label(),
		Budgets:    core.DescribeBudgets(withSpend, categories),
		Summary:    core.SummarizeBudgets(withSpend),
	}, nil
}

// RefreshSpent recomputes the stored spend of every budget of month whose
// category is named category. It returns how many budgets were written.
func (s *BudgetService) RefreshSpent(ctx context.Context, category string, month core.Month) (int, error) {
	if category == "" || !month.Valid() {
		return 0, nil
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}
	txs, err := s.transactions.ListByDateRange(ctx, core.DateOf(month.Start()), core.DateOf(month.End()))
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	refreshed := 0
	for _, c := range categories {
		if c.Name != category {
			continue
		}
		b, err := s.repo.FindByCategoryAndMonth(ctx, c.ID, month)
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			return refreshed, fmt.Errorf("find budget: %w", err)
		}
		if err := s.store(ctx, b, categories, txs); err != nil {
			return refreshed, err
		}
		refreshed++
	}
	return refreshed, nil
}

// RefreshBudget recomputes the stored spend of a single budget.
func (s *BudgetService) RefreshBudget(ctx context.Context, id int64) error {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	txs, err := s.transactions.ListByDateRange(ctx, core.DateOf(b.Month.Start()), core.DateOf(b.Month.End()))
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	return s.store(ctx, b, categories, txs)
}

// RefreshCategory recomputes the stored spend of every budget of the
// category. Used after a category rename, which changes the transactions it
// matches.
func (s *BudgetService) RefreshCategory(ctx context.Context, categoryID int64) (int, error) {
	budgets, err := s.repo.ListByCategory(ctx, categoryID)
	if err != nil {
		return 0, fmt.Errorf("list budgets: %w", err)
	}
	if len(budgets) == 0 {
		return 0, nil
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}
	txs, err := s.transactions.ListByType(ctx, core.Expense)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}
	for i, b := range budgets {
		if err := s.store(ctx, b, categories, txs); err != nil {
			return i, err
		}
	}
	return len(budgets), nil
}

func (s *BudgetService) store(ctx context.Context, b core.Budget, categories []core.Category, txs []core.Transaction) error {
	spent := core.BudgetSpent(b, categories, txs)
	if spent == b.Spent {
		return nil
	}
	if _, err := s.repo.UpdateSpent(ctx, b.ID, spent); err != nil {
		return fmt.Errorf("update budget %d spent: %w", b.ID, err)
	}
	s.log.LogRecordChanged(ctx, "Budget spend refreshed", log.ComponentBudget, log.OpRefresh, "budget", b.ID,
		log.NewFields().WithAmount(spent.Cents, ""))
	return nil
}
