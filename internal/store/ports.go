// Package store declares the repository ports implemented by the memory and
// SQLite backends.
package store

import (
	"context"

	"smartfinance/internal/core"
)

// Repositories implement getAll/getById/create/update/delete over plain
// records. Lookups of unknown ids return an error wrapping core.ErrNotFound.
// Delete returns the removed record.
type (
	TransactionRepository interface {
		List(ctx context.Context) ([]core.Transaction, error)
		Get(ctx context.Context, id int64) (core.Transaction, error)
		Create(ctx context.Context, t core.Transaction) (core.Transaction, error)
		Update(ctx context.Context, id int64, t core.Transaction) (core.Transaction, error)
		Delete(ctx context.Context, id int64) (core.Transaction, error)

		// ListByDateRange returns transactions dated within [start, end].
		ListByDateRange(ctx context.Context, start, end core.Date) ([]core.Transaction, error)
		ListByCategory(ctx context.Context, category string) ([]core.Transaction, error)
		ListByType(ctx context.Context, typ core.TransactionType) ([]core.Transaction, error)
	}

	CategoryRepository interface {
		List(ctx context.Context) ([]core.Category, error)
		Get(ctx context.Context, id int64) (core.Category, error)
		Create(ctx context.Context, c core.Category) (core.Category, error)
		Update(ctx context.Context, id int64, c core.Category) (core.Category, error)
		Delete(ctx context.Context, id int64) (core.Category, error)

		ListByType(ctx context.Context, typ core.TransactionType) ([]core.Category, error)
	}

	BudgetRepository interface {
		List(ctx context.Context) ([]core.Budget, error)
		Get(ctx context.Context, id int64) (core.Budget, error)
		// Create always starts the stored spend at zero.
		Create(ctx context.Context, b core.Budget) (core.Budget, error)
		// Update keeps the stored spend.
		Update(ctx context.Context, id int64, b core.Budget) (core.Budget, error)
		Delete(ctx context.Context, id int64) (core.Budget, error)

		ListByMonth(ctx context.Context, month core.Month) ([]core.Budget, error)
		ListByCategory(ctx context.Context, categoryID int64) ([]core.Budget, error)
		FindByCategoryAndMonth(ctx context.Context, categoryID int64, month core.Month) (core.Budget, error)
		UpdateSpent(ctx context.Context, id int64, spent core.Money) (core.Budget, error)
	}

	GoalRepository interface {
		List(ctx context.Context) ([]core.Goal, error)
		Get(ctx context.Context, id int64) (core.Goal, error)
		Create(ctx context.Context, g core.Goal) (core.Goal, error)
		Update(ctx context.Context, id int64, g core.Goal) (core.Goal, error)
		Delete(ctx context.Context, id int64) (core.Goal, error)

		AddFunds(ctx context.Context, id int64, amount core.Money) (core.Goal, error)
	}
)

// Repositories groups one repository per entity.
type Repositories struct {
	Transactions TransactionRepository
	Categories   CategoryRepository
	Budgets      BudgetRepository
	Goals        GoalRepository
}
