package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"smartfinance/internal/core"
	"smartfinance/internal/log"
	"smartfinance/internal/store"
)

// Seed is the initial content of a Store.
type Seed struct {
	Transactions []core.Transaction
	Categories   []core.Category
	Budgets      []core.Budget
	Goals        []core.Goal
}

type Store struct {
	Transactions *Transactions
	Categories   *Categories
	Budgets      *Budgets
	Goals        *Goals
}

// Ensure interface conformance
var (
	_ store.TransactionRepository = (*Transactions)(nil)
	_ store.CategoryRepository    = (*Categories)(nil)
	_ store.BudgetRepository      = (*Budgets)(nil)
	_ store.GoalRepository        = (*Goals)(nil)
)

func New(seed Seed) *Store {
	return NewWithClock(seed, time.Now)
}

func NewWithClock(seed Seed, now func() time.Time) *Store {
	return &Store{
		Transactions: &Transactions{now: now, t: newTable(func(v *core.Transaction) *int64 { return &v.ID }, seed.Transactions)},
		Categories:   &Categories{t: newTable(func(v *core.Category) *int64 { return &v.ID }, seed.Categories)},
		Budgets:      &Budgets{t: newTable(func(v *core.Budget) *int64 { return &v.ID }, seed.Budgets)},
		Goals:        &Goals{now: now, t: newTable(func(v *core.Goal) *int64 { return &v.ID }, seed.Goals)},
	}
}

// NewFromFiles seeds the store from transactions.json, categories.json,
// budgets.json and goals.json under base. Missing files leave the entity
// empty, except categories which fall back to a default set.
func NewFromFiles(base string) *Store {
	var seed Seed
	readJSON(filepath.Join(base, "transactions.json"), &seed.Transactions)
	readJSON(filepath.Join(base, "categories.json"), &seed.Categories)
	readJSON(filepath.Join(base, "budgets.json"), &seed.Budgets)
	readJSON(filepath.Join(base, "goals.json"), &seed.Goals)
	if len(seed.Categories) == 0 {
		seed.Categories = DefaultCategories()
	}
	return New(seed)
}

// Repositories exposes the store through the repository ports.
func (s *Store) Repositories() store.Repositories {
	return store.Repositories{
		Transactions: s.Transactions,
		Categories:   s.Categories,
		Budgets:      s.Budgets,
		Goals:        s.Goals,
	}
}

func DefaultCategories() []core.Category {
	return []core.Category{
		{ID: 1, Name: "Salary", Type: core.Income, Color: "#10B981", Icon: "Briefcase"},
		{ID: 2, Name: "Freelance", Type: core.Income, Color: "#06B6D4", Icon: "Laptop"},
		{ID: 3, Name: "Food & Dining", Type: core.Expense, Color: "#F59E0B", Icon: "Utensils"},
		{ID: 4, Name: "Housing", Type: core.Expense, Color: "#EF4444", Icon: "Home"},
		{ID: 5, Name: "Transportation", Type: core.Expense, Color: "#8B5CF6", Icon: "Car"},
		{ID: 6, Name: "Entertainment", Type: core.Expense, Color: "#EC4899", Icon: "Film"},
		{ID: 7, Name: "Utilities", Type: core.Expense, Color: "#6366F1", Icon: "Zap"},
		{ID: 8, Name: "Shopping", Type: core.Expense, Color: core.DefaultCategoryColor, Icon: core.DefaultCategoryIcon},
	}
}

func readJSON(path string, into any) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, into); err != nil {
		log.ForComponent(log.ComponentStorage).Warn("Ignoring malformed seed file", "path", path, "error", err)
	}
}

type Transactions struct {
	t   *table[core.Transaction]
	now func() time.Time
}

func (r *Transactions) List(context.Context) ([]core.Transaction, error) {
	return r.t.list(), nil
}

func (r *Transactions) Get(_ context.Context, id int64) (core.Transaction, error) {
	if v, ok := r.t.get(id); ok {
		return v, nil
	}
	return core.Transaction{}, core.NotFound("transaction", id)
}

func (r *Transactions) Create(_ context.Context, v core.Transaction) (core.Transaction, error) {
	v.CreatedAt = r.now().UTC()
	return r.t.insert(v), nil
}

func (r *Transactions) Update(_ context.Context, id int64, v core.Transaction) (core.Transaction, error) {
	out, ok := r.t.modify(id, func(old core.Transaction) core.Transaction {
		v.CreatedAt = old.CreatedAt
		return v
	})
	if !ok {
		return core.Transaction{}, core.NotFound("transaction", id)
	}
	return out, nil
}

func (r *Transactions) Delete(_ context.Context, id int64) (core.Transaction, error) {
	if v, ok := r.t.remove(id); ok {
		return v, nil
	}
	return core.Transaction{}, core.NotFound("transaction", id)
}

func (r *Transactions) ListByDateRange(_ context.Context, start, end core.Date) ([]core.Transaction, error) {
	return r.t.filter(func(v core.Transaction) bool {
		return !v.Date.Before(start.Time) && !v.Date.After(end.Time)
	}), nil
}

func (r *Transactions) ListByCategory(_ context.Context, category string) ([]core.Transaction, error) {
	return r.t.filter(func(v core.Transaction) bool { return v.Category == category }), nil
}

func (r *Transactions) ListByType(_ context.Context, typ core.TransactionType) ([]core.Transaction, error) {
	return r.t.filter(func(v core.Transaction) bool { return v.Type == typ }), nil
}

type Categories struct {
	t *table[core.Category]
}

func (r *Categories) List(context.Context) ([]core.Category, error) {
	return r.t.list(), nil
}

func (r *Categories) Get(_ context.Context, id int64) (core.Category, error) {
	if v, ok := r.t.get(id); ok {
		return v, nil
	}
	return core.Category{}, core.NotFound("category", id)
}

func (r *Categories) Create(_ context.Context, v core.Category) (core.Category, error) {
	return r.t.insert(v.WithDefaults()), nil
}

func (r *Categories) Update(_ context.Context, id int64, v core.Category) (core.Category, error) {
	out, ok := r.t.modify(id, func(old core.Category) core.Category { return old.Merge(v) })
	if !ok {
		return core.Category{}, core.NotFound("category", id)
	}
	return out, nil
}

func (r *Categories) Delete(_ context.Context, id int64) (core.Category, error) {
	if v, ok := r.t.remove(id); ok {
		return v, nil
	}
	return core.Category{}, core.NotFound("category", id)
}

func (r *Categories) ListByType(_ context.Context, typ core.TransactionType) ([]core.Category, error) {
	return r.t.filter(func(v core.Category) bool { return v.Type == typ }), nil
}

type Budgets struct {
	t *table[core.Budget]
}

func (r *Budgets) List(context.Context) ([]core.Budget, error) {
	return r.t.list(), nil
}

func (r *Budgets) Get(_ context.Context, id int64) (core.Budget, error) {
	if v, ok := r.t.get(id); ok {
		return v, nil
	}
	return core.Budget{}, core.NotFound("budget", id)
}

func (r *Budgets) Create(_ context.Context, v core.Budget) (core.Budget, error) {
	v.Spent = core.Money{}
	return r.t.insert(v), nil
}

func (r *Budgets) Update(_ context.Context, id int64, v core.Budget) (core.Budget, error) {
	out, ok := r.t.modify(id, func(old core.Budget) core.Budget {
		v.Spent = old.Spent
		return v
	})
	if !ok {
		return core.Budget{}, core.NotFound("budget", id)
	}
	return out, nil
}

func (r *Budgets) Delete(_ context.Context, id int64) (core.Budget, error) {
	if v, ok := r.t.remove(id); ok {
		return v, nil
	}
	return core.Budget{}, core.NotFound("budget", id)
}

func (r *Budgets) ListByMonth(_ context.Context, month core.Month) ([]core.Budget, error) {
	return r.t.filter(func(v core.Budget) bool { return v.Month == month }), nil
}

func (r *Budgets) ListByCategory(_ context.Context, categoryID int64) ([]core.Budget, error) {
	return r.t.filter(func(v core.Budget) bool { return v.CategoryID == categoryID }), nil
}

func (r *Budgets) FindByCategoryAndMonth(_ context.Context, categoryID int64, month core.Month) (core.Budget, error) {
	v, ok := r.t.find(func(v core.Budget) bool { return v.CategoryID == categoryID && v.Month == month })
	if !ok {
		return core.Budget{}, core.ErrNotFound
	}
	return v, nil
}

func (r *Budgets) UpdateSpent(_ context.Context, id int64, spent core.Money) (core.Budget, error) {
	out, ok := r.t.modify(id, func(old core.Budget) core.Budget {
		old.Spent = spent
		return old
	})
	if !ok {
		return core.Budget{}, core.NotFound("budget", id)
	}
	return out, nil
}

type Goals struct {
	t   *table[core.Goal]
	now func() time.Time
}

func (r *Goals) List(context.Context) ([]core.Goal, error) {
	return r.t.list(), nil
}

func (r *Goals) Get(_ context.Context, id int64) (core.Goal, error) {
	if v, ok := r.t.get(id); ok {
		return v, nil
	}
	return core.Goal{}, core.NotFound("goal", id)
}

func (r *Goals) Create(_ context.Context, v core.Goal) (core.Goal, error) {
	v.CreatedAt = r.now().UTC()
	return r.t.insert(v), nil
}

func (r *Goals) Update(_ context.Context, id int64, v core.Goal) (core.Goal, error) {
	out, ok := r.t.modify(id, func(old core.Goal) core.Goal {
		v.CreatedAt = old.CreatedAt
		return v
	})
	if !ok {
		return core.Goal{}, core.NotFound("goal", id)
	}
	return out, nil
}

func (r *Goals) Delete(_ context.Context, id int64) (core.Goal, error) {
	if v, ok := r.t.remove(id); ok {
		return v, nil
	}
	return core.Goal{}, core.NotFound("goal", id)
}

func (r *Goals) AddFunds(_ context.Context, id int64, amount core.Money) (core.Goal, error) {
	out, ok := r.t.modify(id, func(old core.Goal) core.Goal {
		old.CurrentAmount = old.CurrentAmount.Add(amount)
		return old
	})
	if !ok {
		return core.Goal{}, core.NotFound("goal", id)
	}
	return out, nil
}
