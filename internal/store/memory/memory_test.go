package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"smartfinance/internal/core"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newStore(seed Seed) *Store {
	return NewWithClock(seed, func() time.Time { return fixedNow })
}

func TestTransactionsCRUD(t *testing.T) {
	ctx := context.Background()
	s := newStore(Seed{Transactions: []core.Transaction{
		{ID: 7, Type: core.Expense, Amount: core.Money{Cents: 100}, Category: "Food", Description: "a", Date: core.NewDate(2025, 3, 1)},
	}})

	created, err := s.Transactions.Create(ctx, core.Transaction{
		Type: core.Income, Amount: core.Money{Cents: 5000}, Category: "Salary", Description: "pay", Date: core.NewDate(2025, 3, 2),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 8 {
		t.Fatalf("expected id max+1 = 8, got %d", created.ID)
	}
	if !created.CreatedAt.Equal(fixedNow) {
		t.Fatalf("createdAt not stamped: %v", created.CreatedAt)
	}

	updated, err := s.Transactions.Update(ctx, 8, core.Transaction{ID: 99, Type: core.Income, Amount: core.Money{Cents: 6000},
		Category: "Salary", Description: "pay", Date: core.NewDate(2025, 3, 2)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != 8 || updated.Amount.Cents != 6000 || !updated.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected update result %+v", updated)
	}

	byType, _ := s.Transactions.ListByType(ctx, core.Expense)
	if len(byType) != 1 || byType[0].ID != 7 {
		t.Fatalf("ListByType: %+v", byType)
	}
	byRange, _ := s.Transactions.ListByDateRange(ctx, core.NewDate(2025, 3, 2), core.NewDate(2025, 3, 31))
	if len(byRange) != 1 || byRange[0].ID != 8 {
		t.Fatalf("ListByDateRange: %+v", byRange)
	}

	deleted, err := s.Transactions.Delete(ctx, 7)
	if err != nil || deleted.ID != 7 {
		t.Fatalf("delete: %+v %v", deleted, err)
	}
	if _, err := s.Transactions.Get(ctx, 7); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if _, err := s.Transactions.Delete(ctx, 7); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := newStore(Seed{Goals: []core.Goal{{ID: 1, Name: "Car", TargetAmount: core.Money{Cents: 10}}}})
	goals, _ := s.Goals.List(ctx)
	goals[0].Name = "mutated"
	again, _ := s.Goals.Get(ctx, 1)
	if again.Name != "Car" {
		t.Fatalf("store leaked internal slice")
	}
}

func TestCategoryDefaultsAndMerge(t *testing.T) {
	ctx := context.Background()
	s := newStore(Seed{})
	c, _ := s.Categories.Create(ctx, core.Category{Name: "Pets", Type: core.Expense})
	if c.ID != 1 || c.Color != core.DefaultCategoryColor || c.Icon != core.DefaultCategoryIcon {
		t.Fatalf("unexpected create %+v", c)
	}
	c, _ = s.Categories.Update(ctx, 1, core.Category{Name: "Animals", Type: core.Expense, Icon: "Dog"})
	if c.Name != "Animals" || c.Color != core.DefaultCategoryColor || c.Icon != "Dog" {
		t.Fatalf("unexpected update %+v", c)
	}
	if _, err := s.Categories.Update(ctx, 2, core.Category{Name: "x", Type: core.Income}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBudgetsSpent(t *testing.T) {
	ctx := context.Background()
	s := newStore(Seed{})
	b, _ := s.Budgets.Create(ctx, core.Budget{CategoryID: 3, Amount: core.Money{Cents: 1000}, Month: "2025-03", Spent: core.Money{Cents: 999}})
	if b.Spent.Cents != 0 {
		t.Fatalf("create must reset spent, got %d", b.Spent.Cents)
	}
	if _, err := s.Budgets.UpdateSpent(ctx, b.ID, core.Money{Cents: 400}); err != nil {
		t.Fatalf("update spent: %v", err)
	}
	b, _ = s.Budgets.Update(ctx, b.ID, core.Budget{CategoryID: 3, Amount: core.Money{Cents: 2000}, Month: "2025-03"})
	if b.Spent.Cents != 400 || b.Amount.Cents != 2000 {
		t.Fatalf("update must keep spent: %+v", b)
	}

	found, err := s.Budgets.FindByCategoryAndMonth(ctx, 3, "2025-03")
	if err != nil || found.ID != b.ID {
		t.Fatalf("find: %+v %v", found, err)
	}
	if _, err := s.Budgets.FindByCategoryAndMonth(ctx, 3, "2025-04"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	byMonth, _ := s.Budgets.ListByMonth(ctx, "2025-03")
	if len(byMonth) != 1 {
		t.Fatalf("ListByMonth: %+v", byMonth)
	}
}

func TestGoalsAddFunds(t *testing.T) {
	ctx := context.Background()
	s := newStore(Seed{Goals: []core.Goal{{ID: 2, Name: "Trip", TargetAmount: core.Money{Cents: 5000}, CurrentAmount: core.Money{Cents: 1000}}}})
	g, err := s.Goals.AddFunds(ctx, 2, core.Money{Cents: 250})
	if err != nil || g.CurrentAmount.Cents != 1250 {
		t.Fatalf("add funds: %+v %v", g, err)
	}
	if _, err := s.Goals.AddFunds(ctx, 3, core.Money{Cents: 1}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := NewFromFiles(dir)
	cats, _ := s.Categories.List(ctx)
	if len(cats) == 0 {
		t.Fatalf("expected default categories when files missing")
	}

	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("categories.json", `[{"Id": 1, "name": "Food", "type": "expense", "color": "#fff", "icon": "Utensils"}]`)
	mustWrite("transactions.json", `[{"Id": 3, "type": "expense", "amount": 42.5, "category": "Food", "description": "Lunch", "date": "2025-03-01"}]`)
	mustWrite("budgets.json", `not json`)

	s = NewFromFiles(dir)
	cats, _ = s.Categories.List(ctx)
	if len(cats) != 1 || cats[0].Name != "Food" {
		t.Fatalf("unexpected categories %+v", cats)
	}
	txs, _ := s.Transactions.List(ctx)
	if len(txs) != 1 || txs[0].ID != 3 || txs[0].Amount.Cents != 4250 {
		t.Fatalf("unexpected transactions %+v", txs)
	}
	budgets, _ := s.Budgets.List(ctx)
	if len(budgets) != 0 {
		t.Fatalf("malformed seed should be ignored")
	}
}
