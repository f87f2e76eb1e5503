package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		Type:        Expense,
		Amount:      Money{Cents: 1250},
		Category:    "Food",
		Description: "Groceries",
		Date:        NewDate(2025, 3, 14),
	}
}

func TestTransactionValidate_DescriptionCountsCharacters(t *testing.T) {
	tx := validTransaction()
	tx.Description = strings.Repeat("食", MaxDescriptionLength)
	if err := tx.Validate(); err != nil {
		t.Fatalf("%d multibyte characters should pass, got %v", MaxDescriptionLength, err)
	}
	tx.Description += "食"
	if err := tx.Validate(); !errors.Is(err, ErrDescriptionLength) {
		t.Fatalf("got %v, want ErrDescriptionLength", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTransaction().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"blank category", func(tx *Transaction) { tx.Category = "  " }, ErrEmptyCategory},
		{"blank description", func(tx *Transaction) { tx.Description = "" }, ErrEmptyDescription},
		{"description too long", func(tx *Transaction) { tx.Description = strings.Repeat("a", 201) }, ErrDescriptionLength},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrEmptyDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			err := tx.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("error %v does not wrap ErrValidation", err)
			}
		})
	}
}

func TestCategoryDefaultsAndMerge(t *testing.T) {
	c := Category{Name: "Rent", Type: Expense}.WithDefaults()
	if c.Color != DefaultCategoryColor || c.Icon != DefaultCategoryIcon {
		t.Fatalf("defaults not applied: %+v", c)
	}

	existing := Category{ID: 4, Name: "Rent", Type: Expense, Color: "#000000", Icon: "Home"}
	merged := existing.Merge(Category{ID: 99, Name: "Housing", Type: Expense})
	if merged.ID != 4 {
		t.Fatalf("merge changed id: %d", merged.ID)
	}
	if merged.Name != "Housing" || merged.Color != "#000000" || merged.Icon != "Home" {
		t.Fatalf("unexpected merge: %+v", merged)
	}

	if err := (Category{Name: "", Type: Income}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (Category{Name: "x", Type: ""}).Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{CategoryID: 1, Amount: Money{Cents: 50000}, Month: "2025-03"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Budget{
		{CategoryID: 1, Amount: Money{}, Month: "2025-03"},
		{CategoryID: 0, Amount: Money{Cents: 1}, Month: "2025-03"},
		{CategoryID: 1, Amount: Money{Cents: 1}, Month: "2025-13"},
		{CategoryID: 1, Amount: Money{Cents: 1}, Month: ""},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestGoalValidate(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)
	good := Goal{
		Name:          "Emergency fund",
		TargetAmount:  Money{Cents: 100000},
		CurrentAmount: Money{Cents: 2500},
		Deadline:      NewDate(2025, 12, 31),
	}
	if err := good.Validate(now); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	today := good
	today.Deadline = NewDate(2025, 3, 14)
	if err := today.Validate(now); err != nil {
		t.Fatalf("deadline today should be accepted, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Goal)
		want   error
	}{
		{"blank name", func(g *Goal) { g.Name = " " }, ErrEmptyName},
		{"zero target", func(g *Goal) { g.TargetAmount = Money{} }, ErrInvalidTarget},
		{"negative current", func(g *Goal) { g.CurrentAmount = Money{Cents: -5} }, ErrNegativeCurrent},
		{"current over target", func(g *Goal) { g.CurrentAmount = Money{Cents: 100001} }, ErrCurrentOverTarget},
		{"no deadline", func(g *Goal) { g.Deadline = Date{} }, ErrEmptyDeadline},
		{"past deadline", func(g *Goal) { g.Deadline = NewDate(2025, 3, 13) }, ErrPastDeadline},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := good
			tc.mutate(&g)
			if err := g.Validate(now); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNotFoundWraps(t *testing.T) {
	err := NotFound("budget", 7)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err.Error() != "budget with id 7: not found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
