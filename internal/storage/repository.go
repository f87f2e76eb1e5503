package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"smartfinance/internal/core"
	"smartfinance/internal/log"
	"smartfinance/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository owns the database handle shared by the per-entity stores.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time

	Transactions *TransactionStore
	Categories   *CategoryStore
	Budgets      *BudgetStore
	Goals        *GoalStore
}

var (
	_ store.TransactionRepository = (*TransactionStore)(nil)
	_ store.CategoryRepository    = (*CategoryStore)(nil)
	_ store.BudgetRepository      = (*BudgetStore)(nil)
	_ store.GoalRepository        = (*GoalStore)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	r := &SQLiteRepository{db: db, now: time.Now}
	r.Transactions = &TransactionStore{db: db, now: func() time.Time { return r.now() }}
	r.Categories = &CategoryStore{db: db}
	r.Budgets = &BudgetStore{db: db}
	r.Goals = &GoalStore{db: db, now: func() time.Time { return r.now() }}

	log.ForComponent(log.ComponentStorage).Info("SQLite repository ready", "path", dbPath)
	return r, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Repositories() store.Repositories {
	return store.Repositories{
		Transactions: r.Transactions,
		Categories:   r.Categories,
		Budgets:      r.Budgets,
		Goals:        r.Goals,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func notFoundOr(err error, entity string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.NotFound(entity, id)
	}
	return err
}

func parseStoredDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}

func parseStoredTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Transactions

type TransactionStore struct {
	db  *sql.DB
	now func() time.Time
}

const transactionColumns = `id, type, amount_cents, category, description, date, notes, created_at`

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		typ, date string
		createdAt string
	)
	if err := row.Scan(&t.ID, &typ, &t.Amount.Cents, &t.Category, &t.Description, &date, &t.Notes, &createdAt); err != nil {
		return core.Transaction{}, err
	}
	d, err := parseStoredDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", t.ID, err)
	}
	t.Type = core.TransactionType(typ)
	t.Date = d
	t.CreatedAt = parseStoredTime(createdAt)
	return t, nil
}

func (s *TransactionStore) query(ctx context.Context, where string, args ...any) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *TransactionStore) List(ctx context.Context) ([]core.Transaction, error) {
	return s.query(ctx, "")
}

func (s *TransactionStore) Get(ctx context.Context, id int64) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, notFoundOr(err, "transaction", id)
	}
	return t, nil
}

func (s *TransactionStore) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO transactions (type, amount_cents, category, description, date, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+transactionColumns,
		string(t.Type), t.Amount.Cents, t.Category, t.Description, t.Date.String(), t.Notes,
		s.now().UTC().Format(time.RFC3339Nano))
	created, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	log.ForComponent(log.ComponentStorage).DebugContext(ctx, "Transaction row inserted", log.FieldID, created.ID, log.FieldAmountCents, created.Amount.Cents)
	return created, nil
}

func (s *TransactionStore) Update(ctx context.Context, id int64, t core.Transaction) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE transactions
		SET type = ?, amount_cents = ?, category = ?, description = ?, date = ?, notes = ?
		WHERE id = ?
		RETURNING `+transactionColumns,
		string(t.Type), t.Amount.Cents, t.Category, t.Description, t.Date.String(), t.Notes, id)
	updated, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, notFoundOr(err, "transaction", id)
	}
	return updated, nil
}

func (s *TransactionStore) Delete(ctx context.Context, id int64) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `DELETE FROM transactions WHERE id = ? RETURNING `+transactionColumns, id)
	deleted, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, notFoundOr(err, "transaction", id)
	}
	return deleted, nil
}

func (s *TransactionStore) ListByDateRange(ctx context.Context, start, end core.Date) ([]core.Transaction, error) {
	return s.query(ctx, `WHERE date >= ? AND date <= ?`, start.String(), end.String())
}

func (s *TransactionStore) ListByCategory(ctx context.Context, category string) ([]core.Transaction, error) {
	return s.query(ctx, `WHERE category = ?`, category)
}

func (s *TransactionStore) ListByType(ctx context.Context, typ core.TransactionType) ([]core.Transaction, error) {
	return s.query(ctx, `WHERE type = ?`, string(typ))
}

// Categories

type CategoryStore struct {
	db *sql.DB
}

const categoryColumns = `id, name, type, color, icon`

func scanCategory(row scanner) (core.Category, error) {
	var (
		c   core.Category
		typ string
	)
	if err := row.Scan(&c.ID, &c.Name, &typ, &c.Color, &c.Icon); err != nil {
		return core.Category{}, err
	}
	c.Type = core.TransactionType(typ)
	return c, nil
}

func (s *CategoryStore) query(ctx context.Context, where string, args ...any) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	out := make([]core.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *CategoryStore) List(ctx context.Context) ([]core.Category, error) {
	return s.query(ctx, "")
}

func (s *CategoryStore) Get(ctx context.Context, id int64) (core.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if err != nil {
		return core.Category{}, notFoundOr(err, "category", id)
	}
	return c, nil
}

func (s *CategoryStore) Create(ctx context.Context, c core.Category) (core.Category, error) {
	c = c.WithDefaults()
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, type, color, icon) VALUES (?, ?, ?, ?)
		RETURNING `+categoryColumns,
		c.Name, string(c.Type), c.Color, c.Icon)
	created, err := scanCategory(row)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

func (s *CategoryStore) Update(ctx context.Context, id int64, c core.Category) (core.Category, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	merged := existing.Merge(c)
	row := s.db.QueryRowContext(ctx, `
		UPDATE categories SET name = ?, type = ?, color = ?, icon = ? WHERE id = ?
		RETURNING `+categoryColumns,
		merged.Name, string(merged.Type), merged.Color, merged.Icon, id)
	updated, err := scanCategory(row)
	if err != nil {
		return core.Category{}, notFoundOr(err, "category", id)
	}
	return updated, nil
}

func (s *CategoryStore) Delete(ctx context.Context, id int64) (core.Category, error) {
	deleted, err := scanCategory(s.db.QueryRowContext(ctx, `DELETE FROM categories WHERE id = ? RETURNING `+categoryColumns, id))
	if err != nil {
		return core.Category{}, notFoundOr(err, "category", id)
	}
	return deleted, nil
}

func (s *CategoryStore) ListByType(ctx context.Context, typ core.TransactionType) ([]core.Category, error) {
	return s.query(ctx, `WHERE type = ?`, string(typ))
}

// Budgets

type BudgetStore struct {
	db *sql.DB
}

const budgetColumns = `id, category_id, amount_cents, month, spent_cents`

func scanBudget(row scanner) (core.Budget, error) {
	var (
		b     core.Budget
		month string
	)
	if err := row.Scan(&b.ID, &b.CategoryID, &b.Amount.Cents, &month, &b.Spent.Cents); err != nil {
		return core.Budget{}, err
	}
	b.Month = core.Month(month)
	return b, nil
}

func (s *BudgetStore) query(ctx context.Context, where string, args ...any) ([]core.Budget, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budgets `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	out := make([]core.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *BudgetStore) List(ctx context.Context) ([]core.Budget, error) {
	return s.query(ctx, "")
}

func (s *BudgetStore) Get(ctx context.Context, id int64) (core.Budget, error) {
	b, err := scanBudget(s.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id))
	if err != nil {
		return core.Budget{}, notFoundOr(err, "budget", id)
	}
	return b, nil
}

func (s *BudgetStore) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO budgets (category_id, amount_cents, month, spent_cents) VALUES (?, ?, ?, 0)
		RETURNING `+budgetColumns,
		b.CategoryID, b.Amount.Cents, string(b.Month))
	created, err := scanBudget(row)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return created, nil
}

func (s *BudgetStore) Update(ctx context.Context, id int64, b core.Budget) (core.Budget, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE budgets SET category_id = ?, amount_cents = ?, month = ? WHERE id = ?
		RETURNING `+budgetColumns,
		b.CategoryID, b.Amount.Cents, string(b.Month), id)
	updated, err := scanBudget(row)
	if err != nil {
		return core.Budget{}, notFoundOr(err, "budget", id)
	}
	return updated, nil
}

func (s *BudgetStore) Delete(ctx context.Context, id int64) (core.Budget, error) {
	deleted, err := scanBudget(s.db.QueryRowContext(ctx, `DELETE FROM budgets WHERE id = ? RETURNING `+budgetColumns, id))
	if err != nil {
		return core.Budget{}, notFoundOr(err, "budget", id)
	}
	return deleted, nil
}

func (s *BudgetStore) ListByMonth(ctx context.Context, month core.Month) ([]core.Budget, error) {
	return s.query(ctx, `WHERE month = ?`, string(month))
}

func (s *BudgetStore) ListByCategory(ctx context.Context, categoryID int64) ([]core.Budget, error) {
	return s.query(ctx, `WHERE category_id = ?`, categoryID)
}

func (s *BudgetStore) FindByCategoryAndMonth(ctx context.Context, categoryID int64, month core.Month) (core.Budget, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE category_id = ? AND month = ? ORDER BY id LIMIT 1`,
		categoryID, string(month))
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	return b, err
}

func (s *BudgetStore) UpdateSpent(ctx context.Context, id int64, spent core.Money) (core.Budget, error) {
	row := s.db.QueryRowContext(ctx, `UPDATE budgets SET spent_cents = ? WHERE id = ? RETURNING `+budgetColumns, spent.Cents, id)
	b, err := scanBudget(row)
	if err != nil {
		return core.Budget{}, notFoundOr(err, "budget", id)
	}
	return b, nil
}

// Goals

type GoalStore struct {
	db  *sql.DB
	now func() time.Time
}

const goalColumns = `id, name, target_amount_cents, current_amount_cents, deadline, created_at`

func scanGoal(row scanner) (core.Goal, error) {
	var (
		g                   core.Goal
		deadline, createdAt string
	)
	if err := row.Scan(&g.ID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents, &deadline, &createdAt); err != nil {
		return core.Goal{}, err
	}
	d, err := parseStoredDate(deadline)
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal %d: %w", g.ID, err)
	}
	g.Deadline = d
	g.CreatedAt = parseStoredTime(createdAt)
	return g, nil
}

func (s *GoalStore) List(ctx context.Context) ([]core.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	out := make([]core.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *GoalStore) Get(ctx context.Context, id int64) (core.Goal, error) {
	g, err := scanGoal(s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if err != nil {
		return core.Goal{}, notFoundOr(err, "goal", id)
	}
	return g, nil
}

func (s *GoalStore) Create(ctx context.Context, g core.Goal) (core.Goal, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO goals (name, target_amount_cents, current_amount_cents, deadline, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+goalColumns,
		g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, g.Deadline.String(),
		s.now().UTC().Format(time.RFC3339Nano))
	created, err := scanGoal(row)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	return created, nil
}

func (s *GoalStore) Update(ctx context.Context, id int64, g core.Goal) (core.Goal, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE goals SET name = ?, target_amount_cents = ?, current_amount_cents = ?, deadline = ?
		WHERE id = ?
		RETURNING `+goalColumns,
		g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents, g.Deadline.String(), id)
	updated, err := scanGoal(row)
	if err != nil {
		return core.Goal{}, notFoundOr(err, "goal", id)
	}
	return updated, nil
}

func (s *GoalStore) Delete(ctx context.Context, id int64) (core.Goal, error) {
	deleted, err := scanGoal(s.db.QueryRowContext(ctx, `DELETE FROM goals WHERE id = ? RETURNING `+goalColumns, id))
	if err != nil {
		return core.Goal{}, notFoundOr(err, "goal", id)
	}
	return deleted, nil
}

func (s *GoalStore) AddFunds(ctx context.Context, id int64, amount core.Money) (core.Goal, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE goals SET current_amount_cents = current_amount_cents + ? WHERE id = ?
		RETURNING `+goalColumns,
		amount.Cents, id)
	g, err := scanGoal(row)
	if err != nil {
		return core.Goal{}, notFoundOr(err, "goal", id)
	}
	return g, nil
}
