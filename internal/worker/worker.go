// Package worker consumes change events: it keeps the stored budget spend in
// step with transactions and mirrors transactions to an external sheet.
package worker

import (
	"context"
	"errors"
	"fmt"

	"smartfinance/internal/amqp"
	"smartfinance/internal/core"
	"smartfinance/internal/log"
	"smartfinance/internal/sheets"
)

// BudgetRefresher recomputes stored budget spend.
type BudgetRefresher interface {
	RefreshSpent(ctx context.Context, category string, month core.Month) (int, error)
	RefreshBudget(ctx context.Context, id int64) error
	RefreshCategory(ctx context.Context, categoryID int64) (int, error)
}

type TransactionReader interface {
	Get(ctx context.Context, id int64) (core.Transaction, error)
}

// EventWorker handles one event at a time. A returned error asks the
// consumer to requeue the message.
type EventWorker struct {
	budgets      BudgetRefresher
	transactions TransactionReader
	mirror       sheets.TransactionMirror
	logger       *log.Logger
}

// New builds a worker. mirror may be nil when no sheet is configured.
func New(budgets BudgetRefresher, transactions TransactionReader, mirror sheets.TransactionMirror) *EventWorker {
	return &EventWorker{
		budgets:      budgets,
		transactions: transactions,
		mirror:       mirror,
		logger:       log.ForComponent(log.ComponentWorker),
	}
}

// Handle dispatches on the event entity. Unknown entities are acknowledged
// and skipped.
func (w *EventWorker) Handle(ctx context.Context, e *amqp.Event) error {
	w.logger.InfoContext(ctx, "Processing event",
		log.FieldEventID, e.EventID,
		log.FieldEventKind, e.Kind,
		log.FieldID, e.ID)

	switch e.Kind.Entity() {
	case "transaction":
		return w.handleTransaction(ctx, e)
	case "budget":
		return w.handleBudget(ctx, e)
	case "category":
		return w.handleCategory(ctx, e)
	default:
		w.logger.DebugContext(ctx, "No handler for event", log.FieldEventKind, e.Kind)
		return nil
	}
}

func (w *EventWorker) handleTransaction(ctx context.Context, e *amqp.Event) error {
	if err := w.refresh(ctx, e.Category, e.Month); err != nil {
		return err
	}
	if e.PreviousCategory != "" || e.PreviousMonth != "" {
		category, month := e.PreviousCategory, e.PreviousMonth
		if category == "" {
			category = e.Category
		}
		if month == "" {
			month = e.Month
		}
		if err := w.refresh(ctx, category, month); err != nil {
			return err
		}
	}
	return w.mirrorTransaction(ctx, e)
}

func (w *EventWorker) refresh(ctx context.Context, category string, month core.Month) error {
	n, err := w.budgets.RefreshSpent(ctx, category, month)
	if err != nil {
		return fmt.Errorf("refresh budget spend for %s %s: %w", category, month, err)
	}
	if n > 0 {
		w.logger.InfoContext(ctx, "Budget spend refreshed",
			log.FieldCategory, category,
			log.FieldMonth, month,
			log.FieldCount, n)
	}
	return nil
}

func (w *EventWorker) mirrorTransaction(ctx context.Context, e *amqp.Event) error {
	if w.mirror == nil {
		return nil
	}
	if e.Kind == amqp.TransactionDeleted {
		if err := w.mirror.Delete(ctx, e.ID); err != nil {
			return fmt.Errorf("remove transaction %d from sheet: %w", e.ID, err)
		}
		w.logger.InfoContext(ctx, "Transaction removed from sheet", log.FieldOperation, log.OpMirror, log.FieldID, e.ID)
		return nil
	}

	t, err := w.transactions.Get(ctx, e.ID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted after the event was published; the delete event follows.
		w.logger.DebugContext(ctx, "Transaction gone, skipping mirror", log.FieldID, e.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction %d: %w", e.ID, err)
	}
	ref, err := w.mirror.Upsert(ctx, t)
	if err != nil {
		return fmt.Errorf("mirror transaction %d: %w", e.ID, err)
	}
	w.logger.InfoContext(ctx, "Transaction mirrored to sheet",
		log.FieldOperation, log.OpMirror,
		log.FieldID, e.ID,
		"row_ref", ref)
	return nil
}

func (w *EventWorker) handleBudget(ctx context.Context, e *amqp.Event) error {
	if e.Kind == amqp.BudgetDeleted {
		return nil
	}
	err := w.budgets.RefreshBudget(ctx, e.ID)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("refresh budget %d: %w", e.ID, err)
	}
	return nil
}

// handleCategory covers renames: transactions reference categories by name,
// so every budget of the category may now match a different set.
func (w *EventWorker) handleCategory(ctx context.Context, e *amqp.Event) error {
	if e.Kind != amqp.CategoryUpdated {
		return nil
	}
	n, err := w.budgets.RefreshCategory(ctx, e.ID)
	if err != nil {
		return fmt.Errorf("refresh budgets of category %d: %w", e.ID, err)
	}
	w.logger.InfoContext(ctx, "Category budgets refreshed", log.FieldID, e.ID, log.FieldCount, n)
	return nil
}
