package services

import (
	"context"
	"fmt"

	"smartfinance/internal/amqp"
	"smartfinance/internal/core"
	"smartfinance/internal/log"
	"smartfinance/internal/store"
)

type TransactionService struct {
	repo   store.TransactionRepository
	notify *notifier
	log    *log.StructuredLogger
}

// List returns the transactions matching f, newest first. Type and category
// narrow the repository query; the remaining criteria filter in memory.
func (s *TransactionService) List(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	var (
		txs []core.Transaction
		err error
	)
	switch {
	case f.Type != "":
		txs, err = s.repo.ListByType(ctx, f.Type)
	case f.Category != "":
		txs, err = s.repo.ListByCategory(ctx, f.Category)
	case !f.StartDate.IsZero() && !f.EndDate.IsZero():
		txs, err = s.repo.ListByDateRange(ctx, f.StartDate, f.EndDate)
	default:
		txs, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return core.FilterTransactions(txs, f), nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.repo.Get(ctx, id)
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.log.LogRecordChanged(ctx, "Transaction created", log.ComponentTransaction, log.OpCreate, "transaction", created.ID,
		log.NewFields().WithAmount(created.Amount.Cents, created.Category))
	s.notify.changed(ctx, amqp.NewTransactionEvent(amqp.TransactionCreated, created))
	return created, nil
}

// Update replaces a transaction. The published event also names the
// previous category and month so both budgets can be refreshed.
func (s *TransactionService) Update(ctx context.Context, id int64, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	prev, err := s.repo.Get(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	updated, err := s.repo.Update(ctx, id, t)
	if err != nil {
		return core.Transaction{}, err
	}

	s.log.LogRecordChanged(ctx, "Transaction updated", log.ComponentTransaction, log.OpUpdate, "transaction", id,
		log.NewFields().WithAmount(updated.Amount.Cents, updated.Category))
	e := amqp.NewTransactionEvent(amqp.TransactionUpdated, updated)
	if prev.Category != updated.Category || prev.Date.Month() != updated.Date.Month() {
		e.PreviousCategory = prev.Category
		e.PreviousMonth = prev.Date.Month()
	}
	s.notify.changed(ctx, e)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) (core.Transaction, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	s.log.LogRecordChanged(ctx, "Transaction deleted", log.ComponentTransaction, log.OpDelete, "transaction", id, nil)
	s.notify.changed(ctx, amqp.NewTransactionEvent(amqp.TransactionDeleted, deleted))
	return deleted, nil
}
