// Package services orchestrates the repositories: validation, persistence,
// change events and the report cache.
package services

import (
	"context"
	"time"

	"smartfinance/internal/amqp"
	"smartfinance/internal/log"
	"smartfinance/internal/store"
)

// EventPublisher delivers change events. *amqp.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, e *amqp.Event) error
}

var _ EventPublisher = (*amqp.Client)(nil)

// Options tune the service set. Zero values pick defaults.
type Options struct {
	Publisher      EventPublisher
	Now            func() time.Time
	ReportCacheTTL time.Duration
	ReportCacheMax int
}

type Services struct {
	Transactions *TransactionService
	Categories   *CategoryService
	Budgets      *BudgetService
	Goals        *GoalService
	Reports      *ReportService
}

func New(repos store.Repositories, opts Options) *Services {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ReportCacheTTL <= 0 {
		opts.ReportCacheTTL = 5 * time.Minute
	}
	if opts.ReportCacheMax <= 0 {
		opts.ReportCacheMax = 64
	}

	reports := NewReportService(repos, opts.Now, opts.ReportCacheMax, opts.ReportCacheTTL)
	n := &notifier{publisher: opts.Publisher, invalidate: reports.Invalidate}

	return &Services{
		Transactions: &TransactionService{repo: repos.Transactions, notify: n, log: newLogger(log.ComponentTransaction)},
		Categories:   &CategoryService{repo: repos.Categories, notify: n, log: newLogger(log.ComponentCategory)},
		Budgets: &BudgetService{
			repo: repos.Budgets, categories: repos.Categories, transactions: repos.Transactions,
			notify: n, log: newLogger(log.ComponentBudget),
		},
		Goals:   &GoalService{repo: repos.Goals, now: opts.Now, notify: n, log: newLogger(log.ComponentGoal)},
		Reports: reports,
	}
}

func newLogger(component string) *log.StructuredLogger {
	return log.NewStructuredLogger(log.ForComponent(component))
}

// notifier runs after every successful write: the report cache is dropped
// and an event is published. A publish failure is logged, never returned,
// because the write already happened.
type notifier struct {
	publisher  EventPublisher
	invalidate func()
}

func (n *notifier) changed(ctx context.Context, e *amqp.Event) {
	if n == nil {
		return
	}
	if n.invalidate != nil {
		n.invalidate()
	}
	if n.publisher == nil {
		return
	}
	if err := n.publisher.Publish(ctx, e); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Failed to publish change event",
			log.FieldOperation, log.OpPublish,
			log.FieldEventKind, e.Kind,
			log.FieldID, e.ID,
			log.FieldError, err)
	}
}
