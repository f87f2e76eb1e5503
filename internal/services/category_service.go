package services

import (
	"context"
	"fmt"

	"smartfinance/internal/amqp"
	"smartfinance/internal/core"
	"smartfinance/internal/log"
	"smartfinance/internal/store"
)

type CategoryService struct {
	repo   store.CategoryRepository
	notify *notifier
	log    *log.StructuredLogger
}

// List returns every category, or only those of typ when it is set.
func (s *CategoryService) List(ctx context.Context, typ core.TransactionType) ([]core.Category, error) {
	if typ == "" {
		return s.repo.List(ctx)
	}
	if !typ.Valid() {
		return nil, core.ErrInvalidType
	}
	return s.repo.ListByType(ctx, typ)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	s.log.LogRecordChanged(ctx, "Category created", log.ComponentCategory, log.OpCreate, "category", created.ID, nil)
	s.notify.changed(ctx, amqp.NewEvent(amqp.CategoryCreated, created.ID))
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	updated, err := s.repo.Update(ctx, id, c)
	if err != nil {
		return core.Category{}, err
	}
	s.log.LogRecordChanged(ctx, "Category updated", log.ComponentCategory, log.OpUpdate, "category", id, nil)
	s.notify.changed(ctx, amqp.NewEvent(amqp.CategoryUpdated, id))
	return updated, nil
}

// Delete removes the category only. Transactions keep their category name
// and budgets keep the dangling id.
func (s *CategoryService) Delete(ctx context.Context, id int64) (core.Category, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	s.log.LogRecordChanged(ctx, "Category deleted", log.ComponentCategory, log.OpDelete, "category", id, nil)
	s.notify.changed(ctx, amqp.NewEvent(amqp.CategoryDeleted, id))
	return deleted, nil
}
