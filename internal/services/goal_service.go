package services

import (
	"context"
	"fmt"
	"time"

	"smartfinance/internal/amqp"
	"smartfinance/internal/core"
	"smartfinance/internal/log"
	"smartfinance/internal/store"
)

type GoalService struct {
	repo   store.GoalRepository
	now    func() time.Time
	notify *notifier
	log    *log.StructuredLogger
}

// GoalsSummary backs the goals page header.
type GoalsSummary struct {
	Savings   core.SavingsProgress `json:"savings"`
	Active    int                  `json:"active"`
	Completed int                  `json:"completed"`
}

// GoalStatusFilter selects goals by completion.
type GoalStatusFilter string

const (
	GoalsAll       GoalStatusFilter = ""
	GoalsActive    GoalStatusFilter = "active"
	GoalsCompleted GoalStatusFilter = "completed"
)

func (s *GoalService) List(ctx context.Context, status GoalStatusFilter) ([]core.Goal, error) {
	goals, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	active, completed := core.PartitionGoals(goals)
	switch status {
	case GoalsAll:
		return goals, nil
	case GoalsActive:
		return active, nil
	case GoalsCompleted:
		return completed, nil
	default:
		return nil, fmt.Errorf("%w: status must be active or completed", core.ErrValidation)
	}
}

func (s *GoalService) Active(ctx context.Context) ([]core.Goal, error) {
	return s.List(ctx, GoalsActive)
}

func (s *GoalService) Completed(ctx context.Context) ([]core.Goal, error) {
	return s.List(ctx, GoalsCompleted)
}

func (s *GoalService) Get(ctx context.Context, id int64) (core.Goal, error) {
	return s.repo.Get(ctx, id)
}

func (s *GoalService) Create(ctx context.Context, g core.Goal) (core.Goal, error) {
	if err := g.Validate(s.now()); err != nil {
		return core.Goal{}, err
	}
	created, err := s.repo.Create(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	s.log.LogRecordChanged(ctx, "Goal created", log.ComponentGoal, log.OpCreate, "goal", created.ID,
		log.NewFields().WithAmount(created.TargetAmount.Cents, ""))
	s.notify.changed(ctx, amqp.NewEvent(amqp.GoalCreated, created.ID))
	return created, nil
}

func (s *GoalService) Update(ctx context.Context, id int64, g core.Goal) (core.Goal, error) {
	if err := g.Validate(s.now()); err != nil {
		return core.Goal{}, err
	}
	updated, err := s.repo.Update(ctx, id, g)
	if err != nil {
		return core.Goal{}, err
	}
	s.log.LogRecordChanged(ctx, "Goal updated", log.ComponentGoal, log.OpUpdate, "goal", id, nil)
	s.notify.changed(ctx, amqp.NewEvent(amqp.GoalUpdated, id))
	return updated, nil
}

func (s *GoalService) Delete(ctx context.Context, id int64) (core.Goal, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return core.Goal{}, err
	}
	s.log.LogRecordChanged(ctx, "Goal deleted", log.ComponentGoal, log.OpDelete, "goal", id, nil)
	s.notify.changed(ctx, amqp.NewEvent(amqp.GoalDeleted, id))
	return deleted, nil
}

// AddFunds adds a positive amount to the goal's current savings. The total
// may exceed the target; the goal then counts as completed.
func (s *GoalService) AddFunds(ctx context.Context, id int64, amount core.Money) (core.Goal, error) {
	if amount.Cents <= 0 {
		return core.Goal{}, core.ErrInvalidAmount
	}
	g, err := s.repo.AddFunds(ctx, id, amount)
	if err != nil {
		return core.Goal{}, err
	}
	s.log.LogRecordChanged(ctx, "Goal funded", log.ComponentGoal, log.OpFund, "goal", id,
		log.NewFields().WithAmount(amount.Cents, ""))
	s.notify.changed(ctx, amqp.NewEvent(amqp.GoalFunded, id))
	return g, nil
}

func (s *GoalService) Progress(ctx context.Context, id int64) (core.GoalStatus, error) {
	g, err := s.repo.Get(ctx, id)
	if err != nil {
		return core.GoalStatus{}, err
	}
	return core.GoalProgress(g), nil
}

func (s *GoalService) Summary(ctx context.Context) (GoalsSummary, error) {
	goals, err := s.repo.List(ctx)
	if err != nil {
		return GoalsSummary{}, fmt.Errorf("list goals: %w", err)
	}
	active, completed := core.PartitionGoals(goals)
	return GoalsSummary{
		Savings:   core.TotalSavings(goals),
		Active:    len(active),
		Completed: len(completed),
	}, nil
}
