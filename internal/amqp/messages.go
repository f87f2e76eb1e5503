package amqp

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartfinance/internal/core"
)

// EventKind is "<entity>.<action>".
type EventKind string

const (
	TransactionCreated EventKind = "transaction.created"
	TransactionUpdated EventKind = "transaction.updated"
	TransactionDeleted EventKind = "transaction.deleted"
	CategoryCreated    EventKind = "category.created"
	CategoryUpdated    EventKind = "category.updated"
	CategoryDeleted    EventKind = "category.deleted"
	BudgetCreated      EventKind = "budget.created"
	BudgetUpdated      EventKind = "budget.updated"
	BudgetDeleted      EventKind = "budget.deleted"
	GoalCreated        EventKind = "goal.created"
	GoalUpdated        EventKind = "goal.updated"
	GoalDeleted        EventKind = "goal.deleted"
	GoalFunded         EventKind = "goal.funded"
)

// Entity returns the part of the kind before the dot.
func (k EventKind) Entity() string {
	entity, _, _ := strings.Cut(string(k), ".")
	return entity
}

// Event notifies consumers that a record changed. It carries only what the
// worker needs to locate affected data; the record itself is re-read.
type Event struct {
	EventID   string     `json:"event_id"`
	Kind      EventKind  `json:"kind"`
	Entity    string     `json:"entity"`
	ID        int64      `json:"id"`
	Category  string     `json:"category,omitempty"`
	Month     core.Month `json:"month,omitempty"`
	Timestamp time.Time  `json:"timestamp"`

	// Set on transaction updates that moved the record to another
	// category or month.
	PreviousCategory string     `json:"previous_category,omitempty"`
	PreviousMonth    core.Month `json:"previous_month,omitempty"`
}

func NewEvent(kind EventKind, id int64) *Event {
	return &Event{
		EventID:   uuid.NewString(),
		Kind:      kind,
		Entity:    kind.Entity(),
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransactionEvent records the category and month the transaction was
// booked against, which is what budget refreshes key on.
func NewTransactionEvent(kind EventKind, t core.Transaction) *Event {
	e := NewEvent(kind, t.ID)
	e.Category = t.Category
	e.Month = t.Date.Month()
	return e
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Kind == "" {
		return nil, fmt.Errorf("event without kind")
	}
	if e.Entity == "" {
		e.Entity = e.Kind.Entity()
	}
	return &e, nil
}
