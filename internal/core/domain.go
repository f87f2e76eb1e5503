package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	DefaultCategoryColor = "#3B82F6"
	DefaultCategoryIcon  = "ShoppingCart"

	// MaxDescriptionLength counts characters, not bytes.
	MaxDescriptionLength = 200
)

type (
	// TransactionType classifies both transactions and categories.
	TransactionType string

	Transaction struct {
		ID          int64           `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		Category    string          `json:"category"` // joined to Category.Name
		Description string          `json:"description"`
		Date        Date            `json:"date"`
		Notes       string          `json:"notes,omitempty"`
		CreatedAt   time.Time       `json:"createdAt"`
	}

	Category struct {
		ID    int64           `json:"id"`
		Name  string          `json:"name"`
		Type  TransactionType `json:"type"`
		Color string          `json:"color"`
		Icon  string          `json:"icon"`
	}

	Budget struct {
		ID         int64 `json:"id"`
		CategoryID int64 `json:"categoryId"` // joined to Category.ID
		Amount     Money `json:"amount"`
		Month      Month `json:"month"`
		Spent      Money `json:"spent"`
	}

	Goal struct {
		ID            int64     `json:"id"`
		Name          string    `json:"name"`
		TargetAmount  Money     `json:"targetAmount"`
		CurrentAmount Money     `json:"currentAmount"`
		Deadline      Date      `json:"deadline"`
		CreatedAt     time.Time `json:"createdAt"`
	}
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")

	ErrInvalidType       = fmt.Errorf("%w: type must be income or expense", ErrValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	ErrEmptyCategory     = fmt.Errorf("%w: category is required", ErrValidation)
	ErrEmptyDescription  = fmt.Errorf("%w: description is required", ErrValidation)
	ErrDescriptionLength = fmt.Errorf("%w: description too long (max %d characters)", ErrValidation, MaxDescriptionLength)
	ErrEmptyDate         = fmt.Errorf("%w: date is required", ErrValidation)
	ErrEmptyName         = fmt.Errorf("%w: name is required", ErrValidation)
	ErrInvalidMonth      = fmt.Errorf("%w: month must be YYYY-MM", ErrValidation)
	ErrInvalidCategoryID = fmt.Errorf("%w: category is required", ErrValidation)
	ErrInvalidTarget     = fmt.Errorf("%w: target amount must be greater than 0", ErrValidation)
	ErrNegativeCurrent   = fmt.Errorf("%w: current amount cannot be negative", ErrValidation)
	ErrCurrentOverTarget = fmt.Errorf("%w: current amount cannot be greater than target amount", ErrValidation)
	ErrEmptyDeadline     = fmt.Errorf("%w: deadline is required", ErrValidation)
	ErrPastDeadline      = fmt.Errorf("%w: deadline must be in the future", ErrValidation)
)

// NotFound builds an ErrNotFound-wrapping error naming the entity and id.
func NotFound(entity string, id int64) error {
	return fmt.Errorf("%s with id %d: %w", entity, id, ErrNotFound)
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return ErrDescriptionLength
	}
	if t.Date.IsZero() {
		return ErrEmptyDate
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// WithDefaults fills the presentation fields the caller left blank.
func (c Category) WithDefaults() Category {
	if strings.TrimSpace(c.Color) == "" {
		c.Color = DefaultCategoryColor
	}
	if strings.TrimSpace(c.Icon) == "" {
		c.Icon = DefaultCategoryIcon
	}
	return c
}

// Merge applies an update onto an existing category. Blank color and icon
// keep the previous values; the id never changes.
func (c Category) Merge(update Category) Category {
	out := c
	out.Name = update.Name
	out.Type = update.Type
	if strings.TrimSpace(update.Color) != "" {
		out.Color = update.Color
	}
	if strings.TrimSpace(update.Icon) != "" {
		out.Icon = update.Icon
	}
	return out
}

func (b Budget) Validate() error {
	if b.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if b.CategoryID <= 0 {
		return ErrInvalidCategoryID
	}
	if !b.Month.Valid() {
		return ErrInvalidMonth
	}
	return nil
}

// Validate checks the goal against the calendar day of now.
func (g Goal) Validate(now time.Time) error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidTarget
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrNegativeCurrent
	}
	if g.CurrentAmount.Cents > g.TargetAmount.Cents {
		return ErrCurrentOverTarget
	}
	if g.Deadline.IsZero() {
		return ErrEmptyDeadline
	}
	if g.Deadline.Before(DateOf(now).Time) {
		return ErrPastDeadline
	}
	return nil
}

func (g Goal) Completed() bool {
	return g.CurrentAmount.Cents >= g.TargetAmount.Cents
}
