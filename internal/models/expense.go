package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MaxExpenseTitleLength = 200
)

var (
	ErrExpenseTitleRequired = errors.New("title is required")
	ErrNegativeAmount       = errors.New("amount cannot be negative")
	ErrExpenseDateRequired  = errors.New("date is required")
)

// Expense is a dated, titled amount spent by a user under one category.
type Expense struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_expenses_user_date,priority:1" json:"user_id"`
	CategoryID uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Title      string          `gorm:"type:varchar(200);not null" json:"title"`
	Amount     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Date       time.Time       `gorm:"not null;index:idx_expenses_user_date,priority:2" json:"date"`
	Note       string          `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"-"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	e.Normalize()
	return e.Validate()
}

// Normalize trims text fields and stores the date in UTC.
func (e *Expense) Normalize() {
	e.Title = strings.TrimSpace(e.Title)
	e.Note = strings.TrimSpace(e.Note)
	e.Date = e.Date.UTC()
}

func (e *Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrExpenseTitleRequired
	}
	if e.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if e.Date.IsZero() {
		return ErrExpenseDateRequired
	}
	return nil
}

func (e *Expense) TableName() string {
	return "expenses"
}

// ExpenseFilters narrows an expense listing. The date range applies only when both bounds are set.
type ExpenseFilters struct {
	UserID     uuid.UUID
	CategoryID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// ExpenseUpdate carries the fields of a partial expense update; nil fields are left unchanged.
type ExpenseUpdate struct {
	Title      *string
	Amount     *decimal.Decimal
	Date       *time.Time
	CategoryID *uuid.UUID
	Note       *string
}

// IsEmpty reports whether the update changes nothing.
func (u ExpenseUpdate) IsEmpty() bool {
	return u.Title == nil && u.Amount == nil && u.Date == nil && u.CategoryID == nil && u.Note == nil
}
