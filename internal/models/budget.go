package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrBudgetLimitNotPositive = errors.New("budget limit must be greater than 0")
	ErrInvalidBudgetMonth     = errors.New("month must be between 1 and 12")
	ErrInvalidBudgetYear      = errors.New("year is out of range")
)

const (
	MinBudgetYear = 1970
	MaxBudgetYear = 9999
)

// Budget is a spending ceiling for one (user, category, month, year) scope.
// The composite unique index guarantees at most one row per scope.
type Budget struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_budget_scope,priority:1" json:"user_id"`
	CategoryID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_budget_scope,priority:2" json:"category_id"`
	Month      int             `gorm:"not null;uniqueIndex:idx_budget_scope,priority:3" json:"month"`
	Year       int             `gorm:"not null;uniqueIndex:idx_budget_scope,priority:4" json:"year"`
	Limit      decimal.Decimal `gorm:"column:limit_amount;type:decimal(15,2);not null" json:"limit"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"-"`
}

func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return b.Validate()
}

func (b *Budget) Validate() error {
	if !b.Limit.IsPositive() {
		return ErrBudgetLimitNotPositive
	}
	if b.Month < 1 || b.Month > 12 {
		return ErrInvalidBudgetMonth
	}
	if b.Year < MinBudgetYear || b.Year > MaxBudgetYear {
		return ErrInvalidBudgetYear
	}
	return nil
}

func (b *Budget) TableName() string {
	return "budgets"
}

// BudgetScope identifies the single budget a user may hold for a category in a month.
type BudgetScope struct {
	UserID     uuid.UUID
	CategoryID uuid.UUID
	Month      int
	Year       int
}

func (b *Budget) Scope() BudgetScope {
	return BudgetScope{UserID: b.UserID, CategoryID: b.CategoryID, Month: b.Month, Year: b.Year}
}
