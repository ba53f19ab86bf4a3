package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategorySummary contains aggregated expense data for one category in a period
type CategorySummary struct {
	CategoryID uuid.UUID       `json:"category_id"`
	Total      decimal.Decimal `json:"total"`
	Count      int64           `json:"count"`

	Category *Category `gorm:"-" json:"-"`
}
