package dto

import (
	"encoding/json"
	"time"

	"budget-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// SetBudgetRequest creates or replaces the budget for a category and month
type SetBudgetRequest struct {
	Category string      `json:"category" validate:"required,uuid"`
	Limit    json.Number `json:"limit" validate:"required,decimal_gt0"`
	Month    int         `json:"month" validate:"required,month"`
	Year     int         `json:"year" validate:"required,budget_year"`
}

// BudgetResponse represents a budget joined with its category
type BudgetResponse struct {
	ID        string          `json:"id"`
	Category  CategoryRef     `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// BudgetWithSpendingResponse adds the derived consumption of the budget
type BudgetWithSpendingResponse struct {
	BudgetResponse
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
	Status     string          `json:"status"`
}

type BudgetEnvelope struct {
	Budget BudgetResponse `json:"budget"`
}

// BudgetListResponse is returned by GET /budgets
type BudgetListResponse struct {
	Budgets []BudgetWithSpendingResponse `json:"budgets"`
	Month   int                          `json:"month"`
	Year    int                          `json:"year"`
}

func NewBudgetResponse(b *models.Budget) BudgetResponse {
	return BudgetResponse{
		ID:        b.ID.String(),
		Category:  NewCategoryRef(b.Category),
		Limit:     b.Limit,
		Month:     b.Month,
		Year:      b.Year,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func NewBudgetWithSpendingResponse(b *models.BudgetWithSpending) BudgetWithSpendingResponse {
	return BudgetWithSpendingResponse{
		BudgetResponse: NewBudgetResponse(&b.Budget),
		Spent:          b.View.Spent,
		Remaining:      b.View.Remaining,
		Percentage:     b.View.PercentageValue(),
		Status:         string(b.View.Status),
	}
}

func NewBudgetListResponse(budgets []models.BudgetWithSpending, month, year int) BudgetListResponse {
	resp := BudgetListResponse{
		Budgets: make([]BudgetWithSpendingResponse, 0, len(budgets)),
		Month:   month,
		Year:    year,
	}
	for i := range budgets {
		resp.Budgets = append(resp.Budgets, NewBudgetWithSpendingResponse(&budgets[i]))
	}
	return resp
}
