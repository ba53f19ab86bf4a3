package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"budget-tracker/internal/models"
	"budget-tracker/internal/spending"

	"github.com/shopspring/decimal"
)

const dateOnlyLayout = "2006-01-02"

// Date accepts either an RFC 3339 timestamp or a bare YYYY-MM-DD day. A bare day
// carries no zone and is placed in the budget timezone by the expense service.
type Date struct {
	time.Time
	DateOnly bool
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		d.Time = t
		d.DateOnly = false
		return nil
	}

	t, err := time.Parse(dateOnlyLayout, raw)
	if err != nil {
		return fmt.Errorf("date must be RFC 3339 or YYYY-MM-DD: %q", raw)
	}
	d.Time = t
	d.DateOnly = true
	return nil
}

// In resolves the date to an instant, reading bare days as midnight in loc.
func (d Date) In(loc *time.Location) time.Time {
	if !d.DateOnly {
		return d.Time
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// CreateExpenseRequest represents the request payload for recording an expense
type CreateExpenseRequest struct {
	Title    string      `json:"title" validate:"required,notblank,max=200"`
	Amount   json.Number `json:"amount" validate:"required,decimal_gt0"`
	Date     *Date       `json:"date"`
	Category string      `json:"category" validate:"required,uuid"`
	Note     string      `json:"note" validate:"max=1000"`
}

// UpdateExpenseRequest carries a partial expense update; omitted fields are unchanged
type UpdateExpenseRequest struct {
	Title    *string      `json:"title" validate:"omitempty,notblank,max=200"`
	Amount   *json.Number `json:"amount" validate:"omitempty,decimal_gt0"`
	Date     *Date        `json:"date"`
	Category *string      `json:"category" validate:"omitempty,uuid"`
	Note     *string      `json:"note" validate:"omitempty,max=1000"`
}

// ExpenseResponse represents an expense joined with its category
type ExpenseResponse struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Note      string          `json:"note,omitempty"`
	Category  CategoryRef     `json:"category"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// BudgetAlertResponse is the advisory attached to a newly created expense
type BudgetAlertResponse struct {
	Type       string           `json:"type"`
	Message    string           `json:"message"`
	Spent      *decimal.Decimal `json:"spent,omitempty"`
	Limit      *decimal.Decimal `json:"limit,omitempty"`
	Percentage *int64           `json:"percentage,omitempty"`
}

// CreateExpenseResponse is returned by POST /expenses. BudgetAlert is null when no
// budget covers the expense or spending is below the warning threshold.
type CreateExpenseResponse struct {
	Expense     ExpenseResponse      `json:"expense"`
	BudgetAlert *BudgetAlertResponse `json:"budgetAlert"`
}

type ExpenseEnvelope struct {
	Expense ExpenseResponse `json:"expense"`
}

// ExpenseListResponse lists expenses with the sum of their amounts
type ExpenseListResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Total    decimal.Decimal   `json:"total"`
}

// CategorySummaryResponse is one row of the monthly summary
type CategorySummaryResponse struct {
	Category CategoryRef     `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int64           `json:"count"`
}

// SummaryResponse is returned by GET /expenses/summary
type SummaryResponse struct {
	Summary    []CategorySummaryResponse `json:"summary"`
	GrandTotal decimal.Decimal           `json:"grandTotal"`
	Month      int                       `json:"month"`
	Year       int                       `json:"year"`
}

// SeedExpensesRequest asks the development seeder for demo expenses
type SeedExpensesRequest struct {
	Count int  `json:"count" validate:"omitempty,min=1,max=500"`
	Month *int `json:"month" validate:"omitempty,month"`
	Year  *int `json:"year" validate:"omitempty,budget_year"`
}

// SeedExpensesResponse reports what the seeder created
type SeedExpensesResponse struct {
	Message string `json:"message"`
	Created int    `json:"created"`
	Month   int    `json:"month"`
	Year    int    `json:"year"`
}

func NewExpenseResponse(e *models.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:        e.ID.String(),
		Title:     e.Title,
		Amount:    e.Amount,
		Date:      e.Date,
		Note:      e.Note,
		Category:  NewCategoryRef(e.Category),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func NewCategorySummaryResponse(s *models.CategorySummary) CategorySummaryResponse {
	return CategorySummaryResponse{
		Category: NewCategoryRef(s.Category),
		Total:    s.Total,
		Count:    s.Count,
	}
}

// NewBudgetAlertResponse renders an alert; percentage is only reported for warnings.
func NewBudgetAlertResponse(a *spending.Alert) *BudgetAlertResponse {
	if a == nil {
		return nil
	}
	spent, limit := a.Spent, a.Limit
	resp := &BudgetAlertResponse{
		Type:    string(a.Type),
		Message: a.Message,
		Spent:   &spent,
		Limit:   &limit,
	}
	if a.Type == spending.AlertWarning {
		pct := a.Percentage
		resp.Percentage = &pct
	}
	return resp
}

func NewCreateExpenseResponse(created *models.ExpenseCreated) CreateExpenseResponse {
	return CreateExpenseResponse{
		Expense:     NewExpenseResponse(created.Expense),
		BudgetAlert: NewBudgetAlertResponse(created.Alert),
	}
}

func NewExpenseListResponse(list *models.ExpenseList) ExpenseListResponse {
	resp := ExpenseListResponse{
		Expenses: make([]ExpenseResponse, 0, len(list.Expenses)),
		Total:    list.Total,
	}
	for i := range list.Expenses {
		resp.Expenses = append(resp.Expenses, NewExpenseResponse(&list.Expenses[i]))
	}
	return resp
}

func NewSummaryResponse(summary *models.MonthlySummary) SummaryResponse {
	resp := SummaryResponse{
		Summary:    make([]CategorySummaryResponse, 0, len(summary.Rows)),
		GrandTotal: summary.GrandTotal,
		Month:      summary.Period.Month,
		Year:       summary.Period.Year,
	}
	for i := range summary.Rows {
		resp.Summary = append(resp.Summary, NewCategorySummaryResponse(&summary.Rows[i]))
	}
	return resp
}
