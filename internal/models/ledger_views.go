package models

import (
	"budget-tracker/internal/spending"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseListFilter narrows an expense listing. A nil Period lists every month.
type ExpenseListFilter struct {
	Period     *spending.Period
	CategoryID *uuid.UUID
}

// ExpenseList is a listing together with the sum of the listed amounts
type ExpenseList struct {
	Expenses []Expense
	Total    decimal.Decimal
}

// ExpenseCreated is the stored expense and the budget alert it triggered, if any
type ExpenseCreated struct {
	Expense *Expense
	Alert   *spending.Alert
}

// MonthlySummary groups a month of spending by category
type MonthlySummary struct {
	Rows       []CategorySummary
	GrandTotal decimal.Decimal
	Period     spending.Period
}

// BudgetWithSpending is a stored budget merged with what has been spent against it
type BudgetWithSpending struct {
	Budget Budget
	View   spending.View
}
