package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpense_Validate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		expense Expense
		wantErr error
	}{
		{
			name:    "valid expense",
			expense: Expense{Title: "Lunch", Amount: decimal.NewFromInt(250), Date: now},
		},
		{
			name:    "zero amount is allowed at the model level",
			expense: Expense{Title: "Refunded", Amount: decimal.Zero, Date: now},
		},
		{
			name:    "missing title",
			expense: Expense{Title: "  ", Amount: decimal.NewFromInt(1), Date: now},
			wantErr: ErrExpenseTitleRequired,
		},
		{
			name:    "negative amount",
			expense: Expense{Title: "Lunch", Amount: decimal.NewFromInt(-5), Date: now},
			wantErr: ErrNegativeAmount,
		},
		{
			name:    "missing date",
			expense: Expense{Title: "Lunch", Amount: decimal.NewFromInt(5)},
			wantErr: ErrExpenseDateRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.expense.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpense_BeforeCreate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	expense := Expense{
		UserID:     uuid.New(),
		CategoryID: uuid.New(),
		Title:      "  Groceries ",
		Note:       " weekly run ",
		Amount:     decimal.RequireFromString("1250.50"),
		Date:       time.Date(2024, 3, 1, 2, 0, 0, 0, ist),
	}

	require.NoError(t, expense.BeforeCreate(nil))

	assert.NotEqual(t, uuid.Nil, expense.ID)
	assert.Equal(t, "Groceries", expense.Title)
	assert.Equal(t, "weekly run", expense.Note)
	assert.Equal(t, time.UTC, expense.Date.Location())
	assert.Equal(t, time.Date(2024, 2, 29, 20, 30, 0, 0, time.UTC), expense.Date)
}

func TestExpense_BeforeCreate_DefaultsDateToNow(t *testing.T) {
	expense := Expense{Title: "Coffee", Amount: decimal.NewFromInt(3)}
	before := time.Now().Add(-time.Second)

	require.NoError(t, expense.BeforeCreate(nil))

	assert.True(t, expense.Date.After(before))
}

func TestExpenseUpdate_IsEmpty(t *testing.T) {
	assert.True(t, ExpenseUpdate{}.IsEmpty())

	title := "Dinner"
	assert.False(t, ExpenseUpdate{Title: &title}.IsEmpty())
}
