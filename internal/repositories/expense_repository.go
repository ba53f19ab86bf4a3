package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budget-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrExpenseNotFound = errors.New("expense not found")
)

const expenseBatchSize = 100

// expenseRepository implements ExpenseRepositoryInterface
type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) ExpenseRepositoryInterface {
	return &expenseRepository{
		db: db,
	}
}

// Create creates a new expense
func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	if expense == nil {
		return errors.New("expense cannot be nil")
	}

	if err := r.db.WithContext(ctx).Create(expense).Error; err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetByIDForUser retrieves an expense the user owns, with its category when it still exists
func (r *expenseRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).
		First(&expense).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return &expense, nil
}

// List returns the user's expenses matching filters, newest first
func (r *expenseRepository) List(ctx context.Context, filters models.ExpenseFilters) ([]models.Expense, error) {
	query := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", filters.UserID)

	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.StartDate != nil && filters.EndDate != nil {
		query = query.Where("date >= ? AND date <= ?", filters.StartDate.UTC(), filters.EndDate.UTC())
	}

	expenses := []models.Expense{}
	if err := query.
		Order("date DESC").
		Order("created_at DESC").
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}

// UpdateForUser applies a partial update to an expense the user owns and returns the stored row
func (r *expenseRepository) UpdateForUser(ctx context.Context, id, userID uuid.UUID, update models.ExpenseUpdate) (*models.Expense, error) {
	current, err := r.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if update.Title != nil {
		current.Title = *update.Title
	}
	if update.Amount != nil {
		current.Amount = *update.Amount
	}
	if update.Date != nil {
		current.Date = *update.Date
	}
	if update.Note != nil {
		current.Note = *update.Note
	}
	current.Normalize()
	if err := current.Validate(); err != nil {
		return nil, err
	}

	if update.Title != nil {
		fields["title"] = current.Title
	}
	if update.Amount != nil {
		fields["amount"] = current.Amount
	}
	if update.Date != nil {
		fields["date"] = current.Date
	}
	if update.Note != nil {
		fields["note"] = current.Note
	}
	if update.CategoryID != nil {
		fields["category_id"] = *update.CategoryID
	}

	if len(fields) > 0 {
		if err := r.db.WithContext(ctx).
			Model(&models.Expense{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(fields).Error; err != nil {
			return nil, fmt.Errorf("failed to update expense: %w", err)
		}
	}

	return r.GetByIDForUser(ctx, id, userID)
}

// DeleteForUser removes an expense the user owns
func (r *expenseRepository) DeleteForUser(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Expense{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete expense: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// CreateBatch inserts expenses in batches
func (r *expenseRepository) CreateBatch(ctx context.Context, expenses []models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(expenses, expenseBatchSize).Error; err != nil {
		return fmt.Errorf("failed to create expenses: %w", err)
	}
	return nil
}

// SumForScope returns the sum of a user's expenses in one category between start and end inclusive
func (r *expenseRepository) SumForScope(ctx context.Context, userID, categoryID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category_id = ? AND date >= ? AND date <= ?", userID, categoryID, start.UTC(), end.UTC()).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return total.Round(2), nil
}

// SummaryByCategory groups a user's expenses in [start, end] by category. Rows are ordered by
// total descending with category id as the tie-break.
func (r *expenseRepository) SummaryByCategory(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.CategorySummary, error) {
	summaries := []models.CategorySummary{}
	err := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select("category_id, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start.UTC(), end.UTC()).
		Group("category_id").
		Order("total DESC").
		Order("category_id ASC").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize expenses: %w", err)
	}

	for i := range summaries {
		summaries[i].Total = summaries[i].Total.Round(2)
	}
	return summaries, nil
}
