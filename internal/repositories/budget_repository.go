package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budget-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBudgetNotFound = errors.New("budget not found")
)

var budgetScopeColumns = []clause.Column{
	{Name: "user_id"},
	{Name: "category_id"},
	{Name: "month"},
	{Name: "year"},
}

// budgetRepository implements BudgetRepositoryInterface
type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *gorm.DB) BudgetRepositoryInterface {
	return &budgetRepository{
		db: db,
	}
}

// Upsert writes the budget with INSERT ... ON CONFLICT on the scope columns, so concurrent
// writers for the same scope end with one row holding the last limit written.
func (r *budgetRepository) Upsert(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	if budget == nil {
		return nil, errors.New("budget cannot be nil")
	}

	budget.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   budgetScopeColumns,
			DoUpdates: clause.AssignmentColumns([]string{"limit_amount", "updated_at"}),
		}).
		Create(budget).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert budget: %w", err)
	}

	// On conflict the stored row keeps its original id, so read it back by scope.
	return r.GetByScope(ctx, budget.Scope())
}

// GetByScope retrieves the budget for a (user, category, month, year) scope
func (r *budgetRepository) GetByScope(ctx context.Context, scope models.BudgetScope) (*models.Budget, error) {
	var budget models.Budget
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND category_id = ? AND month = ? AND year = ?",
			scope.UserID, scope.CategoryID, scope.Month, scope.Year).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBudgetNotFound
		}
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return &budget, nil
}

// ListForPeriod returns the user's budgets for one month
func (r *budgetRepository) ListForPeriod(ctx context.Context, userID uuid.UUID, month, year int) ([]models.Budget, error) {
	budgets := []models.Budget{}
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Order("created_at ASC").
		Order("id ASC").
		Find(&budgets).Error; err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	return budgets, nil
}

// DeleteForUser removes a budget the user owns
func (r *budgetRepository) DeleteForUser(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Budget{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete budget: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBudgetNotFound
	}
	return nil
}
