package repositories

import (
	"context"
	"errors"
	"fmt"

	"budget-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

// categoryRepository implements CategoryRepositoryInterface
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepositoryInterface {
	return &categoryRepository{
		db: db,
	}
}

// Create creates a new category
func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category == nil {
		return errors.New("category cannot be nil")
	}

	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetByIDForUser retrieves a category the user owns
func (r *categoryRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// ListByUser returns the user's categories ordered by name
func (r *categoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	categories := []models.Category{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Order("created_at ASC").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetByIDs loads the subset of ids that still exist and belong to the user
func (r *categoryRepository) GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.Category, error) {
	categories := []models.Category{}
	if len(ids) == 0 {
		return categories, nil
	}

	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// UpdateForUser applies the given column updates to a category the user owns and returns the stored row
func (r *categoryRepository) UpdateForUser(ctx context.Context, id, userID uuid.UUID, fields map[string]interface{}) (*models.Category, error) {
	db := r.db.WithContext(ctx)

	if _, err := r.GetByIDForUser(ctx, id, userID); err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		if err := db.Model(&models.Category{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(fields).Error; err != nil {
			return nil, fmt.Errorf("failed to update category: %w", err)
		}
	}

	return r.GetByIDForUser(ctx, id, userID)
}

// DeleteForUser removes a category the user owns. Expenses and budgets that
// reference it are left in place.
func (r *categoryRepository) DeleteForUser(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Category{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
