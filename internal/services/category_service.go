package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"budget-tracker/internal/dto"
	"budget-tracker/internal/models"
	"budget-tracker/internal/repositories"

	"github.com/google/uuid"
)

// ErrValidation marks input rejected by a domain rule rather than by request binding
var ErrValidation = errors.New("validation failed")

type categoryService struct {
	categoryRepo repositories.CategoryRepositoryInterface
	auditService AuditServiceInterface
	activity     ActivityLoggerInterface
}

func NewCategoryService(
	categoryRepo repositories.CategoryRepositoryInterface,
	auditService AuditServiceInterface,
	activity ActivityLoggerInterface,
) CategoryServiceInterface {
	return &categoryService{
		categoryRepo: categoryRepo,
		auditService: auditService,
		activity:     activity,
	}
}

// List returns the user's categories sorted by name
func (s *categoryService) List(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	categories, err := s.categoryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateCategoryRequest) (*models.Category, error) {
	category := &models.Category{
		UserID: userID,
		Name:   strings.TrimSpace(req.Name),
		Icon:   strings.TrimSpace(req.Icon),
		Color:  strings.TrimSpace(req.Color),
	}

	if err := category.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.recordChange(ctx, userID, category.ID, models.AuditActionCreate)
	return category, nil
}

// Update applies a partial update to a category the user owns
func (s *categoryService) Update(ctx context.Context, userID, categoryID uuid.UUID, req *dto.UpdateCategoryRequest) (*models.Category, error) {
	fields := map[string]any{}
	// patch holds the fields being changed so they validate with the model rules
	patch := models.Category{Name: "placeholder"}

	if req.Name != nil {
		patch.Name = strings.TrimSpace(*req.Name)
		fields["name"] = patch.Name
	}
	if req.Icon != nil {
		icon := strings.TrimSpace(*req.Icon)
		if icon == "" {
			icon = models.DefaultCategoryIcon
		}
		fields["icon"] = icon
	}
	if req.Color != nil {
		color := strings.TrimSpace(*req.Color)
		if color == "" {
			color = models.DefaultCategoryColor
		}
		patch.Color = color
		fields["color"] = color
	}

	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	category, err := s.categoryRepo.UpdateForUser(ctx, categoryID, userID, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	if len(fields) > 0 {
		s.recordChange(ctx, userID, categoryID, models.AuditActionUpdate)
	}
	return category, nil
}

// Delete removes the category. Expenses and budgets keep their dangling reference.
func (s *categoryService) Delete(ctx context.Context, userID, categoryID uuid.UUID) error {
	if err := s.categoryRepo.DeleteForUser(ctx, categoryID, userID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.recordChange(ctx, userID, categoryID, models.AuditActionDelete)
	return nil
}

func (s *categoryService) recordChange(ctx context.Context, userID, categoryID uuid.UUID, action string) {
	s.activity.LogCategoryChanged(ctx, userID, categoryID, action)
	s.auditService.Record(ctx, models.AuditEntry{
		UserID:     &userID,
		Action:     action,
		Resource:   models.AuditResourceCategory,
		ResourceID: categoryID.String(),
	})
}
