package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budget-tracker/internal/config"
	"budget-tracker/internal/dto"
	"budget-tracker/internal/models"
	"budget-tracker/internal/repositories"
	"budget-tracker/internal/spending"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type budgetService struct {
	budgetRepo   repositories.BudgetRepositoryInterface
	expenseRepo  repositories.ExpenseRepositoryInterface
	categoryRepo repositories.CategoryRepositoryInterface
	auditService AuditServiceInterface
	activity     ActivityLoggerInterface
	metrics      MetricsRecorderInterface
	thresholds   spending.Thresholds
	maxWorkers   int
}

func NewBudgetService(
	budgetRepo repositories.BudgetRepositoryInterface,
	expenseRepo repositories.ExpenseRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	auditService AuditServiceInterface,
	activity ActivityLoggerInterface,
	metrics MetricsRecorderInterface,
	cfg *config.BudgetConfig,
) BudgetServiceInterface {
	maxWorkers := cfg.AggregationMaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	return &budgetService{
		budgetRepo:   budgetRepo,
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		auditService: auditService,
		activity:     activity,
		metrics:      metrics,
		thresholds:   ThresholdsFromConfig(cfg),
		maxWorkers:   maxWorkers,
	}
}

// ThresholdsFromConfig builds alert thresholds from the configured warning percentage
func ThresholdsFromConfig(cfg *config.BudgetConfig) spending.Thresholds {
	thresholds := spending.DefaultThresholds()
	if cfg != nil && cfg.WarningPercent > 0 && cfg.WarningPercent < 100 {
		thresholds.Warning = decimal.NewFromInt(int64(cfg.WarningPercent))
	}
	return thresholds
}

// ListWithSpending returns the user's budgets for the period, each with spending aggregated
// from the expense ledger. Budgets are aggregated concurrently; order follows the repository.
func (s *budgetService) ListWithSpending(ctx context.Context, userID uuid.UUID, period spending.Period) ([]models.BudgetWithSpending, error) {
	startTime := time.Now()
	defer func() {
		s.metrics.RecordProcessingTime(MetricBudgetAggregation, time.Since(startTime))
	}()

	budgets, err := s.budgetRepo.ListForPeriod(ctx, userID, period.Month, period.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	start, end := period.Bounds()
	results := make([]models.BudgetWithSpending, len(budgets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxWorkers)

	for i := range budgets {
		g.Go(func() error {
			budget := budgets[i]
			spent, err := s.expenseRepo.SumForScope(gctx, userID, budget.CategoryID, start, end)
			if err != nil {
				return fmt.Errorf("failed to aggregate spending for budget %s: %w", budget.ID, err)
			}
			results[i] = models.BudgetWithSpending{
				Budget: budget,
				View:   s.thresholds.Evaluate(budget.Limit, spent),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Upsert creates the budget for the scope or replaces the limit of the existing one
func (s *budgetService) Upsert(ctx context.Context, userID uuid.UUID, req *dto.SetBudgetRequest) (*models.Budget, error) {
	categoryID, err := uuid.Parse(req.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid category id", ErrValidation)
	}

	limit, err := decimal.NewFromString(req.Limit.String())
	if err != nil {
		return nil, fmt.Errorf("%w: limit must be a number", ErrValidation)
	}

	if _, err := s.categoryRepo.GetByIDForUser(ctx, categoryID, userID); err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	budget := &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Limit:      limit.Round(2),
		Month:      req.Month,
		Year:       req.Year,
	}
	if err := budget.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	stored, err := s.budgetRepo.Upsert(ctx, budget)
	if err != nil {
		return nil, fmt.Errorf("failed to set budget: %w", err)
	}

	s.metrics.IncrementCounter(MetricBudgetUpserted, nil)
	s.activity.LogBudgetSet(ctx, userID, stored.ID, categoryID, stored.Limit.StringFixed(2), stored.Month, stored.Year)
	s.auditService.Record(ctx, models.AuditEntry{
		UserID:     &userID,
		Action:     models.AuditActionBudgetSet,
		Resource:   models.AuditResourceBudget,
		ResourceID: stored.ID.String(),
		Metadata: models.AuditMetadata{
			"category_id": categoryID.String(),
			"limit":       stored.Limit.StringFixed(2),
			"month":       stored.Month,
			"year":        stored.Year,
		},
	})

	return stored, nil
}

// Delete removes a budget the user owns; anything else reads as not found
func (s *budgetService) Delete(ctx context.Context, userID, budgetID uuid.UUID) error {
	if err := s.budgetRepo.DeleteForUser(ctx, budgetID, userID); err != nil {
		if errors.Is(err, repositories.ErrBudgetNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	s.activity.LogBudgetDeleted(ctx, userID, budgetID)
	s.auditService.Record(ctx, models.AuditEntry{
		UserID:     &userID,
		Action:     models.AuditActionDelete,
		Resource:   models.AuditResourceBudget,
		ResourceID: budgetID.String(),
	})
	return nil
}
