package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"budget-tracker/internal/amqp"
	"budget-tracker/internal/config"
	"budget-tracker/internal/dto"
	"budget-tracker/internal/models"
	"budget-tracker/internal/repositories"
	"budget-tracker/internal/spending"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultSeedCount = 20

var (
	ErrNoCategories = errors.New("create a category before seeding expenses")
)

type expenseService struct {
	expenseRepo    repositories.ExpenseRepositoryInterface
	categoryRepo   repositories.CategoryRepositoryInterface
	budgetRepo     repositories.BudgetRepositoryInterface
	auditService   AuditServiceInterface
	activity       ActivityLoggerInterface
	metrics        MetricsRecorderInterface
	notifier       AlertNotifierInterface
	generator      ExpenseGeneratorInterface
	resolver       *spending.Resolver
	thresholds     spending.Thresholds
	currencySymbol string
	now            func() time.Time
}

func NewExpenseService(
	expenseRepo repositories.ExpenseRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	budgetRepo repositories.BudgetRepositoryInterface,
	auditService AuditServiceInterface,
	activity ActivityLoggerInterface,
	metrics MetricsRecorderInterface,
	notifier AlertNotifierInterface,
	generator ExpenseGeneratorInterface,
	resolver *spending.Resolver,
	cfg *config.BudgetConfig,
) ExpenseServiceInterface {
	return &expenseService{
		expenseRepo:    expenseRepo,
		categoryRepo:   categoryRepo,
		budgetRepo:     budgetRepo,
		auditService:   auditService,
		activity:       activity,
		metrics:        metrics,
		notifier:       notifier,
		generator:      generator,
		resolver:       resolver,
		thresholds:     ThresholdsFromConfig(cfg),
		currencySymbol: cfg.CurrencySymbol,
		now:            time.Now,
	}
}

func (s *expenseService) List(ctx context.Context, userID uuid.UUID, filter models.ExpenseListFilter) (*models.ExpenseList, error) {
	filters := models.ExpenseFilters{
		UserID:     userID,
		CategoryID: filter.CategoryID,
	}
	if filter.Period != nil {
		start, end := filter.Period.Bounds()
		filters.StartDate = &start
		filters.EndDate = &end
	}

	expenses, err := s.expenseRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	total := decimal.Zero
	for i := range expenses {
		total = total.Add(expenses[i].Amount)
	}

	return &models.ExpenseList{Expenses: expenses, Total: total}, nil
}

// Create records the expense and then checks the budget covering its month. Alert evaluation
// runs after the write is committed; if it fails the expense is still returned, without an alert.
func (s *expenseService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateExpenseRequest) (*models.ExpenseCreated, error) {
	categoryID, err := uuid.Parse(req.Category)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid category id", ErrValidation)
	}

	amount, err := parseAmount(req.Amount.String())
	if err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByIDForUser(ctx, categoryID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	expense := &models.Expense{
		UserID:     userID,
		CategoryID: categoryID,
		Title:      req.Title,
		Amount:     amount,
		Date:       s.now(),
		Note:       req.Note,
	}
	if req.Date != nil && !req.Date.IsZero() {
		expense.Date = req.Date.In(s.resolver.Location())
	}

	expense.Normalize()
	if err := expense.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	expense.Category = category

	s.metrics.IncrementCounter(MetricExpenseCreated, nil)
	s.activity.LogExpenseCreated(ctx, userID, expense.ID, categoryID, expense.Amount.StringFixed(2))
	s.auditService.Record(ctx, models.AuditEntry{
		UserID:     &userID,
		Action:     models.AuditActionCreate,
		Resource:   models.AuditResourceExpense,
		ResourceID: expense.ID.String(),
	})

	return &models.ExpenseCreated{
		Expense: expense,
		Alert:   s.evaluateAlert(ctx, expense, category),
	}, nil
}

func (s *expenseService) evaluateAlert(ctx context.Context, expense *models.Expense, category *models.Category) *spending.Alert {
	period := s.resolver.PeriodOf(expense.Date)

	budget, err := s.budgetRepo.GetByScope(ctx, models.BudgetScope{
		UserID:     expense.UserID,
		CategoryID: expense.CategoryID,
		Month:      period.Month,
		Year:       period.Year,
	})
	if err != nil {
		if !errors.Is(err, repositories.ErrBudgetNotFound) {
			s.activity.LogAlertEvaluationFailed(ctx, expense.UserID, expense.ID, err.Error())
		}
		return nil
	}

	start, end := period.Bounds()
	spent, err := s.expenseRepo.SumForScope(ctx, expense.UserID, expense.CategoryID, start, end)
	if err != nil {
		s.activity.LogAlertEvaluationFailed(ctx, expense.UserID, expense.ID, err.Error())
		return nil
	}

	view := s.thresholds.Evaluate(budget.Limit, spent)
	alert := spending.AlertFor(view, category.Name, s.currencySymbol)
	if alert == nil {
		return nil
	}

	s.metrics.IncrementCounter(MetricBudgetAlert, map[string]string{"type": string(alert.Type)})
	s.activity.LogBudgetAlert(ctx, expense.UserID, expense.CategoryID, string(alert.Type),
		alert.Spent.StringFixed(2), alert.Limit.StringFixed(2))
	s.notifier.Notify(ctx, amqp.BudgetAlertMessage{
		UserID:     expense.UserID,
		ExpenseID:  expense.ID,
		CategoryID: expense.CategoryID,
		Type:       string(alert.Type),
		Message:    alert.Message,
		Spent:      alert.Spent,
		Limit:      alert.Limit,
		Percentage: alert.Percentage,
		Month:      period.Month,
		Year:       period.Year,
		Timestamp:  s.now().UTC(),
	})

	return alert
}

// Update applies a partial update. Budget alerts are only evaluated on create.
func (s *expenseService) Update(ctx context.Context, userID, expenseID uuid.UUID, req *dto.UpdateExpenseRequest) (*models.Expense, error) {
	update := models.ExpenseUpdate{}
	changed := []string{}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		update.Title = &title
		changed = append(changed, "title")
	}
	if req.Amount != nil {
		amount, err := parseAmount(req.Amount.String())
		if err != nil {
			return nil, err
		}
		update.Amount = &amount
		changed = append(changed, "amount")
	}
	if req.Date != nil && !req.Date.IsZero() {
		date := req.Date.In(s.resolver.Location())
		update.Date = &date
		changed = append(changed, "date")
	}
	if req.Note != nil {
		note := strings.TrimSpace(*req.Note)
		update.Note = &note
		changed = append(changed, "note")
	}
	if req.Category != nil {
		categoryID, err := uuid.Parse(*req.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid category id", ErrValidation)
		}
		if _, err := s.categoryRepo.GetByIDForUser(ctx, categoryID, userID); err != nil {
			return nil, fmt.Errorf("failed to resolve category: %w", err)
		}
		update.CategoryID = &categoryID
		changed = append(changed, "category")
	}

	if update.IsEmpty() {
		expense, err := s.expenseRepo.GetByIDForUser(ctx, expenseID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get expense: %w", err)
		}
		return expense, nil
	}

	expense, err := s.expenseRepo.UpdateForUser(ctx, expenseID, userID, update)
	if err != nil {
		if isExpenseValidationError(err) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	s.activity.LogExpenseUpdated(ctx, userID, expenseID, changed)
	s.auditService.Record(ctx, models.AuditEntry{
		UserID:     &userID,
		Action:     models.AuditActionUpdate,
		Resource:   models.AuditResourceExpense,
		ResourceID: expenseID.String(),
		Metadata:   models.AuditMetadata{"fields": changed},
	})
	return expense, nil
}

func (s *expenseService) Delete(ctx context.Context, userID, expenseID uuid.UUID) error {
	if err := s.expenseRepo.DeleteForUser(ctx, expenseID, userID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	s.metrics.IncrementCounter(MetricExpenseDeleted, nil)
	s.activity.LogExpenseDeleted(ctx, userID, expenseID)
	s.auditService.Record(ctx, models.AuditEntry{
		UserID:     &userID,
		Action:     models.AuditActionDelete,
		Resource:   models.AuditResourceExpense,
		ResourceID: expenseID.String(),
	})
	return nil
}

// Summary totals the period's expenses per category, largest first. Rows whose category
// no longer exists keep a nil Category and render as the placeholder.
func (s *expenseService) Summary(ctx context.Context, userID uuid.UUID, period spending.Period) (*models.MonthlySummary, error) {
	start, end := period.Bounds()

	rows, err := s.expenseRepo.SummaryByCategory(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize expenses: %w", err)
	}

	grandTotal := decimal.Zero
	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		grandTotal = grandTotal.Add(rows[i].Total)
		ids = append(ids, rows[i].CategoryID)
	}

	if len(ids) > 0 {
		categories, err := s.categoryRepo.GetByIDs(ctx, userID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load summary categories: %w", err)
		}

		byID := make(map[uuid.UUID]*models.Category, len(categories))
		for i := range categories {
			byID[categories[i].ID] = &categories[i]
		}
		for i := range rows {
			rows[i].Category = byID[rows[i].CategoryID]
		}
	}

	return &models.MonthlySummary{Rows: rows, GrandTotal: grandTotal, Period: period}, nil
}

// Seed generates demo expenses across the user's categories inside the period
func (s *expenseService) Seed(ctx context.Context, userID uuid.UUID, period spending.Period, count int) (int, error) {
	if count <= 0 {
		count = DefaultSeedCount
	}

	categories, err := s.categoryRepo.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list categories: %w", err)
	}
	if len(categories) == 0 {
		return 0, ErrNoCategories
	}

	expenses := s.generator.GenerateExpenses(userID, categories, period.Start(), period.End(), count)
	if len(expenses) == 0 {
		return 0, nil
	}

	if err := s.expenseRepo.CreateBatch(ctx, expenses); err != nil {
		return 0, fmt.Errorf("failed to seed expenses: %w", err)
	}

	s.metrics.RecordGauge(MetricExpensesSeeded, float64(len(expenses)), nil)
	return len(expenses), nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount must be a number", ErrValidation)
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be greater than 0", ErrValidation)
	}
	return amount, nil
}

func isExpenseValidationError(err error) bool {
	return errors.Is(err, models.ErrExpenseTitleRequired) ||
		errors.Is(err, models.ErrNegativeAmount) ||
		errors.Is(err, models.ErrExpenseDateRequired)
}
