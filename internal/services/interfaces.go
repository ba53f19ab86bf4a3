package services

import (
	"context"
	"time"

	"budget-tracker/internal/amqp"
	"budget-tracker/internal/dto"
	"budget-tracker/internal/models"
	"budget-tracker/internal/spending"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ValidateRefreshToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
	GetJTI(tokenString string) (string, error)
	GetTokenExpiry(tokenString string) (time.Time, error)
}

type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
}

// AuditServiceInterface defines the contract for audit logging operations
type AuditServiceInterface interface {
	// Record stores an entry on a best-effort basis; failures are logged, never returned.
	Record(ctx context.Context, entry models.AuditEntry)
	GetUserActivity(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error)
	// Purge deletes entries older than retention. A non-positive retention keeps everything.
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type ActivityLoggerInterface interface {
	LogExpenseCreated(ctx context.Context, userID, expenseID, categoryID uuid.UUID, amount string)
	LogExpenseUpdated(ctx context.Context, userID, expenseID uuid.UUID, updatedFields []string)
	LogExpenseDeleted(ctx context.Context, userID, expenseID uuid.UUID)
	LogCategoryChanged(ctx context.Context, userID, categoryID uuid.UUID, action string)
	LogBudgetSet(ctx context.Context, userID, budgetID, categoryID uuid.UUID, limit string, month, year int)
	LogBudgetDeleted(ctx context.Context, userID, budgetID uuid.UUID)
	LogBudgetAlert(ctx context.Context, userID, categoryID uuid.UUID, alertType, spent, limit string)
	LogAlertEvaluationFailed(ctx context.Context, userID, expenseID uuid.UUID, errorMsg string)
	LogAlertPublishFailed(ctx context.Context, userID, categoryID uuid.UUID, errorMsg string)
	LogCircuitBreakerStateChange(ctx context.Context, service string, oldState, newState string)
}

type CircuitBreakerInterface interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
	GetState() models.CircuitBreakerState
}

// AlertNotifierInterface fans budget alerts out to the message broker. Delivery is best effort.
type AlertNotifierInterface interface {
	Notify(ctx context.Context, msg amqp.BudgetAlertMessage)
}

type CategoryServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Category, error)
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateCategoryRequest) (*models.Category, error)
	Update(ctx context.Context, userID, categoryID uuid.UUID, req *dto.UpdateCategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, userID, categoryID uuid.UUID) error
}

type ExpenseServiceInterface interface {
	List(ctx context.Context, userID uuid.UUID, filter models.ExpenseListFilter) (*models.ExpenseList, error)
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateExpenseRequest) (*models.ExpenseCreated, error)
	Update(ctx context.Context, userID, expenseID uuid.UUID, req *dto.UpdateExpenseRequest) (*models.Expense, error)
	Delete(ctx context.Context, userID, expenseID uuid.UUID) error
	Summary(ctx context.Context, userID uuid.UUID, period spending.Period) (*models.MonthlySummary, error)
	Seed(ctx context.Context, userID uuid.UUID, period spending.Period, count int) (int, error)
}

type BudgetServiceInterface interface {
	ListWithSpending(ctx context.Context, userID uuid.UUID, period spending.Period) ([]models.BudgetWithSpending, error)
	Upsert(ctx context.Context, userID uuid.UUID, req *dto.SetBudgetRequest) (*models.Budget, error)
	Delete(ctx context.Context, userID, budgetID uuid.UUID) error
}

// ExpenseGeneratorInterface generates realistic expense data for demos and tests
type ExpenseGeneratorInterface interface {
	GenerateExpenses(userID uuid.UUID, categories []models.Category, start, end time.Time, count int) []models.Expense
	GenerateAmount(categoryName string) decimal.Decimal
	GenerateTitle(categoryName string) string
	GenerateTimestamp(start, end time.Time) time.Time
}
