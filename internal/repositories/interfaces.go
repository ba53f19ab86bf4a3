package repositories

import (
	"context"
	"time"

	"budget-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryRepositoryInterface defines the contract for category repository operations.
// Every lookup is scoped by owner, so a category owned by someone else reads as not found.
type CategoryRepositoryInterface interface {
	Create(ctx context.Context, category *models.Category) error
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Category, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Category, error)
	GetByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]models.Category, error)
	UpdateForUser(ctx context.Context, id, userID uuid.UUID, fields map[string]interface{}) (*models.Category, error)
	DeleteForUser(ctx context.Context, id, userID uuid.UUID) error
}

// ExpenseRepositoryInterface defines the contract for expense repository operations
type ExpenseRepositoryInterface interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Expense, error)
	List(ctx context.Context, filters models.ExpenseFilters) ([]models.Expense, error)
	UpdateForUser(ctx context.Context, id, userID uuid.UUID, update models.ExpenseUpdate) (*models.Expense, error)
	DeleteForUser(ctx context.Context, id, userID uuid.UUID) error
	CreateBatch(ctx context.Context, expenses []models.Expense) error

	// SumForScope returns the total amount a user spent in a category between start and end inclusive.
	SumForScope(ctx context.Context, userID, categoryID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
	// SummaryByCategory groups a user's expenses in [start, end] by category, largest total first.
	SummaryByCategory(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.CategorySummary, error)
}

// BudgetRepositoryInterface defines the contract for budget repository operations
type BudgetRepositoryInterface interface {
	// Upsert inserts the budget or replaces the limit of the existing budget with the same scope
	// in a single statement, then returns the stored row.
	Upsert(ctx context.Context, budget *models.Budget) (*models.Budget, error)
	GetByScope(ctx context.Context, scope models.BudgetScope) (*models.Budget, error)
	ListForPeriod(ctx context.Context, userID uuid.UUID, month, year int) ([]models.Budget, error)
	DeleteForUser(ctx context.Context, id, userID uuid.UUID) error
}

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// RecordFailedLogin persists the attempt counter and lock state carried by user.
	RecordFailedLogin(ctx context.Context, user *models.User) error
	// RecordSuccessfulLogin clears the attempt counter and lock and stamps the login time.
	RecordSuccessfulLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// AuditLogRepositoryInterface defines the contract for audit log repository operations
type AuditLogRepositoryInterface interface {
	Create(ctx context.Context, log *models.AuditLog) error
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RefreshTokenRepositoryInterface stores refresh sessions by token hash.
type RefreshTokenRepositoryInterface interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	// Rotate revokes the active session oldID and stores next in one transaction. It returns
	// ErrRefreshTokenNotFound when oldID was already revoked, so a replayed token cannot rotate twice.
	Rotate(ctx context.Context, oldID uuid.UUID, next *models.RefreshToken) error
	Revoke(ctx context.Context, tokenID uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// BlacklistedTokenRepositoryInterface tracks revoked access tokens by JTI.
type BlacklistedTokenRepositoryInterface interface {
	// Create is idempotent: blacklisting a JTI twice is not an error.
	Create(ctx context.Context, token *models.BlacklistedToken) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
