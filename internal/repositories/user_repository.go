package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"budget-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	errNilUser = errors.New("nil user")
)

// pgUniqueViolation is the SQLSTATE postgres reports for a duplicate key.
const pgUniqueViolation = "23505"

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepositoryInterface {
	return &userRepository{db: db}
}

// Create inserts the user. A taken email maps to ErrUserAlreadyExists.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return errNilUser
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByEmail looks the user up by normalized address
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", models.NormalizeEmail(email))
}

func (r *userRepository) first(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) RecordFailedLogin(ctx context.Context, user *models.User) error {
	if user == nil {
		return errNilUser
	}

	return r.updateColumns(ctx, user.ID, map[string]any{
		"failed_login_attempts": user.FailedLoginAttempts,
		"locked_at":             user.LockedAt,
	})
}

func (r *userRepository) RecordSuccessfulLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.updateColumns(ctx, userID, map[string]any{
		"failed_login_attempts": 0,
		"locked_at":             nil,
		"last_login_at":         at,
	})
}

func (r *userRepository) updateColumns(ctx context.Context, userID uuid.UUID, columns map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(columns)
	if res.Error != nil {
		return fmt.Errorf("update user %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// isDuplicateKeyError recognizes unique violations from postgres and from the SQLite driver.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, pgUniqueViolation)
}
