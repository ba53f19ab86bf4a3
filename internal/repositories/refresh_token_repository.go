package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budget-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
)

type refreshTokenRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepositoryInterface {
	return &refreshTokenRepository{db: db, now: time.Now}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	if token == nil {
		return errors.New("refresh token cannot be nil")
	}

	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *refreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return &token, nil
}

func (r *refreshTokenRepository) Rotate(ctx context.Context, oldID uuid.UUID, next *models.RefreshToken) error {
	if next == nil {
		return errors.New("refresh token cannot be nil")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := revokeActive(tx.Where("id = ?", oldID), r.now()); err != nil {
			return err
		}
		if err := tx.Create(next).Error; err != nil {
			return fmt.Errorf("failed to create refresh token: %w", err)
		}
		return nil
	})
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, tokenID uuid.UUID) error {
	return revokeActive(r.db.WithContext(ctx).Where("id = ?", tokenID), r.now())
}

// RevokeAllForUser ends every active session of the user and reports how many there were.
func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", r.now())
	if result.Error != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteExpired removes sessions that expired before now, revoked or not.
func (r *refreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.RefreshToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired refresh tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// revokeActive stamps revoked_at on the rows matched by scope that are still active.
// Matching nothing means the session is unknown or already revoked.
func revokeActive(scope *gorm.DB, at time.Time) error {
	result := scope.Model(&models.RefreshToken{}).
		Where("revoked_at IS NULL").
		Update("revoked_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRefreshTokenNotFound
	}
	return nil
}
