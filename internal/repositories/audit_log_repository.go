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

var errNilAuditLog = errors.New("nil audit log")

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepositoryInterface {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if entry == nil {
		return errNilAuditLog
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("insert audit log %s: %w", entry.Action, err)
	}
	return nil
}

// ListByUser returns one page of the user's entries, newest first, with the total count.
// A page past the end is empty rather than an error.
func (r *auditLogRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error) {
	owned := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.AuditLog{}).Where("user_id = ?", userID)
	}

	var total int64
	if err := owned().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	page := []*models.AuditLog{}
	if int64(offset) >= total {
		return page, total, nil
	}

	err := owned().
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&page).Error
	if err != nil {
		return nil, 0, fmt.Errorf("page audit logs: %w", err)
	}
	return page, total, nil
}

// DeleteBefore drops entries created before cutoff and reports how many went.
func (r *auditLogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge audit logs before %s: %w", cutoff.Format(time.RFC3339), res.Error)
	}
	return res.RowsAffected, nil
}
