package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budget-tracker/internal/models"
	"budget-tracker/internal/repositories"

	"github.com/google/uuid"
)

const (
	DefaultActivityLimit = 20
	MaxActivityLimit     = 100
)

// AuditService handles audit logging operations
type AuditService struct {
	repo   repositories.AuditLogRepositoryInterface
	logger *slog.Logger
	now    func() time.Time
}

// NewAuditService creates a new audit service
func NewAuditService(repo repositories.AuditLogRepositoryInterface, logger *slog.Logger) AuditServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

var ErrInvalidUserID = errors.New("invalid user ID")

// Record stores an audit entry enriched with the client details carried by ctx.
// Failures are logged and never reach the caller.
func (s *AuditService) Record(ctx context.Context, entry models.AuditEntry) {
	err := entry.Validate()
	if err == nil {
		info := ClientInfoFrom(ctx)
		err = s.repo.Create(ctx, entry.Log(info.IPAddress, info.UserAgent))
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create audit log",
			"error", err,
			"action", entry.Action,
			"resource", entry.Resource,
			"resource_id", entry.ResourceID)
	}
}

// GetUserActivity returns the user's own audit trail, newest first
func (s *AuditService) GetUserActivity(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error) {
	if userID == uuid.Nil {
		return nil, 0, ErrInvalidUserID
	}

	offset = max(offset, 0)
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	limit = min(limit, MaxActivityLimit)

	logs, total, err := s.repo.ListByUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get user activity: %w", err)
	}
	return logs, total, nil
}

func (s *AuditService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}

	deleted, err := s.repo.DeleteBefore(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit logs: %w", err)
	}
	return deleted, nil
}

// ClientInfo identifies where a request came from
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type clientInfoKey struct{}

// WithClientInfo attaches the caller's address and user agent to ctx
func WithClientInfo(ctx context.Context, ipAddress, userAgent string) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, ClientInfo{IPAddress: ipAddress, UserAgent: userAgent})
}

// ClientInfoFrom returns the client details stored by WithClientInfo, or a zero value
func ClientInfoFrom(ctx context.Context) ClientInfo {
	if ctx == nil {
		return ClientInfo{}
	}
	info, _ := ctx.Value(clientInfoKey{}).(ClientInfo)
	return info
}
