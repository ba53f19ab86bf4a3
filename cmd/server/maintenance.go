package main

import (
	"context"
	"log/slog"
	"time"
)

// expiringStore is a token table whose rows become useless after they expire.
type expiringStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type auditPurger interface {
	Purge(ctx context.Context, retention time.Duration) (int64, error)
}

// janitor deletes expired sessions, stale blacklist entries and audit entries past retention.
type janitor struct {
	stores    map[string]expiringStore
	audit     auditPurger
	retention time.Duration
	now       func() time.Time
}

// Run sweeps once at startup and then every interval until ctx is cancelled. Failures are
// logged and retried on the next tick. A non-positive interval disables the janitor.
func (j *janitor) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		j.sweep(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (j *janitor) sweep(ctx context.Context) {
	now := j.now()
	for name, store := range j.stores {
		deleted, err := store.DeleteExpired(ctx, now)
		if err != nil {
			slog.ErrorContext(ctx, "Expired token cleanup failed", "table", name, "error", err)
			continue
		}
		if deleted > 0 {
			slog.InfoContext(ctx, "Deleted expired tokens", "table", name, "deleted", deleted)
		}
	}

	deleted, err := j.audit.Purge(ctx, j.retention)
	if err != nil {
		slog.ErrorContext(ctx, "Audit log purge failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.InfoContext(ctx, "Purged audit log entries", "deleted", deleted, "retention", j.retention)
	}
}
