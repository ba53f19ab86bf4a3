package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"budget-tracker/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// State is the connection lifecycle state reported by Store.Status.
type State string

const (
	StateIdle         State = "idle"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
	StateClosed       State = "closed"
)

var ErrStoreUnavailable = errors.New("store is not connected")

// Status is a point-in-time snapshot of the store's health.
type Status struct {
	State       State      `json:"state"`
	LastError   string     `json:"last_error,omitempty"`
	CheckedAt   time.Time  `json:"checked_at"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
}

// Available reports whether requests can be served from the store.
func (s Status) Available() bool {
	return s.State == StateConnected
}

// Store owns the database connection for the life of the process. It is created by main,
// connected once at startup and closed on shutdown; the health endpoint pulls Status from it.
type Store struct {
	cfg       *config.DatabaseConfig
	dialector func() gorm.Dialector
	logLevel  logger.LogLevel

	mu     sync.RWMutex
	db     *DB
	status Status
}

type StoreOption func(*Store)

// WithDialector replaces the PostgreSQL dialector, e.g. with SQLite in tests.
func WithDialector(fn func() gorm.Dialector) StoreOption {
	return func(s *Store) {
		s.dialector = fn
	}
}

func WithLogLevel(level logger.LogLevel) StoreOption {
	return func(s *Store) {
		s.logLevel = level
	}
}

func NewStore(cfg *config.DatabaseConfig, opts ...StoreOption) *Store {
	s := &Store{
		cfg: cfg,
		dialector: func() gorm.Dialector {
			return postgres.Open(cfg.DSN())
		},
		logLevel: logger.Warn,
		status: Status{
			State:     StateIdle,
			CheckedAt: time.Now().UTC(),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens the pool. Calling it on a connected store returns the existing handle.
func (s *Store) Connect(ctx context.Context) (*DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil && s.status.State == StateConnected {
		return s.db, nil
	}
	if s.status.State == StateClosed {
		return nil, errors.New("store already closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.setStatusLocked(StateConnecting, nil)

	db, err := Open(s.dialector(), s.cfg, s.logLevel)
	if err != nil {
		s.setStatusLocked(StateDisconnected, err)
		return nil, err
	}

	s.db = db
	now := time.Now().UTC()
	s.status.ConnectedAt = &now
	s.setStatusLocked(StateConnected, nil)

	slog.Info("store connected")
	return db, nil
}

// DB returns the connection handle, or ErrStoreUnavailable before Connect succeeds.
func (s *Store) DB() (*DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrStoreUnavailable
	}
	return s.db, nil
}

// Status returns the last observed state without touching the database.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Check pings the database and updates the status. A failed ping marks the store disconnected;
// the next successful ping marks it connected again.
func (s *Store) Check(ctx context.Context) Status {
	s.mu.RLock()
	db := s.db
	state := s.status.State
	s.mu.RUnlock()

	if db == nil || state == StateClosed {
		return s.Status()
	}

	err := db.HealthCheck(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.State == StateClosed {
		return s.status
	}

	if err != nil {
		if s.status.State != StateDisconnected {
			slog.Warn("store disconnected", "error", err)
		}
		s.setStatusLocked(StateDisconnected, err)
	} else {
		if s.status.State == StateDisconnected {
			slog.Info("store reconnected")
		}
		s.setStatusLocked(StateConnected, nil)
	}
	return s.status
}

// Monitor checks the connection every interval until ctx is cancelled.
func (s *Store) Monitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			s.Check(checkCtx)
			cancel()
		}
	}
}

// Close releases the pool. The store cannot be reconnected afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.State == StateClosed {
		return nil
	}

	var err error
	if s.db != nil {
		if closeErr := s.db.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close database: %w", closeErr)
		}
	}
	s.setStatusLocked(StateClosed, err)
	return err
}

func (s *Store) setStatusLocked(state State, err error) {
	s.status.State = state
	s.status.CheckedAt = time.Now().UTC()
	if err != nil {
		s.status.LastError = err.Error()
	} else {
		s.status.LastError = ""
	}
}
