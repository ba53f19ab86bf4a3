package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	migrationsDir = "migrations"

	defaultReadyAttempts = 30
	defaultReadyInterval = 2 * time.Second
)

// MigrationRunner applies the embedded SQL migrations over a dedicated database/sql connection.
type MigrationRunner struct {
	db     *sql.DB
	source fs.FS
	dir    string

	// readiness polling used by WaitForDatabase
	attempts int
	interval time.Duration
}

func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{
		db:       db,
		source:   migrationsFS,
		dir:      migrationsDir,
		attempts: defaultReadyAttempts,
		interval: defaultReadyInterval,
	}
}

// WaitForDatabase pings until the server answers, the attempts run out or ctx ends.
func (mr *MigrationRunner) WaitForDatabase(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= mr.attempts; attempt++ {
		if lastErr = mr.db.PingContext(ctx); lastErr == nil {
			if attempt > 1 {
				slog.Info("database became ready", "attempts", attempt)
			}
			return nil
		}
		slog.Warn("database not ready", "attempt", attempt, "max_attempts", mr.attempts, "error", lastErr)

		if attempt == mr.attempts {
			break
		}
		timer := time.NewTimer(mr.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("database not ready after %d attempts: %w", mr.attempts, lastErr)
}

func (mr *MigrationRunner) open() (*migrate.Migrate, error) {
	source, err := iofs.New(mr.source, mr.dir)
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}
	driver, err := postgres.WithInstance(mr.db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("open migration driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", source, "postgres", driver)
}

// Up applies every pending migration. A dirty schema is forced back to its recorded version first.
func (mr *MigrationRunner) Up() error {
	m, err := mr.open()
	if err != nil {
		return err
	}

	from, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case dirty:
		slog.Warn("schema is dirty, forcing version", "version", from)
		if err := m.Force(int(from)); err != nil {
			return fmt.Errorf("force schema version %d: %w", from, err)
		}
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("schema is up to date", "version", from)
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	to, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	slog.Info("applied migrations", "from", from, "to", to)
	return nil
}

// Version reports the applied schema version.
func (mr *MigrationRunner) Version() (version uint, dirty bool, err error) {
	m, err := mr.open()
	if err != nil {
		return 0, false, err
	}
	return m.Version()
}

// RunMigrations opens its own connection so migration locks never hold a pooled GORM connection.
func RunMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	runner := NewMigrationRunner(db)
	if err := runner.WaitForDatabase(ctx); err != nil {
		return err
	}
	return runner.Up()
}
