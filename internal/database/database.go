package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budget-tracker/internal/config"
	"budget-tracker/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

// GormConfig is shared by production and test connections. Foreign keys are not created so
// that deleting a category leaves expenses and budgets pointing at it untouched.
func GormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// New opens a PostgreSQL connection pool and verifies it with a ping.
func New(cfg *config.DatabaseConfig, level logger.LogLevel) (*DB, error) {
	return Open(postgres.Open(cfg.DSN()), cfg, level)
}

// Open connects through any GORM dialector and applies the pool settings from cfg.
func Open(dialector gorm.Dialector, cfg *config.DatabaseConfig, level logger.LogLevel) (*DB, error) {
	db, err := gorm.Open(dialector, GormConfig(level))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

// Models lists every table the service owns, in creation order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RefreshToken{},
		&models.BlacklistedToken{},
		&models.AuditLog{},
		&models.Category{},
		&models.Expense{},
		&models.Budget{},
	}
}

func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(Models()...)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (db *DB) Transaction(fn func(*gorm.DB) error) error {
	return db.DB.Transaction(fn)
}

// CreateIndexes adds indexes that struct tags cannot express. Failures are logged, not fatal.
func (db *DB) CreateIndexes() error {
	queries := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users(LOWER(email))",
		"CREATE INDEX IF NOT EXISTS idx_refresh_tokens_expires_at ON refresh_tokens(expires_at)",
		"CREATE INDEX IF NOT EXISTS idx_blacklisted_tokens_expires_at ON blacklisted_tokens(expires_at)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_categories_user_name ON categories(user_id, name)",
		"CREATE INDEX IF NOT EXISTS idx_expenses_scope ON expenses(user_id, category_id, date)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_budget_scope ON budgets(user_id, category_id, month, year)",
	}

	for _, query := range queries {
		if err := db.DB.Exec(query).Error; err != nil {
			slog.Warn("failed to create index", "query", query, "error", err)
		}
	}

	return nil
}

// Initialize connects the store and brings the schema up to date.
func Initialize(ctx context.Context, cfg *config.Config, store *Store) (*DB, error) {
	db, err := store.Connect(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			slog.Warn("migration runner failed, falling back to GORM AutoMigrate", "error", err)
			if err := db.AutoMigrate(); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
	} else if err := db.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate: %w", err)
	}

	if err := db.CreateIndexes(); err != nil {
		slog.Warn("failed to create some indexes", "error", err)
	}

	slog.Info("database initialized")

	return db, nil
}

// LogLevelFor picks the GORM log level for an environment.
func LogLevelFor(environment string) logger.LogLevel {
	switch environment {
	case "development":
		return logger.Info
	case "testing":
		return logger.Silent
	default:
		return logger.Warn
	}
}
