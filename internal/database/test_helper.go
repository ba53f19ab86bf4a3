package database

import (
	"fmt"
	"path/filepath"
	"slices"
	"testing"

	"budget-tracker/internal/config"
	"budget-tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// A single connection keeps every query on the same in-memory database.
var testPoolConfig = &config.DatabaseConfig{MaxConnections: 1, MaxIdleConns: 1}

// TestDialector opens a private in-memory SQLite database.
func TestDialector() gorm.Dialector {
	return sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
}

// SetupTestDB returns a migrated SQLite database closed when the test ends.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(TestDialector(), testPoolConfig, logger.Silent)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// SetupFileTestDB returns a migrated SQLite database on disk with a connection pool, for tests
// where several goroutines must hit the store at once.
func SetupFileTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "budget.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	pool := &config.DatabaseConfig{MaxConnections: 8, MaxIdleConns: 8}
	db, err := Open(sqlite.Open(dsn), pool, logger.Silent)
	if err != nil {
		t.Fatalf("open file test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("migrate file test database: %v", err)
	}
	return db
}

func NewTestStore() *Store {
	return NewStore(testPoolConfig, WithDialector(TestDialector), WithLogLevel(logger.Silent))
}

// CleanupTestDB empties every table, children first.
func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	tables := Models()
	slices.Reverse(tables)
	session := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range tables {
		if err := session.Unscoped().Delete(model).Error; err != nil {
			t.Errorf("clean %T: %v", model, err)
		}
	}
}

func CreateTestUser(t *testing.T, db *DB, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, PasswordHash: "hashed_password", Name: "Test User"}
	mustCreate(t, db, user)
	return user
}

func CreateTestCategory(t *testing.T, db *DB, userID uuid.UUID, name string) *models.Category {
	t.Helper()

	category := &models.Category{UserID: userID, Name: name}
	mustCreate(t, db, category)
	return category
}

func mustCreate(t *testing.T, db *DB, value any) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}
