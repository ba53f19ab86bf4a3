package database

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRefused = errors.New("dial tcp 127.0.0.1:5432: connection refused")

func newPingRunner(t *testing.T, attempts int, interval time.Duration) (*MigrationRunner, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runner := NewMigrationRunner(db)
	runner.attempts = attempts
	runner.interval = interval
	return runner, mock
}

func TestNewMigrationRunner_Defaults(t *testing.T) {
	runner, _ := newPingRunner(t, defaultReadyAttempts, defaultReadyInterval)

	assert.Equal(t, migrationsDir, runner.dir)
	assert.Equal(t, 30, runner.attempts)
	assert.Equal(t, 2*time.Second, runner.interval)
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := fs.Glob(migrationsFS, path.Join(migrationsDir, "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, names)

	versions := map[string]int{}
	for _, name := range names {
		base := path.Base(name)
		switch {
		case strings.HasSuffix(base, ".up.sql"):
			versions[strings.TrimSuffix(base, ".up.sql")]++
		case strings.HasSuffix(base, ".down.sql"):
			versions[strings.TrimSuffix(base, ".down.sql")]++
		default:
			t.Errorf("%s is neither an up nor a down migration", base)
		}
	}
	for version, count := range versions {
		assert.Equal(t, 2, count, "%s needs both directions", version)
	}

	schema, err := fs.ReadFile(migrationsFS, path.Join(migrationsDir, "000001_init_schema.up.sql"))
	require.NoError(t, err)
	assert.Contains(t, string(schema), "idx_budget_scope ON budgets(user_id, category_id, month, year)")
}

func TestWaitForDatabase(t *testing.T) {
	testCases := []struct {
		name    string
		pings   []error
		wantErr bool
	}{
		{name: "ready at once", pings: []error{nil}},
		{name: "ready on third ping", pings: []error{errRefused, errRefused, nil}},
		{name: "never ready", pings: []error{errRefused, errRefused, errRefused}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			runner, mock := newPingRunner(t, 3, time.Millisecond)
			for _, ping := range tc.pings {
				mock.ExpectPing().WillReturnError(ping)
			}

			err := runner.WaitForDatabase(context.Background())

			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorContains(t, err, "not ready after 3 attempts")
				assert.ErrorIs(t, err, errRefused)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestWaitForDatabase_StopsWhenContextEnds(t *testing.T) {
	runner, mock := newPingRunner(t, 5, time.Hour)
	mock.ExpectPing().WillReturnError(errRefused)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, runner.WaitForDatabase(ctx), context.DeadlineExceeded)
}
