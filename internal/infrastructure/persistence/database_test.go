package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/corebank/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newTestDatabase opens a migrated in-memory sqlite database that lives for
// the duration of the test
func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newMockPostgres opens a GORM Postgres dialector over sqlmock so tests can
// assert on the SQL that Postgres would receive
func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gormDB, mock
}

func TestNewDatabase(t *testing.T) {
	t.Run("opens sqlite with a single connection", func(t *testing.T) {
		db := newTestDatabase(t)

		stats, err := db.Stats()
		require.NoError(t, err)
		assert.Equal(t, 1, stats.MaxOpenConnections)
		assert.NoError(t, db.Ping(context.Background()))
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		_, err := NewDatabase(&config.DatabaseConfig{Driver: "oracle"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})

	t.Run("auto migrate creates every ledger table", func(t *testing.T) {
		db := newTestDatabase(t)
		for _, table := range []string{
			"customers", "accounts", "fixed_deposits", "recurring_deposits", "loans",
			"account_transactions", "fd_transactions", "rd_transactions", "loan_transactions",
			"interest_calculations",
		} {
			assert.True(t, db.DB.Migrator().HasTable(table), table)
		}
	})
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, nil)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}

func TestDatabase_Stats(t *testing.T) {
	gormDB, mock := newMockPostgres(t)
	db := &Database{DB: gormDB}

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.Equal(t, time.Duration(0), stats.WaitDuration)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsPostgres(t *testing.T) {
	gormDB, _ := newMockPostgres(t)
	assert.True(t, isPostgres(gormDB))
	assert.False(t, isPostgres(newTestDatabase(t).DB))
}
