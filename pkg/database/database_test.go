package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/director74/order_saga/pkg/config"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type compensationRecord struct {
	ID            uint   `gorm:"primaryKey"`
	OrderID       string `gorm:"uniqueIndex:idx_record_saga"`
	TransactionID string `gorm:"uniqueIndex:idx_record_saga"`
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := Open(postgres.New(postgres.Config{Conn: sqlDB}))
	require.NoError(t, err)
	return db, mock
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.PostgresConfig{
		Host: "db", Port: "5432", User: "saga", Password: "secret", DBName: "inventory", SSLMode: "disable",
	})
	assert.Equal(t, "host=db port=5432 user=saga password=secret dbname=inventory sslmode=disable", dsn)
}

// TestOpen_TranslatesUniqueViolation нарушение уникального индекса превращается в gorm.ErrDuplicatedKey
func TestOpen_TranslatesUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "compensation_records"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := db.Create(&compensationRecord{OrderID: "order-1", TransactionID: "tx-1"}).Error

	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(gorm.ErrRecordNotFound))
	assert.False(t, IsNotFound(errors.New("boom")))
}

func TestPingAndClose(t *testing.T) {
	db, mock := newMockDB(t)

	assert.NoError(t, Ping(context.Background(), db))

	mock.ExpectClose()
	assert.NoError(t, CloseDB(db))
	assert.NoError(t, CloseDB(nil))
}
