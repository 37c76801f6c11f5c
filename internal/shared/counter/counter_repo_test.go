package counter_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/counter"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newGormMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)
	return db, mock
}

func TestGetNextValue(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock := newGormMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO counters")).
			WithArgs(counter.EmployeeNumber).
			WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(42))

		v, err := counter.NewRepository(db).GetNextValue(context.Background(), counter.EmployeeNumber)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), v)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs inside transaction", func(t *testing.T) {
		db, mock := newGormMock(t)
		sqlDB, _ := db.DB()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO counters")).
			WithArgs(counter.EmployeeNumber).
			WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(1))
		mock.ExpectCommit()

		tx, err := sqlDB.BeginTx(context.Background(), nil)
		assert.NoError(t, err)

		v, err := counter.NewRepository(db).WithTx(tx).GetNextValue(context.Background(), counter.EmployeeNumber)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), v)
		assert.NoError(t, tx.Commit())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative query error", func(t *testing.T) {
		db, mock := newGormMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO counters")).
			WillReturnError(errors.New("db down"))

		_, err := counter.NewRepository(db).GetNextValue(context.Background(), counter.EmployeeNumber)

		assert.Error(t, err)
	})
}
