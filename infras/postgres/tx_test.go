package postgres_test

import (
	"context"
	"errors"
	"roomsense/infras/postgres"
	"roomsense/shared/failure"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTransactor(t *testing.T) (sqlmock.Sqlmock, postgres.Transactor) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	sqlxDB := sqlx.NewDb(db, "postgres")

	return mock, postgres.NewTransactor(&postgres.Connection{Read: sqlxDB, Write: sqlxDB})
}

func TestWithTransaction_Commit(t *testing.T) {
	mock, transactor := setupTransactor(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rooms").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := transactor.WithTransaction(context.Background(), func(tx *sqlx.Tx) error {
		_, err := tx.Exec("UPDATE rooms SET is_occupied = true")

		return err
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_RollbackKeepsFailure(t *testing.T) {
	mock, transactor := setupTransactor(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	conflict := failure.Conflict("room already booked in that window")

	err := transactor.WithTransaction(context.Background(), func(_ *sqlx.Tx) error {
		return conflict
	})

	assert.Same(t, conflict, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_BeginError(t *testing.T) {
	mock, transactor := setupTransactor(t)

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err := transactor.WithTransaction(context.Background(), func(_ *sqlx.Tx) error {
		called = true

		return nil
	})

	assert.Error(t, err)
	assert.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_CommitError(t *testing.T) {
	mock, transactor := setupTransactor(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := transactor.WithTransaction(context.Background(), func(_ *sqlx.Tx) error {
		return nil
	})

	assert.ErrorContains(t, err, "failed to commit transaction")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_PanicRollsBack(t *testing.T) {
	mock, transactor := setupTransactor(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = transactor.WithTransaction(context.Background(), func(_ *sqlx.Tx) error {
			panic("boom")
		})
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
