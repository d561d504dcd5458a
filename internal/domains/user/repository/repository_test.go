package repository_test

import (
	"context"
	"errors"
	"regexp"
	"roomsense/infras/otel/mocks"
	"roomsense/infras/postgres"
	"roomsense/internal/domains/user/repository"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) (sqlmock.Sqlmock, repository.User) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	sqlxDB := sqlx.NewDb(db, "postgres")

	return mock, repository.New(&postgres.Connection{Read: sqlxDB, Write: sqlxDB}, mocks.NewOtel())
}

const selectUser = "SELECT users.id, users.name, users.email, users.role FROM users"

func TestUserRepository_GetByID(t *testing.T) {
	mock, repo := setupRepository(t)

	mock.ExpectPrepare(regexp.QuoteMeta(selectUser)).
		ExpectQuery().
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}).
			AddRow("user-1", "Ana", "ana@example.com", "user"))

	user, err := repo.GetByID(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "user", user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByIDUnknown(t *testing.T) {
	mock, repo := setupRepository(t)

	mock.ExpectPrepare(regexp.QuoteMeta(selectUser)).
		ExpectQuery().
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}))

	user, err := repo.GetByID(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, user.ID)
}

func TestUserRepository_GetByIDStorageError(t *testing.T) {
	mock, repo := setupRepository(t)

	mock.ExpectPrepare(regexp.QuoteMeta(selectUser)).
		ExpectQuery().
		WithArgs("user-1").
		WillReturnError(errors.New("connection reset by peer"))

	_, err := repo.GetByID(context.Background(), "user-1")
	assert.ErrorContains(t, err, "connection reset by peer")
}
