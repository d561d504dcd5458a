package repository_test

import (
	"context"
	"net/http"
	"regexp"
	"roomsense/infras/otel/mocks"
	"roomsense/infras/postgres"
	"roomsense/internal/domains/booking/model"
	"roomsense/internal/domains/booking/repository"
	"roomsense/shared/failure"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) (sqlmock.Sqlmock, *sqlx.Tx, repository.Booking) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	sqlxDB := sqlx.NewDb(db, "postgres")

	mock.ExpectBegin()

	tx, err := sqlxDB.Beginx()
	require.NoError(t, err)

	return mock, tx, repository.New(&postgres.Connection{Read: sqlxDB, Write: sqlxDB}, mocks.NewOtel())
}

func TestBookingRepository_ListByRoomTx(t *testing.T) {
	mock, tx, repo := setupRepository(t)
	from := time.Date(2026, time.January, 13, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "user_id", "room_id", "start_time", "end_time", "user_name", "room_name"}).
		AddRow("b-1", "u-1", "room-1", from, from.Add(2*time.Hour), "Ana", "Lab 1").
		AddRow("b-2", "u-2", "room-1", from.Add(3*time.Hour), from.Add(4*time.Hour), "Budi", "Lab 1")

	mock.ExpectPrepare(regexp.QuoteMeta("WHERE (bookings.room_id = $1 AND bookings.end_time > $2) ORDER BY bookings.start_time ASC")).
		ExpectQuery().
		WithArgs("room-1", from).
		WillReturnRows(rows)
	mock.ExpectCommit()

	bookings, err := repo.ListByRoomTx(context.Background(), tx, "room-1", from)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	require.Len(t, bookings, 2)
	assert.Equal(t, "b-1", bookings[0].ID)
	assert.Equal(t, "b-2", bookings[1].ID)
	assert.True(t, from.Equal(bookings[0].StartTime))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ListByRoomTxJoinsSummaries(t *testing.T) {
	mock, tx, repo := setupRepository(t)

	mock.ExpectPrepare(regexp.QuoteMeta("JOIN users ON users.id = bookings.user_id JOIN rooms ON rooms.id = bookings.room_id")).
		ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	bookings, err := repo.ListByRoomTx(context.Background(), tx, "room-1", time.Now())
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	assert.Empty(t, bookings)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_InsertTxExclusionViolation(t *testing.T) {
	mock, tx, repo := setupRepository(t)

	mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&pq.Error{Code: "23P01", Message: "conflicting key value violates exclusion constraint"})
	mock.ExpectRollback()

	err := repo.InsertTx(context.Background(), tx, model.Booking{
		ID:        "b-3",
		UserID:    "u-1",
		RoomID:    "room-1",
		StartTime: time.Date(2026, time.January, 13, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, time.January, 13, 10, 30, 0, 0, time.UTC),
	})
	require.NoError(t, tx.Rollback())

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	assert.Equal(t, "room already booked in that window", err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_InsertTx(t *testing.T) {
	mock, tx, repo := setupRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings (id, user_id, room_id, start_time, end_time, created_at, modified_at, created_by, modified_by)")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.InsertTx(context.Background(), tx, model.Booking{ID: "b-4", UserID: "u-1", RoomID: "room-1"})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}
