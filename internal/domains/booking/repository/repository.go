package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"roomsense/infras/otel"
	"roomsense/infras/postgres"
	"roomsense/internal/domains/booking/model"
	"roomsense/shared/constant"
	gDto "roomsense/shared/dto"
	"roomsense/shared/failure"
	gRepo "roomsense/shared/repository"
	"time"

	"github.com/jmoiron/sqlx"
)

const errWindowTaken = "room already booked in that window"

type Booking interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.BookingDetail, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.BookingDetail, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	GetTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup, columns ...string) (model.BookingDetail, error)
	ListByRoomTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, from time.Time) ([]model.Booking, error)
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, booking model.Booking) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.BookingDetail]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.BookingDetail](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// ListByRoomTx returns the room's bookings ending after from, by start time.
// Callers hold the room lock so the result stays current until commit.
func (r *repositoryImpl) ListByRoomTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, from time.Time) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.ListByRoomTx")
	defer scope.End()

	params := gDto.QueryParams{
		SortBy:  model.SortableFields[model.FieldStartTime],
		SortDir: gDto.SortDirAsc,
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldRoomID, Value: roomID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldEndTime, Value: from, Operator: gDto.FilterOperatorGreater, Table: model.TableName},
		},
	}

	details, err := r.GetAllTx(ctx, sqltx, params, filter)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	bookings := make([]model.Booking, len(details))
	for i, detail := range details {
		bookings[i] = detail.Booking
	}

	return bookings, nil
}

// InsertTx maps an exclusion violation to a conflict. The constraint is the
// last line against overlapping bookings.
func (r *repositoryImpl) InsertTx(ctx context.Context, sqltx *sqlx.Tx, booking model.Booking) error {
	err := r.Repository.InsertTx(ctx, sqltx, model.BookingDetail{Booking: booking})

	return mapOverlap(err)
}

func (r *repositoryImpl) UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error {
	err := r.Repository.UpdateTx(ctx, sqltx, req, filter)

	return mapOverlap(err)
}

func mapOverlap(err error) error {
	if gRepo.IsConstraintViolation(err, constant.PqErrorCodeExclusionViolation) {
		return failure.Conflict(errWindowTaken) // nolint:wrapcheck
	}

	return err
}
