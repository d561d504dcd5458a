package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"roomsense/infras/otel"
	"roomsense/infras/postgres"
	"roomsense/internal/domains/room/model"
	"roomsense/shared/constant"
	gDto "roomsense/shared/dto"
	"roomsense/shared/failure"
	"roomsense/shared/logger"
	gRepo "roomsense/shared/repository"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const errDeviceTaken = "device already assigned to another room"

const updateOccupancyQuery = `UPDATE rooms SET is_occupied = :is_occupied, last_motion = :last_motion
WHERE device_id = :device_id AND deleted_at IS NULL
RETURNING %s`

var returningColumns = []string{
	model.FieldID,
	model.FieldName,
	model.FieldCapacity,
	model.FieldDeviceID,
	model.FieldIsOccupied,
	model.FieldLastMotion,
	model.FieldDeletedAt,
	constant.FieldCreatedAt,
	constant.FieldModifiedAt,
	constant.FieldCreatedBy,
	constant.FieldModifiedBy,
}

type Room interface {
	Insert(ctx context.Context, model model.Room) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Room, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Room, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	LockTx(ctx context.Context, sqltx *sqlx.Tx, id string) (model.Room, error)
	UpdateOccupancyTx(ctx context.Context, sqltx *sqlx.Tx, deviceID string, occupied bool, at time.Time) (model.Room, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Room]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func (r *repositoryImpl) Insert(ctx context.Context, room model.Room) error {
	err := r.Repository.Insert(ctx, room)
	if gRepo.IsConstraintViolation(err, constant.PqErrorCodeUniqueViolation) {
		return failure.Conflict(errDeviceTaken) // nolint:wrapcheck
	}

	return err //nolint:wrapcheck
}

func (r *repositoryImpl) Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error {
	err := r.Repository.Update(ctx, req, filter)
	if gRepo.IsConstraintViolation(err, constant.PqErrorCodeUniqueViolation) {
		return failure.Conflict(errDeviceTaken) // nolint:wrapcheck
	}

	return err //nolint:wrapcheck
}

// LockTx loads a live room and holds its row lock until sqltx ends. Every
// writer of the room's bookings takes this lock first. A zero Room means
// the room does not exist.
func (r *repositoryImpl) LockTx(ctx context.Context, sqltx *sqlx.Tx, id string) (model.Room, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.LockTx")
	defer scope.End()

	scope.SetAttribute("room.id", id)

	return r.GetForUpdateTx(ctx, sqltx, model.ByID(id)) //nolint:wrapcheck
}

// UpdateOccupancyTx resolves the device to its live room and stores the
// reading in one statement. A zero Room means the device is not registered.
func (r *repositoryImpl) UpdateOccupancyTx(ctx context.Context, sqltx *sqlx.Tx, deviceID string, occupied bool, at time.Time) (model.Room, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.UpdateOccupancyTx")
	defer scope.End()

	query := fmt.Sprintf(updateOccupancyQuery, strings.Join(returningColumns, ", "))
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var room model.Room

	prepare, err := sqltx.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return room, fmt.Errorf("failed to prepare statement (room): %w", err)
	}
	defer prepare.Close()

	err = prepare.GetContext(ctx, &room, map[string]any{
		model.FieldDeviceID:   deviceID,
		model.FieldIsOccupied: occupied,
		model.FieldLastMotion: at,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return model.Room{}, nil
	}

	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return room, fmt.Errorf("failed to update occupancy (room): %w", err)
	}

	return room, nil
}
