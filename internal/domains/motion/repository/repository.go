package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"roomsense/infras/otel"
	"roomsense/infras/postgres"
	"roomsense/internal/domains/motion/model"
	gDto "roomsense/shared/dto"
	gRepo "roomsense/shared/repository"

	"github.com/jmoiron/sqlx"
)

type MotionLog interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.MotionLog) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.MotionLog, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.MotionLog]
}

func New(db *postgres.Connection, otel otel.Otel) MotionLog {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.MotionLog](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
