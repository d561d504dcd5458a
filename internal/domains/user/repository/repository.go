package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"roomsense/infras/otel"
	"roomsense/infras/postgres"
	"roomsense/internal/domains/user/model"
	"roomsense/shared"
	"roomsense/shared/constant"
	gRepo "roomsense/shared/repository"
)

// User is the read side of the user directory. Rows are written by the
// identity provider.
type User interface {
	// GetByID returns the zero User when the id is unknown.
	GetByID(ctx context.Context, id string) (model.User, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.User]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) User {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.User](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

func (r *repositoryImpl) GetByID(ctx context.Context, id string) (model.User, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".user.GetByID")
	defer scope.End()

	scope.SetAttribute("user.id", id)

	user, err := r.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName),
		model.FieldID, model.FieldName, model.FieldEmail, model.FieldRole)
	if err != nil {
		scope.TraceError(err)

		return user, err //nolint:wrapcheck
	}

	return user, nil
}
