package model

import "roomsense/shared/model"

const (
	TableName  = "users"
	EntityName = "user"

	FieldID    = "id"
	FieldName  = "name"
	FieldEmail = "email"
	FieldRole  = "role"
)

// User is owned by the identity provider. This service only reads it.
type User struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
	Role  string `db:"role"`
	model.Metadata
}
