package model

import (
	gDto "roomsense/shared/dto"
	"roomsense/shared/model"
	"time"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID         = "id"
	FieldName       = "name"
	FieldCapacity   = "capacity"
	FieldDeviceID   = "device_id"
	FieldIsOccupied = "is_occupied"
	FieldLastMotion = "last_motion"
	FieldDeletedAt  = "deleted_at"
	FieldCreatedAt  = "created_at"
)

// SortableFields maps the accepted sort_by values to their columns.
var SortableFields = map[string]string{
	FieldName:       TableName + "." + FieldName,
	FieldCapacity:   TableName + "." + FieldCapacity,
	FieldLastMotion: TableName + "." + FieldLastMotion,
	FieldCreatedAt:  TableName + "." + FieldCreatedAt,
}

// Room is a bookable space. IsOccupied and LastMotion are written by the
// motion ingest path only.
type Room struct {
	ID         string     `db:"id"`
	Name       string     `db:"name"`
	Capacity   int        `db:"capacity"`
	DeviceID   *string    `db:"device_id"`
	IsOccupied bool       `db:"is_occupied"`
	LastMotion *time.Time `db:"last_motion"`
	DeletedAt  *time.Time `db:"deleted_at"`
	model.Metadata
}

// LiveFilter restricts filters to rooms that have not been deleted.
func LiveFilter(filters ...any) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: append([]any{
			gDto.Filter{
				Field:    FieldDeletedAt,
				Operator: gDto.FilterIsNull,
				Table:    TableName,
			},
		}, filters...),
	}
}

// ByID matches a live room by id.
func ByID(id string) gDto.FilterGroup {
	return LiveFilter(gDto.Filter{
		Field:    FieldID,
		Value:    id,
		Operator: gDto.FilterOperatorEq,
		Table:    TableName,
	})
}

// ByDevice matches the live room a device is assigned to.
func ByDevice(deviceID string) gDto.FilterGroup {
	return LiveFilter(gDto.Filter{
		Field:    FieldDeviceID,
		Value:    deviceID,
		Operator: gDto.FilterOperatorEq,
		Table:    TableName,
	})
}
