package model

import (
	gDto "roomsense/shared/dto"
	"time"
)

const (
	TableName  = "motion_logs"
	EntityName = "motion_log"

	FieldID         = "id"
	FieldRoomID     = "room_id"
	FieldIsOccupied = "is_occupied"
	FieldCreatedAt  = "created_at"
)

// MotionLog is one accepted sensor reading. Rows are only ever appended.
type MotionLog struct {
	ID         string    `db:"id"`
	RoomID     string    `db:"room_id"`
	IsOccupied bool      `db:"is_occupied"`
	CreatedAt  time.Time `db:"created_at"`
}

func ByRoom(roomID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    FieldRoomID,
				Value:    roomID,
				Operator: gDto.FilterOperatorEq,
				Table:    TableName,
			},
		},
	}
}
