package model

import (
	roomModel "roomsense/internal/domains/room/model"
	userModel "roomsense/internal/domains/user/model"
	"roomsense/shared/model"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID        = "id"
	FieldUserID    = "user_id"
	FieldRoomID    = "room_id"
	FieldStartTime = "start_time"
	FieldEndTime   = "end_time"
	FieldCreatedAt = "created_at"
)

// SortableFields maps the accepted sort_by values to their columns.
var SortableFields = map[string]string{
	FieldStartTime: TableName + "." + FieldStartTime,
	FieldEndTime:   TableName + "." + FieldEndTime,
	FieldCreatedAt: TableName + "." + FieldCreatedAt,
}

// Booking reserves the half-open interval [StartTime, EndTime) of a room.
type Booking struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	RoomID    string    `db:"room_id"`
	StartTime time.Time `db:"start_time"`
	EndTime   time.Time `db:"end_time"`
	model.Metadata
}

// Overlaps reports whether b intersects [start, end). Touching endpoints do not overlap.
func (b Booking) Overlaps(start, end time.Time) bool {
	return Overlaps(b.StartTime, b.EndTime, start, end)
}

// ActiveAt reports whether at falls inside the booking.
func (b Booking) ActiveAt(at time.Time) bool {
	return !at.Before(b.StartTime) && at.Before(b.EndTime)
}

// BookingDetail is a booking joined with the summaries shown next to it.
type BookingDetail struct {
	Booking
	UserName       string `db:"user_name"        table:"users" column:"name"`
	UserEmail      string `db:"user_email"       table:"users" column:"email"`
	RoomName       string `db:"room_name"        table:"rooms" column:"name"`
	RoomCapacity   int    `db:"room_capacity"    table:"rooms" column:"capacity"`
	RoomIsOccupied bool   `db:"room_is_occupied" table:"rooms" column:"is_occupied"`
}

func (BookingDetail) GetJoinQuery() string {
	return "JOIN " + userModel.TableName + " ON " + userModel.TableName + ".id = " + TableName + ".user_id " +
		"JOIN " + roomModel.TableName + " ON " + roomModel.TableName + ".id = " + TableName + ".room_id"
}

// Overlaps is the closed-open interval test: [aStart, aEnd) and [bStart, bEnd)
// intersect iff aStart < bEnd and bStart < aEnd.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ValidInterval reports whether end is strictly after start.
func ValidInterval(start, end time.Time) bool {
	return end.After(start)
}

// FindConflict scans existing for the first booking intersecting [start, end),
// ignoring the booking with id excludeID.
func FindConflict(existing []Booking, start, end time.Time, excludeID string) (Booking, bool) {
	for _, booking := range existing {
		if excludeID != "" && booking.ID == excludeID {
			continue
		}

		if booking.Overlaps(start, end) {
			return booking, true
		}
	}

	return Booking{}, false
}
