package dto

import (
	bookingModel "roomsense/internal/domains/booking/model"
	"roomsense/internal/domains/room/model"
	"roomsense/shared"
	"roomsense/shared/constant"
	gDto "roomsense/shared/dto"
	gModel "roomsense/shared/model"
	"roomsense/shared/timezone"
	"strings"
	"time"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	Name     string  `json:"name"      validate:"required,max=100"`
	Capacity int     `json:"capacity"  validate:"required,gte=1"`
	DeviceID *string `json:"device_id" validate:"omitempty,max=64"`
}

// Device returns the trimmed device id, nil when none was given.
func (c *CreateRoomRequest) Device() *string {
	return normalizeDevice(c.DeviceID)
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	now := timezone.Now()

	return model.Room{
		ID:         uuid.NewString(),
		Name:       c.Name,
		Capacity:   c.Capacity,
		DeviceID:   c.Device(),
		IsOccupied: false,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateRoomRequest struct {
	Name     string  `db:"name"      json:"name"      validate:"omitempty,max=100"`
	Capacity *int    `db:"capacity"  json:"capacity"  validate:"omitempty,gte=1"`
	DeviceID *string `db:"device_id" json:"device_id" validate:"omitempty,max=64"`
}

func (u *UpdateRoomRequest) IsEmpty() bool {
	return u.Name == constant.Empty && u.Capacity == nil && u.Device() == nil
}

func (u *UpdateRoomRequest) Device() *string {
	return normalizeDevice(u.DeviceID)
}

func normalizeDevice(deviceID *string) *string {
	if deviceID == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*deviceID)
	if trimmed == constant.Empty {
		return nil
	}

	return &trimmed
}

type RoomBooking struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (r *RoomBooking) FromModel(model bookingModel.BookingDetail) {
	r.ID = model.ID
	r.UserID = model.UserID
	r.UserName = model.UserName
	r.StartTime = timezone.Format(model.StartTime, constant.DateFormat)
	r.EndTime = timezone.Format(model.EndTime, constant.DateFormat)
}

type RoomResponse struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Capacity   int           `json:"capacity"`
	DeviceID   *string       `json:"device_id"`
	IsOccupied bool          `json:"is_occupied"`
	LastMotion *string       `json:"last_motion"`
	Bookings   []RoomBooking `json:"bookings,omitempty"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Name = model.Name
	r.Capacity = model.Capacity
	r.DeviceID = model.DeviceID
	r.IsOccupied = model.IsOccupied
	r.LastMotion = formatOptional(model.LastMotion)
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}

// AttachBookings distributes bookings to their rooms, keeping the given order.
func (r *GetRoomsResponse) AttachBookings(bookings []bookingModel.BookingDetail) {
	index := make(map[string]int, len(r.Rooms))
	for i, room := range r.Rooms {
		index[room.ID] = i
		r.Rooms[i].Bookings = []RoomBooking{}
	}

	for _, booking := range bookings {
		i, ok := index[booking.RoomID]
		if !ok {
			continue
		}

		var item RoomBooking
		item.FromModel(booking)

		r.Rooms[i].Bookings = append(r.Rooms[i].Bookings, item)
	}
}

// AvailabilityResponse combines the sensor reading and the reservation calendar
// at a single instant. Neither signal is stored combined.
type AvailabilityResponse struct {
	RoomID         string       `json:"room_id"`
	At             string       `json:"at"`
	IsOccupied     bool         `json:"is_occupied"`
	LastMotion     *string      `json:"last_motion"`
	IsReserved     bool         `json:"is_reserved"`
	CurrentBooking *RoomBooking `json:"current_booking"`
	Available      bool         `json:"available"`
}

func (a *AvailabilityResponse) FromModel(room model.Room, at time.Time, current *bookingModel.BookingDetail) {
	a.RoomID = room.ID
	a.At = timezone.Format(at, constant.DateFormat)
	a.IsOccupied = room.IsOccupied
	a.LastMotion = formatOptional(room.LastMotion)

	if current != nil {
		a.IsReserved = true
		a.CurrentBooking = &RoomBooking{}
		a.CurrentBooking.FromModel(*current)
	}

	a.Available = !a.IsOccupied && !a.IsReserved
}

func formatOptional(value *time.Time) *string {
	if value == nil {
		return nil
	}

	formatted := timezone.Format(*value, constant.DateFormat)

	return &formatted
}
