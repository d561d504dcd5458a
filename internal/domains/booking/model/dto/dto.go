package dto

import (
	"roomsense/infras/kafka"
	"roomsense/internal/domains/booking/model"
	roomModel "roomsense/internal/domains/room/model"
	userModel "roomsense/internal/domains/user/model"
	userDto "roomsense/internal/domains/user/model/dto"
	"roomsense/shared"
	"roomsense/shared/constant"
	gDto "roomsense/shared/dto"
	"roomsense/shared/failure"
	gModel "roomsense/shared/model"
	"roomsense/shared/timezone"
	"time"

	"github.com/google/uuid"
)

const errInvalidInterval = "end_time must be after start_time"

// ParseInterval reads an RFC 3339 interval and requires end strictly after start.
func ParseInterval(startRaw, endRaw string) (start, end time.Time, err error) {
	start, err = timezone.ParseInstant(startRaw)
	if err != nil {
		return start, end, failure.BadRequestFromString("start_time must be an RFC 3339 timestamp") // nolint:wrapcheck
	}

	end, err = timezone.ParseInstant(endRaw)
	if err != nil {
		return start, end, failure.BadRequestFromString("end_time must be an RFC 3339 timestamp") // nolint:wrapcheck
	}

	if !model.ValidInterval(start, end) {
		return start, end, failure.BadRequestFromString(errInvalidInterval) // nolint:wrapcheck
	}

	return start, end, nil
}

type CreateBookingRequest struct {
	UserID    string `json:"user_id"    validate:"omitempty,max=64"`
	RoomID    string `json:"room_id"    validate:"required,max=64"`
	StartTime string `json:"start_time" validate:"required,rfc3339"`
	EndTime   string `json:"end_time"   validate:"required,rfc3339"`
}

func (c *CreateBookingRequest) ToModel(user string, start, end time.Time) model.Booking {
	now := timezone.Now()

	return model.Booking{
		ID:        uuid.NewString(),
		UserID:    c.UserID,
		RoomID:    c.RoomID,
		StartTime: start,
		EndTime:   end,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type RescheduleBookingRequest struct {
	StartTime string `json:"start_time" validate:"required,rfc3339"`
	EndTime   string `json:"end_time"   validate:"required,rfc3339"`
}

type RoomSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Capacity   int    `json:"capacity"`
	IsOccupied bool   `json:"is_occupied"`
}

type BookingResponse struct {
	ID        string              `json:"id"`
	StartTime string              `json:"start_time"`
	EndTime   string              `json:"end_time"`
	User      userDto.UserSummary `json:"user"`
	Room      RoomSummary         `json:"room"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.BookingDetail) {
	r.ID = model.ID
	r.StartTime = timezone.Format(model.StartTime, constant.DateFormat)
	r.EndTime = timezone.Format(model.EndTime, constant.DateFormat)
	r.User = userDto.UserSummary{
		ID:    model.UserID,
		Name:  model.UserName,
		Email: model.UserEmail,
	}
	r.Room = RoomSummary{
		ID:         model.RoomID,
		Name:       model.RoomName,
		Capacity:   model.RoomCapacity,
		IsOccupied: model.RoomIsOccupied,
	}
	r.Metadata.FromModel(model.Metadata)
}

// NewBookingDetail attaches the resolved user and room to a booking.
func NewBookingDetail(booking model.Booking, user userModel.User, room roomModel.Room) model.BookingDetail {
	return model.BookingDetail{
		Booking:        booking,
		UserName:       user.Name,
		UserEmail:      user.Email,
		RoomName:       room.Name,
		RoomCapacity:   room.Capacity,
		RoomIsOccupied: room.IsOccupied,
	}
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.BookingDetail, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// BookingEvent is published after a booking write commits.
type BookingEvent struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	BookingID  string `json:"booking_id"`
	RoomID     string `json:"room_id"`
	UserID     string `json:"user_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	OccurredAt string `json:"occurred_at"`
}

// NewBookingEvent builds an event keyed by room so a room's events stay ordered.
func NewBookingEvent(eventType string, booking model.Booking) kafka.Message {
	return kafka.Message{
		Key:  booking.RoomID,
		Type: eventType,
		Value: BookingEvent{
			EventID:    uuid.NewString(),
			Type:       eventType,
			BookingID:  booking.ID,
			RoomID:     booking.RoomID,
			UserID:     booking.UserID,
			StartTime:  timezone.Format(booking.StartTime, constant.DateFormat),
			EndTime:    timezone.Format(booking.EndTime, constant.DateFormat),
			OccurredAt: timezone.Format(timezone.Now(), constant.DateFormat),
		},
	}
}
