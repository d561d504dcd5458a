package dto

import (
	"bytes"
	"fmt"
	"roomsense/infras/kafka"
	"roomsense/internal/domains/motion/model"
	roomModel "roomsense/internal/domains/room/model"
	"roomsense/shared"
	"roomsense/shared/constant"
	"roomsense/shared/failure"
	"roomsense/shared/timezone"

	"github.com/google/uuid"
)

const errInvalidStatus = "status must be one of true, false, 1 or 0"

// Status is a sensor reading. Only the JSON literals true, false, 1 and 0 are
// accepted; quoted values, other numbers and null are rejected.
type Status bool

func (s *Status) UnmarshalJSON(data []byte) error {
	status, err := ParseStatus(data)
	if err != nil {
		return err
	}

	*s = status

	return nil
}

// ParseStatus normalizes a raw reading.
func ParseStatus(raw []byte) (Status, error) {
	switch string(bytes.TrimSpace(raw)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}

	return false, failure.BadRequestFromString(fmt.Sprintf("%s, got %q", errInvalidStatus, raw)) // nolint:wrapcheck
}

type IngestMotionRequest struct {
	DeviceID string  `json:"device_id" validate:"required,max=64"`
	Status   *Status `json:"status"    validate:"required"`
}

// IsOccupied reports the normalized reading.
func (r *IngestMotionRequest) IsOccupied() bool {
	return r.Status != nil && bool(*r.Status)
}

func (r *IngestMotionRequest) ToModel(roomID string) model.MotionLog {
	return model.MotionLog{
		ID:         uuid.NewString(),
		RoomID:     roomID,
		IsOccupied: r.IsOccupied(),
		CreatedAt:  timezone.Now(),
	}
}

type IngestMotionResponse struct {
	RoomID     string `json:"room_id"`
	RoomName   string `json:"room_name"`
	DeviceID   string `json:"device_id"`
	IsOccupied bool   `json:"is_occupied"`
	LastMotion string `json:"last_motion"`
}

func (r *IngestMotionResponse) FromModel(room roomModel.Room, deviceID string) {
	r.RoomID = room.ID
	r.RoomName = room.Name
	r.DeviceID = deviceID
	r.IsOccupied = room.IsOccupied

	if room.LastMotion != nil {
		r.LastMotion = timezone.Format(*room.LastMotion, constant.DateFormat)
	}
}

type MotionLogResponse struct {
	ID         string `json:"id"`
	RoomID     string `json:"room_id"`
	IsOccupied bool   `json:"is_occupied"`
	CreatedAt  string `json:"created_at"`
}

func (r *MotionLogResponse) FromModel(model model.MotionLog) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.IsOccupied = model.IsOccupied
	r.CreatedAt = timezone.Format(model.CreatedAt, constant.DateFormat)
}

type GetMotionLogsResponse struct {
	Logs      []MotionLogResponse `json:"logs"`
	TotalPage int                 `json:"total_page"`
	TotalData int                 `json:"total_data"`
}

func (r *GetMotionLogsResponse) FromModels(models []model.MotionLog, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Logs = make([]MotionLogResponse, len(models))
	for i, mod := range models {
		r.Logs[i].FromModel(mod)
	}
}

// OccupancyEvent is published after a reading commits.
type OccupancyEvent struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	RoomID     string `json:"room_id"`
	DeviceID   string `json:"device_id"`
	IsOccupied bool   `json:"is_occupied"`
	OccurredAt string `json:"occurred_at"`
}

func NewOccupancyEvent(log model.MotionLog, deviceID string) kafka.Message {
	return kafka.Message{
		Key:  log.RoomID,
		Type: constant.EventOccupancyChanged,
		Value: OccupancyEvent{
			EventID:    uuid.NewString(),
			Type:       constant.EventOccupancyChanged,
			RoomID:     log.RoomID,
			DeviceID:   deviceID,
			IsOccupied: log.IsOccupied,
			OccurredAt: timezone.Format(log.CreatedAt, constant.DateFormat),
		},
	}
}
