package dto_test

import (
	"encoding/json"
	"net/http"
	"roomsense/internal/domains/motion/model"
	"roomsense/internal/domains/motion/model/dto"
	"roomsense/shared/constant"
	"roomsense/shared/failure"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    dto.Status
		wantErr bool
	}{
		{raw: "true", want: true},
		{raw: "false", want: false},
		{raw: "1", want: true},
		{raw: "0", want: false},
		{raw: " 1\n", want: true},
		{raw: `"1"`, wantErr: true},
		{raw: `"true"`, wantErr: true},
		{raw: "2", wantErr: true},
		{raw: "1.0", wantErr: true},
		{raw: `"yes"`, wantErr: true},
		{raw: "null", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := dto.ParseStatus([]byte(tt.raw))

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIngestMotionRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantErr      bool
		wantStatus   bool
		wantStatusOK bool
	}{
		{name: "numeric reading", body: `{"device_id":"ESP32_01","status":1}`, wantStatus: true, wantStatusOK: true},
		{name: "boolean reading", body: `{"device_id":"ESP32_01","status":false}`, wantStatusOK: true},
		{name: "quoted reading", body: `{"device_id":"ESP32_01","status":"1"}`, wantErr: true},
		{name: "out of range", body: `{"device_id":"ESP32_01","status":2}`, wantErr: true},
		{name: "missing reading", body: `{"device_id":"ESP32_01"}`},
		{name: "null reading", body: `{"device_id":"ESP32_01","status":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req dto.IngestMotionRequest

			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatusOK, req.Status != nil)
			assert.Equal(t, tt.wantStatus, req.IsOccupied())
		})
	}
}

func TestNewOccupancyEvent(t *testing.T) {
	entry := model.MotionLog{
		ID:         "log-1",
		RoomID:     "room-1",
		IsOccupied: true,
		CreatedAt:  time.Date(2026, time.January, 13, 9, 0, 0, 0, time.UTC),
	}

	message := dto.NewOccupancyEvent(entry, "ESP32_01")
	assert.Equal(t, "room-1", message.Key)

	event, ok := message.Value.(dto.OccupancyEvent)
	require.True(t, ok)
	assert.Equal(t, constant.EventOccupancyChanged, event.Type)
	assert.Equal(t, "ESP32_01", event.DeviceID)
	assert.True(t, event.IsOccupied)
	assert.NotEmpty(t, event.EventID)
}
