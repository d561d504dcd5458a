package mqtt_test

import (
	"context"
	"errors"
	"net/http"
	"roomsense/config"
	mqttMocks "roomsense/infras/mqtt/mocks"
	"roomsense/infras/otel/mocks"
	motionMocks "roomsense/internal/domains/motion/mocks"
	"roomsense/internal/domains/motion/model/dto"
	"roomsense/shared/failure"
	"roomsense/transport/mqtt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newSubscriber(t *testing.T) (*mqtt.Subscriber, *mqttMocks.MockClient, *motionMocks.MockMotionService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	client := mqttMocks.NewMockClient(ctrl)
	service := motionMocks.NewMockMotionService(ctrl)

	cfg := &config.Config{}
	cfg.MQTT.Topic = "roomsense/+/motion"
	cfg.MQTT.QoS = 1

	return mqtt.NewSubscriber(client, service, cfg, mocks.NewOtel()), client, service
}

func TestSubscriber_Start(t *testing.T) {
	subscriber, client, _ := newSubscriber(t)

	client.EXPECT().Connect().Return(nil)
	client.EXPECT().Subscribe("roomsense/+/motion", byte(1), gomock.Any()).Return(nil)

	require.NoError(t, subscriber.Start())
}

func TestSubscriber_StartConnectFailure(t *testing.T) {
	subscriber, client, _ := newSubscriber(t)

	client.EXPECT().Connect().Return(errors.New("connection refused"))

	assert.Error(t, subscriber.Start())
}

func TestSubscriber_StartSubscribeFailure(t *testing.T) {
	subscriber, client, _ := newSubscriber(t)

	client.EXPECT().Connect().Return(nil)
	client.EXPECT().Subscribe(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("not authorized"))
	client.EXPECT().Disconnect()

	assert.Error(t, subscriber.Start())
}

func TestSubscriber_HandleMessage(t *testing.T) {
	tests := []struct {
		name         string
		topic        string
		payload      string
		wantDevice   string
		wantOccupied bool
	}{
		{
			name:         "json body with numeric status",
			topic:        "roomsense/ESP32_01/motion",
			payload:      `{"device_id":"ESP32_01","status":1}`,
			wantDevice:   "ESP32_01",
			wantOccupied: true,
		},
		{
			name:         "json body with boolean status",
			topic:        "roomsense/ESP32_01/motion",
			payload:      `{"device_id":"ESP32_01","status":false}`,
			wantDevice:   "ESP32_01",
			wantOccupied: false,
		},
		{
			name:         "json body on a flat topic",
			topic:        "motion",
			payload:      `{"device_id":"ESP32_03","status":1}`,
			wantDevice:   "ESP32_03",
			wantOccupied: true,
		},
		{
			name:         "bare reading takes device from topic",
			topic:        "roomsense/ESP32_07/motion",
			payload:      "1",
			wantDevice:   "ESP32_07",
			wantOccupied: true,
		},
		{
			name:         "bare boolean reading with whitespace",
			topic:        "roomsense/ESP32_07/motion",
			payload:      " false\n",
			wantDevice:   "ESP32_07",
			wantOccupied: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subscriber, _, service := newSubscriber(t)

			service.EXPECT().Ingest(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, req dto.IngestMotionRequest) (dto.IngestMotionResponse, error) {
					assert.Equal(t, tt.wantDevice, req.DeviceID)
					assert.Equal(t, tt.wantOccupied, req.IsOccupied())

					return dto.IngestMotionResponse{RoomID: "room-1", DeviceID: req.DeviceID, IsOccupied: req.IsOccupied()}, nil
				})

			require.NoError(t, subscriber.HandleMessage(tt.topic, []byte(tt.payload)))
		})
	}
}

func TestSubscriber_HandleMessageRejects(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload string
	}{
		{name: "quoted status", topic: "roomsense/ESP32_01/motion", payload: `{"device_id":"ESP32_01","status":"1"}`},
		{name: "other number", topic: "roomsense/ESP32_01/motion", payload: "2"},
		{name: "missing status", topic: "roomsense/ESP32_01/motion", payload: `{"device_id":"ESP32_01"}`},
		{name: "missing device", topic: "roomsense/ESP32_01/motion", payload: `{"status":1}`},
		{name: "bare reading on unexpected topic", topic: "motion", payload: "1"},
		{name: "malformed json", topic: "roomsense/ESP32_01/motion", payload: `{"device_id":`},
		{name: "device differs from topic", topic: "roomsense/ESP32_01/motion", payload: `{"device_id":"ESP32_02","status":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subscriber, _, _ := newSubscriber(t)

			err := subscriber.HandleMessage(tt.topic, []byte(tt.payload))
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		})
	}
}

func TestSubscriber_HandleMessageUnknownDevice(t *testing.T) {
	subscriber, _, service := newSubscriber(t)

	service.EXPECT().Ingest(gomock.Any(), gomock.Any()).
		Return(dto.IngestMotionResponse{}, failure.NotFound("device not registered to any room"))

	err := subscriber.HandleMessage("roomsense/ESP32_99/motion", []byte("1"))
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}
