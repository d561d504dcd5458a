package motion_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"roomsense/infras/otel/mocks"
	motionMocks "roomsense/internal/domains/motion/mocks"
	"roomsense/internal/domains/motion/model/dto"
	"roomsense/internal/handlers/motion"
	gDto "roomsense/shared/dto"
	"roomsense/shared/failure"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T) (http.Handler, *motionMocks.MockMotionService) {
	t.Helper()

	service := motionMocks.NewMockMotionService(gomock.NewController(t))
	handler := motion.New(service, mocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return router, service
}

func TestHandler_IngestMotion(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		callsSvc   bool
		wantStatus int
		wantError  string
	}{
		{
			name:       "numeric reading applied",
			body:       `{"device_id":"ESP32_01","status":1}`,
			callsSvc:   true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "boolean reading applied",
			body:       `{"device_id":"ESP32_01","status":false}`,
			callsSvc:   true,
			wantStatus: http.StatusOK,
		},
		{
			name:       "quoted status",
			body:       `{"device_id":"ESP32_01","status":"1"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "out of range status",
			body:       `{"device_id":"ESP32_01","status":2}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "null status",
			body:       `{"device_id":"ESP32_01","status":null}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing device",
			body:       `{"status":1}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unregistered device",
			body:       `{"device_id":"ESP32_99","status":1}`,
			serviceErr: failure.NotFound("device not registered to any room"),
			callsSvc:   true,
			wantStatus: http.StatusNotFound,
			wantError:  "device not registered to any room",
		},
		{
			name:       "storage failure",
			body:       `{"device_id":"ESP32_01","status":1}`,
			serviceErr: failure.InternalError(errors.New("connection refused")),
			callsSvc:   true,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service := newRouter(t)

			if tt.callsSvc {
				service.EXPECT().Ingest(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req dto.IngestMotionRequest) (dto.IngestMotionResponse, error) {
						if tt.serviceErr != nil {
							return dto.IngestMotionResponse{}, tt.serviceErr
						}

						return dto.IngestMotionResponse{
							RoomID:     "room-1",
							DeviceID:   req.DeviceID,
							IsOccupied: req.IsOccupied(),
						}, nil
					})
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/motion/", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantError != "" {
				body := struct {
					Error string `json:"error"`
				}{}
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
				assert.Equal(t, tt.wantError, body.Error)
			}
		})
	}
}

func TestHandler_GetMotionHistory(t *testing.T) {
	router, service := newRouter(t)

	service.EXPECT().GetHistory(gomock.Any(), gomock.Any(), "room-1").Return(dto.GetMotionLogsResponse{}, nil)
	service.EXPECT().GetHistory(gomock.Any(), gomock.Any(), "room-9").
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, _ string) (dto.GetMotionLogsResponse, error) {
			return dto.GetMotionLogsResponse{}, failure.NotFound("room not found")
		})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/motion/rooms/room-1", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/motion/rooms/room-9", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
