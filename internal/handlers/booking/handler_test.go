package booking_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"roomsense/infras/otel/mocks"
	bookingMocks "roomsense/internal/domains/booking/mocks"
	"roomsense/internal/domains/booking/model/dto"
	"roomsense/internal/handlers/booking"
	"roomsense/shared/constant"
	gDto "roomsense/shared/dto"
	"roomsense/shared/failure"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T, userID string) (http.Handler, *bookingMocks.MockBookingService) {
	t.Helper()

	service := bookingMocks.NewMockBookingService(gomock.NewController(t))
	handler := booking.New(service, mocks.NewOtel())

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID == constant.Empty {
				next.ServeHTTP(w, r)

				return
			}

			ctx := context.WithValue(r.Context(), constant.ContextKeyUserID, userID)
			ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleUser)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	handler.Router(router)

	return router, service
}

func errorMessage(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	body := struct {
		Error string `json:"error"`
	}{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	return body.Error
}

func TestHandler_CreateBooking(t *testing.T) {
	validBody := `{"room_id":"room-1","start_time":"2024-05-01T09:00:00Z","end_time":"2024-05-01T10:00:00Z"}`

	tests := []struct {
		name       string
		body       string
		serviceErr error
		callsSvc   bool
		wantStatus int
		wantError  string
	}{
		{
			name:       "created",
			body:       validBody,
			callsSvc:   true,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing room",
			body:       `{"start_time":"2024-05-01T09:00:00Z","end_time":"2024-05-01T10:00:00Z"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "room_id is required",
		},
		{
			name:       "malformed timestamp",
			body:       `{"room_id":"room-1","start_time":"tomorrow","end_time":"2024-05-01T10:00:00Z"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "start_time must be an RFC 3339 timestamp",
		},
		{
			name:       "overlap",
			body:       validBody,
			callsSvc:   true,
			serviceErr: failure.Conflict("room already booked for an overlapping time window"),
			wantStatus: http.StatusConflict,
			wantError:  "room already booked for an overlapping time window",
		},
		{
			name:       "booking for someone else",
			body:       validBody,
			callsSvc:   true,
			serviceErr: failure.ForbiddenError,
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service := newRouter(t, "user-1")

			if tt.callsSvc {
				service.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error) {
						assert.Equal(t, "room-1", req.RoomID)

						if tt.serviceErr != nil {
							return dto.BookingResponse{}, tt.serviceErr
						}

						return dto.BookingResponse{ID: "booking-1", StartTime: req.StartTime, EndTime: req.EndTime}, nil
					})
			}

			request := httptest.NewRequest(http.MethodPost, "/bookings/", strings.NewReader(tt.body))
			recorder := httptest.NewRecorder()

			router.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantError != constant.Empty {
				assert.Equal(t, tt.wantError, errorMessage(t, recorder))
			}
		})
	}
}

func TestHandler_GetMyBookings(t *testing.T) {
	router, service := newRouter(t, "user-1")

	service.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error) {
			assert.Equal(t, "bookings.start_time", req.SortBy)
			require.Len(t, filter.Filters, 1)

			userFilter, ok := filter.Filters[0].(gDto.Filter)
			require.True(t, ok)
			assert.Equal(t, "user-1", userFilter.Value)

			return dto.GetBookingsResponse{}, nil
		})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/bookings/mine", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHandler_GetMyBookingsWithoutUser(t *testing.T) {
	router, _ := newRouter(t, constant.Empty)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/bookings/mine", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHandler_GetBookingByID(t *testing.T) {
	router, service := newRouter(t, "user-2")

	service.EXPECT().Get(gomock.Any(), "booking-1").
		Return(dto.BookingResponse{}, failure.Forbidden("bookings can only be viewed by their owner or an admin"))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/bookings/booking-1", nil))

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Equal(t, "bookings can only be viewed by their owner or an admin", errorMessage(t, recorder))
}

func TestHandler_RescheduleBooking(t *testing.T) {
	router, service := newRouter(t, "user-1")

	service.EXPECT().Reschedule(gomock.Any(), gomock.Any(), "booking-1").
		Return(dto.BookingResponse{}, failure.Conflict("room already booked for an overlapping time window"))

	body := `{"start_time":"2024-05-01T09:30:00Z","end_time":"2024-05-01T10:30:00Z"}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPatch, "/bookings/booking-1", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestHandler_CancelBooking(t *testing.T) {
	router, service := newRouter(t, "user-1")

	service.EXPECT().Cancel(gomock.Any(), "booking-1").Return(nil)
	service.EXPECT().Cancel(gomock.Any(), "missing").Return(failure.NotFound("booking not found"))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/bookings/booking-1", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/bookings/missing", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHandler_GetBookingsWithinWindow(t *testing.T) {
	router, service := newRouter(t, "admin-1")

	service.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error) {
			where, args := filter.GetWhereClause()

			assert.Equal(t, "(bookings.room_id = :room_id AND bookings.end_time > :from AND bookings.start_time < :to)", where)
			assert.Len(t, args, 3)

			return dto.GetBookingsResponse{}, nil
		})

	target := "/bookings/?room_id=room-1&from=2024-05-01T00:00:00Z&to=2024-05-02T00:00:00Z"

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHandler_GetBookingsInvalidWindow(t *testing.T) {
	router, _ := newRouter(t, "admin-1")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/bookings/mine?to=friday", nil))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "to must be an RFC 3339 timestamp", errorMessage(t, recorder))
}
