package response_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"roomsense/shared/constant"
	"roomsense/shared/failure"
	"roomsense/transport/http/response"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "conflict keeps its message",
			err:      failure.Conflict("room already booked for an overlapping time window"),
			wantCode: http.StatusConflict,
			wantBody: `{"error":"room already booked for an overlapping time window"}`,
		},
		{
			name:     "not found keeps its message",
			err:      failure.NotFound("room not found"),
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"room not found"}`,
		},
		{
			name:     "internal error is masked",
			err:      failure.InternalError(errors.New("pq: relation \"rooms\" does not exist")),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"` + constant.ResponseErrorInternal + `"}`,
		},
		{
			name:     "unclassified error is masked",
			err:      errors.New("dial tcp 10.0.0.3:6379: connection refused"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"` + constant.ResponseErrorInternal + `"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()

			response.WithError(recorder, tt.err)

			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.Equal(t, constant.ContentTypeJSON, recorder.Header().Get(constant.RequestHeaderContentType))
			assert.JSONEq(t, tt.wantBody, recorder.Body.String())
		})
	}
}

func TestWithJSON(t *testing.T) {
	recorder := httptest.NewRecorder()

	response.WithJSON(recorder, http.StatusCreated, map[string]string{"id": "room-1"})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.JSONEq(t, `{"data":{"id":"room-1"}}`, recorder.Body.String())
}

func TestWithRequestLimitExceeded(t *testing.T) {
	recorder := httptest.NewRecorder()

	response.WithRequestLimitExceeded(recorder)

	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.JSONEq(t, `{"message":"REQUEST LIMIT EXCEEDED"}`, recorder.Body.String())
}
