package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"roomsense/shared/failure"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{
			name:    "bad request from error",
			err:     failure.BadRequest(errors.New("capacity must be greater than or equal to 1")),
			code:    http.StatusBadRequest,
			message: "capacity must be greater than or equal to 1",
		},
		{
			name:    "bad request from string",
			err:     failure.BadRequestFromString("end_time must be after start_time"),
			code:    http.StatusBadRequest,
			message: "end_time must be after start_time",
		},
		{
			name:    "unauthorized",
			err:     failure.Unauthorized("Missing authorization header"),
			code:    http.StatusUnauthorized,
			message: "Missing authorization header",
		},
		{
			name:    "forbidden",
			err:     failure.Forbidden("cannot book on behalf of another user"),
			code:    http.StatusForbidden,
			message: "cannot book on behalf of another user",
		},
		{
			name:    "not found",
			err:     failure.NotFound("device not registered to any room"),
			code:    http.StatusNotFound,
			message: "device not registered to any room",
		},
		{
			name:    "conflict",
			err:     failure.Conflict("room already booked for an overlapping time window"),
			code:    http.StatusConflict,
			message: "room already booked for an overlapping time window",
		},
		{
			name:    "internal",
			err:     failure.InternalError(errors.New("connection reset")),
			code:    http.StatusInternalServerError,
			message: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestNilPassthrough(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.InternalError(nil))
}

func TestGetCode(t *testing.T) {
	wrapped := fmt.Errorf("failed to create booking: %w", failure.Conflict("room already booked"))

	assert.Equal(t, http.StatusConflict, failure.GetCode(wrapped))
	assert.Equal(t, http.StatusForbidden, failure.GetCode(failure.ForbiddenError))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("pq: connection refused")))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(nil))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, failure.IsClientError(failure.BadRequestFromString("status must be one of true, false, 1 or 0")))
	assert.True(t, failure.IsClientError(fmt.Errorf("ingest: %w", failure.NotFound("device not registered to any room"))))
	assert.False(t, failure.IsClientError(errors.New("tx aborted")))
	assert.False(t, failure.IsClientError(failure.InternalError(errors.New("tx aborted"))))
}
