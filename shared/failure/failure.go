package failure

import (
	"errors"
	"net/http"
)

// Failure is an error that carries the HTTP status it should be reported
// with. Validation errors map to 400, unknown entities to 404 and
// reservation or device clashes to 409. Anything that is not a Failure is
// reported as 500.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

func (e *Failure) Error() string {
	return e.Message
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
	}
}

func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Message: msg,
	}
}

// NotFound returns a new Failure for an unknown room, booking, user or device.
func NotFound(msg string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: msg,
	}
}

// Conflict returns a new Failure for a write that clashes with existing state.
func Conflict(msg string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		}
	}

	return nil
}

// GetCode returns the status of the first Failure in err's chain.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// IsClientError reports whether err was caused by the caller's input rather
// than by the service.
func IsClientError(err error) bool {
	code := GetCode(err)

	return code >= http.StatusBadRequest && code < http.StatusInternalServerError
}
