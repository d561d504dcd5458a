package repository

import (
	"errors"

	"github.com/lib/pq"
)

// IsConstraintViolation reports whether err carries the given postgres error code.
func IsConstraintViolation(err error, code string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	return string(pqErr.Code) == code
}
