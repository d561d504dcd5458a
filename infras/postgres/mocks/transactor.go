package mocks

import (
	"context"
	"roomsense/infras/postgres"
	"sync"

	"github.com/jmoiron/sqlx"
)

type transactorImpl struct {
	mu sync.Mutex
}

// WithTransaction implements postgres.Transactor.
// Units of work run one at a time with a nil tx, standing in for a row lock.
func (t *transactorImpl) WithTransaction(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fn(nil)
}

func NewTransactor() postgres.Transactor {
	return &transactorImpl{}
}
