package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Transactor runs a unit of work inside a single write transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type transactorImpl struct {
	db *Connection
}

func NewTransactor(db *Connection) Transactor {
	return &transactorImpl{
		db: db,
	}
}

// WithTransaction commits when fn returns nil and rolls back otherwise.
// A panic inside fn rolls back and is re-raised. Errors returned by fn are
// passed through unwrapped so callers can still match failures.
func (t *transactorImpl) WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := t.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to begin transaction")

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		log.Error().Err(err).Msg("failed to commit transaction")

		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
