// Package helper applies the SQL schema under migrations/postgres, which
// carries the booking overlap exclusion constraint.
package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"roomsense/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const migrationsSource = "file://migrations/postgres"

type Action string

const (
	ActionUp      Action = "up"
	ActionDown    Action = "down"
	ActionStepUp  Action = "step-up"
	ActionDrop    Action = "drop"
	ActionVersion Action = "version"
)

var ErrUnknownAction = errors.New("unknown migration action")

func ParseAction(value string) (Action, error) {
	switch action := Action(value); action {
	case ActionUp, ActionDown, ActionStepUp, ActionDrop, ActionVersion:
		return action, nil
	default:
		return "", fmt.Errorf("%w %q, use up, down, step-up, drop or version", ErrUnknownAction, value)
	}
}

// DatabaseURL builds the write-side connection URL golang-migrate expects.
func DatabaseURL(cfg *config.Config) string {
	pg := cfg.DB.Postgres

	query := url.Values{}
	query.Set("sslmode", pg.Write.SSLMode)

	if pg.MigrationTable != "" {
		query.Set("x-migrations-table", pg.MigrationTable)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(pg.Write.Username, pg.Write.Password),
		Host:     net.JoinHostPort(pg.Write.Host, pg.Write.Port),
		Path:     "/" + pg.Prefix + pg.Write.Name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func Run(cfg *config.Config, action Action) error {
	mig, err := migrate.New(migrationsSource, DatabaseURL(cfg))
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	defer func() {
		if srcErr, dbErr := mig.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Failed to close migrator")
		}
	}()

	switch action {
	case ActionUp:
		err = mig.Up()
	case ActionDown:
		err = mig.Steps(-1)
	case ActionStepUp:
		err = mig.Steps(1)
	case ActionDrop:
		err = mig.Down()
	case ActionVersion:
		return logVersion(mig)
	default:
		return fmt.Errorf("%w %q", ErrUnknownAction, action)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Str("action", string(action)).Msg("Schema already up to date")

		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to run %s migration: %w", action, err)
	}

	return logVersion(mig)
}

func logVersion(mig *migrate.Migrate) error {
	version, dirty, err := mig.Version()

	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Msg("Schema has no migrations applied")

		return nil
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Schema version")

	return nil
}

func Up(cfg *config.Config) error {
	return Run(cfg, ActionUp)
}
