package postgres

//nolint:revive
import (
	"net"
	"net/url"
	"roomsense/config"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 25
	postgresConnMaxLifetime   = 30 * time.Minute
)

// Connection splits reads from writes. Single-node deployments leave the
// read host empty and both handles share one pool.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

type Endpoint struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	Timezone string
	SSLMode  string
}

func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres

	write := Endpoint(pg.Write)
	write.Name = pg.Prefix + write.Name

	conn := &Connection{Write: Connect("write", write, pg.MaxRetry, pg.RetryWaitTime)}

	if pg.Read.Host == "" {
		conn.Read = conn.Write

		return conn
	}

	read := Endpoint(pg.Read)
	read.Name = pg.Prefix + read.Name
	conn.Read = Connect("read", read, pg.MaxRetry, pg.RetryWaitTime)

	return conn
}

// DSN renders the endpoint as a lib/pq URL. A configured time zone is passed
// through as a session parameter.
func (e Endpoint) DSN() string {
	query := url.Values{}
	query.Set("sslmode", e.SSLMode)

	if e.Timezone != "" {
		query.Set("timezone", e.Timezone)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.Username, e.Password),
		Host:     net.JoinHostPort(e.Host, e.Port),
		Path:     "/" + e.Name,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

// Connect dials until it succeeds or runs out of attempts, then exits the
// process. At least one attempt is always made.
func Connect(name string, endpoint Endpoint, maxRetry, waitSeconds int) *sqlx.DB {
	attempts := max(maxRetry, 1)

	logger := log.With().
		Str("name", name).
		Str("host", endpoint.Host).
		Str("port", endpoint.Port).
		Str("dbName", endpoint.Name).
		Logger()

	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := sqlx.Connect("postgres", endpoint.DSN())
		if err == nil {
			db.SetMaxIdleConns(postgresMaxIdleConnection)
			db.SetMaxOpenConns(postgresMaxOpenConnection)
			db.SetConnMaxLifetime(postgresConnMaxLifetime)

			logger.Info().Msg("Connected to database")

			return db
		}

		logger.Error().Err(err).Int("attempt", attempt).Msg("Failed connecting to database, retrying")

		if attempt < attempts {
			time.Sleep(time.Duration(waitSeconds) * time.Second)
		}
	}

	logger.Fatal().Int("maxRetry", attempts).Msg("Could not connect to database")

	return nil
}
