package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config is populated from the environment, optionally seeded by a .env file
// in the working directory.
type Config struct {
	Server   Server   `envconfig:"SERVER"`
	App      App      `envconfig:"APP"`
	Cache    Cache    `envconfig:"CACHE"`
	JWT      JWT      `envconfig:"JWT"`
	DB       DB       `envconfig:"DB"`
	Kafka    Kafka    `envconfig:"KAFKA"`
	MQTT     MQTT     `envconfig:"MQTT"`
	External External `envconfig:"EXTERNAL"`
}

type Server struct {
	Env      string   `envconfig:"ENV"       default:"development"`
	LogLevel string   `envconfig:"LOG_LEVEL" default:"info"`
	Host     string   `envconfig:"HOST"`
	Port     string   `envconfig:"PORT"      default:"8080"`
	Shutdown Shutdown `envconfig:"SHUTDOWN"`
}

// Shutdown splits a graceful stop into a grace period, during which new
// requests are refused, and a cleanup period for the registered hooks.
type Shutdown struct {
	GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"   default:"5"`
	CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS" default:"5"`
}

type App struct {
	Name        string      `envconfig:"APP_NAME" default:"roomsense"`
	Timezone    string      `envconfig:"TIMEZONE" default:"UTC"`
	APIKey      string      `envconfig:"API_KEY"`
	CORS        CORS        `envconfig:"CORS"`
	RateLimiter RateLimiter `envconfig:"RATE_LIMITER"`
}

type CORS struct {
	Enable           bool     `envconfig:"ENABLE"`
	AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
	AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
	AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
	AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
	MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
}

type RateLimiter struct {
	Enable        bool `envconfig:"ENABLE"`
	MaxRequests   int  `envconfig:"MAX_REQUESTS"   default:"60"`
	WindowSeconds int  `envconfig:"WINDOW_SECONDS" default:"60"`
}

type Cache struct {
	Redis struct {
		Primary Redis `envconfig:"PRIMARY"`
	} `envconfig:"REDIS"`
	// TTL is in seconds. Zero disables the read cache.
	TTL int `envconfig:"TTL" default:"300"`
}

type Redis struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB"`
}

type JWT struct {
	AccessSecret string `envconfig:"ACCESS_SECRET"`
	Issuer       string `envconfig:"ISSUER"`
}

type DB struct {
	Postgres Postgres `envconfig:"POSTGRES"`
}

type Postgres struct {
	Prefix         string `envconfig:"PREFIX"`
	MaxRetry       int    `envconfig:"MAX_RETRY"       default:"3"`
	RetryWaitTime  int    `envconfig:"RETRY_WAIT_TIME" default:"2"`
	MigrationTable string `envconfig:"MIGRATION_TABLE"`
	AutoMigrate    bool   `envconfig:"AUTO_MIGRATE"`
	// Read falls back to Write when its host is empty.
	Read  PostgresEndpoint `envconfig:"READ"`
	Write PostgresEndpoint `envconfig:"WRITE"`
}

type PostgresEndpoint struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"     default:"5432"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	Timezone string `envconfig:"TIMEZONE"`
	SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
}

type Kafka struct {
	Enable  bool     `envconfig:"ENABLE"`
	Brokers []string `envconfig:"BROKERS"`
	SASL    struct {
		Username string `envconfig:"USERNAME"`
		Password string `envconfig:"PASSWORD"`
	} `envconfig:"SASL"`
	Topics struct {
		Booking   string `envconfig:"BOOKING"   default:"booking.events"`
		Occupancy string `envconfig:"OCCUPANCY" default:"occupancy.events"`
	} `envconfig:"TOPICS"`
}

type MQTT struct {
	Enable         bool   `envconfig:"ENABLE"`
	Broker         string `envconfig:"BROKER"`
	ClientID       string `envconfig:"CLIENT_ID"       default:"roomsense"`
	Username       string `envconfig:"USERNAME"`
	Password       string `envconfig:"PASSWORD"`
	Topic          string `envconfig:"TOPIC"           default:"roomsense/+/motion"`
	QoS            byte   `envconfig:"QOS"             default:"1"`
	TimeoutSeconds int    `envconfig:"TIMEOUT_SECONDS" default:"10"`
}

type External struct {
	Otel struct {
		Endpoint string `envconfig:"ENDPOINT"`
	} `envconfig:"OTEL"`
}

var (
	conf    *Config
	once    sync.Once
	loadErr error
)

// Load reads the optional dotenv file at path into the process environment
// and decodes the environment into a fresh Config. Variables already set in
// the environment win over the file.
func Load(path string) (*Config, error) {
	err := godotenv.Load(path)

	switch {
	case err == nil:
		log.Info().Str("file", path).Msg("Loaded environment file")
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().Str("file", path).Msg("No environment file, using process environment")
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	return cfg, nil
}

// Init loads the process-wide configuration once.
func Init() error {
	once.Do(func() {
		conf, loadErr = Load(".env")
		if loadErr == nil {
			log.Info().Str("env", conf.Server.Env).Msg("Service configuration initialized")
		}
	})

	return loadErr
}

func Get() *Config {
	if err := Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}

	return conf
}
