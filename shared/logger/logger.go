package logger

import (
	"io"
	"os"
	"roomsense/config"
	"roomsense/shared/constant"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger writes JSON lines in production and a console format
// elsewhere. Every entry carries the service name.
func InitLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	log.Logger = New(os.Stdout, cfg)
	log.Trace().Msg("Zerolog initialized.")
}

func New(out io.Writer, cfg *config.Config) zerolog.Logger {
	writer := out
	if cfg.Server.Env != constant.ServerEnvProduction {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(writer).With().Timestamp().Str("service", cfg.App.Name).Logger()
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

func SetLogLevel(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil || cfg.Server.LogLevel == constant.Empty {
		level = zerolog.TraceLevel
		log.Trace().Str("loglevel", level.String()).Msg("Environment has no log level set up, using default.")
	} else {
		log.Trace().Str("loglevel", level.String()).Msg("Desired log level detected.")
	}

	zerolog.SetGlobalLevel(level)
}
