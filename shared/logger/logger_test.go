package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"roomsense/config"
	"roomsense/shared/constant"
	"roomsense/shared/logger"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobals(t *testing.T) {
	t.Helper()

	original := log.Logger
	level := zerolog.GlobalLevel()

	t.Cleanup(func() {
		log.Logger = original
		zerolog.SetGlobalLevel(level)
	})
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Env = constant.ServerEnvProduction
	cfg.App.Name = "roomsense"

	var buf bytes.Buffer
	l := logger.New(&buf, cfg)

	l.Warn().Str("deviceID", "ESP32_99").Msg("device not registered to any room")

	entry := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "roomsense", entry["service"])
	assert.Equal(t, "ESP32_99", entry["deviceID"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNew_DevelopmentWritesConsole(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Env = constant.ServerEnvDevelopment

	var buf bytes.Buffer
	l := logger.New(&buf, cfg)

	l.Info().Msg("Connected to MQTT broker")

	assert.Contains(t, buf.String(), "Connected to MQTT broker")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestErrorWithStack(t *testing.T) {
	restoreGlobals(t)

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	logger.ErrorWithStack(errors.New("failed to write response"))

	assert.Contains(t, buf.String(), "failed to write response")
}

func TestSetLogLevel(t *testing.T) {
	tests := []struct {
		logLevel string
		want     zerolog.Level
	}{
		{logLevel: "debug", want: zerolog.DebugLevel},
		{logLevel: "info", want: zerolog.InfoLevel},
		{logLevel: "warn", want: zerolog.WarnLevel},
		{logLevel: "error", want: zerolog.ErrorLevel},
		{logLevel: "", want: zerolog.TraceLevel},
		{logLevel: "verbose", want: zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run("level "+tt.logLevel, func(t *testing.T) {
			restoreGlobals(t)

			cfg := &config.Config{}
			cfg.Server.LogLevel = tt.logLevel

			logger.SetLogLevel(cfg)

			assert.Equal(t, tt.want, zerolog.GlobalLevel())
		})
	}
}
