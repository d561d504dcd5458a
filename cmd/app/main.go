package main

import (
	"roomsense/config"
	"roomsense/di"
	"roomsense/helper"
	"roomsense/shared/logger"
	"roomsense/shared/timezone"
	_ "time/tzdata"

	"github.com/rs/zerolog/log"
)

// @title Roomsense API
// @version 1.0
// @description Room occupancy tracking and booking service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	cfg := config.Get()

	logger.InitLogger(cfg)

	logger.SetLogLevel(cfg)

	timezone.Init(cfg.App.Timezone)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	app := di.InitializeService()

	if cfg.MQTT.Enable {
		if err := app.Subscriber.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start MQTT subscriber")
		}

		app.HTTP.OnShutdown(app.Subscriber.Stop)
	} else {
		log.Info().Msg("MQTT ingest disabled, accepting motion readings over HTTP only")
	}

	app.HTTP.OnShutdown(func() {
		if err := app.Kafka.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Kafka client")
		}
	})

	app.HTTP.Serve()
}
