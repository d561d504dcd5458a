package main

import (
	"os"
	"roomsense/config"
	"roomsense/helper"
	"roomsense/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()
	logger.InitLogger(cfg)

	if len(os.Args) < 2 {
		log.Fatal().Msg("Usage: migrate <up|down|step-up|drop|version>")
	}

	action, err := helper.ParseAction(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid migration action")
	}

	if err = helper.Run(cfg, action); err != nil {
		log.Fatal().Err(err).Str("action", string(action)).Msg("Migration failed")
	}
}
