package main

import (
	"github.com/joho/godotenv"

	"github.com/you/voicegate/internal/app"
	"github.com/you/voicegate/internal/config"
	"github.com/you/voicegate/internal/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger := log.New("development")
		logger.Fatal().Err(err).Msg("config")
	}

	logger := log.New(cfg.Environment)
	if err := app.Run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("app")
	}
}
