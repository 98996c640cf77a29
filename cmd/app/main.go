package main

import (
	"booknotify/config"
	"booknotify/di"
	"booknotify/helper"
	"booknotify/shared/logger"
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	recoverTimeout = 30 * time.Second
	closeTimeout   = 10 * time.Second
)

func main() {
	logger.InitLogger()

	cfg := config.Get()

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	app, err := di.InitializeApplication()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	if cfg.Reminder.RecoverOnStartup {
		ctx, cancel := context.WithTimeout(context.Background(), recoverTimeout)

		if _, err := app.Scheduler.Recover(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to recover pending reminders")
		}

		cancel()
	}

	app.HTTP.Serve()

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if err := app.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to release resources cleanly")
	}

	log.Info().Msg("Service stopped")
}
