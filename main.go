package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"pharmachain/m/internal/api"
	"pharmachain/m/internal/config"
	"pharmachain/m/internal/database"
	"pharmachain/m/internal/logging"
	"pharmachain/m/internal/migrations"
	"pharmachain/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	logger := logging.New(cfg.App.LogLevel, cfg.App.LogFormat)

	db, err := database.Connect(cfg.DB.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	if cfg.App.Seed {
		if err := seed.Bootstrap(db, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed database")
		}
	}

	handler := api.New(db, cfg.JWT.Secret, cfg.JWT.TokenTTL(), logger)

	logger.Info().Str("port", cfg.App.Port).Msg("pharmacy chain server starting")
	if err := http.ListenAndServe(":"+cfg.App.Port, handler.Router()); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
