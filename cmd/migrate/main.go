package main

import (
	"flag"
	"fmt"

	"github.com/Rrens/chat-to-task/internal/config"
	"github.com/Rrens/chat-to-task/internal/repository/postgres"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	sourceURL := flag.String("source", "file://migrations", "migration source URL")
	flag.Parse()

	// Load .env if present
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.Database).
		Msg("Running database migrations")

	if err := postgres.RunMigrations(cfg.Database.DSN(), *sourceURL); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	fmt.Println("Migrations applied")
}
