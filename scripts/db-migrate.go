package main

import (
	"context"
	"os"

	"github.com/taskizy-api/config"
	"github.com/taskizy-api/database"
	"github.com/taskizy-api/logger"
	"github.com/taskizy-api/services"
)

// Applies the schema and removes memberships left without a room.
func main() {
	envErr := config.LoadEnv()
	cfg := config.Load()
	log := logger.New(cfg.Env)
	if envErr != nil {
		log.Warn().Err(envErr).Msg(".env file not loaded, using system environment variables")
	}

	log.Info().Str("driver", cfg.DBDriver).Msg("starting database migration")

	db, err := database.Initialize(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(1)
	}
	log.Info().Msg("schema is up to date")

	coordinator := services.NewMembershipCoordinator(db, log)
	purged, err := coordinator.PurgeOrphanedMemberships(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("purging orphaned memberships failed")
		os.Exit(1)
	}

	log.Info().Int64("purged", purged).Msg("database migration completed")
}
