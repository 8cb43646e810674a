package main

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/athan/internal/config"
	"github.com/Nixie-Tech-LLC/athan/internal/db"
	"github.com/Nixie-Tech-LLC/athan/internal/redis"
	"github.com/Nixie-Tech-LLC/athan/internal/timings"
)

// InitStore selects and returns the configured timings cache backend
func InitStore(ctx context.Context, cfg *config.Config) (timings.Store, func()) {
	switch cfg.CacheBackend {
	case config.BackendRedis:
		client, err := redis.NewClient(ctx, cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize redis")
		}
		log.Info().Str("address", cfg.RedisAddress).Msg("using redis timings cache")
		return redis.NewTimingsStore(client), func() { _ = client.Close() }

	case config.BackendPostgres:
		if err := db.Init(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("db init")
		}
		if err := db.RunMigrations(db.DB, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("db migrate")
		}
		log.Info().Msg("using postgres timings cache")
		return db.NewTimingsStore(db.DB), func() { _ = db.DB.Close() }

	default:
		log.Info().Msg("using in-memory timings cache")
		return timings.NewMemoryStore(), func() {}
	}
}
