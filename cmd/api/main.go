package main

import (
	"context"
	"time"

	"canopy-backend/internal/app"
	"canopy-backend/internal/config"
	"canopy-backend/internal/scheduler"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config load failed")
	}

	fiberApp, db, rdb, err := app.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("App create failed")
	}

	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("Database handle unavailable")
		}
		if err := sqlDB.Ping(); err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		log.Info().Msg("Database connected")

		if cfg.SeedDemoData {
			if err := app.SeedDemoData(context.Background(), db, cfg); err != nil {
				log.Fatal().Err(err).Msg("Demo data seeding failed")
			}
		}

		stop, err := scheduler.Start(db, time.Duration(cfg.StatsIntervalSeconds)*time.Second)
		if err != nil {
			log.Fatal().Err(err).Msg("Scheduler start failed")
		}
		defer stop()
	}
	if rdb != nil {
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		log.Info().Msg("Redis connected")
	}

	log.Info().Str("port", cfg.Port).Int64("chain_id", cfg.ChainID).Msg("Canopy backend listening")
	if err := fiberApp.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
