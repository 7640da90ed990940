package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/config"
	"github.com/mcdev12/touchline/go/internal/dbconfig"
	"github.com/mcdev12/touchline/go/internal/outbox"
	"github.com/mcdev12/touchline/go/internal/season"
	"github.com/mcdev12/touchline/go/internal/store"
)

func setupDatabase(ctx context.Context, dbCfg dbconfig.Config) (*pgxpool.Pool, error) {
	pool, err := dbCfg.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info().
		Str("host", dbCfg.Host).
		Int("port", dbCfg.Port).
		Str("database", dbCfg.Database).
		Msg("connected to database")
	return pool, nil
}

// openStore returns the configured repository and a func releasing it
func openStore(ctx context.Context, cfg config.Config) (season.Repository, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := setupDatabase(ctx, dbconfig.NewConfigFromEnv())
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPgStore(pool, outbox.DefaultChannel)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil
	default:
		fs, err := store.NewFileStore(cfg.SaveDir)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dir", cfg.SaveDir).Msg("using file store")
		return fs, func() {}, nil
	}
}
