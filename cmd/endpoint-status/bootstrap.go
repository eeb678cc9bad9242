package main

import (
	"context"
	"fmt"

	"endpoint-status/config"
	"endpoint-status/internals/app"
	"endpoint-status/pkg/db"
	"endpoint-status/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type runtime struct {
	cfg       *config.Config
	log       *zerolog.Logger
	pool      *pgxpool.Pool
	container *app.Container
}

func loadConfig(cmd *cobra.Command) (*config.Config, *zerolog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.Init(cfg)
	return cfg, log, nil
}

// bootstrap loads config and wires every dependency.
func bootstrap(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	dbPool, err := db.ConnectToDB(ctx, &cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize db pool: %w", err)
	}

	container, err := app.NewContainer(ctx, dbPool, cfg, log)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	log.Info().Msg("dependencies initialized")

	return &runtime{cfg: cfg, log: log, pool: dbPool, container: container}, nil
}

func (rt *runtime) close(ctx context.Context) {
	if err := rt.container.Shutdown(ctx); err != nil {
		rt.log.Error().Err(err).Msg("dependencies shutdown failed")
	}
	rt.pool.Close()
}
