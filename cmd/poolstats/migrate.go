package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"pool-stats-lab/internal/storage/migrations"
	"pool-stats-lab/internal/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schemas for the configured backends.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		applied := 0

		if cfg.PostgresDSN != "" {
			pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
			if err != nil {
				return err
			}
			defer pool.Close()
			versions, err := migrations.RunPostgresMigrations(ctx, pool)
			if err != nil {
				return fmt.Errorf("postgres migrations: %w", err)
			}
			log.Info().Strs("applied", versions).Msg("postgres migrations applied")
			applied++
		}

		if cfg.ClickhouseDSN != "" {
			conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
			if err != nil {
				return fmt.Errorf("clickhouse migrations: %w", err)
			}
			defer conn.Close()
			log.Info().Msg("clickhouse migrations applied")
			applied++
		}

		if applied == 0 {
			return fmt.Errorf("nothing to migrate: set postgres-dsn or clickhouse-dsn")
		}
		return nil
	},
}
