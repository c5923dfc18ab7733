package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pool-stats-lab/internal/config"
)

// cfg holds the validated configuration once PersistentPreRunE has run.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "poolstats",
	Short:         "Mining pool telemetry: downsampled series and headline statistics.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.LoadDotEnv(viper.GetString("env-file")); err != nil {
			return err
		}
		loaded, err := config.Load(viper.GetViper(), viper.GetString("config"))
		if err != nil {
			return err
		}
		cfg = loaded
		return setupLogger(cfg.LogLevel, cfg.LogFormat)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	config.SetDefaults(viper.GetViper())

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default .poolstats.yaml)")
	flags.String("env-file", ".env", "Path to .env file, ignored if missing")
	flags.String("csv-url", "", "URL of the pool stats CSV")
	flags.String("source", config.SourceHTTP, "Row source: http or clickhouse")
	flags.String("clickhouse-dsn", "", "ClickHouse DSN for the clickhouse source")
	flags.String("clickhouse-table", "", "ClickHouse table holding pool stats")
	flags.String("cache-backend", config.CacheMemory, "Row cache: memory, redis, postgres or none")
	flags.Duration("cache-ttl", 5*time.Minute, "Row cache TTL")
	flags.String("redis-addr", "", "Redis address")
	flags.String("postgres-dsn", "", "PostgreSQL DSN")
	flags.Duration("bucket-width", 5*time.Minute, "Downsampling bucket width")
	flags.Duration("window", 6*time.Hour, "Lookback window for windowed statistics")
	flags.Bool("epoch-grouping", false, "Report blocks found per epoch")
	flags.Bool("price-enabled", true, "Fetch exchange tickers and fill missing prices")
	flags.String("price-symbol-a", "", "First ticker symbol")
	flags.String("price-symbol-b", "", "Second ticker symbol")
	flags.Duration("http-timeout", 30*time.Second, "HTTP client timeout")
	flags.String("log-level", "info", "Log level: trace, debug, info, warn or error")
	flags.String("log-format", "console", "Log format: console or json")

	if err := viper.BindPFlags(flags); err != nil {
		log.Fatal().Err(err).Msg("error binding root flags")
	}
}

// setupLogger configures the global zerolog logger.
func setupLogger(level, format string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return nil
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	return nil
}
