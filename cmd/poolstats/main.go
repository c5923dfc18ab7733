// Package main is the poolstats command: it fetches mining pool telemetry,
// reduces it for plotting and reports headline statistics.
//
// Commands:
//
//	poolstats report   one refresh cycle printed as cards, Markdown or CSV
//	poolstats serve    JSON snapshot API with /metrics and /health
//	poolstats migrate  apply embedded Postgres and ClickHouse schemas
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, errReported) {
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("poolstats failed")
	}
}
