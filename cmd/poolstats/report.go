package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"pool-stats-lab/internal/export"
	"pool-stats-lab/internal/orchestrator"
	"pool-stats-lab/internal/reporting"
)

// errReported marks a failed cycle whose error is already part of the output.
var errReported = errors.New("refresh cycle failed")

var (
	reportFormat  string
	reportParquet string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run one refresh cycle and print the result.",
	Long: `Fetch the pool stats, reduce the series and print headline statistics.

Formats:
  table     summary cards (default)
  markdown  full report with per-epoch blocks and block events
  csv       the reduced series`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := a.runner.Refresh(ctx)
		if err != nil && snap == nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch reportFormat {
		case "markdown":
			fmt.Fprint(out, reporting.RenderMarkdown(snap))
		case "csv":
			fmt.Fprint(out, reporting.RenderCSV(snap.Reduced))
		case "table":
			if werr := reporting.WriteCards(out, snap, !color.NoColor); werr != nil {
				return werr
			}
		default:
			return fmt.Errorf("unknown format %q", reportFormat)
		}

		if reportParquet != "" && snap.Status == orchestrator.StatusOK {
			if perr := export.WriteReducedParquet(snap.Reduced.Points, reportParquet); perr != nil {
				return fmt.Errorf("write parquet: %w", perr)
			}
			log.Info().Str("path", reportParquet).Int("points", snap.Reduced.Len()).Msg("parquet written")
		}

		if err != nil {
			return errReported
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "table", "Output format: table, markdown or csv")
	reportCmd.Flags().StringVar(&reportParquet, "parquet", "", "Also write the reduced series to this Parquet file")
}
