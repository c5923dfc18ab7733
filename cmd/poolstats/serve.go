package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pool-stats-lab/internal/api"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve refresh snapshots as JSON with /metrics and /health.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		opts := api.Options{
			Runner: a.runner,
			MaxAge: cfg.CacheTTL,
			Logger: log.Logger,
		}
		if inv, ok := a.source.(api.Invalidator); ok {
			opts.Invalidator = inv
		}
		srv := api.New(opts)
		httpServer := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Warm the first snapshot so the initial request is served immediately.
		if _, err := a.runner.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("initial refresh failed")
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", cfg.ListenAddr).Str("source", a.source.Name()).Msg("http server listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
		case err, ok := <-errCh:
			if ok {
				return err
			}
		}

		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info().Msg("shutdown complete")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("listen-addr", ":8080", "HTTP listen address")
	if err := viper.BindPFlag("listen-addr", serveCmd.Flags().Lookup("listen-addr")); err != nil {
		log.Fatal().Err(err).Msg("error binding serve flags")
	}
}
