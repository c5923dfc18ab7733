package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"pool-stats-lab/internal/config"
	"pool-stats-lab/internal/httpclient"
	"pool-stats-lab/internal/ingestion"
	"pool-stats-lab/internal/orchestrator"
	"pool-stats-lab/internal/pricefeed"
	"pool-stats-lab/internal/storage"
	"pool-stats-lab/internal/storage/clickhouse"
	"pool-stats-lab/internal/storage/memory"
	"pool-stats-lab/internal/storage/postgres"
	"pool-stats-lab/internal/storage/redis"
)

// app bundles the components built from a Config.
type app struct {
	runner  *orchestrator.Runner
	source  ingestion.RowSource
	closers []func()
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp wires source → price enricher → row cache → orchestrator.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	httpOpts := []httpclient.ClientOption{
		httpclient.WithTimeout(cfg.HTTPTimeout),
		httpclient.WithMaxRetries(cfg.HTTPRetries),
	}

	source, err := buildSource(ctx, cfg, a, httpOpts)
	if err != nil {
		a.Close()
		return nil, err
	}

	var tickers orchestrator.TickerFetcher
	if cfg.PriceEnabled {
		feed := pricefeed.NewClient(cfg.PriceBaseURL, httpOpts...)
		tickers = feed
		source = ingestion.NewPriceEnricher(ingestion.PriceEnricherOptions{
			Source:  source,
			Feed:    feed,
			SymbolA: cfg.PriceSymbolA,
			SymbolB: cfg.PriceSymbolB,
			Columns: cfg.Columns,
			MaxAge:  cfg.PriceMaxAge,
			Logger:  log.Logger,
		})
	}

	cache, err := buildCache(ctx, cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}
	if cache != nil {
		source = ingestion.NewCachedSource(ingestion.CachedSourceOptions{
			Source: source,
			Cache:  cache,
			TTL:    cfg.CacheTTL,
			Params: cacheParams(cfg),
			Logger: log.Logger,
		})
	}

	a.source = source
	a.runner = orchestrator.New(orchestrator.Options{
		Source:        source,
		Columns:       cfg.Columns,
		Tickers:       tickers,
		Symbols:       cfg.Symbols(),
		BucketWidth:   cfg.BucketWidth,
		Window:        cfg.Window,
		EpochGrouping: cfg.EpochGrouping,
		Logger:        log.Logger,
	})
	return a, nil
}

func buildSource(ctx context.Context, cfg *config.Config, a *app, httpOpts []httpclient.ClientOption) (ingestion.RowSource, error) {
	switch cfg.Source {
	case config.SourceClickhouse:
		conn, err := clickhouse.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return nil, fmt.Errorf("connect clickhouse: %w", err)
		}
		a.closers = append(a.closers, func() { conn.Close() })
		return clickhouse.NewPoolStatsSource(conn, cfg.ClickhouseTable)
	default:
		return ingestion.NewCSVSource(cfg.CSVURL, httpOpts...)
	}
}

func buildCache(ctx context.Context, cfg *config.Config, a *app) (storage.Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheNone:
		return nil, nil
	case config.CacheRedis:
		c, err := redis.NewCache(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { c.Close() })
		return c, nil
	case config.CachePostgres:
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		return postgres.NewRowCache(pool), nil
	default:
		return memory.NewCache(), nil
	}
}

// cacheParams are the settings that change the fetched rows.
func cacheParams(cfg *config.Config) []string {
	params := []string{
		cfg.Columns.Timestamp,
		cfg.Columns.PoolHashrate,
		cfg.Columns.NetworkHashrate,
		cfg.Columns.BlocksFound,
		cfg.Columns.Epoch,
		cfg.Columns.PriceA,
		cfg.Columns.PriceB,
	}
	if cfg.PriceEnabled {
		params = append(params, cfg.PriceSymbolA, cfg.PriceSymbolB)
	}
	return params
}
