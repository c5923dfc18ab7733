package ingestion

import (
	"context"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"pool-stats-lab/internal/cachekey"
	"pool-stats-lab/internal/domain"
	"pool-stats-lab/internal/observability"
	"pool-stats-lab/internal/storage"
)

// CachedSource serves rows from a cache and falls back to the wrapped source.
// Cache failures are logged and never fail a fetch.
type CachedSource struct {
	source RowSource
	cache  storage.Cache
	ttl    time.Duration
	key    string
	logger zerolog.Logger
}

// CachedSourceOptions contains configuration for creating a CachedSource.
type CachedSourceOptions struct {
	Source RowSource
	Cache  storage.Cache
	TTL    time.Duration
	Params []string // extra cache key inputs, e.g. column overrides
	Logger zerolog.Logger
}

// NewCachedSource creates a CachedSource.
func NewCachedSource(opts CachedSourceOptions) *CachedSource {
	return &CachedSource{
		source: opts.Source,
		cache:  opts.Cache,
		ttl:    opts.TTL,
		key:    cachekey.ForSource(opts.Source.Name(), opts.Params...),
		logger: opts.Logger.With().Str("component", "row_cache").Str("source", opts.Source.Name()).Logger(),
	}
}

// Name returns the wrapped source name.
func (s *CachedSource) Name() string {
	return s.source.Name()
}

// Key returns the cache key used for the wrapped source.
func (s *CachedSource) Key() string {
	return s.key
}

// FetchRows returns cached rows when present, otherwise fetches and caches them.
func (s *CachedSource) FetchRows(ctx context.Context) ([]domain.RawRow, error) {
	if rows, ok := s.lookup(ctx); ok {
		return rows, nil
	}

	rows, err := s.source.FetchRows(ctx)
	if err != nil {
		return nil, err
	}

	s.store(ctx, rows)
	return rows, nil
}

// Invalidate drops the cached rows.
func (s *CachedSource) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, s.key)
}

func (s *CachedSource) lookup(ctx context.Context) ([]domain.RawRow, bool) {
	payload, err := s.cache.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		observability.RecordCacheLookup(observability.CacheMiss)
		return nil, false
	}
	if err != nil {
		observability.RecordCacheLookup(observability.CacheError)
		s.logger.Warn().Err(err).Msg("cache get failed")
		return nil, false
	}

	var rows []domain.RawRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		observability.RecordCacheLookup(observability.CacheError)
		s.logger.Warn().Err(err).Msg("discarding undecodable cache entry")
		return nil, false
	}

	observability.RecordCacheLookup(observability.CacheHit)
	s.logger.Debug().Int("rows", len(rows)).Msg("cache hit")
	if rows == nil {
		rows = []domain.RawRow{}
	}
	return rows, true
}

func (s *CachedSource) store(ctx context.Context, rows []domain.RawRow) {
	payload, err := json.Marshal(rows)
	if err != nil {
		s.logger.Warn().Err(err).Msg("encode rows for cache")
		return
	}
	if err := s.cache.Set(ctx, s.key, payload, s.ttl); err != nil {
		s.logger.Warn().Err(err).Msg("cache set failed")
	}
}
