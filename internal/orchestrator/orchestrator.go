// Package orchestrator runs refresh cycles.
// It coordinates: fetch → normalization → downsampling → metrics
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pool-stats-lab/internal/domain"
	"pool-stats-lab/internal/downsampling"
	"pool-stats-lab/internal/ingestion"
	"pool-stats-lab/internal/metrics"
	"pool-stats-lab/internal/normalization"
	"pool-stats-lab/internal/observability"
)

// Status is the outcome of a refresh cycle.
type Status string

const (
	StatusOK        Status = "ok"
	StatusNoData    Status = "no_data"
	StatusMalformed Status = "malformed"
	StatusFailed    Status = "failed"
)

// Snapshot is everything one refresh cycle produced.
type Snapshot struct {
	CycleID     uuid.UUID
	GeneratedAt time.Time
	Status      Status
	Source      string

	SampleCount int
	Reduced     domain.ReducedSeries
	Summary     domain.Summary
	Overlays    domain.Overlays
	Tickers     []domain.Ticker

	// Err is set for StatusMalformed and StatusFailed.
	Err error
}

// TickerFetcher provides exchange tickers.
type TickerFetcher interface {
	Ticker(ctx context.Context, symbol string) (*domain.Ticker, error)
}

// Runner executes refresh cycles against one row source.
type Runner struct {
	source     ingestion.RowSource
	normalizer *normalization.Normalizer
	tickers    TickerFetcher
	symbols    []string

	bucketWidth   time.Duration
	window        time.Duration
	epochGrouping bool

	logger zerolog.Logger
	now    func() time.Time

	mu   sync.RWMutex
	last *Snapshot
}

// Options for creating Runner.
type Options struct {
	Source  ingestion.RowSource
	Columns domain.ColumnMap

	// Optional ticker cards
	Tickers TickerFetcher
	Symbols []string

	BucketWidth   time.Duration // downsampling.DefaultBucketWidth if zero
	Window        time.Duration // metrics.DefaultWindow if zero
	EpochGrouping bool

	Logger zerolog.Logger
}

// New creates a new Runner.
func New(opts Options) *Runner {
	return &Runner{
		source:        opts.Source,
		normalizer:    normalization.NewNormalizer(opts.Columns),
		tickers:       opts.Tickers,
		symbols:       opts.Symbols,
		bucketWidth:   opts.BucketWidth,
		window:        opts.Window,
		epochGrouping: opts.EpochGrouping,
		logger:        opts.Logger.With().Str("component", "orchestrator").Logger(),
		now:           time.Now,
	}
}

// Refresh executes one cycle.
// Phases:
//  1. Fetch raw rows
//  2. Normalize into the canonical series
//  3. Downsample and compute statistics and overlays
//  4. Fetch ticker cards
//
// A fetch or malformed data error is returned together with a snapshot
// describing it. An empty source yields StatusNoData and no error.
func (r *Runner) Refresh(ctx context.Context) (*Snapshot, error) {
	start := r.now()
	snap := &Snapshot{
		CycleID:     uuid.New(),
		GeneratedAt: start.UTC(),
		Source:      r.source.Name(),
	}
	log := r.logger.With().Str("cycle_id", snap.CycleID.String()).Logger()

	err := r.run(ctx, snap, log)

	elapsed := r.now().Sub(start)
	observability.RecordRefresh(string(snap.Status), elapsed.Seconds(), r.now().Unix())

	event := log.Info()
	if err != nil {
		event = log.Error().Err(err)
	}
	event.Str("status", string(snap.Status)).
		Int("samples", snap.SampleCount).
		Int("points", snap.Reduced.Len()).
		Dur("elapsed", elapsed).
		Msg("refresh cycle finished")

	r.mu.Lock()
	r.last = snap
	r.mu.Unlock()

	return snap, err
}

// Last returns the most recent snapshot, or nil before the first cycle.
func (r *Runner) Last() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

func (r *Runner) run(ctx context.Context, snap *Snapshot, log zerolog.Logger) error {
	// Phase 1: Fetch
	fetchStart := r.now()
	rows, err := r.source.FetchRows(ctx)
	observability.RecordFetch(r.source.Name(), r.now().Sub(fetchStart).Seconds(), len(rows), err)
	if err != nil {
		snap.Status = StatusFailed
		snap.Err = fmt.Errorf("fetch rows: %w", err)
		return snap.Err
	}
	log.Debug().Int("rows", len(rows)).Msg("rows fetched")

	// Phase 2: Normalize
	series, err := r.normalizer.Normalize(rows)
	if err != nil {
		snap.Status = StatusMalformed
		snap.Err = fmt.Errorf("normalize: %w", err)
		return snap.Err
	}
	snap.SampleCount = series.Len()

	// Phase 3: Reduce and summarize
	snap.Reduced = downsampling.Downsample(series, r.bucketWidth)
	snap.Summary = metrics.Summarize(series, metrics.Options{
		Window:        r.window,
		EpochGrouping: r.epochGrouping,
	})
	snap.Overlays = metrics.Overlays(snap.Reduced)
	observability.UpdateSeriesSizes(series.Len(), snap.Reduced.Len(), countForced(snap.Reduced))

	// Phase 4: Tickers
	snap.Tickers = r.fetchTickers(ctx, log)

	if series.IsEmpty() {
		snap.Status = StatusNoData
		return nil
	}
	snap.Status = StatusOK
	return nil
}

// fetchTickers returns the tickers that could be fetched. Failures are logged.
func (r *Runner) fetchTickers(ctx context.Context, log zerolog.Logger) []domain.Ticker {
	if r.tickers == nil || len(r.symbols) == 0 {
		return nil
	}

	out := make([]domain.Ticker, 0, len(r.symbols))
	for _, symbol := range r.symbols {
		t, err := r.tickers.Ticker(ctx, symbol)
		observability.RecordPriceFeedCall("ticker", err)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return out
			}
			log.Warn().Err(err).Str("symbol", symbol).Msg("ticker unavailable")
			continue
		}
		out = append(out, *t)
	}
	return out
}

func countForced(reduced domain.ReducedSeries) int {
	n := 0
	for _, p := range reduced.Points {
		if p.Forced {
			n++
		}
	}
	return n
}
