package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pool-stats-lab/internal/domain"
	"pool-stats-lab/internal/lookup"
	"pool-stats-lab/internal/normalization"
	"pool-stats-lab/internal/observability"
	"pool-stats-lab/internal/pricefeed"
)

// maxKlinePages bounds the number of kline requests per symbol and fetch.
const maxKlinePages = 10

// KlineFetcher provides hourly candles.
type KlineFetcher interface {
	Klines(ctx context.Context, symbol, interval string, since time.Time) ([]domain.Kline, error)
}

// PriceEnricher fills empty price columns of the wrapped source's rows with
// the close of the hourly candle covering each row. Price lookup failures
// are logged and leave the rows unchanged.
type PriceEnricher struct {
	source  RowSource
	feed    KlineFetcher
	symbolA string
	symbolB string
	cols    domain.ColumnMap
	maxAge  time.Duration
	logger  zerolog.Logger
}

// PriceEnricherOptions contains configuration for creating a PriceEnricher.
type PriceEnricherOptions struct {
	Source  RowSource
	Feed    KlineFetcher
	SymbolA string // fills ColumnMap.PriceA, skipped if empty
	SymbolB string // fills ColumnMap.PriceB, skipped if empty
	Columns domain.ColumnMap
	MaxAge  time.Duration // reject candles older than this, unbounded if zero
	Logger  zerolog.Logger
}

// NewPriceEnricher creates a PriceEnricher.
func NewPriceEnricher(opts PriceEnricherOptions) *PriceEnricher {
	return &PriceEnricher{
		source:  opts.Source,
		feed:    opts.Feed,
		symbolA: opts.SymbolA,
		symbolB: opts.SymbolB,
		cols:    opts.Columns.WithDefaults(),
		maxAge:  opts.MaxAge,
		logger:  opts.Logger.With().Str("component", "price_enricher").Logger(),
	}
}

// Name returns the wrapped source name.
func (e *PriceEnricher) Name() string {
	return fmt.Sprintf("%s+prices(%s,%s)", e.source.Name(), e.symbolA, e.symbolB)
}

// FetchRows fetches rows from the wrapped source and fills missing prices.
func (e *PriceEnricher) FetchRows(ctx context.Context) ([]domain.RawRow, error) {
	rows, err := e.source.FetchRows(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}

	timestamps := make([]int64, len(rows))
	valid := make([]bool, len(rows))
	first := int64(0)
	found := false
	for i, row := range rows {
		ts, err := normalization.ParseTimestamp(row[e.cols.Timestamp])
		if err != nil {
			continue
		}
		timestamps[i], valid[i] = ts, true
		if !found || ts < first {
			first, found = ts, true
		}
	}
	if !found {
		return rows, nil
	}

	since := time.UnixMilli(first).UTC().Truncate(time.Hour)
	for _, target := range []struct {
		symbol string
		column string
	}{
		{e.symbolA, e.cols.PriceA},
		{e.symbolB, e.cols.PriceB},
	} {
		if target.symbol == "" || !needsFill(rows, target.column) {
			continue
		}

		klines, err := e.klines(ctx, target.symbol, since)
		if err != nil {
			e.logger.Warn().Err(err).Str("symbol", target.symbol).Msg("price lookup failed")
			continue
		}

		filled := 0
		for i, row := range rows {
			if !valid[i] || row[target.column] != "" {
				continue
			}
			if price, ok := e.closeAt(timestamps[i], klines); ok {
				row[target.column] = price
				filled++
			}
		}
		e.logger.Debug().Str("symbol", target.symbol).Int("filled", filled).Int("klines", len(klines)).Msg("prices enriched")
	}

	return rows, nil
}

func (e *PriceEnricher) closeAt(ts int64, klines []domain.Kline) (string, bool) {
	if e.maxAge > 0 {
		c, ok := lookup.CloseAtBounded(ts, e.maxAge.Milliseconds(), klines)
		if !ok {
			return "", false
		}
		return c.String(), true
	}
	c, err := lookup.CloseAt(ts, klines)
	if err != nil {
		return "", false
	}
	return c.String(), true
}

// klines pages through hourly candles from since until a short page.
func (e *PriceEnricher) klines(ctx context.Context, symbol string, since time.Time) ([]domain.Kline, error) {
	var all []domain.Kline
	for page := 0; page < maxKlinePages; page++ {
		batch, err := e.feed.Klines(ctx, symbol, pricefeed.IntervalHour, since)
		observability.RecordPriceFeedCall("klines", err)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < pricefeed.MaxKlines {
			break
		}
		since = time.UnixMilli(batch[len(batch)-1].OpenTimeMs + 1)
	}
	if len(all) == 0 {
		return nil, lookup.ErrNoPriceData
	}
	return all, nil
}

func needsFill(rows []domain.RawRow, column string) bool {
	for _, row := range rows {
		if row[column] == "" {
			return true
		}
	}
	return false
}
