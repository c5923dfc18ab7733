package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pool-stats-lab/internal/domain"
	"pool-stats-lab/internal/normalization"
)

type staticSource struct {
	rows []domain.RawRow
	err  error
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) FetchRows(context.Context) ([]domain.RawRow, error) {
	return s.rows, s.err
}

type staticTickers map[string]domain.Ticker

func (s staticTickers) Ticker(_ context.Context, symbol string) (*domain.Ticker, error) {
	t, ok := s[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return &t, nil
}

func workedExampleRows() []domain.RawRow {
	return []domain.RawRow{
		{"timestamp": "1970-01-01 00:07:00", "pool_hashrate": "90", "pool_blocks_found": "6"},
		{"timestamp": "1970-01-01 00:00:00", "pool_hashrate": "100", "pool_blocks_found": "5"},
		{"timestamp": "1970-01-01 00:03:00", "pool_hashrate": "150", "pool_blocks_found": "5"},
	}
}

func TestRunner_Refresh(t *testing.T) {
	runner := New(Options{
		Source:  &staticSource{rows: workedExampleRows()},
		Tickers: staticTickers{"XMRUSDT": {Symbol: "XMRUSDT", LastPrice: decimal.NewFromInt(170)}},
		Symbols: []string{"XMRUSDT", "QUBICUSDT"},
		Logger:  zerolog.Nop(),
	})

	snap, err := runner.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusOK, snap.Status)
	assert.Equal(t, 3, snap.SampleCount)
	assert.Equal(t, "static", snap.Source)
	assert.NotEqual(t, uuid.Nil, snap.CycleID)

	require.Equal(t, 3, snap.Reduced.Len())
	assert.Equal(t, int64(0), snap.Reduced.Points[0].TimestampMs)
	assert.Equal(t, int64(300_000), snap.Reduced.Points[1].TimestampMs)
	assert.Equal(t, int64(420_000), snap.Reduced.Points[2].TimestampMs)
	assert.True(t, snap.Reduced.Points[2].Forced)
	assert.True(t, snap.Reduced.Points[2].BlockEvent)

	require.NotNil(t, snap.Summary.AllTimeHigh)
	assert.Equal(t, 150.0, snap.Summary.AllTimeHigh.Hashrate)
	assert.Equal(t, []int64{300_000, 420_000}, snap.Overlays.EventTimestamps)

	require.Len(t, snap.Tickers, 1, "failed ticker omitted")
	assert.Equal(t, "XMRUSDT", snap.Tickers[0].Symbol)

	assert.Same(t, snap, runner.Last())
}

func TestRunner_NoData(t *testing.T) {
	runner := New(Options{Source: &staticSource{rows: nil}, Logger: zerolog.Nop()})

	snap, err := runner.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNoData, snap.Status)
	assert.Zero(t, snap.Reduced.Len())
	assert.Nil(t, snap.Summary.Latest)
	assert.Nil(t, snap.Err)
}

func TestRunner_Malformed(t *testing.T) {
	rows := workedExampleRows()
	rows[1]["timestamp"] = "yesterday"
	runner := New(Options{Source: &staticSource{rows: rows}, Logger: zerolog.Nop()})

	snap, err := runner.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, normalization.ErrMalformedTimestamp))
	assert.Equal(t, StatusMalformed, snap.Status)
	assert.Equal(t, err, snap.Err)
	assert.Zero(t, snap.Reduced.Len(), "no partial series")
}

func TestRunner_FetchFailure(t *testing.T) {
	upstream := errors.New("upstream down")
	runner := New(Options{Source: &staticSource{err: upstream}, Logger: zerolog.Nop()})

	snap, err := runner.Refresh(context.Background())
	assert.True(t, errors.Is(err, upstream))
	assert.Equal(t, StatusFailed, snap.Status)
}

func TestRunner_Options(t *testing.T) {
	rows := []domain.RawRow{
		{"ts": "0", "hr": "10", "blocks": "1", "epoch": "3"},
		{"ts": "60", "hr": "20", "blocks": "2", "epoch": "3"},
	}
	runner := New(Options{
		Source:        &staticSource{rows: rows},
		Columns:       domain.ColumnMap{Timestamp: "ts", PoolHashrate: "hr", BlocksFound: "blocks"},
		BucketWidth:   time.Minute,
		Window:        time.Hour,
		EpochGrouping: true,
		Logger:        zerolog.Nop(),
	})

	snap, err := runner.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(60_000), snap.Reduced.BucketWidthMs)
	assert.Equal(t, int64(3_600_000), snap.Summary.WindowMs)
	assert.Equal(t, []domain.EpochBlockCount{{Epoch: 3, Blocks: 2}}, snap.Summary.PerEpochEventCount)
}
