package lookup

import (
	"testing"

	"github.com/shopspring/decimal"

	"pool-stats-lab/internal/domain"
)

func klines() []domain.Kline {
	return []domain.Kline{
		{OpenTimeMs: 1000, Close: decimal.RequireFromString("1.0")},
		{OpenTimeMs: 2000, Close: decimal.RequireFromString("2.0")},
		{OpenTimeMs: 3000, Close: decimal.RequireFromString("3.0")},
	}
}

func TestCloseAt_EmptySlice(t *testing.T) {
	_, err := CloseAt(1000, nil)
	if err != ErrNoPriceData {
		t.Errorf("expected ErrNoPriceData, got %v", err)
	}

	_, err = CloseAt(1000, []domain.Kline{})
	if err != ErrNoPriceData {
		t.Errorf("expected ErrNoPriceData, got %v", err)
	}
}

func TestCloseAt(t *testing.T) {
	tests := []struct {
		name   string
		target int64
		want   string
	}{
		{"exact match", 2000, "2"},
		{"between candles", 2500, "2"},
		{"before first", 500, "1"},
		{"after last", 5000, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CloseAt(tt.target, klines())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCloseAtBounded(t *testing.T) {
	got, ok := CloseAtBounded(2500, 1000, klines())
	if !ok || !got.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected 2, got %s (ok=%v)", got, ok)
	}

	if _, ok := CloseAtBounded(9000, 1000, klines()); ok {
		t.Error("expected stale candle to be rejected")
	}

	if _, ok := CloseAtBounded(500, 1000, klines()); ok {
		t.Error("expected no candle before target")
	}
}
