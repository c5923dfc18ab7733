package lookup

import (
	"errors"

	"github.com/shopspring/decimal"

	"pool-stats-lab/internal/domain"
)

// ErrNoPriceData is returned when there are no candles to look up.
var ErrNoPriceData = errors.New("no price data available")

// CloseAt returns the close of the latest candle opened at or before target.
// If every candle opens after target, the first close is returned.
// Klines must be sorted by OpenTimeMs ASC.
func CloseAt(target int64, klines []domain.Kline) (decimal.Decimal, error) {
	if len(klines) == 0 {
		return decimal.Zero, ErrNoPriceData
	}

	for i := len(klines) - 1; i >= 0; i-- {
		if klines[i].OpenTimeMs <= target {
			return klines[i].Close, nil
		}
	}

	return klines[0].Close, nil
}

// CloseAtBounded is CloseAt restricted to candles no older than maxAgeMs
// before target. Returns ok=false when none qualifies.
func CloseAtBounded(target, maxAgeMs int64, klines []domain.Kline) (decimal.Decimal, bool) {
	for i := len(klines) - 1; i >= 0; i-- {
		k := klines[i]
		if k.OpenTimeMs > target {
			continue
		}
		if target-k.OpenTimeMs > maxAgeMs {
			return decimal.Zero, false
		}
		return k.Close, true
	}
	return decimal.Zero, false
}
