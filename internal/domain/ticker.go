package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is a 24h exchange ticker snapshot.
type Ticker struct {
	Symbol        string
	LastPrice     decimal.Decimal
	ChangePercent decimal.Decimal // 24h change, percent
	FetchedAt     time.Time
}

// Kline is one OHLCV candle.
type Kline struct {
	OpenTimeMs int64
	Open       decimal.Decimal
	High       decimal.Decimal
	Low        decimal.Decimal
	Close      decimal.Decimal
	Volume     decimal.Decimal
}
