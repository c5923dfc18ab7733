// Package pricefeed reads spot tickers and klines from the MEXC v3 REST API.
package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"pool-stats-lab/internal/domain"
	"pool-stats-lab/internal/httpclient"
)

const (
	// DefaultBaseURL is the MEXC spot API endpoint.
	DefaultBaseURL = "https://api.mexc.com"

	// IntervalHour is the MEXC name of the one hour kline interval.
	IntervalHour = "60m"

	// MaxKlines is the largest page the klines endpoint returns.
	MaxKlines = 1000
)

// ErrInvalidResponse is returned when a payload fails to decode or validate.
var ErrInvalidResponse = errors.New("invalid price feed response")

var hundred = decimal.NewFromInt(100)

// Client queries the exchange.
type Client struct {
	baseURL  string
	http     *httpclient.Client
	validate *validator.Validate
	now      func() time.Time
}

// NewClient creates a Client. Options configure the underlying HTTP transport.
func NewClient(baseURL string, opts ...httpclient.ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:  baseURL,
		http:     httpclient.New(opts...),
		validate: validator.New(),
		now:      time.Now,
	}
}

type tickerPayload struct {
	Symbol             string `json:"symbol" validate:"required"`
	LastPrice          string `json:"lastPrice" validate:"required,numeric"`
	PriceChangePercent string `json:"priceChangePercent" validate:"required,numeric"`
}

// Ticker returns the 24h ticker for symbol. The exchange reports the change
// as a fraction; ChangePercent is scaled to percent.
func (c *Client) Ticker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	body, err := c.http.Get(ctx, c.endpoint("/api/v3/ticker/24hr", q))
	if err != nil {
		return nil, fmt.Errorf("ticker %s: %w", symbol, err)
	}

	var p tickerPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: ticker %s: %v", ErrInvalidResponse, symbol, err)
	}
	if err := c.validate.Struct(&p); err != nil {
		return nil, fmt.Errorf("%w: ticker %s: %v", ErrInvalidResponse, symbol, err)
	}

	last, err := decimal.NewFromString(p.LastPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: last price %q: %v", ErrInvalidResponse, p.LastPrice, err)
	}
	change, err := decimal.NewFromString(p.PriceChangePercent)
	if err != nil {
		return nil, fmt.Errorf("%w: change %q: %v", ErrInvalidResponse, p.PriceChangePercent, err)
	}

	return &domain.Ticker{
		Symbol:        p.Symbol,
		LastPrice:     last,
		ChangePercent: change.Mul(hundred),
		FetchedAt:     c.now().UTC(),
	}, nil
}

type klinePayload struct {
	OpenTime int64  `validate:"gt=0"`
	Open     string `validate:"required,numeric"`
	High     string `validate:"required,numeric"`
	Low      string `validate:"required,numeric"`
	Close    string `validate:"required,numeric"`
	Volume   string `validate:"required,numeric"`
}

// Klines returns up to MaxKlines candles for symbol starting at since,
// ordered by open time.
func (c *Client) Klines(ctx context.Context, symbol, interval string, since time.Time) ([]domain.Kline, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(MaxKlines))
	if !since.IsZero() {
		q.Set("startTime", strconv.FormatInt(since.UnixMilli(), 10))
	}

	body, err := c.http.Get(ctx, c.endpoint("/api/v3/klines", q))
	if err != nil {
		return nil, fmt.Errorf("klines %s: %w", symbol, err)
	}

	// Each candle is a heterogeneous array:
	// [openTime, open, high, low, close, volume, closeTime, quoteVolume]
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: klines %s: %v", ErrInvalidResponse, symbol, err)
	}

	klines := make([]domain.Kline, 0, len(rows))
	for i, row := range rows {
		k, err := c.parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("%w: klines %s row %d: %v", ErrInvalidResponse, symbol, i, err)
		}
		klines = append(klines, k)
	}
	return klines, nil
}

func (c *Client) parseKline(row []json.RawMessage) (domain.Kline, error) {
	if len(row) < 6 {
		return domain.Kline{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}

	var p klinePayload
	if err := json.Unmarshal(row[0], &p.OpenTime); err != nil {
		return domain.Kline{}, fmt.Errorf("open time: %w", err)
	}
	for i, dst := range []*string{&p.Open, &p.High, &p.Low, &p.Close, &p.Volume} {
		if err := json.Unmarshal(row[i+1], dst); err != nil {
			return domain.Kline{}, fmt.Errorf("field %d: %w", i+1, err)
		}
	}
	if err := c.validate.Struct(&p); err != nil {
		return domain.Kline{}, err
	}

	values := make([]decimal.Decimal, 5)
	for i, s := range []string{p.Open, p.High, p.Low, p.Close, p.Volume} {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return domain.Kline{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		values[i] = d
	}

	return domain.Kline{
		OpenTimeMs: p.OpenTime,
		Open:       values[0],
		High:       values[1],
		Low:        values[2],
		Close:      values[3],
		Volume:     values[4],
	}, nil
}

func (c *Client) endpoint(path string, q url.Values) string {
	return c.baseURL + path + "?" + q.Encode()
}
