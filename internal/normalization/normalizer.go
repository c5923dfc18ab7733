// Package normalization turns raw telemetry rows into the canonical series.
package normalization

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"pool-stats-lab/internal/domain"
)

// Unit divisors for display fields.
const (
	HashesPerMega = 1e6
	HashesPerGiga = 1e9
)

// Normalizer parses raw rows using a column mapping.
type Normalizer struct {
	cols domain.ColumnMap
}

// NewNormalizer creates a Normalizer. Empty column names fall back to defaults.
func NewNormalizer(cols domain.ColumnMap) *Normalizer {
	return &Normalizer{cols: cols.WithDefaults()}
}

// Normalize builds a canonical series using the default column names.
func Normalize(rows []domain.RawRow) (domain.Series, error) {
	return NewNormalizer(domain.DefaultColumns()).Normalize(rows)
}

type parsedRow struct {
	timestampMs int64
	row         domain.RawRow
}

// Normalize parses, orders and derives fields for rows.
//
// Steps:
//  1. Parse every timestamp; one failure rejects the batch with ErrMalformedTimestamp
//  2. Stable sort by timestamp
//  3. Coerce numeric fields, missing or non-numeric values become nil
//  4. Derive MH/s, GH/s and block events from the cumulative counter
//
// Empty input yields an empty series and no error.
func (n *Normalizer) Normalize(rows []domain.RawRow) (domain.Series, error) {
	if len(rows) == 0 {
		return domain.Series{}, nil
	}

	parsed := make([]parsedRow, len(rows))
	for i, row := range rows {
		raw := row[n.cols.Timestamp]
		ts, err := ParseTimestamp(raw)
		if err != nil {
			return domain.Series{}, fmt.Errorf("row %d: timestamp %q: %w", i, raw, err)
		}
		parsed[i] = parsedRow{timestampMs: ts, row: row}
	}

	samples := make([]domain.Sample, len(parsed))
	for i, p := range parsed {
		samples[i] = n.sampleFromRow(p.timestampMs, p.row)
	}
	SortSamples(samples)
	MarkBlockEvents(samples)

	return domain.Series{Samples: samples}, nil
}

// sampleFromRow coerces a single row. The timestamp is already parsed.
func (n *Normalizer) sampleFromRow(ts int64, row domain.RawRow) domain.Sample {
	s := domain.Sample{
		TimestampMs:     ts,
		PoolHashrate:    parseFloat(row[n.cols.PoolHashrate]),
		NetworkHashrate: parseFloat(row[n.cols.NetworkHashrate]),
		BlocksFound:     parseInt(row[n.cols.BlocksFound]),
		Epoch:           parseInt(row[n.cols.Epoch]),
		PriceA:          parseFloat(row[n.cols.PriceA]),
		PriceB:          parseFloat(row[n.cols.PriceB]),
	}
	DeriveUnits(&s)
	return s
}

// DeriveUnits fills the MH/s and GH/s display fields from the H/s values.
func DeriveUnits(s *domain.Sample) {
	s.PoolHashrateMHs = divide(s.PoolHashrate, HashesPerMega)
	s.NetworkHashrateGHs = divide(s.NetworkHashrate, HashesPerGiga)
}

// MarkBlockEvents sets BlockEvent from counter deltas between adjacent samples.
// The first sample never carries an event, and a missing counter on either
// side yields false.
func MarkBlockEvents(samples []domain.Sample) {
	for i := range samples {
		samples[i].BlockEvent = false
		if i == 0 {
			continue
		}
		prev, cur := samples[i-1].BlocksFound, samples[i].BlocksFound
		if prev != nil && cur != nil && *cur-*prev > 0 {
			samples[i].BlockEvent = true
		}
	}
}

func divide(v *float64, by float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v / by
	return &out
}

// parseFloat returns nil for empty, non-numeric, NaN and infinite values.
func parseFloat(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || isNaNOrInf(f) {
		return nil
	}
	return &f
}

// parseInt accepts integers and integral floats such as "12.0".
func parseInt(raw string) *int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || isNaNOrInf(f) || f != math.Trunc(f) {
		return nil
	}
	n := int64(f)
	return &n
}

func isNaNOrInf(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
