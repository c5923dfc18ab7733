package domain

// RawRow is one untyped telemetry record, keyed by column name, as produced
// by a CSV parse or a table scan. Absent and empty values are equivalent.
type RawRow map[string]string

// Default telemetry column names.
const (
	ColumnTimestamp       = "timestamp"
	ColumnPoolHashrate    = "pool_hashrate"
	ColumnNetworkHashrate = "network_hashrate"
	ColumnBlocksFound     = "pool_blocks_found"
	ColumnEpoch           = "epoch"
	ColumnPriceA          = "price_a"
	ColumnPriceB          = "price_b"
)

// ColumnMap maps semantic fields to source column names.
type ColumnMap struct {
	Timestamp       string `mapstructure:"timestamp"`
	PoolHashrate    string `mapstructure:"pool-hashrate"`
	NetworkHashrate string `mapstructure:"network-hashrate"`
	BlocksFound     string `mapstructure:"blocks-found"`
	Epoch           string `mapstructure:"epoch"`
	PriceA          string `mapstructure:"price-a"`
	PriceB          string `mapstructure:"price-b"`
}

// DefaultColumns returns the column names used by the pool stats CSV.
func DefaultColumns() ColumnMap {
	return ColumnMap{
		Timestamp:       ColumnTimestamp,
		PoolHashrate:    ColumnPoolHashrate,
		NetworkHashrate: ColumnNetworkHashrate,
		BlocksFound:     ColumnBlocksFound,
		Epoch:           ColumnEpoch,
		PriceA:          ColumnPriceA,
		PriceB:          ColumnPriceB,
	}
}

// WithDefaults fills empty entries from DefaultColumns.
func (m ColumnMap) WithDefaults() ColumnMap {
	d := DefaultColumns()
	if m.Timestamp == "" {
		m.Timestamp = d.Timestamp
	}
	if m.PoolHashrate == "" {
		m.PoolHashrate = d.PoolHashrate
	}
	if m.NetworkHashrate == "" {
		m.NetworkHashrate = d.NetworkHashrate
	}
	if m.BlocksFound == "" {
		m.BlocksFound = d.BlocksFound
	}
	if m.Epoch == "" {
		m.Epoch = d.Epoch
	}
	if m.PriceA == "" {
		m.PriceA = d.PriceA
	}
	if m.PriceB == "" {
		m.PriceB = d.PriceB
	}
	return m
}

// Sample is one telemetry observation of the canonical series.
// Hashrates are kept in H/s; the MH/s and GH/s fields are display copies.
// A nil pointer means the value was missing or not numeric.
type Sample struct {
	TimestampMs        int64    // Unix timestamp in milliseconds
	PoolHashrate       *float64 // pool hashrate, H/s
	NetworkHashrate    *float64 // network hashrate, H/s
	PoolHashrateMHs    *float64 // PoolHashrate / 1e6
	NetworkHashrateGHs *float64 // NetworkHashrate / 1e9
	BlocksFound        *int64   // cumulative blocks-found counter
	Epoch              *int64   // externally assigned epoch, optional
	PriceA             *float64 // optional quote, e.g. XMR/USDT
	PriceB             *float64 // optional quote, e.g. QUBIC/USDT
	BlockEvent         bool     // counter increased since the previous sample
}

// Series is the canonical, timestamp-ordered telemetry series.
// It is rebuilt every refresh and never mutated afterwards.
type Series struct {
	Samples []Sample
}

// Len returns the number of samples.
func (s Series) Len() int {
	return len(s.Samples)
}

// IsEmpty reports whether the series has no samples.
func (s Series) IsEmpty() bool {
	return len(s.Samples) == 0
}

// Latest returns the most recent sample, or nil for an empty series.
func (s Series) Latest() *Sample {
	if len(s.Samples) == 0 {
		return nil
	}
	latest := s.Samples[len(s.Samples)-1]
	return &latest
}

// ReducedPoint is one point of a reduced series: either a bucket aggregate
// stamped with the bucket start, or a forced sample kept verbatim.
type ReducedPoint struct {
	Sample
	Forced        bool // verbatim sample (ATH or block event)
	SampleCount   int  // raw samples represented, 1 for forced points
	BlockInBucket bool // any sample in the bucket had BlockEvent set
}

// ReducedSeries is the bounded, plot-ready form of a Series.
// Points are strictly ascending by timestamp.
type ReducedSeries struct {
	BucketWidthMs int64
	Points        []ReducedPoint
}

// Len returns the number of points.
func (r ReducedSeries) Len() int {
	return len(r.Points)
}
