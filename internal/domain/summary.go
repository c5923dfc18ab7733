package domain

// HashratePoint is a hashrate value observed at a timestamp.
type HashratePoint struct {
	TimestampMs int64
	Hashrate    float64 // H/s
}

// EpochBlockCount is the number of blocks found during one epoch.
type EpochBlockCount struct {
	Epoch  int64
	Blocks int64
}

// Summary holds headline statistics computed from the canonical series.
// Every pointer field is nil when the value is undefined; zero is a real value.
type Summary struct {
	Latest   *Sample
	WindowMs int64

	WindowedMeanPool    *float64       // mean pool hashrate inside the window, H/s
	WindowedMeanNetwork *float64       // mean network hashrate inside the window, H/s
	AllTimeHigh         *HashratePoint // max pool hashrate excluding the latest sample

	TimeSinceLastEventMs        *int64
	EventsInWindow              *int
	MeanIntervalBetweenEventsMs *float64

	// PerEpochEventCount is ordered by epoch ascending and only set when
	// epoch grouping was requested.
	PerEpochEventCount []EpochBlockCount

	MeanPoolHashrate        *float64 // over the whole series, H/s
	BlocksFound             *int64   // max cumulative counter
	PoolHashrateDeltaMHs    *float64 // latest minus previous sample
	NetworkHashrateDeltaGHs *float64 // latest minus previous sample
}

// OverlayPoint carries chart overlays for one reduced point.
type OverlayPoint struct {
	TimestampMs      int64
	ExpandingMeanMHs *float64 // mean of pool MH/s up to and including this point
	RunningMaxMHs    *float64 // highest pool MH/s so far
	BlockEvent       bool
}

// Overlays are chart lines and markers derived from a reduced series.
type Overlays struct {
	Points          []OverlayPoint
	EventTimestamps []int64
}
