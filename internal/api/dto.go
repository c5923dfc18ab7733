package api

import (
	"time"

	"pool-stats-lab/internal/domain"
	"pool-stats-lab/internal/orchestrator"
)

// SnapshotResponse is the JSON body of GET /api/snapshot.
type SnapshotResponse struct {
	CycleID     string    `json:"cycle_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Source      string    `json:"source"`
	SampleCount int       `json:"sample_count"`

	BucketWidthMs int64            `json:"bucket_width_ms"`
	Points        []PointResponse  `json:"points"`
	Overlays      OverlaysResponse `json:"overlays"`
	Summary       SummaryResponse  `json:"summary"`
	Tickers       []TickerResponse `json:"tickers"`
}

// PointResponse is one reduced point.
type PointResponse struct {
	TimestampMs        int64    `json:"timestamp_ms"`
	PoolHashrate       *float64 `json:"pool_hashrate"`
	PoolHashrateMHs    *float64 `json:"pool_hashrate_mhs"`
	NetworkHashrate    *float64 `json:"network_hashrate"`
	NetworkHashrateGHs *float64 `json:"network_hashrate_ghs"`
	BlocksFound        *int64   `json:"blocks_found"`
	Epoch              *int64   `json:"epoch"`
	PriceA             *float64 `json:"price_a"`
	PriceB             *float64 `json:"price_b"`
	BlockEvent         bool     `json:"block_event"`
	Forced             bool     `json:"forced"`
	SampleCount        int      `json:"sample_count"`
}

// OverlaysResponse carries chart lines and event markers.
type OverlaysResponse struct {
	ExpandingMeanMHs []*float64 `json:"expanding_mean_mhs"`
	RunningMaxMHs    []*float64 `json:"running_max_mhs"`
	EventTimestamps  []int64    `json:"event_timestamps"`
}

// SummaryResponse holds headline statistics. Undefined values are null.
type SummaryResponse struct {
	LatestTimestampMs   *int64   `json:"latest_timestamp_ms"`
	WindowMs            int64    `json:"window_ms"`
	WindowedMeanPool    *float64 `json:"windowed_mean_pool"`
	WindowedMeanNetwork *float64 `json:"windowed_mean_network"`

	AllTimeHigh *HashratePointResponse `json:"all_time_high"`

	TimeSinceLastEventMs        *int64   `json:"time_since_last_event_ms"`
	EventsInWindow              *int     `json:"events_in_window"`
	MeanIntervalBetweenEventsMs *float64 `json:"mean_interval_between_events_ms"`

	PerEpochEventCount []EpochCountResponse `json:"per_epoch_event_count,omitempty"`

	MeanPoolHashrate        *float64 `json:"mean_pool_hashrate"`
	BlocksFound             *int64   `json:"blocks_found"`
	PoolHashrateDeltaMHs    *float64 `json:"pool_hashrate_delta_mhs"`
	NetworkHashrateDeltaGHs *float64 `json:"network_hashrate_delta_ghs"`
}

// HashratePointResponse is a hashrate observed at a timestamp.
type HashratePointResponse struct {
	TimestampMs int64   `json:"timestamp_ms"`
	Hashrate    float64 `json:"hashrate"`
}

// EpochCountResponse is the number of blocks found in one epoch.
type EpochCountResponse struct {
	Epoch  int64 `json:"epoch"`
	Blocks int64 `json:"blocks"`
}

// TickerResponse is an exchange ticker. Decimals are encoded as strings.
type TickerResponse struct {
	Symbol        string    `json:"symbol"`
	LastPrice     string    `json:"last_price"`
	ChangePercent string    `json:"change_percent"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// NewSnapshotResponse converts a snapshot into its JSON form.
func NewSnapshotResponse(s *orchestrator.Snapshot) SnapshotResponse {
	resp := SnapshotResponse{
		CycleID:       s.CycleID.String(),
		GeneratedAt:   s.GeneratedAt,
		Status:        string(s.Status),
		Source:        s.Source,
		SampleCount:   s.SampleCount,
		BucketWidthMs: s.Reduced.BucketWidthMs,
		Points:        make([]PointResponse, 0, s.Reduced.Len()),
		Overlays:      newOverlaysResponse(s.Overlays),
		Summary:       newSummaryResponse(s.Summary),
		Tickers:       make([]TickerResponse, 0, len(s.Tickers)),
	}
	if s.Err != nil {
		resp.Error = s.Err.Error()
	}

	for _, p := range s.Reduced.Points {
		resp.Points = append(resp.Points, PointResponse{
			TimestampMs:        p.TimestampMs,
			PoolHashrate:       p.PoolHashrate,
			PoolHashrateMHs:    p.PoolHashrateMHs,
			NetworkHashrate:    p.NetworkHashrate,
			NetworkHashrateGHs: p.NetworkHashrateGHs,
			BlocksFound:        p.BlocksFound,
			Epoch:              p.Epoch,
			PriceA:             p.PriceA,
			PriceB:             p.PriceB,
			BlockEvent:         p.BlockEvent,
			Forced:             p.Forced,
			SampleCount:        p.SampleCount,
		})
	}

	for _, t := range s.Tickers {
		resp.Tickers = append(resp.Tickers, TickerResponse{
			Symbol:        t.Symbol,
			LastPrice:     t.LastPrice.String(),
			ChangePercent: t.ChangePercent.StringFixed(2),
			FetchedAt:     t.FetchedAt,
		})
	}

	return resp
}

func newOverlaysResponse(o domain.Overlays) OverlaysResponse {
	resp := OverlaysResponse{
		ExpandingMeanMHs: make([]*float64, len(o.Points)),
		RunningMaxMHs:    make([]*float64, len(o.Points)),
		EventTimestamps:  o.EventTimestamps,
	}
	if resp.EventTimestamps == nil {
		resp.EventTimestamps = []int64{}
	}
	for i, p := range o.Points {
		resp.ExpandingMeanMHs[i] = p.ExpandingMeanMHs
		resp.RunningMaxMHs[i] = p.RunningMaxMHs
	}
	return resp
}

func newSummaryResponse(s domain.Summary) SummaryResponse {
	resp := SummaryResponse{
		WindowMs:                    s.WindowMs,
		WindowedMeanPool:            s.WindowedMeanPool,
		WindowedMeanNetwork:         s.WindowedMeanNetwork,
		TimeSinceLastEventMs:        s.TimeSinceLastEventMs,
		EventsInWindow:              s.EventsInWindow,
		MeanIntervalBetweenEventsMs: s.MeanIntervalBetweenEventsMs,
		MeanPoolHashrate:            s.MeanPoolHashrate,
		BlocksFound:                 s.BlocksFound,
		PoolHashrateDeltaMHs:        s.PoolHashrateDeltaMHs,
		NetworkHashrateDeltaGHs:     s.NetworkHashrateDeltaGHs,
	}
	if s.Latest != nil {
		ts := s.Latest.TimestampMs
		resp.LatestTimestampMs = &ts
	}
	if s.AllTimeHigh != nil {
		resp.AllTimeHigh = &HashratePointResponse{
			TimestampMs: s.AllTimeHigh.TimestampMs,
			Hashrate:    s.AllTimeHigh.Hashrate,
		}
	}
	for _, e := range s.PerEpochEventCount {
		resp.PerEpochEventCount = append(resp.PerEpochEventCount, EpochCountResponse{Epoch: e.Epoch, Blocks: e.Blocks})
	}
	return resp
}
