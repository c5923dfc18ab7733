// Package metrics computes headline statistics and chart overlays for
// pool telemetry.
package metrics

import (
	"sort"
	"time"

	"pool-stats-lab/internal/domain"
)

// DefaultWindow is the lookback used for windowed statistics.
const DefaultWindow = 6 * time.Hour

// Options configure Summarize.
type Options struct {
	Window        time.Duration // lookback from the latest sample, DefaultWindow if zero
	EpochGrouping bool          // compute PerEpochEventCount
}

// Summarize computes statistics from the canonical series.
// All values are nil for an empty series.
func Summarize(series domain.Series, opts Options) domain.Summary {
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}
	summary := domain.Summary{WindowMs: window.Milliseconds()}
	if series.IsEmpty() {
		return summary
	}

	samples := series.Samples
	summary.Latest = series.Latest()
	cutoff := summary.Latest.TimestampMs - summary.WindowMs

	summary.WindowedMeanPool = WindowedMean(samples, cutoff, poolHashrate)
	summary.WindowedMeanNetwork = WindowedMean(samples, cutoff, networkHashrate)
	summary.AllTimeHigh = AllTimeHigh(samples)
	summary.TimeSinceLastEventMs = TimeSinceLastEvent(samples)
	summary.EventsInWindow = EventsInWindow(samples, cutoff)
	summary.MeanIntervalBetweenEventsMs = MeanIntervalBetweenEvents(samples, cutoff)
	if opts.EpochGrouping {
		summary.PerEpochEventCount = PerEpochEventCount(samples)
	}

	summary.MeanPoolHashrate = WindowedMean(samples, samples[0].TimestampMs, poolHashrate)
	summary.BlocksFound = MaxBlocksFound(samples)
	summary.PoolHashrateDeltaMHs = latestDelta(samples, poolHashrateMHs)
	summary.NetworkHashrateDeltaGHs = latestDelta(samples, networkHashrateGHs)

	return summary
}

// field selects an optional numeric value from a sample.
type field func(*domain.Sample) *float64

func poolHashrate(s *domain.Sample) *float64       { return s.PoolHashrate }
func networkHashrate(s *domain.Sample) *float64    { return s.NetworkHashrate }
func poolHashrateMHs(s *domain.Sample) *float64    { return s.PoolHashrateMHs }
func networkHashrateGHs(s *domain.Sample) *float64 { return s.NetworkHashrateGHs }

// WindowedMean averages present values of samples with timestamp >= cutoff.
// Returns nil if none are present.
func WindowedMean(samples []domain.Sample, cutoff int64, get field) *float64 {
	var sum float64
	var n int
	for i := range samples {
		if samples[i].TimestampMs < cutoff {
			continue
		}
		if v := get(&samples[i]); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	m := sum / float64(n)
	return &m
}

// AllTimeHigh returns the maximum pool hashrate excluding the latest sample,
// with the timestamp of its first occurrence.
func AllTimeHigh(samples []domain.Sample) *domain.HashratePoint {
	if len(samples) < 2 {
		return nil
	}

	var ath *domain.HashratePoint
	for i := range samples[:len(samples)-1] {
		h := samples[i].PoolHashrate
		if h == nil {
			continue
		}
		if ath == nil || *h > ath.Hashrate {
			ath = &domain.HashratePoint{TimestampMs: samples[i].TimestampMs, Hashrate: *h}
		}
	}
	return ath
}

// TimeSinceLastEvent returns the time from the most recent block event to
// the latest sample, or nil if no event exists.
func TimeSinceLastEvent(samples []domain.Sample) *int64 {
	if len(samples) == 0 {
		return nil
	}
	latest := samples[len(samples)-1].TimestampMs
	for i := len(samples) - 1; i >= 0; i-- {
		if samples[i].BlockEvent {
			d := latest - samples[i].TimestampMs
			return &d
		}
	}
	return nil
}

// EventsInWindow counts block events with timestamp >= cutoff.
func EventsInWindow(samples []domain.Sample, cutoff int64) *int {
	if len(samples) == 0 {
		return nil
	}
	n := len(eventTimes(samples, cutoff))
	return &n
}

// MeanIntervalBetweenEvents is the mean gap between consecutive block events
// with timestamp >= cutoff. Nil with fewer than two events.
func MeanIntervalBetweenEvents(samples []domain.Sample, cutoff int64) *float64 {
	times := eventTimes(samples, cutoff)
	if len(times) < 2 {
		return nil
	}
	m := float64(times[len(times)-1]-times[0]) / float64(len(times)-1)
	return &m
}

func eventTimes(samples []domain.Sample, cutoff int64) []int64 {
	var times []int64
	for i := range samples {
		if samples[i].BlockEvent && samples[i].TimestampMs >= cutoff {
			times = append(times, samples[i].TimestampMs)
		}
	}
	return times
}

// PerEpochEventCount returns blocks found per epoch, ordered by epoch.
// Each epoch's count is its maximum counter minus the previous epoch's
// maximum; the first epoch counts its own maximum. Samples without an epoch
// or counter are ignored.
func PerEpochEventCount(samples []domain.Sample) []domain.EpochBlockCount {
	maxByEpoch := make(map[int64]int64)
	for i := range samples {
		e, b := samples[i].Epoch, samples[i].BlocksFound
		if e == nil || b == nil {
			continue
		}
		if cur, ok := maxByEpoch[*e]; !ok || *b > cur {
			maxByEpoch[*e] = *b
		}
	}
	if len(maxByEpoch) == 0 {
		return []domain.EpochBlockCount{}
	}

	epochs := make([]int64, 0, len(maxByEpoch))
	for e := range maxByEpoch {
		epochs = append(epochs, e)
	}
	sort.Slice(epochs, func(i, j int) bool { return epochs[i] < epochs[j] })

	counts := make([]domain.EpochBlockCount, len(epochs))
	for i, e := range epochs {
		blocks := maxByEpoch[e]
		if i > 0 {
			blocks -= maxByEpoch[epochs[i-1]]
		}
		counts[i] = domain.EpochBlockCount{Epoch: e, Blocks: blocks}
	}
	return counts
}

// MaxBlocksFound returns the highest cumulative counter value.
func MaxBlocksFound(samples []domain.Sample) *int64 {
	var highest *int64
	for i := range samples {
		b := samples[i].BlocksFound
		if b != nil && (highest == nil || *b > *highest) {
			v := *b
			highest = &v
		}
	}
	return highest
}

// latestDelta is the change between the last two samples, nil if either is missing.
func latestDelta(samples []domain.Sample, get field) *float64 {
	n := len(samples)
	if n < 2 {
		return nil
	}
	cur, prev := get(&samples[n-1]), get(&samples[n-2])
	if cur == nil || prev == nil {
		return nil
	}
	d := *cur - *prev
	return &d
}
