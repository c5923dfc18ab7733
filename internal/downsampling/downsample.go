// Package downsampling reduces a canonical series to a bounded number of
// plot points while keeping the all-time-high sample and every block event.
package downsampling

import (
	"time"

	"pool-stats-lab/internal/domain"
	"pool-stats-lab/internal/normalization"
)

// DefaultBucketWidth is the aggregation width used when none is given.
const DefaultBucketWidth = 5 * time.Minute

// Downsample reduces series into fixed-width buckets aligned to absolute time.
//
// Bucket alignment: floor(timestamp_ms / width_ms) * width_ms
// Aggregation per bucket:
//   - pool/network hashrate = mean of present values
//   - blocks found, epoch = last present value
//   - prices = last present value, carried from the previous bucket when absent
//   - block in bucket = any sample has BlockEvent
//
// Every non-empty bucket keeps its aggregate. Block event samples are then
// inserted verbatim at their own timestamps; the first maximum pool hashrate
// sample is inserted only when no aggregate covers its bucket. On an exact
// timestamp collision the forced sample wins. BlockEvent is then recomputed
// from counter deltas across the merged points, so a bucket start may carry
// the flag of an event inside it; forced block events always keep theirs.
func Downsample(series domain.Series, width time.Duration) domain.ReducedSeries {
	if width <= 0 {
		width = DefaultBucketWidth
	}
	widthMs := width.Milliseconds()
	if widthMs <= 0 {
		widthMs = 1
	}

	reduced := domain.ReducedSeries{BucketWidthMs: widthMs}
	if series.IsEmpty() {
		return reduced
	}

	samples := series.Samples
	aggregates := aggregateBuckets(samples, widthMs)

	covered := make(map[int64]struct{}, len(aggregates))
	for _, agg := range aggregates {
		covered[agg.TimestampMs] = struct{}{}
	}

	var inserted []domain.ReducedPoint
	for _, p := range forcedPoints(samples) {
		if !p.BlockInBucket {
			if _, ok := covered[BucketStart(p.TimestampMs, widthMs)]; ok {
				continue
			}
		}
		inserted = append(inserted, p)
	}

	reduced.Points = mergePoints(aggregates, inserted)
	recomputeBlockEvents(reduced.Points)
	return reduced
}

// BucketStart returns the start of the bucket containing ts.
// Floors toward negative infinity so pre-1970 timestamps align too.
func BucketStart(ts, widthMs int64) int64 {
	start := (ts / widthMs) * widthMs
	if ts < 0 && start != ts {
		start -= widthMs
	}
	return start
}

// forcedPoints returns the samples kept verbatim, ascending by timestamp:
// the first sample holding the maximum pool hashrate and every block event.
func forcedPoints(samples []domain.Sample) []domain.ReducedPoint {
	athIdx := -1
	for i := range samples {
		h := samples[i].PoolHashrate
		if h == nil {
			continue
		}
		if athIdx < 0 || *h > *samples[athIdx].PoolHashrate {
			athIdx = i
		}
	}

	var forced []domain.ReducedPoint
	for i := range samples {
		if i != athIdx && !samples[i].BlockEvent {
			continue
		}
		forced = append(forced, domain.ReducedPoint{
			Sample:        samples[i],
			Forced:        true,
			SampleCount:   1,
			BlockInBucket: samples[i].BlockEvent,
		})
	}
	return forced
}

// mergePoints merges two timestamp-ascending sequences. Equal timestamps
// collapse to one point, preferring forced over aggregate and later over
// earlier among forced points.
func mergePoints(aggregates, forced []domain.ReducedPoint) []domain.ReducedPoint {
	out := make([]domain.ReducedPoint, 0, len(aggregates)+len(forced))

	push := func(p domain.ReducedPoint) {
		if n := len(out); n > 0 && out[n-1].TimestampMs == p.TimestampMs {
			if p.Forced || !out[n-1].Forced {
				out[n-1] = p
			}
			return
		}
		out = append(out, p)
	}

	i, j := 0, 0
	for i < len(aggregates) && j < len(forced) {
		if aggregates[i].TimestampMs <= forced[j].TimestampMs {
			push(aggregates[i])
			i++
		} else {
			push(forced[j])
			j++
		}
	}
	for ; i < len(aggregates); i++ {
		push(aggregates[i])
	}
	for ; j < len(forced); j++ {
		push(forced[j])
	}

	return out
}

// recomputeBlockEvents applies the normalizer's counter rule to the merged
// points. A forced block event keeps its flag even when the sample before it
// in the raw series was reduced away.
func recomputeBlockEvents(points []domain.ReducedPoint) {
	samples := make([]domain.Sample, len(points))
	for i := range points {
		samples[i] = points[i].Sample
	}
	normalization.MarkBlockEvents(samples)
	for i := range points {
		points[i].BlockEvent = samples[i].BlockEvent || (points[i].Forced && points[i].BlockInBucket)
	}
}
