package metrics

import "pool-stats-lab/internal/domain"

// Overlays computes the chart lines drawn over a reduced series: the
// expanding mean and running maximum of pool MH/s, and block event markers.
// Points with a missing hashrate carry the previous line values.
func Overlays(reduced domain.ReducedSeries) domain.Overlays {
	out := domain.Overlays{
		Points: make([]domain.OverlayPoint, len(reduced.Points)),
	}

	var (
		sum     float64
		n       int
		meanPtr *float64
		maxPtr  *float64
	)
	for i, p := range reduced.Points {
		if v := p.PoolHashrateMHs; v != nil {
			sum += *v
			n++
			m := sum / float64(n)
			meanPtr = &m
			if maxPtr == nil || *v > *maxPtr {
				mx := *v
				maxPtr = &mx
			}
		}

		out.Points[i] = domain.OverlayPoint{
			TimestampMs:      p.TimestampMs,
			ExpandingMeanMHs: meanPtr,
			RunningMaxMHs:    maxPtr,
			BlockEvent:       p.BlockEvent,
		}
		if p.BlockEvent {
			out.EventTimestamps = append(out.EventTimestamps, p.TimestampMs)
		}
	}

	return out
}
