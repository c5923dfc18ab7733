package normalization

import (
	"sort"

	"pool-stats-lab/internal/domain"
)

// SortSamples orders samples by timestamp ASC.
// Samples sharing a timestamp keep their input order.
func SortSamples(samples []domain.Sample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return compareSamples(&samples[i], &samples[j]) < 0
	})
}

// IsSorted reports whether samples are non-decreasing by timestamp.
func IsSorted(samples []domain.Sample) bool {
	for i := 1; i < len(samples); i++ {
		if compareSamples(&samples[i-1], &samples[i]) > 0 {
			return false
		}
	}
	return true
}

// compareSamples returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
func compareSamples(a, b *domain.Sample) int {
	if a.TimestampMs != b.TimestampMs {
		if a.TimestampMs < b.TimestampMs {
			return -1
		}
		return 1
	}
	return 0
}
