package downsampling

import (
	"pool-stats-lab/internal/domain"
	"pool-stats-lab/internal/normalization"
)

// bucketAcc accumulates samples falling into one bucket.
type bucketAcc struct {
	start       int64
	count       int
	poolSum     float64
	poolN       int
	networkSum  float64
	networkN    int
	blocksFound *int64
	epoch       *int64
	priceA      *float64
	priceB      *float64
	anyEvent    bool
}

func (b *bucketAcc) add(s *domain.Sample) {
	b.count++
	if s.PoolHashrate != nil {
		b.poolSum += *s.PoolHashrate
		b.poolN++
	}
	if s.NetworkHashrate != nil {
		b.networkSum += *s.NetworkHashrate
		b.networkN++
	}
	if s.BlocksFound != nil {
		b.blocksFound = s.BlocksFound
	}
	if s.Epoch != nil {
		b.epoch = s.Epoch
	}
	if s.PriceA != nil {
		b.priceA = s.PriceA
	}
	if s.PriceB != nil {
		b.priceB = s.PriceB
	}
	if s.BlockEvent {
		b.anyEvent = true
	}
}

// point builds the aggregate. carryA/carryB are the previous bucket's prices.
func (b *bucketAcc) point(carryA, carryB *float64) domain.ReducedPoint {
	s := domain.Sample{
		TimestampMs:     b.start,
		PoolHashrate:    mean(b.poolSum, b.poolN),
		NetworkHashrate: mean(b.networkSum, b.networkN),
		BlocksFound:     copyInt(b.blocksFound),
		Epoch:           copyInt(b.epoch),
		PriceA:          copyFloat(firstNonNil(b.priceA, carryA)),
		PriceB:          copyFloat(firstNonNil(b.priceB, carryB)),
	}
	normalization.DeriveUnits(&s)

	return domain.ReducedPoint{
		Sample:        s,
		SampleCount:   b.count,
		BlockInBucket: b.anyEvent,
	}
}

// aggregateBuckets groups timestamp-ordered samples into non-empty buckets.
func aggregateBuckets(samples []domain.Sample, widthMs int64) []domain.ReducedPoint {
	var (
		out            []domain.ReducedPoint
		acc            *bucketAcc
		carryA, carryB *float64
	)

	flush := func() {
		if acc == nil {
			return
		}
		p := acc.point(carryA, carryB)
		carryA, carryB = p.PriceA, p.PriceB
		out = append(out, p)
	}

	for i := range samples {
		start := BucketStart(samples[i].TimestampMs, widthMs)
		if acc == nil || acc.start != start {
			flush()
			acc = &bucketAcc{start: start}
		}
		acc.add(&samples[i])
	}
	flush()

	return out
}

func mean(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	m := sum / float64(n)
	return &m
}

func firstNonNil(a, b *float64) *float64 {
	if a != nil {
		return a
	}
	return b
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
