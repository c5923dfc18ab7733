package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pool-stats-lab/internal/domain"
)

func point(ts int64, mhs *float64, event bool) domain.ReducedPoint {
	return domain.ReducedPoint{Sample: domain.Sample{TimestampMs: ts, PoolHashrateMHs: mhs, BlockEvent: event}}
}

func TestOverlays(t *testing.T) {
	reduced := domain.ReducedSeries{Points: []domain.ReducedPoint{
		point(0, nil, false),
		point(1, f(10), false),
		point(2, f(30), true),
		point(3, nil, false),
		point(4, f(20), true),
	}}

	o := Overlays(reduced)
	require.Len(t, o.Points, 5)

	assert.Nil(t, o.Points[0].ExpandingMeanMHs)
	assert.Nil(t, o.Points[0].RunningMaxMHs)

	assert.Equal(t, 10.0, *o.Points[1].ExpandingMeanMHs)
	assert.Equal(t, 20.0, *o.Points[2].ExpandingMeanMHs)
	assert.Equal(t, 30.0, *o.Points[2].RunningMaxMHs)
	assert.Equal(t, 20.0, *o.Points[3].ExpandingMeanMHs, "carried over missing value")
	assert.Equal(t, 20.0, *o.Points[4].ExpandingMeanMHs)
	assert.Equal(t, 30.0, *o.Points[4].RunningMaxMHs)

	assert.Equal(t, []int64{2, 4}, o.EventTimestamps)
}

func TestOverlays_Empty(t *testing.T) {
	o := Overlays(domain.ReducedSeries{})
	assert.Empty(t, o.Points)
	assert.Nil(t, o.EventTimestamps)
}
