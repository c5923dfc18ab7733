package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRefresh(t *testing.T) {
	before := testutil.ToFloat64(DefaultMetrics.RefreshCycles.WithLabelValues("malformed"))
	RecordRefresh("malformed", 0.2, 1714521600)
	assert.Equal(t, before+1, testutil.ToFloat64(DefaultMetrics.RefreshCycles.WithLabelValues("malformed")))

	RecordRefresh("ok", 0.1, 1714521600)
	assert.Equal(t, float64(1714521600), testutil.ToFloat64(DefaultMetrics.LastSuccessfulRefresh))
}

func TestRecordFetch(t *testing.T) {
	rows := testutil.ToFloat64(DefaultMetrics.RowsIngested)
	errs := testutil.ToFloat64(DefaultMetrics.FetchErrors.WithLabelValues("csv"))

	RecordFetch("csv", 0.01, 25, nil)
	RecordFetch("csv", 0.01, 0, errors.New("boom"))

	assert.Equal(t, rows+25, testutil.ToFloat64(DefaultMetrics.RowsIngested))
	assert.Equal(t, errs+1, testutil.ToFloat64(DefaultMetrics.FetchErrors.WithLabelValues("csv")))
}

func TestHandler(t *testing.T) {
	RecordCacheLookup(CacheHit)
	UpdateSeriesSizes(10, 4, 1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "pool_stats_lab_ingestion_cache_lookups_total"))
	assert.True(t, strings.Contains(body, "pool_stats_lab_series_reduced_points 4"))
}
