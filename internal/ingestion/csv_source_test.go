package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pool-stats-lab/internal/domain"
	"pool-stats-lab/internal/httpclient"
)

const sampleCSV = `timestamp,pool_hashrate,network_hashrate,pool_blocks_found
2024-05-01 00:00:00,100,4000000000,5
2024-05-01 00:03:00,150,,5
2024-05-01 00:07:00,90,4100000000
`

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, domain.RawRow{
		"timestamp":         "2024-05-01 00:00:00",
		"pool_hashrate":     "100",
		"network_hashrate":  "4000000000",
		"pool_blocks_found": "5",
	}, rows[0])
	assert.Equal(t, "", rows[1]["network_hashrate"])

	padded, ok := rows[2]["pool_blocks_found"]
	assert.True(t, ok, "short row padded")
	assert.Equal(t, "", padded)
}

func TestParseCSV_Edges(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []domain.RawRow
	}{
		{"empty document", "", []domain.RawRow{}},
		{"header only", "timestamp,pool_hashrate\n", []domain.RawRow{}},
		{"bom and spaces", "\ufefftimestamp , pool_hashrate\n 1714521600 , 5 \n", []domain.RawRow{
			{"timestamp": "1714521600", "pool_hashrate": "5"},
		}},
		{"extra fields dropped", "timestamp\n1,2,3\n", []domain.RawRow{{"timestamp": "1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseCSV(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestParseCSV_Malformed(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("timestamp,pool_hashrate\n\"unterminated,5\n"))
	assert.Error(t, err)
}

func TestCSVSource_FetchRows(t *testing.T) {
	var gotT string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotT = r.URL.Query().Get("t")
		assert.Equal(t, "1", r.URL.Query().Get("gid"), "existing query kept")
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(sampleCSV))
	}))
	defer server.Close()

	src, err := NewCSVSource(server.URL+"/stats.csv?gid=1", httpclient.WithMaxRetries(0))
	require.NoError(t, err)
	src.now = func() time.Time { return time.Unix(1714521600, 0) }

	rows, err := src.FetchRows(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "1714521600", gotT)
	assert.Equal(t, "csv:"+server.URL+"/stats.csv?gid=1", src.Name())
}

func TestCSVSource_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	src, err := NewCSVSource(server.URL, httpclient.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = src.FetchRows(context.Background())
	assert.True(t, errors.Is(err, ErrUnexpectedStatus), "got %v", err)
}

func TestNewCSVSource_InvalidURL(t *testing.T) {
	_, err := NewCSVSource("ftp://example.com/stats.csv")
	assert.Error(t, err)

	_, err = NewCSVSource("://bad")
	assert.Error(t, err)
}
