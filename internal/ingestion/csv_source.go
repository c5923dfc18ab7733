package ingestion

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pool-stats-lab/internal/domain"
	"pool-stats-lab/internal/httpclient"
)

// CSVSource reads rows from a CSV document published over HTTP.
type CSVSource struct {
	url    string
	client *httpclient.Client
	now    func() time.Time
}

// NewCSVSource creates a CSVSource for rawURL.
func NewCSVSource(rawURL string, opts ...httpclient.ClientOption) (*CSVSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse csv url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("csv url %q: scheme must be http or https", rawURL)
	}
	return &CSVSource{
		url:    rawURL,
		client: httpclient.New(opts...),
		now:    time.Now,
	}, nil
}

// Name returns the source URL.
func (s *CSVSource) Name() string {
	return "csv:" + s.url
}

// FetchRows downloads and parses the document. A t=<unix seconds> query
// parameter defeats intermediate caches.
func (s *CSVSource) FetchRows(ctx context.Context) ([]domain.RawRow, error) {
	body, err := s.client.Get(ctx, s.requestURL())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	return ParseCSV(bytes.NewReader(body))
}

func (s *CSVSource) requestURL() string {
	u, err := url.Parse(s.url)
	if err != nil {
		return s.url
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(s.now().Unix(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}

// ParseCSV reads a header line followed by records. Short records are padded
// with empty values and extra fields are dropped. An empty document yields no rows.
func ParseCSV(r io.Reader) ([]domain.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []domain.RawRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []domain.RawRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		row := make(domain.RawRow, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	if rows == nil {
		rows = []domain.RawRow{}
	}
	return rows, nil
}
