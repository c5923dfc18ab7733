// Package ingestion fetches raw telemetry rows from external sources.
package ingestion

import (
	"context"

	"pool-stats-lab/internal/domain"
	"pool-stats-lab/internal/httpclient"
)

// ErrUnexpectedStatus is returned when an HTTP source answers with a non-2xx status.
var ErrUnexpectedStatus = httpclient.ErrUnexpectedStatus

// RowSource provides raw telemetry rows.
type RowSource interface {
	// FetchRows returns every row currently published by the source.
	// Rows may be unordered; the normalizer establishes order.
	FetchRows(ctx context.Context) ([]domain.RawRow, error)

	// Name identifies the source in logs, metrics and cache keys.
	Name() string
}
