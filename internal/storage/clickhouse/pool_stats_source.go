package clickhouse

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"pool-stats-lab/internal/domain"
	"pool-stats-lab/internal/storage"
)

// DefaultPoolStatsTable is the table created by the embedded migrations.
const DefaultPoolStatsTable = "pool_stats"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// PoolStatsRow is one typed pool_stats record.
type PoolStatsRow struct {
	Timestamp       time.Time
	PoolHashrate    *float64
	NetworkHashrate *float64
	BlocksFound     *int64
	Epoch           *int64
	PriceA          *float64
	PriceB          *float64
}

// PoolStatsSource reads raw telemetry rows from a ClickHouse table.
type PoolStatsSource struct {
	conn  *Conn
	table string
}

// NewPoolStatsSource creates a source over table. Empty table uses DefaultPoolStatsTable.
func NewPoolStatsSource(conn *Conn, table string) (*PoolStatsSource, error) {
	if table == "" {
		table = DefaultPoolStatsTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("table %q: %w", table, storage.ErrInvalidInput)
	}
	return &PoolStatsSource{conn: conn, table: table}, nil
}

// Name identifies the source in cache keys and logs.
func (s *PoolStatsSource) Name() string {
	return "clickhouse:" + s.table
}

// FetchRows returns every row ordered by timestamp ASC as untyped RawRows.
// Null columns become empty strings.
func (s *PoolStatsSource) FetchRows(ctx context.Context) ([]domain.RawRow, error) {
	query := fmt.Sprintf(`
		SELECT timestamp, pool_hashrate, network_hashrate, pool_blocks_found, epoch, price_a, price_b
		FROM %s
		ORDER BY timestamp ASC
	`, s.table)

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query pool stats: %w", err)
	}
	defer rows.Close()

	typed, err := scanPoolStats(rows)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RawRow, len(typed))
	for i, r := range typed {
		out[i] = r.RawRow()
	}
	return out, nil
}

// InsertBulk appends rows to the table in one batch.
func (s *PoolStatsSource) InsertBulk(ctx context.Context, rows []PoolStatsRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			timestamp, pool_hashrate, network_hashrate, pool_blocks_found, epoch, price_a, price_b
		)
	`, s.table))
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.Timestamp.UTC(), r.PoolHashrate, r.NetworkHashrate,
			r.BlocksFound, r.Epoch, r.PriceA, r.PriceB,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// RawRow renders the typed row with the default column names.
func (r PoolStatsRow) RawRow() domain.RawRow {
	return domain.RawRow{
		domain.ColumnTimestamp:       r.Timestamp.UTC().Format(time.RFC3339Nano),
		domain.ColumnPoolHashrate:    formatFloat(r.PoolHashrate),
		domain.ColumnNetworkHashrate: formatFloat(r.NetworkHashrate),
		domain.ColumnBlocksFound:     formatInt(r.BlocksFound),
		domain.ColumnEpoch:           formatInt(r.Epoch),
		domain.ColumnPriceA:          formatFloat(r.PriceA),
		domain.ColumnPriceB:          formatFloat(r.PriceB),
	}
}

// scanPoolStats scans multiple rows.
func scanPoolStats(rows chRows) ([]PoolStatsRow, error) {
	var out []PoolStatsRow

	for rows.Next() {
		var r PoolStatsRow
		err := rows.Scan(
			&r.Timestamp, &r.PoolHashrate, &r.NetworkHashrate,
			&r.BlocksFound, &r.Epoch, &r.PriceA, &r.PriceB,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pool stats row: %w", err)
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pool stats rows: %w", err)
	}

	return out, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
