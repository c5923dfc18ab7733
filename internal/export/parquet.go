// Package export writes reduced series to Parquet files using
// github.com/parquet-go/parquet-go.
package export

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"pool-stats-lab/internal/domain"
)

// ReducedPointRecord is one reduced point as stored in Parquet.
type ReducedPointRecord struct {
	// Timestamp is the bucket start, or the sample time of a forced point
	Timestamp time.Time `parquet:"timestamp,timestamp(millisecond),snappy"`

	PoolHashrate       *float64 `parquet:"pool_hashrate,optional,snappy"`
	PoolHashrateMHs    *float64 `parquet:"pool_hashrate_mhs,optional,snappy"`
	NetworkHashrate    *float64 `parquet:"network_hashrate,optional,snappy"`
	NetworkHashrateGHs *float64 `parquet:"network_hashrate_ghs,optional,snappy"`
	BlocksFound        *int64   `parquet:"pool_blocks_found,optional,snappy"`
	Epoch              *int64   `parquet:"epoch,optional,snappy"`
	PriceA             *float64 `parquet:"price_a,optional,snappy"`
	PriceB             *float64 `parquet:"price_b,optional,snappy"`

	BlockEvent  bool  `parquet:"block_event,snappy"`
	Forced      bool  `parquet:"forced,snappy"`
	SampleCount int32 `parquet:"sample_count,snappy"`
}

// ConvertReducedPoints maps reduced points to Parquet records.
func ConvertReducedPoints(points []domain.ReducedPoint) []ReducedPointRecord {
	records := make([]ReducedPointRecord, len(points))
	for i, p := range points {
		records[i] = ReducedPointRecord{
			Timestamp:          time.UnixMilli(p.TimestampMs).UTC(),
			PoolHashrate:       p.PoolHashrate,
			PoolHashrateMHs:    p.PoolHashrateMHs,
			NetworkHashrate:    p.NetworkHashrate,
			NetworkHashrateGHs: p.NetworkHashrateGHs,
			BlocksFound:        p.BlocksFound,
			Epoch:              p.Epoch,
			PriceA:             p.PriceA,
			PriceB:             p.PriceB,
			BlockEvent:         p.BlockEvent,
			Forced:             p.Forced,
			SampleCount:        int32(p.SampleCount),
		}
	}
	return records
}

// WriteReducedParquet writes points to a Parquet file at outputPath.
func WriteReducedParquet(points []domain.ReducedPoint, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[ReducedPointRecord](file)
	if _, err := writer.Write(ConvertReducedPoints(points)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	return file.Close()
}
