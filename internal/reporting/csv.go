package reporting

import (
	"strconv"
	"strings"

	"pool-stats-lab/internal/domain"
)

// RenderCSV renders a reduced series as CSV string. Undefined values are empty.
func RenderCSV(reduced domain.ReducedSeries) string {
	var sb strings.Builder

	// Header
	sb.WriteString("timestamp,pool_hashrate,pool_hashrate_mhs,network_hashrate,network_hashrate_ghs,")
	sb.WriteString("pool_blocks_found,epoch,price_a,price_b,block_event,forced,sample_count\n")

	// Rows
	for _, p := range reduced.Points {
		fields := []string{
			formatTime(p.TimestampMs),
			csvFloat(p.PoolHashrate),
			csvFloat(p.PoolHashrateMHs),
			csvFloat(p.NetworkHashrate),
			csvFloat(p.NetworkHashrateGHs),
			csvInt(p.BlocksFound),
			csvInt(p.Epoch),
			csvFloat(p.PriceA),
			csvFloat(p.PriceB),
			strconv.FormatBool(p.BlockEvent),
			strconv.FormatBool(p.Forced),
			strconv.Itoa(p.SampleCount),
		}
		sb.WriteString(strings.Join(fields, ","))
		sb.WriteString("\n")
	}

	return sb.String()
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func csvInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
