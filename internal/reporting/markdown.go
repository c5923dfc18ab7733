package reporting

import (
	"fmt"
	"strings"
	"time"

	"pool-stats-lab/internal/orchestrator"
)

// RenderMarkdown renders a snapshot as Markdown string.
func RenderMarkdown(s *orchestrator.Snapshot) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Pool Stats Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", s.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Cycle: %s | Source: %s | Status: %s\n\n", s.CycleID, s.Source, s.Status))

	switch s.Status {
	case orchestrator.StatusMalformed, orchestrator.StatusFailed:
		sb.WriteString(fmt.Sprintf("**Data unavailable:** %v\n", s.Err))
		return sb.String()
	case orchestrator.StatusNoData:
		sb.WriteString("**No data yet.** The source returned no rows.\n")
		return sb.String()
	}

	// Headline cards
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value | Detail |\n")
	sb.WriteString("|--------|-------|--------|\n")
	for _, c := range buildCards(s) {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", c.Title, c.Value, c.Detail))
	}
	sb.WriteString("\n")

	// Per-epoch blocks
	if len(s.Summary.PerEpochEventCount) > 0 {
		sb.WriteString("## Blocks per Epoch\n\n")
		sb.WriteString("| Epoch | Blocks |\n")
		sb.WriteString("|-------|--------|\n")
		for _, e := range s.Summary.PerEpochEventCount {
			sb.WriteString(fmt.Sprintf("| %d | %d |\n", e.Epoch, e.Blocks))
		}
		sb.WriteString("\n")
	}

	// Block events
	sb.WriteString("## Block Events\n\n")
	if len(s.Overlays.EventTimestamps) > 0 {
		for _, ts := range s.Overlays.EventTimestamps {
			sb.WriteString(fmt.Sprintf("- %s\n", formatTime(ts)))
		}
	} else {
		sb.WriteString("No blocks found yet.\n")
	}
	sb.WriteString("\n")

	// Series
	sb.WriteString("## Reduced Series\n\n")
	sb.WriteString(fmt.Sprintf("Samples: %d | Points: %d | Bucket: %s\n\n",
		s.SampleCount, s.Reduced.Len(), shortDuration(time.Duration(s.Reduced.BucketWidthMs)*time.Millisecond)))

	return sb.String()
}
