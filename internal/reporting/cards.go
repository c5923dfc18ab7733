package reporting

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"pool-stats-lab/internal/domain"
	"pool-stats-lab/internal/normalization"
	"pool-stats-lab/internal/orchestrator"
)

// Card is one headline metric.
type Card struct {
	Title  string
	Value  string
	Detail string

	// Trend is the sign of the detail for colored output: -1, 0 or 1.
	Trend int
}

// buildCards derives the headline cards from a snapshot.
func buildCards(s *orchestrator.Snapshot) []Card {
	sum := s.Summary
	var latest domain.Sample
	if sum.Latest != nil {
		latest = *sum.Latest
	}

	ath := Placeholder
	if sum.AllTimeHigh != nil {
		ath = fmt.Sprintf("ATH: %.2f MH/s (%s)",
			sum.AllTimeHigh.Hashrate/normalization.HashesPerMega, formatDate(sum.AllTimeHigh.TimestampMs))
	}

	lastBlock := "No blocks found yet"
	if sum.TimeSinceLastEventMs != nil {
		lastBlock = "Last block: " + FormatTimespan(time.Duration(*sum.TimeSinceLastEventMs)*time.Millisecond)
	}

	window := time.Duration(sum.WindowMs) * time.Millisecond
	events := Placeholder
	if sum.EventsInWindow != nil {
		events = fmt.Sprintf("%d in last %s", *sum.EventsInWindow, shortDuration(window))
	}

	meanWindow := Placeholder
	if sum.WindowedMeanPool != nil {
		meanWindow = fmt.Sprintf("%.2f MH/s", *sum.WindowedMeanPool/normalization.HashesPerMega)
	}

	cards := []Card{
		{
			Title:  "POOL HASHRATE",
			Value:  optHashrate(latest.PoolHashrate),
			Detail: ath + ", Δ " + optFloat(sum.PoolHashrateDeltaMHs, "%+.2f MH/s"),
		},
		{
			Title:  fmt.Sprintf("MEAN HASHRATE (%s)", strings.ToUpper(shortDuration(window))),
			Value:  meanWindow,
			Detail: "all time " + optHashrate(sum.MeanPoolHashrate),
		},
		{
			Title:  "BLOCKS FOUND",
			Value:  optInt(sum.BlocksFound),
			Detail: lastBlock + ", " + events,
		},
		{
			Title:  "NETWORK HASHRATE",
			Value:  optHashrate(latest.NetworkHashrate),
			Detail: "mean " + optHashrate(sum.WindowedMeanNetwork) + ", Δ " + optFloat(sum.NetworkHashrateDeltaGHs, "%+.2f GH/s"),
		},
	}

	for _, t := range s.Tickers {
		cards = append(cards, Card{
			Title:  t.Symbol,
			Value:  FormatPrice(t.LastPrice),
			Detail: FormatPercent(t.ChangePercent),
			Trend:  t.ChangePercent.Sign(),
		})
	}

	return cards
}

// WriteCards renders the headline metrics as a table. Positive trends are
// green and negative ones red when useColors is set.
func WriteCards(w io.Writer, s *orchestrator.Snapshot, useColors bool) error {
	if s.Status != orchestrator.StatusOK {
		msg := "No data yet"
		if s.Err != nil {
			msg = fmt.Sprintf("Data unavailable: %v", s.Err)
		}
		_, err := fmt.Fprintf(w, "%s (%s)\n", msg, s.Status)
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Metric", "Value", "Detail"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var red, green func(...any) string
	if useColors {
		red = color.New(color.FgRed).SprintFunc()
		green = color.New(color.FgGreen).SprintFunc()
	} else {
		red = fmt.Sprint
		green = fmt.Sprint
	}

	var data [][]string
	for _, c := range buildCards(s) {
		detail := c.Detail
		switch {
		case c.Trend > 0:
			detail = green(detail)
		case c.Trend < 0:
			detail = red(detail)
		}
		data = append(data, []string{c.Title, c.Value, detail})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "Generated %s from %d samples (%d points)\n",
		s.GeneratedAt.Format(time.RFC3339), s.SampleCount, s.Reduced.Len())
	return err
}
