// Package reporting renders refresh snapshots for terminals and files.
package reporting

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Placeholder is shown for undefined values.
const Placeholder = "—"

// FormatHashrate renders an H/s value with the largest unit not exceeding it.
func FormatHashrate(h float64) string {
	abs := math.Abs(h)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.2f GH/s", h/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2f MH/s", h/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2f KH/s", h/1e3)
	}
	return fmt.Sprintf("%.2f H/s", h)
}

// FormatTimespan renders an elapsed duration as "Xd Yh ago" when it spans at
// least a day, otherwise "Hh Mm ago".
func FormatTimespan(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int64(d / (24 * time.Hour))
	rem := d % (24 * time.Hour)
	hours := int64(rem / time.Hour)
	if days > 0 {
		return fmt.Sprintf("%dd %dh ago", days, hours)
	}
	minutes := int64((rem % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm ago", hours, minutes)
}

// FormatPrice renders a quote with two decimals, or six below one unit.
func FormatPrice(p decimal.Decimal) string {
	if p.Abs().LessThan(decimal.NewFromInt(1)) {
		return "$" + p.StringFixed(6)
	}
	return "$" + p.StringFixed(2)
}

// FormatPercent renders a signed percentage with two decimals.
func FormatPercent(p decimal.Decimal) string {
	s := p.StringFixed(2)
	if p.IsPositive() {
		s = "+" + s
	}
	return s + "%"
}

func optHashrate(h *float64) string {
	if h == nil {
		return Placeholder
	}
	return FormatHashrate(*h)
}

func optFloat(v *float64, format string) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprintf(format, *v)
}

func optInt(v *int64) string {
	if v == nil {
		return Placeholder
	}
	return fmt.Sprintf("%d", *v)
}

// shortDuration renders whole hours as "6h" and whole minutes as "5m".
func shortDuration(d time.Duration) string {
	switch {
	case d > 0 && d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d > 0 && d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	}
	return d.String()
}

func formatDate(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}

func formatTime(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
