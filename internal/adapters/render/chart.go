// Package render draws usage data for terminals: a stacked weekly bar chart
// and plain tables.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/okian/vcdash/internal/domain/weekly"
)

// Default chart size in terminal cells.
const (
	DefaultWidth  = 70
	DefaultHeight = 14
)

// ChartOptions sizes the weekly chart.
type ChartOptions struct {
	Width  int
	Height int
}

func (o ChartOptions) withDefaults() ChartOptions {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// WeeklyChart writes one stacked bar per row, segments colored per channel,
// followed by a legend and the rolling average.
func WeeklyChart(w io.Writer, chart weekly.Chart, opts ChartOptions) error {
	opts = opts.withDefaults()

	m := barchart.New(opts.Width, opts.Height)
	m.PushAll(bars(chart))
	m.Draw()

	var b strings.Builder
	b.WriteString(m.View())
	b.WriteString("\n")
	b.WriteString(legend(chart))
	b.WriteString("\n")
	fmt.Fprintf(&b, "avg/day %.2fh  total %.2fh", chart.Average, chart.TotalHours)
	if chart.Skipped > 0 {
		fmt.Fprintf(&b, "  skipped %d", chart.Skipped)
	}
	if chart.Dropped > 0 {
		fmt.Fprintf(&b, "  dropped %d", chart.Dropped)
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func bars(chart weekly.Chart) []barchart.BarData {
	out := make([]barchart.BarData, 0, len(chart.Rows))
	for _, row := range chart.Rows {
		values := make([]barchart.BarValue, 0, len(chart.Channels))
		// Stack in channel order so every bar uses the same segment order.
		for _, ch := range chart.Channels {
			hours, ok := row.Hours(ch)
			if !ok || hours == 0 {
				continue
			}
			values = append(values, barchart.BarValue{
				Name:  ch,
				Value: hours,
				Style: channelStyle(chart, ch),
			})
		}
		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle()}}
		}
		out = append(out, barchart.BarData{Label: shortDate(row.Date), Values: values})
	}
	return out
}

func legend(chart weekly.Chart) string {
	parts := make([]string, 0, len(chart.Channels))
	for _, ch := range chart.Channels {
		parts = append(parts, channelStyle(chart, ch).Render("■")+" "+ch)
	}
	return strings.Join(parts, "  ")
}

func channelStyle(chart weekly.Chart, channel string) lipgloss.Style {
	c, ok := chart.Colors[channel]
	if !ok {
		c = weekly.FallbackColor
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

// shortDate trims YYYY-MM-DD to MM-DD; other strings pass through.
func shortDate(d string) string {
	if len(d) == len(weeklyDateLayout) {
		return d[5:]
	}
	return d
}
