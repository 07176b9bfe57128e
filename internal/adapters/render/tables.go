package render

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/okian/vcdash/internal/domain/usage"
	"github.com/okian/vcdash/internal/domain/weekly"
)

const weeklyDateLayout = usage.DateLayout

var (
	weekendColor = color.New(color.FgRed).SprintFunc()
	medalColors  = []func(a ...interface{}) string{
		color.RGB(255, 215, 0).SprintFunc(),   // gold
		color.RGB(192, 192, 192).SprintFunc(), // silver
		color.RGB(205, 127, 50).SprintFunc(),  // bronze
	}
)

func hours(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func newTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	return table
}

func flush(table *tablewriter.Table, data [][]string) error {
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// isWeekend reports whether a YYYY-MM-DD date falls on Saturday or Sunday.
func isWeekend(date string) bool {
	t, err := time.Parse(weeklyDateLayout, date)
	if err != nil {
		return false
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WeeklyTable writes the pivot as a date by channel grid. Weekend dates are
// red; absent cells are blank rather than zero.
func WeeklyTable(w io.Writer, chart weekly.Chart) error {
	headers := append([]string{"Date"}, chart.Channels...)
	headers = append(headers, "Total")
	table := newTable(w, headers)

	data := make([][]string, 0, len(chart.Rows)+1)
	for _, row := range chart.Rows {
		date := row.Date
		if isWeekend(date) {
			date = weekendColor(date)
		}
		line := []string{date}
		for _, ch := range chart.Channels {
			if v, ok := row.Hours(ch); ok {
				line = append(line, hours(v))
			} else {
				line = append(line, "")
			}
		}
		line = append(line, hours(row.Total()))
		data = append(data, line)
	}

	footer := make([]string, len(headers))
	footer[0] = "avg/day"
	footer[len(footer)-1] = hours(chart.Average)
	data = append(data, footer)

	return flush(table, data)
}

// TodayTable writes today's usage per channel and the mean.
func TodayTable(w io.Writer, today usage.TodaySummary) error {
	table := newTable(w, []string{"Channel", "Hours"})
	data := make([][]string, 0, len(today.Channels)+1)
	for _, c := range today.Channels {
		data = append(data, []string{c.ChannelName, hours(c.DurationHour)})
	}
	data = append(data, []string{"average", hours(today.Average)})
	return flush(table, data)
}

// TotalTable writes all-time totals with the top three highlighted.
func TotalTable(w io.Writer, total []usage.RankedUsage) error {
	table := newTable(w, []string{"Rank", "Channel", "Hours"})
	data := make([][]string, 0, len(total))
	for i, r := range total {
		name := r.ChannelName
		if i < len(medalColors) {
			name = medalColors[i](name)
		}
		data = append(data, []string{strconv.Itoa(r.Rank), name, hours(r.DurationHour)})
	}
	return flush(table, data)
}

// RankingTable writes the ranking as received.
func RankingTable(w io.Writer, ranking []usage.RankedUsage) error {
	table := newTable(w, []string{"Rank", "Channel", "ID", "Hours"})
	data := make([][]string, 0, len(ranking))
	for _, r := range ranking {
		data = append(data, []string{
			strconv.Itoa(r.Rank),
			r.ChannelName,
			strconv.FormatInt(r.ChannelID, 10),
			hours(r.DurationHour),
		})
	}
	return flush(table, data)
}

// MonthlyTable writes the per-day usage of one month and its total.
func MonthlyTable(w io.Writer, year, month int, report usage.MonthlyReport) error {
	if _, err := fmt.Fprintf(w, "%04d-%02d\n", year, month); err != nil {
		return err
	}
	table := newTable(w, []string{"Date", "Hours"})
	data := make([][]string, 0, len(report.DailyUsage)+1)
	for _, d := range report.DailyUsage {
		date := d.Date
		if isWeekend(date) {
			date = weekendColor(date)
		}
		data = append(data, []string{date, hours(d.DurationHour)})
	}
	data = append(data, []string{"total", hours(report.TotalHour)})
	return flush(table, data)
}
