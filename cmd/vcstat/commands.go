package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/okian/vcdash/internal/adapters/render"
)

func (c *cli) weeklyCmd() *cobra.Command {
	var (
		table  bool
		width  int
		height int
	)
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Stacked usage per channel for the last seven days",
		Example: `  vcstat weekly
  vcstat weekly --table
  vcstat --base-url http://localhost:8000 weekly --width 90`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chart, err := c.svc.Weekly(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case c.jsonOut:
				return c.printJSON(out, chart)
			case table:
				return render.WeeklyTable(out, chart)
			default:
				if !cmd.Flags().Changed("width") {
					width = terminalWidth(out, width)
				}
				return render.WeeklyChart(out, chart, render.ChartOptions{Width: width, Height: height})
			}
		},
	}
	cmd.Flags().BoolVar(&table, "table", false, "Print a date by channel table instead of the chart")
	cmd.Flags().IntVar(&width, "width", render.DefaultWidth, "Chart width in cells (default: terminal width)")
	cmd.Flags().IntVar(&height, "height", render.DefaultHeight, "Chart height in cells")
	return cmd
}

func (c *cli) todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Today's usage per channel and the mean",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := c.svc.Today(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), today)
			}
			return render.TodayTable(cmd.OutOrStdout(), today)
		},
	}
}

func (c *cli) totalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "total",
		Short: "All-time usage per channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := c.svc.Total(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), total)
			}
			return render.TotalTable(cmd.OutOrStdout(), total)
		},
	}
}

func (c *cli) rankingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ranking",
		Short: "Channel ranking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ranking, err := c.svc.Ranking(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), ranking)
			}
			return render.RankingTable(cmd.OutOrStdout(), ranking)
		},
	}
}

func (c *cli) monthlyCmd() *cobra.Command {
	var year, month int
	cmd := &cobra.Command{
		Use:     "monthly",
		Short:   "Per-day usage of one month",
		Example: `  vcstat monthly --year 2025 --month 2`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("year") || !cmd.Flags().Changed("month") {
				curYear, curMonth, err := c.svc.CurrentMonth()
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("year") {
					year = curYear
				}
				if !cmd.Flags().Changed("month") {
					month = curMonth
				}
			}
			report, err := c.svc.Monthly(cmd.Context(), year, month)
			if err != nil {
				return err
			}
			if c.jsonOut {
				return c.printJSON(cmd.OutOrStdout(), report)
			}
			return render.MonthlyTable(cmd.OutOrStdout(), year, month, report)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Year (default: current year in the configured timezone)")
	cmd.Flags().IntVar(&month, "month", 0, "Month 1-12 (default: current month in the configured timezone)")
	return cmd
}

// terminalWidth returns the width of w when it is a terminal, minus a margin
// for the axis. Anything else gets fallback.
func terminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return fallback
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 2 {
		return fallback
	}
	return cols - 2
}
