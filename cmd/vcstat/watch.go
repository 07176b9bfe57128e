package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/okian/vcdash/internal/adapters/render"
	"github.com/okian/vcdash/internal/domain/weekly"
)

type watchKeys struct {
	Refresh key.Binding
	Quit    key.Binding
}

var keys = watchKeys{
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

var (
	statusStyle = lipgloss.NewStyle().Faint(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))
)

type (
	chartMsg struct {
		chart weekly.Chart
		at    time.Time
	}
	fetchErrMsg struct{ err error }
	tickMsg     time.Time
)

// watchModel redraws the weekly chart on every tick and on demand.
type watchModel struct {
	fetch    func(ctx context.Context) (weekly.Chart, error)
	ctx      context.Context
	interval time.Duration

	chart   *weekly.Chart
	fetched time.Time
	err     error
	loading bool
	width   int
	height  int
}

func newWatchModel(ctx context.Context, fetch func(context.Context) (weekly.Chart, error), interval time.Duration) watchModel {
	return watchModel{fetch: fetch, ctx: ctx, interval: interval, loading: true}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.tick())
}

func (m watchModel) load() tea.Cmd {
	return func() tea.Msg {
		chart, err := m.fetch(m.ctx)
		if err != nil {
			return fetchErrMsg{err: err}
		}
		return chartMsg{chart: chart, at: time.Now()}
	}
}

func (m watchModel) tick() tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chartMsg:
		m.chart = &msg.chart
		m.fetched = msg.at
		m.err = nil
		m.loading = false
		return m, nil

	case fetchErrMsg:
		// Keep the last good chart on screen.
		m.err = msg.err
		m.loading = false
		return m, nil

	case tickMsg:
		m.loading = true
		return m, tea.Batch(m.load(), m.tick())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	if m.chart != nil {
		opts := render.ChartOptions{}
		if m.width > 0 {
			opts.Width = m.width - 2
		}
		if m.height > 6 {
			// Legend, summary and status lines.
			opts.Height = m.height - 6
		}
		if err := render.WeeklyChart(&b, *m.chart, opts); err != nil {
			b.WriteString(errStyle.Render(err.Error()) + "\n")
		}
	}

	status := "loading..."
	if !m.loading && !m.fetched.IsZero() {
		status = "updated " + m.fetched.Format("15:04:05")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render("fetch failed: "+m.err.Error()) + "\n")
	}
	b.WriteString(statusStyle.Render(fmt.Sprintf("%s  %s %s  %s %s",
		status,
		keys.Refresh.Help().Key, keys.Refresh.Help().Desc,
		keys.Quit.Help().Key, keys.Quit.Help().Desc,
	)))
	return b.String()
}

func (c *cli) watchCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live weekly chart that refreshes on an interval",
		Example: `  vcstat watch
  vcstat watch --interval 30s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := newWatchModel(cmd.Context(), c.svc.Weekly, interval)
			p := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err := p.Run()
			return err
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "Refresh interval (0 refreshes only on r)")
	return cmd
}
