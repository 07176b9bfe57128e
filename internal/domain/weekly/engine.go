// Package weekly turns sparse per-day, per-channel usage records into a dense
// seven-day stacked series with channel colors and a rolling average.
//
// The engine performs no I/O and holds no mutable state, so a single Engine
// may serve concurrent callers and a newer result can replace an older one
// without coordination.
package weekly

import (
	"fmt"
	"time"

	"github.com/okian/vcdash/internal/domain/usage"
)

// Chart is everything a renderer needs to draw the weekly stacked bars.
type Chart struct {
	Window     []string `json:"window"`
	Rows       []Row    `json:"rows"`
	Channels   []string `json:"channels"`
	Colors     ColorMap `json:"colors"`
	Average    float64  `json:"average"`
	TotalHours float64  `json:"total_hours"`

	// Skipped counts malformed records; Dropped counts out-of-window records
	// discarded under DropOutOfWindow.
	Skipped int `json:"skipped"`
	Dropped int `json:"dropped"`

	// Fallbacks counts channels that had no configured color.
	Fallbacks int `json:"-"`
	// SkipErr joins the validation errors of skipped records.
	SkipErr error `json:"-"`
}

// Engine builds weekly charts.
type Engine struct {
	clock       Clock
	loc         *time.Location
	colors      ColorLookup
	fallback    string
	outOfWindow OutOfWindowPolicy
	duplicates  DuplicatePolicy
}

// New constructs an Engine. Defaults: system clock, local time zone, no
// configured colors, lenient out-of-window handling, last write wins.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:       SystemClock{},
		loc:         time.Local,
		fallback:    FallbackColor,
		outOfWindow: KeepOutOfWindow,
		duplicates:  LastWriteWins,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today returns the current time in the engine's zone, the same instant the
// window of the next Run ends on.
func (e *Engine) Today() (time.Time, error) {
	now := e.clock.Now()
	if now.IsZero() {
		return time.Time{}, fmt.Errorf("weekly: %w", ErrClockUnavailable)
	}
	return now.In(e.loc), nil
}

// Run pivots already-fetched records onto the window ending today.
// Malformed records are skipped and counted, never fatal.
func (e *Engine) Run(records []usage.RawRecord) (Chart, error) {
	now := e.clock.Now()
	if now.IsZero() {
		return Chart{}, fmt.Errorf("weekly: %w", ErrClockUnavailable)
	}
	window := Window(now, e.loc)

	p := buildPivot(window, records, e.outOfWindow, e.duplicates)
	colors, misses := ResolveColors(p.ids, e.colors, e.fallback)

	return Chart{
		Window:     window,
		Rows:       p.rows,
		Channels:   ChannelKeys(p.rows),
		Colors:     colors,
		Average:    Average(p.total),
		TotalHours: p.total,
		Skipped:    p.skipped,
		Dropped:    p.dropped,
		Fallbacks:  misses,
		SkipErr:    p.err(),
	}, nil
}
