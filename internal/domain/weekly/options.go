package weekly

import "time"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithClock sets the source of "today".
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLocation sets the time zone whose calendar days make up the window.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithColors sets the static channel id -> color table.
func WithColors(lookup ColorLookup) Option {
	return func(e *Engine) {
		e.colors = lookup
	}
}

// WithFallbackColor overrides the color for unconfigured channels.
func WithFallbackColor(color string) Option {
	return func(e *Engine) {
		if color != "" {
			e.fallback = color
		}
	}
}

// WithOutOfWindow sets the policy for records dated outside the window.
func WithOutOfWindow(p OutOfWindowPolicy) Option {
	return func(e *Engine) {
		e.outOfWindow = p
	}
}

// WithDuplicates sets how colliding (date, channel) records combine.
func WithDuplicates(p DuplicatePolicy) Option {
	return func(e *Engine) {
		e.duplicates = p
	}
}
