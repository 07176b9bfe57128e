package weekly

import (
	"time"

	"github.com/okian/vcdash/internal/domain/usage"
)

// WindowDays is the fixed length of the calendar window.
const WindowDays = 7

// Clock provides the current time. It lets tests pin "today".
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	Time time.Time
}

// Now returns the fixed time.
func (c FixedClock) Now() time.Time {
	return c.Time
}

// Window returns the WindowDays calendar dates ending at the local day of now,
// oldest first.
func Window(now time.Time, loc *time.Location) []string {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := now.In(loc).Date()

	days := make([]string, WindowDays)
	for i := range days {
		// Noon keeps DST transitions from pushing the instant across midnight.
		day := time.Date(y, m, d-(WindowDays-1-i), 12, 0, 0, 0, loc)
		days[i] = day.Format(usage.DateLayout)
	}
	return days
}
