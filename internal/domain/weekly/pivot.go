package weekly

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/vcdash/internal/domain/usage"
)

// OutOfWindowPolicy decides what happens to records dated outside the window.
type OutOfWindowPolicy int

const (
	// KeepOutOfWindow appends extra rows after the window, in first-seen order.
	KeepOutOfWindow OutOfWindowPolicy = iota
	// DropOutOfWindow discards the record and counts it as dropped.
	DropOutOfWindow
)

// DuplicatePolicy decides how two records for the same (date, channel) combine.
type DuplicatePolicy int

const (
	// LastWriteWins keeps the value of the later record in input order.
	LastWriteWins DuplicatePolicy = iota
	// SumDuplicates adds the values together.
	SumDuplicates
)

// ParseOutOfWindowPolicy maps "keep" or "drop".
func ParseOutOfWindowPolicy(s string) (OutOfWindowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep":
		return KeepOutOfWindow, nil
	case "drop":
		return DropOutOfWindow, nil
	}
	return 0, fmt.Errorf("unknown out-of-window policy: %s", s)
}

// ParseDuplicatePolicy maps "last" or "sum".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last":
		return LastWriteWins, nil
	case "sum":
		return SumDuplicates, nil
	}
	return 0, fmt.Errorf("unknown duplicate policy: %s", s)
}

// pivot is the outcome of folding records onto the window.
type pivot struct {
	rows []Row

	// channel name -> id, last write wins.
	ids map[string]string

	total   float64
	skipped int
	dropped int
	errs    []error
}

// buildPivot folds records onto the seeded window rows.
func buildPivot(window []string, records []usage.RawRecord, oow OutOfWindowPolicy, dup DuplicatePolicy) pivot {
	p := pivot{
		rows: make([]Row, len(window)),
		ids:  make(map[string]string),
	}
	index := make(map[string]int, len(window))
	for i, day := range window {
		p.rows[i] = Row{Date: day}
		index[day] = i
	}

	for i, raw := range records {
		rec, err := raw.Validate()
		if err != nil {
			p.skipped++
			p.errs = append(p.errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}

		ri, ok := index[rec.Date]
		if !ok {
			if oow == DropOutOfWindow {
				p.dropped++
				continue
			}
			ri = len(p.rows)
			p.rows = append(p.rows, Row{Date: rec.Date})
			index[rec.Date] = ri
		}

		p.rows[ri].set(rec.ChannelName, rec.DurationHour, dup)
		p.ids[rec.ChannelName] = rec.ChannelID
		p.total += rec.DurationHour
	}
	return p
}

// set writes a channel value into the row. An existing cell keeps its position.
func (r *Row) set(channel string, hours float64, dup DuplicatePolicy) {
	for i := range r.Cells {
		if r.Cells[i].Channel != channel {
			continue
		}
		if dup == SumDuplicates {
			r.Cells[i].Hours += hours
		} else {
			r.Cells[i].Hours = hours
		}
		return
	}
	r.Cells = append(r.Cells, Cell{Channel: channel, Hours: hours})
}

// err joins the per-record validation errors, nil when none were skipped.
func (p pivot) err() error {
	return errors.Join(p.errs...)
}
