package weekly

import (
	"bytes"
	"encoding/json"

	"github.com/okian/vcdash/internal/domain/usage"
)

// Cell is one channel's hours within a row.
type Cell struct {
	Channel string
	Hours   float64
}

// Row is one calendar day of the pivot. A channel with no usage that day has
// no cell; it is absent, not zero.
type Row struct {
	Date  string
	Cells []Cell
}

// Hours returns the channel's value and whether the row has a cell for it.
func (r Row) Hours(channel string) (float64, bool) {
	for _, c := range r.Cells {
		if c.Channel == channel {
			return c.Hours, true
		}
	}
	return 0, false
}

// Total sums every cell in the row.
func (r Row) Total() float64 {
	var t float64
	for _, c := range r.Cells {
		t += c.Hours
	}
	return t
}

// MarshalJSON flattens the row to {"date": ..., "<channel>": hours, ...} with
// the date first and cells in order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeField(&buf, usage.DateKey, r.Date); err != nil {
		return nil, err
	}
	for _, c := range r.Cells {
		buf.WriteByte(',')
		if err := writeField(&buf, c.Channel, c.Hours); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key string, v any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(val)
	return nil
}
