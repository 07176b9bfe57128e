// Package usage contains the records exchanged with the usage API.
package usage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// DateKey is the row field that holds the calendar date. Channel names may not use it.
const DateKey = "date"

// Record is a validated per-day, per-channel usage entry.
type Record struct {
	Date         string
	ChannelID    string
	ChannelName  string
	DurationHour float64
}

// RawRecord is a weekly usage entry as decoded from JSON, before validation.
// Fields are kept raw so a missing value can be told apart from a zero value.
type RawRecord struct {
	Date         json.RawMessage `json:"date"`
	ChannelID    json.RawMessage `json:"channel_id"`
	ChannelName  json.RawMessage `json:"channel_name"`
	DurationHour json.RawMessage `json:"duration_hour"`
}

// NewRawRecord builds a RawRecord from typed values.
func NewRawRecord(date, channelID, channelName string, hours float64) RawRecord {
	return RawRecord{
		Date:         encode(date),
		ChannelID:    encode(channelID),
		ChannelName:  encode(channelName),
		DurationHour: encode(hours),
	}
}

// Validate converts the raw entry into a Record.
func (r RawRecord) Validate() (Record, error) {
	date, ok := str(r.Date)
	if !ok || strings.TrimSpace(date) == "" {
		return Record{}, fmt.Errorf("%w: missing date", ErrMalformedRecord)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return Record{}, fmt.Errorf("%w: invalid date %q", ErrMalformedRecord, date)
	}

	id, err := channelID(r.ChannelID)
	if err != nil {
		return Record{}, err
	}

	name, ok := str(r.ChannelName)
	if !ok || name == "" {
		return Record{}, fmt.Errorf("%w: missing channel_name", ErrMalformedRecord)
	}
	if name == DateKey {
		return Record{}, fmt.Errorf("%w: channel_name %q is reserved", ErrMalformedRecord, DateKey)
	}

	hours, err := duration(r.DurationHour)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Date:         date,
		ChannelID:    id,
		ChannelName:  name,
		DurationHour: hours,
	}, nil
}

// str decodes a JSON string; anything else reports false.
func str(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// encode marshals v; values JSON cannot represent (NaN, Inf) become null.
func encode(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}

// channelID accepts a JSON string or integer literal. Integers are kept as
// their literal digits so large snowflake ids keep full precision.
func channelID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("%w: missing channel_id", ErrMalformedRecord)
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
			return "", fmt.Errorf("%w: invalid channel_id", ErrMalformedRecord)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%w: invalid channel_id", ErrMalformedRecord)
	}
	if _, err := n.Int64(); err != nil {
		if strings.ContainsAny(n.String(), ".eE") {
			return "", fmt.Errorf("%w: channel_id %s is not an integer", ErrMalformedRecord, n)
		}
	}
	return n.String(), nil
}

func duration(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%w: missing duration_hour", ErrMalformedRecord)
	}
	var hours float64
	if err := json.Unmarshal(raw, &hours); err != nil {
		return 0, fmt.Errorf("%w: non-numeric duration_hour %s", ErrMalformedRecord, raw)
	}
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return 0, fmt.Errorf("%w: duration_hour %v out of range", ErrMalformedRecord, hours)
	}
	return hours, nil
}

// DecodeRecords decodes a weekly usage payload. Individual entries are not
// validated here; a payload that is not a JSON array is an error.
func DecodeRecords(r io.Reader) ([]RawRecord, error) {
	var out []RawRecord
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return out, nil
}
