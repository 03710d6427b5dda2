package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// legacyLayout is the zone-less ISO form found in history files written by
// older releases. Such values are read as local time.
const legacyLayout = "2006-01-02T15:04:05.999999999"

// Time is a JSON timestamp that accepts RFC 3339 and the legacy zone-less form.
type Time struct {
	time.Time
}

func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// Now returns the current time truncated to microseconds.
func Now() Time {
	return Time{Time: time.Now().UTC().Truncate(time.Microsecond)}
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(legacyLayout, s, time.Local)
	if err != nil {
		return fmt.Errorf("time: parse %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}
