package dataload

import (
	"fmt"
	"strconv"
	"time"
)

// timeLayouts are tried in order when no explicit layout is configured.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	time.DateOnly,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// ParseTimestamp parses a timestamp cell and normalizes it to midnight UTC of its
// calendar day. With an empty layout it accepts RFC3339, "2006-01-02 15:04:05",
// "2006-01-02" and unix seconds. Timestamps without a zone are read as UTC.
func ParseTimestamp(raw, layout string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if layout != "" {
		t, err := time.Parse(layout, raw)
		if err != nil {
			return time.Time{}, fmt.Errorf("timestamp '%s' does not match layout '%s'", raw, layout)
		}
		return toDay(t), nil
	}

	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return toDay(time.Unix(secs, 0)), nil
	}
	// Spreadsheets tend to write whole numbers as floats
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return toDay(time.Unix(int64(secs), 0)), nil
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return toDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp '%s'", raw)
}

// toDay returns midnight UTC of the calendar day of t.
func toDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
