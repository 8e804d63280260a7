package timewindow

import (
	"fmt"
	"strings"
	"time"
)

// Stored instants are RFC 3339 in UTC with a trailing Z. Older records may
// carry an explicit offset or no zone at all; zone-less values are UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// FormatInstant renders t as UTC text, e.g. 2024-05-01T10:11:12.123456Z.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseInstant parses a stored instant and normalises it to UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("parse instant: empty value")
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse instant %q: unrecognised format", s)
}
