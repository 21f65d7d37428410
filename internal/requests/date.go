package requests

import (
	"strings"
	"time"
)

// Order matters: the two-digit-year layout must be attempted before the
// four-digit one, and only whole-input matches count.
var requestDateLayouts = []string{
	"1/2/06",
	time.DateOnly,
	"1/2/2006",
}

var isoDateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseRequestDate tries the fixed request layouts in order and falls back to
// ISO 8601 date-time forms.
func ParseRequestDate(value string) (time.Time, error) {
	for _, layout := range requestDateLayouts {
		if parsed, parseErr := time.Parse(layout, value); parseErr == nil {
			return parsed, nil
		}
	}
	trimmed := strings.TrimSpace(value)
	for _, layout := range isoDateTimeLayouts {
		if parsed, parseErr := time.Parse(layout, trimmed); parseErr == nil {
			return parsed, nil
		}
	}
	return time.Time{}, ErrInvalidRequestDate
}

// ISODate renders the calendar date portion as YYYY-MM-DD.
func ISODate(moment time.Time) string {
	return moment.Format(time.DateOnly)
}
