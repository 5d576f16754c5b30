package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrUnrecognizedTimestamp = errors.New("unrecognized timestamp format")

// timestampLayouts are tried in order; the first layout that parses wins.
var timestampLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
	time.DateTime,
	time.RFC3339,
}

type TimestampError struct {
	Input string
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("failed to parse timestamp %q: %s", e.Input, ErrUnrecognizedTimestamp)
}

func (e *TimestampError) Unwrap() error {
	return ErrUnrecognizedTimestamp
}

// ParseTimestamp parses s with the first matching known layout. Layouts
// without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &TimestampError{Input: s}
}
