package aggregate

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Entry is one participant extracted from a record.
type Entry struct {
	Entity        string
	Percentage    float64
	HasPercentage bool
}

type ResultLineError struct {
	Line   string
	Reason string
}

func (e *ResultLineError) Error() string {
	return fmt.Sprintf("malformed result line %q: %s", e.Line, e.Reason)
}

// ParseResultLine reads lines shaped like "[Clan]: 62.5%, 12 tiles" or
// "[Clan]: score=62.5, ...". A value that is not numeric leaves
// HasPercentage unset rather than failing the line.
func ParseResultLine(line string) (Entry, error) {
	line = strings.TrimSpace(line)

	sep := strings.IndexAny(line, ":=")
	if sep < 0 {
		return Entry{}, &ResultLineError{Line: line, Reason: "missing ':' or '='"}
	}

	entity := entityName(line, sep)
	if entity == "" {
		return Entry{}, &ResultLineError{Line: line, Reason: "no entity name"}
	}

	entry := Entry{Entity: entity}

	rest := line[sep+1:]
	if _, after, ok := strings.Cut(line, "="); ok {
		rest = after
	}
	value, _, _ := strings.Cut(rest, ",")
	value = strings.TrimSuffix(strings.TrimSpace(value), "%")
	if pct, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		entry.Percentage = pct
		entry.HasPercentage = true
	}

	return entry, nil
}

// entityName prefers a leading bracket tag so names with spaces survive;
// otherwise it takes the token before the separator or first whitespace.
func entityName(line string, sep int) string {
	if strings.HasPrefix(line, "[") {
		if end := strings.Index(line, "]"); end > 0 {
			return strings.TrimSpace(line[1:end])
		}
	}

	token := line[:sep]
	if ws := strings.IndexFunc(token, unicode.IsSpace); ws >= 0 {
		token = token[:ws]
	}
	return strings.Trim(token, "[] ")
}
