package records

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DefaultLayouts are tried, in order, before falling back to free-text
// parsing. Naive timestamps are interpreted in the parser's location.
var DefaultLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

var errEmptyTimestamp = errors.New("empty value")

// TimeParser converts free-text timestamp cells to time.Time.
type TimeParser struct {
	layouts []string
	loc     *time.Location
}

// NewTimeParser returns a parser trying layouts first, then DefaultLayouts,
// then free-text detection. A nil loc means UTC.
func NewTimeParser(layouts []string, loc *time.Location) *TimeParser {
	layouts = append(append(make([]string, 0, len(layouts)+len(DefaultLayouts)), layouts...), DefaultLayouts...)
	if loc == nil {
		loc = time.UTC
	}
	return &TimeParser{layouts: layouts, loc: loc}
}

// Parse parses one timestamp cell.
func (p *TimeParser) Parse(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, errEmptyTimestamp
	}
	for _, layout := range p.layouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t, nil
		}
	}
	t, err := dateparse.ParseIn(s, p.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized format: %w", err)
	}
	return t, nil
}
