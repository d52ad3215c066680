// Package filter narrows an enriched table by start date and drill pattern.
package filter

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/drillscope/drillscope/server/internal/records"
)

// DateLayout is the format of the from/to query parameters.
const DateLayout = "2006-01-02"

// Criteria selects rows by start time and drill pattern. A zero From or To
// leaves that side of the range open. Empty Patterns selects every pattern.
type Criteria struct {
	From     time.Time
	To       time.Time
	Patterns []string
}

// Error reports a malformed filter parameter.
type Error struct {
	Param string
	Value string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("filter: invalid %s %q: %v", e.Param, e.Value, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Apply returns a new table with the rows of tbl matching c. From and To are
// whole days: a row matches when its start falls between From 00:00:00 and
// To 23:59:59.999999999, in the location of each bound.
func Apply(tbl *records.Table, c Criteria) *records.Table {
	lo, hi := c.bounds()
	patterns := make(map[string]bool, len(c.Patterns))
	for _, p := range c.Patterns {
		patterns[p] = true
	}

	return tbl.Where(func(r records.Record) bool {
		if !lo.IsZero() && r.Start.Before(lo) {
			return false
		}
		if !hi.IsZero() && r.Start.After(hi) {
			return false
		}
		if len(patterns) > 0 && !patterns[r.DrillPattern] {
			return false
		}
		return true
	})
}

func (c Criteria) bounds() (lo, hi time.Time) {
	if !c.From.IsZero() {
		lo = startOfDay(c.From)
	}
	if !c.To.IsZero() {
		hi = startOfDay(c.To).AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return lo, hi
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DefaultRange returns the first and last start dates in tbl, truncated to
// the day. Both are zero for an empty table.
func DefaultRange(tbl *records.Table) (from, to time.Time) {
	for i := 0; i < tbl.Len(); i++ {
		s := tbl.At(i).Start
		if from.IsZero() || s.Before(from) {
			from = s
		}
		if to.IsZero() || s.After(to) {
			to = s
		}
	}
	if from.IsZero() {
		return from, to
	}
	return startOfDay(from), startOfDay(to)
}

// Patterns returns the distinct non-empty drill patterns in tbl, sorted in
// descending order so the most recent pattern codes come first.
func Patterns(tbl *records.Table) []string {
	seen := make(map[string]struct{})
	for i := 0; i < tbl.Len(); i++ {
		if p := tbl.At(i).DrillPattern; p != "" {
			seen[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// ParseQuery reads from, to and pattern from q. pattern may be repeated or
// comma-separated. Dates are YYYY-MM-DD interpreted in loc (UTC when nil).
func ParseQuery(q url.Values, loc *time.Location) (Criteria, error) {
	if loc == nil {
		loc = time.UTC
	}
	var c Criteria
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"from", &c.From}, {"to", &c.To}} {
		v := strings.TrimSpace(q.Get(p.name))
		if v == "" {
			continue
		}
		t, err := time.ParseInLocation(DateLayout, v, loc)
		if err != nil {
			return Criteria{}, &Error{Param: p.name, Value: v, Err: err}
		}
		*p.dst = t
	}
	if !c.From.IsZero() && !c.To.IsZero() && c.To.Before(c.From) {
		return Criteria{}, &Error{Param: "to", Value: q.Get("to"), Err: fmt.Errorf("before from %s", c.From.Format(DateLayout))}
	}

	for _, raw := range q["pattern"] {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.Patterns = append(c.Patterns, p)
			}
		}
	}
	return c, nil
}
