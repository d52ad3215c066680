package records

import (
	"time"

	"github.com/drillscope/drillscope/server/internal/hardness"
)

// CategoryStat is the row count and share of one hardness category.
type CategoryStat struct {
	Category hardness.Category `json:"category"`
	Count    int               `json:"count"`
	Percent  float64           `json:"percent"`
	// MeanDuration is the average duration in minutes of rows in this category.
	MeanDuration float64 `json:"mean_duration"`
}

// Summary aggregates an enriched table.
type Summary struct {
	Rows       int            `json:"rows"`
	Categories []CategoryStat `json:"categories"`

	MeanDuration float64 `json:"mean_duration"`
	MinDuration  float64 `json:"min_duration"`
	MaxDuration  float64 `json:"max_duration"`
	MeanIndex    float64 `json:"mean_index"`

	// InvertedRows counts rows whose end time precedes their start time.
	InvertedRows int `json:"inverted_rows"`
	// SaturatedRows counts rows past the index saturation point (60 min).
	SaturatedRows int `json:"saturated_rows"`
	// LocatedRows counts rows with both east and north coordinates.
	LocatedRows int `json:"located_rows"`

	HasDrillPattern bool `json:"has_drill_pattern"`
	Patterns        int  `json:"patterns"`

	FirstStart time.Time `json:"first_start"`
	LastStart  time.Time `json:"last_start"`
}

// Stat returns the entry for c. The zero CategoryStat is returned for
// unknown categories.
func (s Summary) Stat(c hardness.Category) CategoryStat {
	for _, st := range s.Categories {
		if st.Category == c {
			return st
		}
	}
	return CategoryStat{Category: c}
}

// Summarize computes aggregate statistics over t.
func Summarize(t *Table) Summary {
	cats := hardness.Categories()
	s := Summary{
		Rows:            t.Len(),
		Categories:      make([]CategoryStat, len(cats)),
		HasDrillPattern: t.Has(FieldDrillPattern),
	}
	sums := make([]float64, len(cats))
	for i, c := range cats {
		s.Categories[i].Category = c
	}
	if s.Rows == 0 {
		return s
	}

	patterns := make(map[string]struct{})
	var totalDuration, totalIndex float64
	s.MinDuration = t.records[0].DurationMinutes
	s.MaxDuration = t.records[0].DurationMinutes
	s.FirstStart = t.records[0].Start
	s.LastStart = t.records[0].Start

	for _, r := range t.records {
		if rank := r.Category.Rank(); rank >= 0 {
			s.Categories[rank].Count++
			sums[rank] += r.DurationMinutes
		}
		totalDuration += r.DurationMinutes
		totalIndex += r.Index
		s.MinDuration = min(s.MinDuration, r.DurationMinutes)
		s.MaxDuration = max(s.MaxDuration, r.DurationMinutes)
		if r.Start.Before(s.FirstStart) {
			s.FirstStart = r.Start
		}
		if r.Start.After(s.LastStart) {
			s.LastStart = r.Start
		}
		if r.DurationMinutes < 0 {
			s.InvertedRows++
		}
		if r.DurationMinutes > hardness.ThresholdSaturate {
			s.SaturatedRows++
		}
		if r.Located() {
			s.LocatedRows++
		}
		if r.DrillPattern != "" {
			patterns[r.DrillPattern] = struct{}{}
		}
	}

	n := float64(s.Rows)
	s.MeanDuration = totalDuration / n
	s.MeanIndex = totalIndex / n
	s.Patterns = len(patterns)
	for i := range s.Categories {
		st := &s.Categories[i]
		st.Percent = float64(st.Count) / n * 100
		if st.Count > 0 {
			st.MeanDuration = sums[i] / float64(st.Count)
		}
	}
	return s
}
