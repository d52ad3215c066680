package api

import (
	"fmt"
	"sort"

	"github.com/drillscope/drillscope/server/internal/hardness"
	"github.com/drillscope/drillscope/server/internal/records"
)

// DiagnosticHint is one human-readable remark about the quality of an
// upload. The UI displays these as chips next to the upload; Detail is shown
// on click.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier.
	Key string `json:"key"`
	// Level is "info" | "warning" | "critical".
	Level string `json:"level"`
	// Title is a short label shown on the chip.
	Title string `json:"title"`
	// Detail is the full explanation shown on click/hover.
	Detail string `json:"detail"`
	// Value is an optional numeric value associated with this hint.
	Value *float64 `json:"value,omitempty"`
}

var levelRank = map[string]int{"critical": 0, "warning": 1, "info": 2}

// computeDiagnostics derives hints from an enriched table and its summary.
// Hints are ordered: critical first, then warnings, then info.
func computeDiagnostics(tbl *records.Table, s records.Summary) []DiagnosticHint {
	hints := make([]DiagnosticHint, 0, 4)
	schema := tbl.Schema()

	if s.Rows == 0 {
		return append(hints, DiagnosticHint{
			Key:   "empty",
			Level: "warning",
			Title: "No data rows",
			Detail: "The file has a valid header but no data rows. " +
				"Check that the export from the drilling system was not truncated.",
		})
	}

	if s.InvertedRows > 0 {
		v := float64(s.InvertedRows)
		level := "warning"
		if s.InvertedRows*2 >= s.Rows {
			level = "critical"
		}
		hints = append(hints, DiagnosticHint{
			Key:   "inverted_timestamps",
			Level: level,
			Title: fmt.Sprintf("%d inverted timestamps", s.InvertedRows),
			Detail: fmt.Sprintf(
				"%d of %d holes finish before they start, so their duration is negative. "+
					"They are rated %q with index 0. Swapped %q and %q columns or a "+
					"clock reset on the rig are the usual causes.",
				s.InvertedRows, s.Rows, hardness.Soft, schema.StartTime, schema.EndTime),
			Value: &v,
		})
	}

	if s.SaturatedRows > 0 {
		pct := float64(s.SaturatedRows) / float64(s.Rows) * 100
		level := "info"
		if pct >= 10 {
			level = "warning"
		}
		hints = append(hints, DiagnosticHint{
			Key:   "index_saturated",
			Level: level,
			Title: fmt.Sprintf("%.1f%% saturated", pct),
			Detail: fmt.Sprintf(
				"%d holes took longer than %.0f minutes and all share the maximum index of %.0f. "+
					"The index cannot rank them against each other.",
				s.SaturatedRows, hardness.ThresholdSaturate, hardness.MaxIndex),
			Value: &pct,
		})
	}

	hasCoords := tbl.Has(records.FieldEast) && tbl.Has(records.FieldNorth)
	switch {
	case !hasCoords:
		hints = append(hints, DiagnosticHint{
			Key:   "no_coordinates",
			Level: "info",
			Title: "No coordinates",
			Detail: fmt.Sprintf(
				"Columns %q and %q were not found, so location, hardness map, density "+
					"and 3D charts are unavailable.", schema.East, schema.North),
		})
	case s.LocatedRows < s.Rows:
		v := float64(s.Rows - s.LocatedRows)
		hints = append(hints, DiagnosticHint{
			Key:   "unlocated_rows",
			Level: "warning",
			Title: fmt.Sprintf("%d holes without position", s.Rows-s.LocatedRows),
			Detail: "Some rows have empty or non-numeric coordinates. They are counted in the " +
				"summary but left out of every map.",
			Value: &v,
		})
	}

	if !tbl.Has(records.FieldElevation) && hasCoords {
		hints = append(hints, DiagnosticHint{
			Key:    "no_elevation",
			Level:  "info",
			Title:  "No elevation",
			Detail: fmt.Sprintf("Column %q was not found, so the 3D chart is unavailable.", schema.Elevation),
		})
	}

	if !s.HasDrillPattern {
		hints = append(hints, DiagnosticHint{
			Key:    "no_drill_pattern",
			Level:  "info",
			Title:  "No drill pattern",
			Detail: fmt.Sprintf("Column %q was not found, so filtering by pattern is unavailable.", schema.DrillPattern),
		})
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return levelRank[hints[i].Level] < levelRank[hints[j].Level]
	})
	return hints
}
