package alerts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/drillscope/drillscope/server/internal/hardness"
	"github.com/drillscope/drillscope/server/internal/records"
)

// Fields lists the summary fields a condition may reference.
var Fields = []string{
	"rows",
	"soft_pct", "medium_pct", "hard_pct", "very_hard_pct",
	"mean_duration", "max_duration", "mean_index",
	"inverted_rows", "saturated_rows",
}

// evalCondition evaluates a rule condition string against an upload summary.
//
// Supported expressions (field operator value):
//
//	very_hard_pct > 30
//	soft_pct >= 80
//	mean_duration > 25
//	max_duration > 120
//	inverted_rows > 0
//	saturated_rows >= 10
//	rows < 5
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, s records.Summary) (bool, float64) {
	field, op, threshold, err := parseCondition(cond)
	if err != nil {
		return false, 0
	}
	v, _ := numericField(field, s)
	return compareFloat(v, op, threshold), v
}

// parseCondition splits cond into its three parts and checks each one.
func parseCondition(cond string) (field, op string, threshold float64, err error) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return "", "", 0, fmt.Errorf("condition %q: want \"<field> <op> <value>\"", cond)
	}
	field, op = parts[0], parts[1]
	if _, ok := numericField(field, records.Summary{}); !ok {
		return "", "", 0, fmt.Errorf("condition %q: unknown field %q", cond, field)
	}
	switch op {
	case ">", ">=", "<", "<=", "==":
	default:
		return "", "", 0, fmt.Errorf("condition %q: unknown operator %q", cond, op)
	}
	threshold, err = strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return "", "", 0, fmt.Errorf("condition %q: threshold: %w", cond, err)
	}
	return field, op, threshold, nil
}

// numericField maps a field name to its value in the summary.
func numericField(field string, s records.Summary) (float64, bool) {
	switch field {
	case "rows":
		return float64(s.Rows), true
	case "soft_pct":
		return s.Stat(hardness.Soft).Percent, true
	case "medium_pct":
		return s.Stat(hardness.Medium).Percent, true
	case "hard_pct":
		return s.Stat(hardness.Hard).Percent, true
	case "very_hard_pct":
		return s.Stat(hardness.VeryHard).Percent, true
	case "mean_duration":
		return s.MeanDuration, true
	case "max_duration":
		return s.MaxDuration, true
	case "mean_index":
		return s.MeanIndex, true
	case "inverted_rows":
		return float64(s.InvertedRows), true
	case "saturated_rows":
		return float64(s.SaturatedRows), true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
