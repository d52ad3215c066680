package records

import "strings"

// Derived column names added to every enriched table.
const (
	ColumnDuration = "duration_minutes"
	ColumnCategory = "hardness_category"
	ColumnIndex    = "hardness_index"
)

// Field identifies a logical column, independent of the header text a given
// deployment uses for it.
type Field int

const (
	FieldStartTime Field = iota
	FieldEndTime
	FieldEast
	FieldNorth
	FieldElevation
	FieldDrillPattern
	FieldDuration
	FieldCategory
	FieldIndex
)

// Schema maps logical fields to header names. The defaults are the column
// names of the original field deployment, which exports Spanish headers.
type Schema struct {
	StartTime    string `yaml:"start_time"`
	EndTime      string `yaml:"end_time"`
	East         string `yaml:"east"`
	North        string `yaml:"north"`
	Elevation    string `yaml:"elevation"`
	DrillPattern string `yaml:"drill_pattern"`
}

// DefaultSchema returns the header names used by the original deployment.
func DefaultSchema() Schema {
	return Schema{
		StartTime:    "tiempo inicio",
		EndTime:      "tiempo final",
		East:         "este",
		North:        "norte",
		Elevation:    "elevacion",
		DrillPattern: "drill_pattern",
	}
}

// NormalizeColumn trims surrounding whitespace and lowercases a header name.
func NormalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalized returns s with every column name normalized and empty names
// replaced by their defaults.
func (s Schema) Normalized() Schema {
	def := DefaultSchema()
	pick := func(v, fallback string) string {
		if n := NormalizeColumn(v); n != "" {
			return n
		}
		return fallback
	}
	return Schema{
		StartTime:    pick(s.StartTime, def.StartTime),
		EndTime:      pick(s.EndTime, def.EndTime),
		East:         pick(s.East, def.East),
		North:        pick(s.North, def.North),
		Elevation:    pick(s.Elevation, def.Elevation),
		DrillPattern: pick(s.DrillPattern, def.DrillPattern),
	}
}

// Column returns the header name for f.
func (s Schema) Column(f Field) string {
	switch f {
	case FieldStartTime:
		return s.StartTime
	case FieldEndTime:
		return s.EndTime
	case FieldEast:
		return s.East
	case FieldNorth:
		return s.North
	case FieldElevation:
		return s.Elevation
	case FieldDrillPattern:
		return s.DrillPattern
	case FieldDuration:
		return ColumnDuration
	case FieldCategory:
		return ColumnCategory
	case FieldIndex:
		return ColumnIndex
	default:
		return ""
	}
}

// Required returns the columns every input must contain, in check order.
func (s Schema) Required() []string {
	return []string{s.StartTime, s.EndTime}
}
