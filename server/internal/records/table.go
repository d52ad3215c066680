package records

import (
	"time"

	"github.com/drillscope/drillscope/server/internal/hardness"
)

// OptionalFloat is a numeric cell that may be empty or unparseable.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Record is one enriched drill hole.
type Record struct {
	// Row is the 1-based data row in the source file (header excluded).
	Row int

	Start time.Time
	End   time.Time

	DurationMinutes float64
	Category        hardness.Category
	Index           float64

	East         OptionalFloat
	North        OptionalFloat
	Elevation    OptionalFloat
	DrillPattern string

	// fields holds every source column by normalized name, unparsed.
	fields map[string]string
}

// Field returns the raw value of the named source column.
func (r Record) Field(name string) (string, bool) {
	v, ok := r.fields[NormalizeColumn(name)]
	return v, ok
}

// Located reports whether both horizontal coordinates are present.
func (r Record) Located() bool { return r.East.Valid && r.North.Valid }

// Table is an immutable, ordered set of enriched records.
type Table struct {
	schema  Schema
	columns []string
	present map[string]bool
	records []Record
}

func newTable(schema Schema, columns []string, recs []Record) *Table {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	return &Table{schema: schema, columns: columns, present: present, records: recs}
}

// Schema returns the column mapping the table was loaded with.
func (t *Table) Schema() Schema { return t.schema }

// Columns returns the normalized source header names in file order.
// Derived columns are not included.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether name (normalized) is a source or derived column.
func (t *Table) HasColumn(name string) bool {
	switch n := NormalizeColumn(name); n {
	case ColumnDuration, ColumnCategory, ColumnIndex:
		return true
	default:
		return t.present[n]
	}
}

// Has reports whether the column mapped to f exists in the table.
func (t *Table) Has(f Field) bool { return t.HasColumn(t.schema.Column(f)) }

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// At returns the i-th record.
func (t *Table) At(i int) Record { return t.records[i] }

// Records returns a copy of all records in source order.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Where returns a new table holding the records for which keep returns true,
// in their original order. t is not modified.
func (t *Table) Where(keep func(Record) bool) *Table {
	out := make([]Record, 0, len(t.records))
	for _, r := range t.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return &Table{schema: t.schema, columns: t.columns, present: t.present, records: out}
}
