package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes t as CSV: the normalized source columns with their
// original values, followed by the three derived columns.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	header := append(t.Columns(), ColumnDuration, ColumnCategory, ColumnIndex)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("records: write csv header: %w", err)
	}

	row := make([]string, len(header))
	for _, r := range t.records {
		for i, col := range t.columns {
			row[i] = r.fields[col]
		}
		n := len(t.columns)
		row[n] = strconv.FormatFloat(r.DurationMinutes, 'f', -1, 64)
		row[n+1] = string(r.Category)
		row[n+2] = strconv.FormatFloat(r.Index, 'f', -1, 64)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("records: write csv row %d: %w", r.Row, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("records: flush csv: %w", err)
	}
	return nil
}
