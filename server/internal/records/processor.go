package records

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/drillscope/drillscope/server/internal/hardness"
)

// checkEvery is the number of rows processed between context checks.
const checkEvery = 1024

// Options configures a Processor. The zero value uses DefaultSchema,
// DefaultLayouts, UTC and slog.Default().
type Options struct {
	Schema   Schema
	Layouts  []string
	Location *time.Location
	Logger   *slog.Logger
}

// Processor loads and enriches drill-hole tables. It holds no mutable state
// and is safe for concurrent use.
type Processor struct {
	schema Schema
	times  *TimeParser
	log    *slog.Logger
}

// NewProcessor creates a Processor from opts.
func NewProcessor(opts Options) *Processor {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		schema: opts.Schema.Normalized(),
		times:  NewTimeParser(opts.Layouts, opts.Location),
		log:    log,
	}
}

// Schema returns the normalized column mapping in use.
func (p *Processor) Schema() Schema { return p.schema }

// LoadAndProcess reads CSV from r and returns the enriched table.
// Rows whose cells are all blank are skipped. ctx is checked between batches
// of rows; cancellation returns ctx.Err() wrapped.
func (p *Processor) LoadAndProcess(ctx context.Context, r io.Reader) (*Table, error) {
	started := time.Now()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = errEmptyInput
		}
		p.log.Error("records: read header failed", "err", err)
		return nil, newParseError(err)
	}

	columns, index := p.normalizeHeader(header)
	p.log.Debug("records: header normalized", "columns", columns)

	for _, col := range p.schema.Required() {
		if _, ok := index[col]; !ok {
			p.log.Error("records: missing required column", "column", col)
			return nil, &MissingColumnError{Column: col, Available: columns}
		}
	}

	var out []Record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			p.log.Error("records: read row failed", "err", err)
			return nil, newParseError(err)
		}
		line, _ := cr.FieldPos(0)
		if len(fields) > len(header) {
			return nil, &ParseError{
				Line: line,
				Err:  fmt.Errorf("row has %d fields, header has %d", len(fields), len(header)),
			}
		}
		if blank(fields) {
			continue
		}

		rec, err := p.enrich(len(out)+1, line, fields, columns, index)
		if err != nil {
			p.log.Error("records: enrich row failed", "line", line, "err", err)
			return nil, err
		}
		out = append(out, rec)

		if len(out)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("records: load cancelled after %d rows: %w", len(out), err)
			}
		}
	}

	p.log.Info("records: table processed",
		"rows", len(out),
		"columns", len(columns),
		"elapsed", time.Since(started),
	)
	return newTable(p.schema, columns, out), nil
}

// normalizeHeader returns the normalized header and a name→position index.
// When two headers normalize to the same name the first one wins.
func (p *Processor) normalizeHeader(header []string) ([]string, map[string]int) {
	columns := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		name := NormalizeColumn(h)
		columns[i] = name
		if _, dup := index[name]; dup {
			p.log.Warn("records: duplicate column after normalization, keeping first",
				"column", name, "position", i+1)
			continue
		}
		index[name] = i
	}
	return columns, index
}

func (p *Processor) enrich(row, line int, fields, columns []string, index map[string]int) (Record, error) {
	cell := func(name string) (string, bool) {
		i, ok := index[name]
		if !ok || i >= len(fields) {
			return "", ok
		}
		return fields[i], true
	}

	raw := make(map[string]string, len(columns))
	for i, name := range columns {
		if _, seen := raw[name]; seen {
			continue
		}
		if i < len(fields) {
			raw[name] = fields[i]
		} else {
			raw[name] = ""
		}
	}

	startRaw, _ := cell(p.schema.StartTime)
	start, err := p.times.Parse(startRaw)
	if err != nil {
		return Record{}, &TimeParseError{Column: p.schema.StartTime, Row: row, Line: line, Value: startRaw, Err: err}
	}
	endRaw, _ := cell(p.schema.EndTime)
	end, err := p.times.Parse(endRaw)
	if err != nil {
		return Record{}, &TimeParseError{Column: p.schema.EndTime, Row: row, Line: line, Value: endRaw, Err: err}
	}

	minutes := elapsedMinutes(start, end)
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return Record{}, &DerivationError{Row: row, Err: fmt.Errorf("duration is not finite (%v)", minutes)}
	}
	idx := hardness.Index(minutes)
	if idx < 0 || idx > hardness.MaxIndex {
		return Record{}, &DerivationError{Row: row, Err: fmt.Errorf("hardness index %v out of range", idx)}
	}

	rec := Record{
		Row:             row,
		Start:           start,
		End:             end,
		DurationMinutes: minutes,
		Category:        hardness.Classify(minutes),
		Index:           idx,
		fields:          raw,
	}
	if v, ok := cell(p.schema.East); ok {
		rec.East = parseOptionalFloat(v)
	}
	if v, ok := cell(p.schema.North); ok {
		rec.North = parseOptionalFloat(v)
	}
	if v, ok := cell(p.schema.Elevation); ok {
		rec.Elevation = parseOptionalFloat(v)
	}
	if v, ok := cell(p.schema.DrillPattern); ok {
		rec.DrillPattern = strings.TrimSpace(v)
	}
	return rec, nil
}

func newParseError(err error) *ParseError {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.Line, Err: csvErr.Err}
	}
	return &ParseError{Err: err}
}

// elapsedMinutes is end minus start in minutes. time.Time.Sub saturates
// beyond about 292 years, so whole seconds and nanoseconds are taken apart.
func elapsedMinutes(start, end time.Time) float64 {
	secs := float64(end.Unix() - start.Unix())
	nanos := float64(end.Nanosecond() - start.Nanosecond())
	return (secs + nanos/1e9) / 60.0
}

// parseOptionalFloat accepts a decimal comma ("12,5"). Empty, unparseable and
// non-finite cells are returned as invalid.
func parseOptionalFloat(s string) OptionalFloat {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	if s == "" {
		return OptionalFloat{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return OptionalFloat{}
	}
	return OptionalFloat{Value: v, Valid: true}
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
