package charts

import (
	"errors"
	"fmt"
	"math"

	"github.com/drillscope/drillscope/pkg/types"
	"github.com/drillscope/drillscope/server/internal/records"
)

// Kind names a chart.
type Kind string

const (
	Box         Kind = "box"
	Pie         Kind = "pie"
	Location    Kind = "location"
	HardnessMap Kind = "hardness_map"
	Density     Kind = "density"
	Scatter3D   Kind = "scatter3d"
)

// DefaultBinSize is the detail level used when the caller does not pick one.
const DefaultBinSize = 2.0

// ErrUnknownChart is returned by Render for a kind not in Kinds().
var ErrUnknownChart = errors.New("charts: unknown chart kind")

// ErrBinSize is returned when binSize is not a positive finite number.
var ErrBinSize = errors.New("charts: bin size must be a positive number")

// ValidationError reports a column a chart needs but the table lacks.
type ValidationError struct {
	Chart  Kind
	Column string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("charts: %s chart requires column %q", e.Chart, e.Column)
}

// requirements lists, per chart, the logical fields it reads.
var requirements = map[Kind][]records.Field{
	Box:         {records.FieldCategory, records.FieldDuration},
	Pie:         {records.FieldCategory},
	Location:    {records.FieldEast, records.FieldNorth, records.FieldCategory},
	HardnessMap: {records.FieldEast, records.FieldNorth, records.FieldIndex},
	Density:     {records.FieldEast, records.FieldNorth, records.FieldCategory},
	Scatter3D:   {records.FieldEast, records.FieldNorth, records.FieldElevation, records.FieldCategory},
}

var builders = map[Kind]func(*records.Table, float64) *types.Figure{
	Box:         boxPlot,
	Pie:         pieChart,
	Location:    locationScatter,
	HardnessMap: hardnessMap,
	Density:     densitySurface,
	Scatter3D:   scatter3D,
}

// Kinds returns every supported chart kind in display order.
func Kinds() []Kind {
	return []Kind{Box, Pie, Location, HardnessMap, Density, Scatter3D}
}

// Required returns the header names kind needs for tables using schema.
func Required(kind Kind, schema records.Schema) ([]string, error) {
	fields, ok := requirements[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, kind)
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = schema.Column(f)
	}
	return out, nil
}

// Validate checks that tbl has every column kind needs.
func Validate(kind Kind, tbl *records.Table) error {
	fields, ok := requirements[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownChart, kind)
	}
	for _, f := range fields {
		if !tbl.Has(f) {
			return &ValidationError{Chart: kind, Column: tbl.Schema().Column(f)}
		}
	}
	return nil
}

// Available returns the kinds tbl satisfies, in display order.
func Available(tbl *records.Table) []Kind {
	var out []Kind
	for _, k := range Kinds() {
		if Validate(k, tbl) == nil {
			out = append(out, k)
		}
	}
	return out
}

// Render validates tbl for kind and builds the figure.
func Render(kind Kind, tbl *records.Table, binSize float64) (*types.Figure, error) {
	if err := Validate(kind, tbl); err != nil {
		return nil, err
	}
	if binSize <= 0 || math.IsNaN(binSize) || math.IsInf(binSize, 0) {
		return nil, fmt.Errorf("%w (got %v)", ErrBinSize, binSize)
	}
	return builders[kind](tbl, binSize), nil
}

// transparent is the background used by every figure so it blends into the
// host page.
const transparent = "rgba(0,0,0,0)"

func baseLayout(title string) types.Layout {
	return types.Layout{
		Title:        title,
		PlotBGColor:  transparent,
		PaperBGColor: transparent,
	}
}

func gridAxis(title string) *types.Axis {
	return &types.Axis{Title: title, DTick: 500, ShowGrid: types.Bool(true)}
}
