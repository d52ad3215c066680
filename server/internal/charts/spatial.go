package charts

import (
	"math"

	"github.com/drillscope/drillscope/pkg/types"
	"github.com/drillscope/drillscope/server/internal/hardness"
	"github.com/drillscope/drillscope/server/internal/records"
)

// indexScale runs green → red across the 0–100 hardness index.
var indexScale = []types.ColorStop{
	{0, "rgb(0,255,0)"},
	{0.25, "rgb(255,255,0)"},
	{0.5, "rgb(255,165,0)"},
	{0.75, "rgb(255,69,0)"},
	{1, "rgb(255,0,0)"},
}

// pointsByCategory groups located rows per category, keeping row order.
// With elevation set, rows without elevation are skipped too.
func pointsByCategory(tbl *records.Table, elevation bool) map[hardness.Category][]records.Record {
	out := make(map[hardness.Category][]records.Record)
	for _, r := range tbl.Records() {
		if !r.Located() || (elevation && !r.Elevation.Valid) {
			continue
		}
		out[r.Category] = append(out[r.Category], r)
	}
	return out
}

// locationScatter plots east vs north with one legend entry per category.
func locationScatter(tbl *records.Table, _ float64) *types.Figure {
	fig := &types.Figure{Layout: baseLayout("Hole Locations (East vs North)")}
	fig.Layout.XAxis = gridAxis("East")
	fig.Layout.YAxis = gridAxis("North")
	fig.Layout.LegendTitle = "Hardness"

	groups := pointsByCategory(tbl, false)
	for _, c := range hardness.Categories() {
		pts := groups[c]
		if len(pts) == 0 {
			continue
		}
		xs, ys := make([]float64, len(pts)), make([]float64, len(pts))
		custom := make([][]string, len(pts))
		for i, r := range pts {
			xs[i], ys[i] = r.East.Value, r.North.Value
			custom[i] = []string{string(r.Category), r.DrillPattern}
		}
		fig.Data = append(fig.Data, types.Trace{
			Type:       "scatter",
			Mode:       "markers",
			Name:       string(c),
			X:          xs,
			Y:          ys,
			CustomData: custom,
			Marker:     &types.Marker{Color: c.Color(), Size: 10},
			HoverTemplate: "East: %{x}<br>North: %{y}<br>Hardness: %{customdata[0]}" +
				"<br>Pattern: %{customdata[1]}<extra></extra>",
		})
	}
	return fig
}

// hardnessMap plots east vs north coloured by the continuous index. Larger
// bin sizes give smaller markers, never below 4px.
func hardnessMap(tbl *records.Table, binSize float64) *types.Figure {
	var xs, ys, idx []float64
	for _, r := range tbl.Records() {
		if !r.Located() {
			continue
		}
		xs = append(xs, r.East.Value)
		ys = append(ys, r.North.Value)
		idx = append(idx, r.Index)
	}

	trace := types.Trace{
		Type: "scatter",
		Mode: "markers",
		X:    nonNil(xs),
		Y:    nonNil(ys),
		Marker: &types.Marker{
			Size:       markerSize(binSize),
			Color:      nonNil(idx),
			ColorScale: indexScale,
			CMin:       types.Float(0),
			CMax:       types.Float(hardness.MaxIndex),
			ShowScale:  true,
			ColorBar: &types.ColorBar{
				Title:    "Hardness Index",
				TickMode: "array",
				TickVals: []float64{0, 25, 50, 75, 100},
				TickText: []string{"Very Soft (0)", "Soft (25)", "Medium (50)", "Hard (75)", "Very Hard (100)"},
			},
		},
		HoverTemplate: "East: %{x:.1f}<br>North: %{y:.1f}<br>Hardness index: %{marker.color:.1f}<extra></extra>",
	}

	fig := &types.Figure{Data: []types.Trace{trace}, Layout: baseLayout("Hardness Index Map")}
	fig.Layout.XAxis = gridAxis("East")
	fig.Layout.YAxis = gridAxis("North")
	return fig
}

func markerSize(binSize float64) float64 {
	return math.Max(4, 16-binSize)
}

// scatter3D plots east/north/elevation with one trace per category.
func scatter3D(tbl *records.Table, _ float64) *types.Figure {
	fig := &types.Figure{Layout: baseLayout("Holes in 3D")}
	fig.Layout.Scene = &types.Scene{
		XAxis:      &types.Axis{Title: "East"},
		YAxis:      &types.Axis{Title: "North"},
		ZAxis:      &types.Axis{Title: "Elevation"},
		AspectMode: "data",
		Camera: &types.Camera{
			Up:  types.Vec3{Z: 1},
			Eye: types.Vec3{X: 1.5, Y: 1.5, Z: 1.5},
		},
	}

	groups := pointsByCategory(tbl, true)
	for _, c := range hardness.Categories() {
		pts := groups[c]
		if len(pts) == 0 {
			continue
		}
		xs, ys, zs := make([]float64, len(pts)), make([]float64, len(pts)), make([]float64, len(pts))
		for i, r := range pts {
			xs[i], ys[i], zs[i] = r.East.Value, r.North.Value, r.Elevation.Value
		}
		fig.Data = append(fig.Data, types.Trace{
			Type:          "scatter3d",
			Mode:          "markers",
			Name:          string(c),
			X:             xs,
			Y:             ys,
			Z:             zs,
			Marker:        &types.Marker{Color: c.Color(), Size: 3},
			HoverTemplate: "East: %{x}<br>North: %{y}<br>Elevation: %{z}<extra>" + string(c) + "</extra>",
		})
	}
	return fig
}

// nonNil keeps empty series serialized as [] rather than omitted.
func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}
