package charts

import (
	"github.com/drillscope/drillscope/pkg/types"
	"github.com/drillscope/drillscope/server/internal/hardness"
	"github.com/drillscope/drillscope/server/internal/records"
)

// boxPlot draws one box per category, in hardness order, with the mean marked.
func boxPlot(tbl *records.Table, _ float64) *types.Figure {
	byCat := make(map[hardness.Category][]float64)
	patterns := make(map[hardness.Category][][]string)
	for _, r := range tbl.Records() {
		byCat[r.Category] = append(byCat[r.Category], r.DurationMinutes)
		patterns[r.Category] = append(patterns[r.Category], []string{r.DrillPattern})
	}

	fig := &types.Figure{Layout: baseLayout("Duration by Hardness")}
	fig.Layout.YAxis = &types.Axis{Title: "Duration (minutes)", ZeroLine: types.Bool(false)}
	fig.Layout.BoxMode = "group"

	for _, c := range hardness.Categories() {
		ys := byCat[c]
		if ys == nil {
			ys = []float64{}
		}
		fig.Data = append(fig.Data, types.Trace{
			Type:          "box",
			Name:          string(c),
			Y:             ys,
			CustomData:    patterns[c],
			BoxMean:       true,
			Marker:        &types.Marker{Color: c.Color()},
			HoverTemplate: "Duration: %{y:.2f} min<br>Pattern: %{customdata[0]}<extra></extra>",
		})
	}
	return fig
}

// pieChart draws the hole count per category.
func pieChart(tbl *records.Table, _ float64) *types.Figure {
	summary := records.Summarize(tbl)

	trace := types.Trace{
		Type:          "pie",
		Hole:          0.2,
		Marker:        &types.Marker{},
		HoverTemplate: "%{label}: %{value} holes<extra></extra>",
	}
	for _, st := range summary.Categories {
		trace.Labels = append(trace.Labels, string(st.Category))
		trace.Values = append(trace.Values, float64(st.Count))
		trace.Marker.Colors = append(trace.Marker.Colors, st.Category.Color())
	}

	fig := &types.Figure{Data: []types.Trace{trace}, Layout: baseLayout("Holes by Hardness")}
	fig.Layout.ShowLegend = types.Bool(true)
	return fig
}
