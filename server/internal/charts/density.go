package charts

import (
	"math"

	"github.com/drillscope/drillscope/pkg/types"
	"github.com/drillscope/drillscope/server/internal/hardness"
	"github.com/drillscope/drillscope/server/internal/records"
)

const (
	minDensityBins = 10
	// maxDensityBins bounds the grid so a tiny bin size cannot allocate an
	// enormous surface.
	maxDensityBins = 400
)

// histogram2D is a regular-grid count of points.
// Counts is indexed [x][y].
type histogram2D struct {
	XCenters []float64
	YCenters []float64
	Counts   [][]float64
}

// densitySurface renders one density surface per category. The bin count is
// shared across categories and derived from the extent of all located rows:
// max(10, min(rangeEast, rangeNorth) / binSize).
func densitySurface(tbl *records.Table, binSize float64) *types.Figure {
	fig := &types.Figure{Layout: baseLayout("Hole Density by Hardness")}
	fig.Layout.Scene = &types.Scene{
		XAxis:      &types.Axis{Title: "East"},
		YAxis:      &types.Axis{Title: "North"},
		ZAxis:      &types.Axis{Title: "Density"},
		AspectMode: "manual",
		Camera:     &types.Camera{Up: types.Vec3{Z: 1}, Eye: types.Vec3{X: 1.5, Y: 1.5, Z: 1.2}},
	}

	groups := pointsByCategory(tbl, false)
	var all []records.Record
	for _, pts := range groups {
		all = append(all, pts...)
	}
	if len(all) == 0 {
		fig.Data = []types.Trace{}
		return fig
	}
	bins := densityBins(all, binSize)

	for _, c := range hardness.Categories() {
		pts := groups[c]
		if len(pts) == 0 {
			continue
		}
		xs, ys := make([]float64, len(pts)), make([]float64, len(pts))
		for i, r := range pts {
			xs[i], ys[i] = r.East.Value, r.North.Value
		}
		h := computeHistogram2D(xs, ys, bins)

		fig.Data = append(fig.Data, types.Trace{
			Type:       "surface",
			Name:       string(c),
			X:          h.XCenters,
			Y:          h.YCenters,
			Z:          transpose(h.Counts),
			ColorScale: []types.ColorStop{{0, transparent}, {1, c.Color()}},
			ShowScale:  types.Bool(false),
			Opacity:    0.95,
			HoverTemplate: "East: %{x}<br>North: %{y}<br>Density: %{z}<br>Hardness: " +
				string(c) + "<extra></extra>",
		})
	}
	return fig
}

func densityBins(pts []records.Record, binSize float64) int {
	minE, maxE := pts[0].East.Value, pts[0].East.Value
	minN, maxN := pts[0].North.Value, pts[0].North.Value
	for _, r := range pts[1:] {
		minE, maxE = math.Min(minE, r.East.Value), math.Max(maxE, r.East.Value)
		minN, maxN = math.Min(minN, r.North.Value), math.Max(maxN, r.North.Value)
	}
	n := math.Min(maxE-minE, maxN-minN) / binSize
	if n > maxDensityBins {
		return maxDensityBins
	}
	return max(minDensityBins, int(n))
}

// computeHistogram2D bins the points on a bins×bins grid spanning their own
// extent. Bins are half-open except the last, which includes its right edge.
// A zero-width extent is widened by 0.5 on each side.
func computeHistogram2D(xs, ys []float64, bins int) histogram2D {
	xlo, xhi := extent(xs)
	ylo, yhi := extent(ys)

	counts := make([][]float64, bins)
	for i := range counts {
		counts[i] = make([]float64, bins)
	}
	for i := range xs {
		counts[binOf(xs[i], xlo, xhi, bins)][binOf(ys[i], ylo, yhi, bins)]++
	}

	return histogram2D{
		XCenters: centers(xlo, xhi, bins),
		YCenters: centers(ylo, yhi, bins),
		Counts:   counts,
	}
}

func extent(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return lo, hi
}

func binOf(v, lo, hi float64, bins int) int {
	i := int((v - lo) / (hi - lo) * float64(bins))
	if i >= bins {
		i = bins - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func centers(lo, hi float64, bins int) []float64 {
	width := (hi - lo) / float64(bins)
	out := make([]float64, bins)
	for i := range out {
		out[i] = lo + width*(float64(i)+0.5)
	}
	return out
}

// transpose turns [x][y] counts into the [y][x] rows a surface expects.
func transpose(m [][]float64) [][]float64 {
	if len(m) == 0 {
		return m
	}
	out := make([][]float64, len(m[0]))
	for y := range out {
		out[y] = make([]float64, len(m))
		for x := range m {
			out[y][x] = m[x][y]
		}
	}
	return out
}
