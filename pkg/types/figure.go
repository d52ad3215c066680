package types

// Figure is a renderable chart: a list of traces and a layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// ColorStop is one [position, colour] pair of a continuous colour scale.
type ColorStop [2]any

// Trace is one Plotly trace. X, Y and Z hold either []float64 or, for
// surfaces, a [][]float64 grid in Z.
type Trace struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Mode string `json:"mode,omitempty"`

	X any `json:"x,omitempty"`
	Y any `json:"y,omitempty"`
	Z any `json:"z,omitempty"`

	Labels []string  `json:"labels,omitempty"`
	Values []float64 `json:"values,omitempty"`
	Hole   float64   `json:"hole,omitempty"`

	BoxMean bool `json:"boxmean,omitempty"`

	Marker     *Marker     `json:"marker,omitempty"`
	ColorScale []ColorStop `json:"colorscale,omitempty"`
	ShowScale  *bool       `json:"showscale,omitempty"`
	Opacity    float64     `json:"opacity,omitempty"`

	CustomData    [][]string `json:"customdata,omitempty"`
	HoverTemplate string     `json:"hovertemplate,omitempty"`
}

// Marker styles the points of a trace. Color is a single colour string, a
// []string of per-point colours, or a []float64 mapped through ColorScale.
type Marker struct {
	Color      any         `json:"color,omitempty"`
	Colors     []string    `json:"colors,omitempty"`
	Size       float64     `json:"size,omitempty"`
	ColorScale []ColorStop `json:"colorscale,omitempty"`
	CMin       *float64    `json:"cmin,omitempty"`
	CMax       *float64    `json:"cmax,omitempty"`
	ColorBar   *ColorBar   `json:"colorbar,omitempty"`
	ShowScale  bool        `json:"showscale,omitempty"`
}

// ColorBar labels a continuous colour scale.
type ColorBar struct {
	Title    string    `json:"title,omitempty"`
	TickMode string    `json:"tickmode,omitempty"`
	TickVals []float64 `json:"tickvals,omitempty"`
	TickText []string  `json:"ticktext,omitempty"`
}

// Layout holds figure-level presentation settings.
type Layout struct {
	Title        string `json:"title,omitempty"`
	XAxis        *Axis  `json:"xaxis,omitempty"`
	YAxis        *Axis  `json:"yaxis,omitempty"`
	Scene        *Scene `json:"scene,omitempty"`
	BoxMode      string `json:"boxmode,omitempty"`
	ShowLegend   *bool  `json:"showlegend,omitempty"`
	PlotBGColor  string `json:"plot_bgcolor,omitempty"`
	PaperBGColor string `json:"paper_bgcolor,omitempty"`
	LegendTitle  string `json:"legend_title_text,omitempty"`
}

// Axis configures one axis.
type Axis struct {
	Title    string  `json:"title,omitempty"`
	DTick    float64 `json:"dtick,omitempty"`
	ShowGrid *bool   `json:"showgrid,omitempty"`
	ZeroLine *bool   `json:"zeroline,omitempty"`
}

// Scene configures a 3-D plot.
type Scene struct {
	XAxis      *Axis   `json:"xaxis,omitempty"`
	YAxis      *Axis   `json:"yaxis,omitempty"`
	ZAxis      *Axis   `json:"zaxis,omitempty"`
	AspectMode string  `json:"aspectmode,omitempty"`
	Camera     *Camera `json:"camera,omitempty"`
}

// Camera positions the 3-D viewpoint.
type Camera struct {
	Up     Vec3 `json:"up"`
	Center Vec3 `json:"center"`
	Eye    Vec3 `json:"eye"`
}

// Vec3 is a 3-D vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Bool returns a pointer to b, for optional layout flags.
func Bool(b bool) *bool { return &b }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }
