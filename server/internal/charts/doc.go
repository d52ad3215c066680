// Package charts builds Plotly figure definitions from an enriched table.
//
// Render(kind, table, binSize) looks up the chart's required columns in one
// declarative table (requirements), fails with *ValidationError naming the
// first missing column, then builds the figure:
//
//	box          duration distribution per hardness category
//	pie          hole count per hardness category
//	location     east/north scatter coloured by category
//	hardness_map east/north scatter coloured by hardness index
//	density      per-category 2-D histogram rendered as surfaces
//	scatter3d    east/north/elevation scatter coloured by category
//
// Rows without the coordinates a chart needs are skipped rather than
// rejected. binSize controls marker size on hardness_map and histogram
// resolution on density; it is ignored by the other kinds.
package charts
