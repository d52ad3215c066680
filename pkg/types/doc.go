// Package types defines the chart figure wire format shared by the server
// API and external renderers. A Figure marshals to the JSON object accepted
// by Plotly.newPlot (data + layout).
package types
