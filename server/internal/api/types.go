package api

import (
	"time"

	"github.com/drillscope/drillscope/server/internal/alerts"
	"github.com/drillscope/drillscope/server/internal/charts"
	"github.com/drillscope/drillscope/server/internal/hardness"
	"github.com/drillscope/drillscope/server/internal/records"
)

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status      string `json:"status"`
	UploadCount int    `json:"upload_count"`
	AlertRules  int    `json:"alert_rules"`
	AlertCount  int    `json:"alert_count"`
}

// UploadResponse is one upload entry in GET /api/v1/uploads and the body of
// POST /api/v1/uploads.
type UploadResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Size        int64            `json:"size"`
	Cached      bool             `json:"cached,omitempty"`
	Columns     []string         `json:"columns"`
	Summary     records.Summary  `json:"summary"`
	Charts      []charts.Kind    `json:"charts"`
	Diagnostics []DiagnosticHint `json:"diagnostics"`
	UpdatedAt   string           `json:"updated_at"` // RFC3339
	ExpiresAt   string           `json:"expires_at"` // RFC3339
}

// UploadDetailResponse is the payload for GET /api/v1/uploads/{id}.
type UploadDetailResponse struct {
	UploadResponse
	// DefaultFrom and DefaultTo span the start dates in the upload (YYYY-MM-DD).
	DefaultFrom string   `json:"default_from,omitempty"`
	DefaultTo   string   `json:"default_to,omitempty"`
	Patterns    []string `json:"patterns"`
}

// UploadListResponse is the payload for GET /api/v1/uploads and the data of
// every WebSocket broadcast.
type UploadListResponse struct {
	Uploads     []UploadResponse `json:"uploads"`
	GeneratedAt string           `json:"generated_at"` // RFC3339
}

// RecordResponse is one enriched row.
type RecordResponse struct {
	Row             int               `json:"row"`
	Start           time.Time         `json:"start"`
	End             time.Time         `json:"end"`
	DurationMinutes float64           `json:"duration_minutes"`
	Category        hardness.Category `json:"hardness_category"`
	Index           float64           `json:"hardness_index"`
	Color           string            `json:"color"`
	East            *float64          `json:"east,omitempty"`
	North           *float64          `json:"north,omitempty"`
	Elevation       *float64          `json:"elevation,omitempty"`
	DrillPattern    string            `json:"drill_pattern,omitempty"`
	Fields          map[string]string `json:"fields"`
}

// RecordsResponse is the payload for GET /api/v1/uploads/{id}/records.
type RecordsResponse struct {
	ID      string           `json:"id"`
	Total   int              `json:"total"` // rows matching the filter
	Offset  int              `json:"offset"`
	Records []RecordResponse `json:"records"`
}

// AlertsResponse is the payload for GET /api/v1/alerts.
type AlertsResponse struct {
	Alerts []*alerts.Alert `json:"alerts"`
}

// errorResponse is a generic JSON error body. Column, Row and Line are set
// when the failure points at a specific place in the upload.
type errorResponse struct {
	Error  string `json:"error"`
	Column string `json:"column,omitempty"`
	Row    int    `json:"row,omitempty"`
	Line   int    `json:"line,omitempty"`
}
