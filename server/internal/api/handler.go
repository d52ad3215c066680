package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/drillscope/drillscope/server/internal/alerts"
	"github.com/drillscope/drillscope/server/internal/charts"
	"github.com/drillscope/drillscope/server/internal/filter"
	"github.com/drillscope/drillscope/server/internal/metrics"
	"github.com/drillscope/drillscope/server/internal/records"
	"github.com/drillscope/drillscope/server/internal/store"
)

const uploadsPrefix = "/api/v1/uploads/"

// Config wires the handler to the rest of the server. Processor is
// required; the other fields are optional.
type Config struct {
	Processor *records.Processor

	// MaxUploadBytes caps the request body of POST /api/v1/uploads.
	// Zero means unlimited.
	MaxUploadBytes int64

	// Location interprets the from/to filter dates. Nil means UTC.
	Location *time.Location

	Alerts  *alerts.Engine
	Metrics *metrics.Registry

	// OnUpload is called after an upload was stored, e.g. to push the new
	// list to WebSocket clients.
	OnUpload func()
}

// Handler is the HTTP handler for all /api/v1/* endpoints.
type Handler struct {
	store *store.Store
	cfg   Config
	mux   *http.ServeMux
}

// New creates a Handler wired to the given upload store and registers all routes.
func New(st *store.Store, cfg Config) http.Handler {
	h := &Handler{store: st, cfg: cfg, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/uploads", h.uploads)
	h.mux.HandleFunc(uploadsPrefix, h.upload) // subtree: {id}[/records|/export|/charts/{kind}]
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resp := HealthResponse{
		Status:      "ok",
		UploadCount: len(h.store.List()),
	}
	if h.cfg.Alerts != nil {
		resp.AlertRules = h.cfg.Alerts.Rules()
		for _, a := range h.cfg.Alerts.Active() {
			if a.State == alerts.StateFiring {
				resp.AlertCount++
			}
		}
	}
	jsonResp(w, http.StatusOK, resp)
}

// uploads dispatches /api/v1/uploads: GET lists, POST processes a new file.
func (h *Handler) uploads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jsonResp(w, http.StatusOK, BuildUploadList(h.store))
	case http.MethodPost:
		h.createUpload(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// upload serves everything below /api/v1/uploads/{id}.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, uploadsPrefix), "/")
	if rest == "" {
		jsonResp(w, http.StatusOK, BuildUploadList(h.store))
		return
	}
	parts := strings.Split(rest, "/")

	e, ok := h.store.Get(parts[0])
	if !ok {
		jsonErr(w, http.StatusNotFound, "upload not found")
		return
	}

	switch {
	case len(parts) == 1:
		h.uploadDetail(w, e)
	case len(parts) == 2 && parts[1] == "records":
		h.listRecords(w, r, e)
	case len(parts) == 2 && parts[1] == "export":
		h.export(w, r, e)
	case len(parts) == 3 && parts[1] == "charts":
		h.chart(w, r, e, charts.Kind(parts[2]))
	default:
		jsonErr(w, http.StatusNotFound, "not found")
	}
}

// uploadDetail returns GET /api/v1/uploads/{id}.
func (h *Handler) uploadDetail(w http.ResponseWriter, e *store.Entry) {
	resp := UploadDetailResponse{
		UploadResponse: h.toUploadResponse(e),
		Patterns:       filter.Patterns(e.Table),
	}
	if from, to := filter.DefaultRange(e.Table); !from.IsZero() {
		resp.DefaultFrom = from.Format(filter.DateLayout)
		resp.DefaultTo = to.Format(filter.DateLayout)
	}
	jsonResp(w, http.StatusOK, resp)
}

// listRecords returns GET /api/v1/uploads/{id}/records.
func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request, e *store.Entry) {
	tbl, ok := h.filtered(w, r, e)
	if !ok {
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", tbl.Len())
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	lo := min(offset, tbl.Len())
	hi := lo + min(limit, tbl.Len()-lo)
	columns := tbl.Columns()
	out := make([]RecordResponse, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, toRecordResponse(tbl.At(i), columns))
	}
	jsonResp(w, http.StatusOK, RecordsResponse{
		ID:      e.ID,
		Total:   tbl.Len(),
		Offset:  lo,
		Records: out,
	})
}

// export returns GET /api/v1/uploads/{id}/export as text/csv.
func (h *Handler) export(w http.ResponseWriter, r *http.Request, e *store.Entry) {
	tbl, ok := h.filtered(w, r, e)
	if !ok {
		return
	}
	name := strings.TrimSuffix(path.Base(e.Name), path.Ext(e.Name)) + "_enriched.csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if err := records.WriteCSV(w, tbl); err != nil {
		slog.Error("api: export failed", "id", e.ID, "err", err)
	}
}

// chart returns GET /api/v1/uploads/{id}/charts/{kind}.
func (h *Handler) chart(w http.ResponseWriter, r *http.Request, e *store.Entry, kind charts.Kind) {
	binSize := charts.DefaultBinSize
	if v := r.URL.Query().Get("bin_size"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			jsonErr(w, http.StatusBadRequest, fmt.Sprintf("invalid bin_size %q", v))
			return
		}
		binSize = f
	}

	tbl, ok := h.filtered(w, r, e)
	if !ok {
		return
	}

	fig, err := charts.Render(kind, tbl, binSize)
	var verr *charts.ValidationError
	switch {
	case err == nil:
		jsonResp(w, http.StatusOK, fig)
	case errors.Is(err, charts.ErrUnknownChart):
		jsonErr(w, http.StatusNotFound, err.Error())
	case errors.As(err, &verr):
		jsonResp(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Column: verr.Column})
	default:
		jsonErr(w, http.StatusBadRequest, err.Error())
	}
}

// listAlerts returns GET /api/v1/alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	resp := AlertsResponse{Alerts: []*alerts.Alert{}}
	if h.cfg.Alerts != nil {
		resp.Alerts = h.cfg.Alerts.Active()
	}
	jsonResp(w, http.StatusOK, resp)
}

// --- helpers ----------------------------------------------------------------

// BuildUploadList builds the upload list from the live entries in st.
func BuildUploadList(st *store.Store) UploadListResponse {
	entries := st.List()
	out := make([]UploadResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, uploadResponse(e, st.TTL()))
	}
	return UploadListResponse{
		Uploads:     out,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// filtered applies the request's filter parameters to e's table. On a bad
// parameter it writes a 400 and returns false.
func (h *Handler) filtered(w http.ResponseWriter, r *http.Request, e *store.Entry) (*records.Table, bool) {
	c, err := filter.ParseQuery(r.URL.Query(), h.cfg.Location)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return filter.Apply(e.Table, c), true
}

func (h *Handler) toUploadResponse(e *store.Entry) UploadResponse {
	return uploadResponse(e, h.store.TTL())
}

func uploadResponse(e *store.Entry, ttl time.Duration) UploadResponse {
	kinds := charts.Available(e.Table)
	if kinds == nil {
		kinds = []charts.Kind{}
	}
	return UploadResponse{
		ID:          e.ID,
		Name:        e.Name,
		Size:        e.Size,
		Columns:     e.Table.Columns(),
		Summary:     e.Summary,
		Charts:      kinds,
		Diagnostics: computeDiagnostics(e.Table, e.Summary),
		UpdatedAt:   e.UpdatedAt.UTC().Format(time.RFC3339),
		ExpiresAt:   e.UpdatedAt.Add(ttl).UTC().Format(time.RFC3339),
	}
}

func toRecordResponse(rec records.Record, columns []string) RecordResponse {
	fields := make(map[string]string, len(columns))
	for _, c := range columns {
		if v, ok := rec.Field(c); ok {
			fields[c] = v
		}
	}
	return RecordResponse{
		Row:             rec.Row,
		Start:           rec.Start,
		End:             rec.End,
		DurationMinutes: rec.DurationMinutes,
		Category:        rec.Category,
		Index:           rec.Index,
		Color:           rec.Category.Color(),
		East:            optional(rec.East),
		North:           optional(rec.North),
		Elevation:       optional(rec.Elevation),
		DrillPattern:    rec.DrillPattern,
		Fields:          fields,
	}
}

func optional(v records.OptionalFloat) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Value
	return &f
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return n, nil
}

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
