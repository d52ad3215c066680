package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/drillscope/drillscope/server/internal/metrics"
	"github.com/drillscope/drillscope/server/internal/records"
	"github.com/drillscope/drillscope/server/internal/store"
)

// multipartField is the form field holding the CSV in multipart uploads.
const multipartField = "file"

// createUpload handles POST /api/v1/uploads. The body is either the raw CSV
// (name taken from the "name" query parameter) or a multipart form with the
// CSV in the "file" field.
func (h *Handler) createUpload(w http.ResponseWriter, r *http.Request) {
	if h.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	}

	name, data, err := readUpload(r)
	if err != nil {
		h.observe(metrics.OutcomeRejected, nil)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonErr(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	id := store.Key(data)
	if name == "" {
		name = "upload-" + id[:12] + ".csv"
	}

	if cached, ok := h.store.Get(id); ok {
		e := *cached
		e.Name = name
		h.store.Put(&e)
		h.observe(metrics.OutcomeCached, &e.Summary)
		h.evaluate(&e)
		slog.Info("api: upload served from cache", "id", id, "name", name, "rows", e.Summary.Rows)

		resp := h.toUploadResponse(&e)
		resp.Cached = true
		jsonResp(w, http.StatusOK, resp)
		return
	}

	tbl, err := h.cfg.Processor.LoadAndProcess(r.Context(), bytes.NewReader(data))
	if err != nil {
		h.observe(metrics.OutcomeRejected, nil)
		slog.Warn("api: upload rejected", "name", name, "err", err)
		writeProcessError(w, err)
		return
	}

	e := &store.Entry{
		ID:      id,
		Name:    name,
		Size:    int64(len(data)),
		Table:   tbl,
		Summary: records.Summarize(tbl),
	}
	h.store.Put(e)
	h.observe(metrics.OutcomeProcessed, &e.Summary)
	h.evaluate(e)
	slog.Info("api: upload processed", "id", id, "name", name, "rows", e.Summary.Rows,
		"inverted", e.Summary.InvertedRows)

	jsonResp(w, http.StatusCreated, h.toUploadResponse(e))
}

// readUpload extracts the file name and bytes from r.
func readUpload(r *http.Request) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return "", nil, fmt.Errorf("read body: %w", err)
		}
		if len(data) == 0 {
			return "", nil, errors.New("empty upload")
		}
		return cleanName(r.URL.Query().Get("name")), data, nil
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, fmt.Errorf("read multipart: %w", err)
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", nil, fmt.Errorf("multipart form has no %q field", multipartField)
		}
		if err != nil {
			return "", nil, fmt.Errorf("read multipart: %w", err)
		}
		if part.FormName() != multipartField {
			part.Close()
			continue
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return "", nil, fmt.Errorf("read %q field: %w", multipartField, err)
		}
		if len(data) == 0 {
			return "", nil, errors.New("empty upload")
		}
		return cleanName(part.FileName()), data, nil
	}
}

// cleanName keeps the base name of a client-supplied file name.
func cleanName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// writeProcessError maps processor failures to HTTP statuses.
func writeProcessError(w http.ResponseWriter, err error) {
	var (
		missing *records.MissingColumnError
		timeErr *records.TimeParseError
		parse   *records.ParseError
		derive  *records.DerivationError
	)
	switch {
	case errors.As(err, &missing):
		jsonResp(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Column: missing.Column})
	case errors.As(err, &timeErr):
		jsonResp(w, http.StatusUnprocessableEntity, errorResponse{
			Error: err.Error(), Column: timeErr.Column, Row: timeErr.Row, Line: timeErr.Line,
		})
	case errors.As(err, &parse):
		jsonResp(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Line: parse.Line})
	case errors.As(err, &derive):
		jsonResp(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Row: derive.Row})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		jsonErr(w, http.StatusServiceUnavailable, "processing cancelled")
	default:
		jsonErr(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) observe(outcome string, s *records.Summary) {
	if h.cfg.Metrics != nil {
		h.cfg.Metrics.ObserveUpload(outcome, s)
	}
}

// evaluate runs alert rules for e and notifies stream listeners.
func (h *Handler) evaluate(e *store.Entry) {
	if h.cfg.Alerts != nil {
		h.cfg.Alerts.Evaluate(e.Name, e.Summary)
	}
	if h.cfg.OnUpload != nil {
		h.cfg.OnUpload()
	}
}
