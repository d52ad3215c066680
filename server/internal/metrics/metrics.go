package metrics

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/drillscope/drillscope/server/internal/hardness"
	"github.com/drillscope/drillscope/server/internal/records"
)

// Upload outcomes, used as the "outcome" label of drillscope_uploads_total.
const (
	OutcomeProcessed = "processed"
	OutcomeCached    = "cached"
	OutcomeRejected  = "rejected"
)

// Metric family names.
const (
	NameUploads       = "drillscope_uploads_total"
	NameRows          = "drillscope_rows_processed_total"
	NameRowsCategory  = "drillscope_rows_by_category_total"
	NameCachedUploads = "drillscope_cached_uploads"
)

// Registry accumulates counters. The cached-uploads gauge is read from a
// callback at render time.
type Registry struct {
	mu         sync.Mutex
	uploads    map[string]float64
	rows       float64
	byCategory map[hardness.Category]float64

	cached func() int
}

// New creates a Registry. cached reports the current number of cached
// uploads; nil reports zero.
func New(cached func() int) *Registry {
	if cached == nil {
		cached = func() int { return 0 }
	}
	r := &Registry{
		uploads:    make(map[string]float64),
		byCategory: make(map[hardness.Category]float64),
		cached:     cached,
	}
	for _, o := range []string{OutcomeProcessed, OutcomeCached, OutcomeRejected} {
		r.uploads[o] = 0
	}
	for _, c := range hardness.Categories() {
		r.byCategory[c] = 0
	}
	return r
}

// ObserveUpload counts one upload attempt. Row counters advance only for
// processed uploads so cache hits are not double-counted.
func (r *Registry) ObserveUpload(outcome string, s *records.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads[outcome]++
	if outcome != OutcomeProcessed || s == nil {
		return
	}
	r.rows += float64(s.Rows)
	for _, st := range s.Categories {
		r.byCategory[st.Category] += float64(st.Count)
	}
}

// Gather snapshots the registry as metric families sorted by name.
func (r *Registry) Gather() []*dto.MetricFamily {
	r.mu.Lock()
	outcomes := make([]string, 0, len(r.uploads))
	for o := range r.uploads {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)
	uploads := make([]*dto.Metric, 0, len(outcomes))
	for _, o := range outcomes {
		uploads = append(uploads, counter(r.uploads[o], "outcome", o))
	}

	byCat := make([]*dto.Metric, 0, len(r.byCategory))
	for _, c := range hardness.Categories() {
		byCat = append(byCat, counter(r.byCategory[c], "category", string(c)))
	}
	rows := r.rows
	r.mu.Unlock()

	return []*dto.MetricFamily{
		{
			Name:   proto.String(NameCachedUploads),
			Help:   proto.String("Processed uploads currently held in the cache."),
			Type:   dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(float64(r.cached()))}}},
		},
		{
			Name:   proto.String(NameRowsCategory),
			Help:   proto.String("Enriched rows by hardness category."),
			Type:   dto.MetricType_COUNTER.Enum(),
			Metric: byCat,
		},
		{
			Name:   proto.String(NameRows),
			Help:   proto.String("Rows enriched across all processed uploads."),
			Type:   dto.MetricType_COUNTER.Enum(),
			Metric: []*dto.Metric{counter(rows)},
		},
		{
			Name:   proto.String(NameUploads),
			Help:   proto.String("Upload attempts by outcome."),
			Type:   dto.MetricType_COUNTER.Enum(),
			Metric: uploads,
		},
	}
}

// WriteText encodes all families in the Prometheus text format.
func (r *Registry) WriteText(w io.Writer) error {
	for _, mf := range r.Gather() {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// ServeHTTP implements http.Handler for GET /metrics.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	if err := r.WriteText(w); err != nil {
		slog.Error("metrics: write failed", "err", err)
	}
}

func counter(v float64, labels ...string) *dto.Metric {
	m := &dto.Metric{Counter: &dto.Counter{Value: proto.Float64(v)}}
	for i := 0; i+1 < len(labels); i += 2 {
		m.Label = append(m.Label, &dto.LabelPair{
			Name:  proto.String(labels[i]),
			Value: proto.String(labels[i+1]),
		})
	}
	return m
}
