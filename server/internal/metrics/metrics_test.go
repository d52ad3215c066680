package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drillscope/drillscope/server/internal/hardness"
	"github.com/drillscope/drillscope/server/internal/records"
)

func parse(t *testing.T, text string) map[string]*dto.MetricFamily {
	t.Helper()
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(strings.NewReader(text))
	require.NoError(t, err)
	return mfs
}

func labelled(mf *dto.MetricFamily, name, value string) float64 {
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == name && lp.GetValue() == value {
				return m.GetCounter().GetValue()
			}
		}
	}
	return -1
}

func summary(counts map[hardness.Category]int) *records.Summary {
	s := &records.Summary{}
	for _, c := range hardness.Categories() {
		s.Categories = append(s.Categories, records.CategoryStat{Category: c, Count: counts[c]})
		s.Rows += counts[c]
	}
	return s
}

func TestRegistry_Counters(t *testing.T) {
	reg := New(func() int { return 3 })
	reg.ObserveUpload(OutcomeProcessed, summary(map[hardness.Category]int{hardness.Soft: 2, hardness.Hard: 1}))
	reg.ObserveUpload(OutcomeCached, summary(map[hardness.Category]int{hardness.Soft: 5}))
	reg.ObserveUpload(OutcomeRejected, nil)

	var buf bytes.Buffer
	require.NoError(t, reg.WriteText(&buf))
	mfs := parse(t, buf.String())

	require.Contains(t, mfs, NameUploads)
	assert.Equal(t, 1.0, labelled(mfs[NameUploads], "outcome", OutcomeProcessed))
	assert.Equal(t, 1.0, labelled(mfs[NameUploads], "outcome", OutcomeCached))
	assert.Equal(t, 1.0, labelled(mfs[NameUploads], "outcome", OutcomeRejected))

	require.Contains(t, mfs, NameRows)
	assert.Equal(t, 3.0, mfs[NameRows].GetMetric()[0].GetCounter().GetValue())

	require.Contains(t, mfs, NameRowsCategory)
	assert.Equal(t, 2.0, labelled(mfs[NameRowsCategory], "category", string(hardness.Soft)))
	assert.Equal(t, 1.0, labelled(mfs[NameRowsCategory], "category", string(hardness.Hard)))
	assert.Equal(t, 0.0, labelled(mfs[NameRowsCategory], "category", string(hardness.VeryHard)))

	require.Contains(t, mfs, NameCachedUploads)
	assert.Equal(t, dto.MetricType_GAUGE, mfs[NameCachedUploads].GetType())
	assert.Equal(t, 3.0, mfs[NameCachedUploads].GetMetric()[0].GetGauge().GetValue())
}

func TestRegistry_ZeroSeriesPresent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(nil).WriteText(&buf))
	mfs := parse(t, buf.String())

	assert.Len(t, mfs[NameUploads].GetMetric(), 3)
	assert.Len(t, mfs[NameRowsCategory].GetMetric(), len(hardness.Categories()))
	assert.Equal(t, 0.0, mfs[NameCachedUploads].GetMetric()[0].GetGauge().GetValue())
}

func TestServeHTTP(t *testing.T) {
	reg := New(nil)

	rr := httptest.NewRecorder()
	reg.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rr.Body.String(), NameUploads)

	rr = httptest.NewRecorder()
	reg.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
