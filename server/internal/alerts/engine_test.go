package alerts

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/drillscope/drillscope/server/internal/config"
	"github.com/drillscope/drillscope/server/internal/hardness"
	"github.com/drillscope/drillscope/server/internal/records"
)

func summaryWith(veryHardPct float64, inverted int) records.Summary {
	return records.Summary{
		Rows: 10,
		Categories: []records.CategoryStat{
			{Category: hardness.Soft, Percent: 100 - veryHardPct},
			{Category: hardness.Medium},
			{Category: hardness.Hard},
			{Category: hardness.VeryHard, Percent: veryHardPct},
		},
		MeanDuration: 20,
		MaxDuration:  75,
		MeanIndex:    33,
		InvertedRows: inverted,
	}
}

type recorder struct {
	mu     sync.Mutex
	alerts []*Alert
	ch     chan struct{}
}

func newRecorder() *recorder { return &recorder{ch: make(chan struct{}, 16)} }

func (r *recorder) deliver(a *Alert) {
	r.mu.Lock()
	r.alerts = append(r.alerts, a)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *recorder) wait(t *testing.T, n int) []*Alert {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("waited for %d deliveries, got %d", n, i)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Alert(nil), r.alerts...)
}

func newEngine(rules ...config.AlertRule) (*Engine, *recorder) {
	e := New(config.AlertsConfig{Rules: rules})
	rec := newRecorder()
	e.deliver = rec.deliver
	return e, rec
}

func TestEvalCondition(t *testing.T) {
	s := summaryWith(40, 2)
	cases := []struct {
		cond      string
		wantFires bool
		wantValue float64
	}{
		{"very_hard_pct > 30", true, 40},
		{"very_hard_pct > 50", false, 40},
		{"soft_pct >= 60", true, 60},
		{"inverted_rows > 0", true, 2},
		{"rows < 5", false, 10},
		{"mean_duration == 20", true, 20},
		{"max_duration <= 75", true, 75},
		{"mean_index < 50", true, 33},
		{"saturated_rows > 0", false, 0},
		{"medium_pct > 0", false, 0},
		{"hard_pct >= 0", true, 0},
		{"unknown_field > 1", false, 0},
		{"very_hard_pct >> 1", false, 0},
		{"very_hard_pct > abc", false, 0},
		{"very_hard_pct>30", false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.cond, func(t *testing.T) {
			fires, v := evalCondition(tc.cond, s)
			if fires != tc.wantFires {
				t.Errorf("fires: got %v, want %v", fires, tc.wantFires)
			}
			if v != tc.wantValue {
				t.Errorf("value: got %v, want %v", v, tc.wantValue)
			}
		})
	}
}

func TestEvaluate_FireAndResolve(t *testing.T) {
	e, rec := newEngine(config.AlertRule{Name: "hard-ground", Condition: "very_hard_pct > 30", Severity: "critical"})

	e.Evaluate("bench-12.csv", summaryWith(40, 0))
	got := rec.wait(t, 1)
	if got[0].State != StateFiring || got[0].Upload != "bench-12.csv" || got[0].Severity != "critical" {
		t.Errorf("fired alert: got %+v", got[0])
	}
	if got[0].ID == "" {
		t.Error("fired alert has no ID")
	}
	if n := len(e.Active()); n != 1 {
		t.Fatalf("Active: got %d, want 1", n)
	}

	// Same file name, corrected content.
	e.Evaluate("bench-12.csv", summaryWith(10, 0))
	got = rec.wait(t, 1)
	if got[1].State != StateResolved || got[1].ResolvedAt == nil {
		t.Errorf("resolved alert: got %+v", got[1])
	}
	if len(got[1].Categories) != 4 || got[1].Categories[3].Percent != 10 {
		t.Errorf("resolved alert categories: got %+v, want the corrected upload", got[1].Categories)
	}
	active := e.Active()
	if len(active) != 1 || active[0].State != StateResolved {
		t.Errorf("Active after resolve: got %+v, want one resolved alert", active)
	}
}

func TestEvaluate_KeyedPerUpload(t *testing.T) {
	e, rec := newEngine(config.AlertRule{Name: "inverted", Condition: "inverted_rows > 0"})

	e.Evaluate("a.csv", summaryWith(0, 1))
	e.Evaluate("b.csv", summaryWith(0, 3))
	rec.wait(t, 2)

	// A clean b.csv must not resolve a.csv.
	e.Evaluate("b.csv", summaryWith(0, 0))
	rec.wait(t, 1)

	firing := 0
	for _, a := range e.Active() {
		if a.State == StateFiring {
			firing++
			if a.Upload != "a.csv" {
				t.Errorf("still firing for %q, want a.csv", a.Upload)
			}
		}
	}
	if firing != 1 {
		t.Errorf("firing alerts: got %d, want 1", firing)
	}
}

func TestEvaluate_Cooldown(t *testing.T) {
	base := time.Now()
	e, rec := newEngine(config.AlertRule{Name: "r", Condition: "rows > 0", Cooldown: time.Minute})
	e.now = func() time.Time { return base }

	e.Evaluate("x.csv", summaryWith(0, 0))
	rec.wait(t, 1)

	e.now = func() time.Time { return base.Add(30 * time.Second) }
	e.Evaluate("x.csv", summaryWith(0, 0))

	e.now = func() time.Time { return base.Add(2 * time.Minute) }
	e.Evaluate("x.csv", summaryWith(0, 0))
	got := rec.wait(t, 1)

	if len(got) != 2 {
		t.Fatalf("deliveries: got %d, want 2 (second evaluation suppressed)", len(got))
	}
	if got[0].ID == got[1].ID {
		t.Error("re-fired alert reused the previous ID")
	}
}

func TestSetConfig_DropsBadRulesAndResolvesRemoved(t *testing.T) {
	e, rec := newEngine(
		config.AlertRule{Name: "ok", Condition: "rows > 0"},
		config.AlertRule{Name: "bad", Condition: "rows is big"},
	)
	if n := e.Rules(); n != 1 {
		t.Fatalf("Rules: got %d, want 1", n)
	}

	e.Evaluate("x.csv", summaryWith(0, 0))
	rec.wait(t, 1)

	e.SetConfig(config.AlertsConfig{})
	e.Evaluate("x.csv", summaryWith(0, 0))
	got := rec.wait(t, 1)
	if got[1].State != StateResolved {
		t.Errorf("removed rule: got state %q, want resolved", got[1].State)
	}
}

func TestDeliver_Webhooks(t *testing.T) {
	type hit struct {
		path string
		body map[string]any
	}
	hits := make(chan hit, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		hits <- hit{path: r.URL.Path, body: body}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("TEST_SLACK_URL", srv.URL+"/slack")
	t.Setenv("TEST_TEAMS_URL", srv.URL+"/teams")
	t.Setenv("TEST_HTTP_URL", srv.URL+"/http")

	e := New(config.AlertsConfig{
		Rules: []config.AlertRule{{Name: "hard", Condition: "very_hard_pct > 30"}},
		Webhooks: []config.WebhookConfig{
			{Type: "slack", URLEnv: "TEST_SLACK_URL"},
			{Type: "teams", URLEnv: "TEST_TEAMS_URL"},
			{Type: "http", URLEnv: "TEST_HTTP_URL"},
			{Type: "http"}, // no URL: skipped
		},
	})
	e.Evaluate("pit-3.csv", summaryWith(50, 0))

	got := make(map[string]map[string]any)
	for i := 0; i < 3; i++ {
		select {
		case h := <-hits:
			got[h.path] = h.body
		case <-time.After(5 * time.Second):
			t.Fatalf("got %d webhook calls, want 3", i)
		}
	}
	text, _ := got["/slack"]["text"].(string)
	if !strings.Contains(text, "pit-3.csv") || !strings.Contains(text, "very hard rock: 0 (50.0%)") {
		t.Errorf("slack payload: got %q", text)
	}
	if got["/teams"]["@type"] != "MessageCard" {
		t.Errorf("teams payload: got %v", got["/teams"])
	}
	sections, _ := got["/teams"]["sections"].([]any)
	if len(sections) != 1 {
		t.Fatalf("teams sections: got %v", got["/teams"]["sections"])
	}
	if teamsFacts, _ := sections[0].(map[string]any)["facts"].([]any); len(teamsFacts) != 8 {
		t.Errorf("teams facts: got %v, want upload, condition, rows, mean duration and 4 categories", teamsFacts)
	}
	if got["/http"]["event"] != "alert.firing" {
		t.Errorf("http event: got %v", got["/http"]["event"])
	}
	alert, ok := got["/http"]["alert"].(map[string]any)
	if !ok || alert["upload"] != "pit-3.csv" || alert["state"] != StateFiring {
		t.Errorf("http payload: got %v", got["/http"])
	}
	if alert["condition"] != "very_hard_pct > 30" || alert["rows"] != float64(10) {
		t.Errorf("http alert summary: got %v", alert)
	}
	if cats, _ := alert["categories"].([]any); len(cats) != 4 {
		t.Errorf("http alert categories: got %v", alert["categories"])
	}
}
