package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drillscope/drillscope/server/internal/config"
	"github.com/drillscope/drillscope/server/internal/records"
)

const (
	defaultCooldown   = 15 * time.Minute
	maxHistoryLen     = 200
	recentWindowHours = 1
)

// Alert states.
const (
	StateFiring   = "firing"
	StateResolved = "resolved"
)

// Alert represents a single alert event produced by the rule engine.
type Alert struct {
	ID         string     `json:"id"`
	RuleName   string     `json:"rule_name"`
	Upload     string     `json:"upload"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Value      float64    `json:"value"`
	FiredAt    time.Time  `json:"fired_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	State      string     `json:"state"` // "firing" | "resolved"

	// Condition and the fields below describe the upload as last evaluated.
	Condition    string                 `json:"condition"`
	Rows         int                    `json:"rows"`
	MeanDuration float64                `json:"mean_duration"`
	Categories   []records.CategoryStat `json:"categories,omitempty"`
}

func (a *Alert) observe(s records.Summary) {
	a.Rows = s.Rows
	a.MeanDuration = s.MeanDuration
	a.Categories = append([]records.CategoryStat(nil), s.Categories...)
}

// Engine evaluates alert rules against upload summaries and delivers
// webhook notifications when rules fire or resolve.
//
// Engine is safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	rules    []config.AlertRule
	webhooks []config.WebhookConfig
	active   map[string]*Alert    // key: "ruleName:upload"
	lastFire map[string]time.Time // last fire time per key (for cooldown)
	history  []*Alert             // recently resolved alerts

	client  *http.Client
	now     func() time.Time
	deliver func(*Alert)
}

// New creates an Engine from the server alert configuration.
// An Engine with empty rules is valid; Evaluate becomes a no-op.
func New(cfg config.AlertsConfig) *Engine {
	e := &Engine{
		active:   make(map[string]*Alert),
		lastFire: make(map[string]time.Time),
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
	e.deliver = e.deliverWebhooks
	e.SetConfig(cfg)
	return e
}

// SetConfig replaces the rules and webhook targets. Rules with a malformed
// condition are dropped with a warning. Alerts already firing are kept and
// resolve on the next evaluation of their upload if their rule is gone.
func (e *Engine) SetConfig(cfg config.AlertsConfig) {
	rules := make([]config.AlertRule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		if _, _, _, err := parseCondition(r.Condition); err != nil {
			slog.Warn("alerts: skipping rule", "rule", r.Name, "err", err)
			continue
		}
		rules = append(rules, r)
	}

	e.mu.Lock()
	e.rules = rules
	e.webhooks = append([]config.WebhookConfig(nil), cfg.Webhooks...)
	e.mu.Unlock()
}

// Rules returns the number of active rules.
func (e *Engine) Rules() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.rules)
}

// Evaluate tests all configured rules against the summary of upload.
// Alerts that fire are stored and webhook delivery is triggered asynchronously.
// Alerts that were firing for upload but whose condition is now false (or
// whose rule was removed) are resolved.
func (e *Engine) Evaluate(upload string, s records.Summary) {
	e.mu.Lock()
	now := e.now()
	var notify []*Alert
	seen := make(map[string]bool, len(e.rules))

	for _, rule := range e.rules {
		key := rule.Name + ":" + upload
		seen[key] = true
		fires, value := evalCondition(rule.Condition, s)

		if !fires {
			if a := e.resolve(key, now, s); a != nil {
				slog.Info("alert resolved", "rule", rule.Name, "upload", upload)
				notify = append(notify, a)
			}
			continue
		}

		cooldown := rule.Cooldown
		if cooldown <= 0 {
			cooldown = defaultCooldown
		}
		if last, ok := e.lastFire[key]; ok && now.Sub(last) <= cooldown {
			continue
		}
		sev := rule.Severity
		if sev == "" {
			sev = "warning"
		}
		a := &Alert{
			ID:       uuid.NewString(),
			RuleName: rule.Name,
			Upload:   upload,
			Severity: sev,
			Value:    value,
			Message: fmt.Sprintf("[%s] %s fired on %s: %s = %.2f",
				sev, rule.Name, upload, rule.Condition, value),
			FiredAt:   now,
			State:     StateFiring,
			Condition: rule.Condition,
		}
		a.observe(s)
		e.active[key] = a
		e.lastFire[key] = now

		slog.Warn("alert fired",
			"rule", rule.Name,
			"upload", upload,
			"value", value,
			"severity", sev,
		)
		cp := *a
		notify = append(notify, &cp)
	}

	for key, a := range e.active {
		if a.Upload == upload && !seen[key] {
			if r := e.resolve(key, now, s); r != nil {
				notify = append(notify, r)
			}
		}
	}
	e.mu.Unlock()

	for _, a := range notify {
		go e.deliver(a)
	}
}

// resolve moves the firing alert under key to history and returns a copy of
// it, or nil if nothing was firing. e.mu must be held.
func (e *Engine) resolve(key string, now time.Time, s records.Summary) *Alert {
	a, ok := e.active[key]
	if !ok || a.State != StateFiring {
		return nil
	}
	resolved := now
	a.State = StateResolved
	a.ResolvedAt = &resolved
	a.observe(s)
	delete(e.active, key)

	e.history = append(e.history, a)
	if len(e.history) > maxHistoryLen {
		e.history = e.history[len(e.history)-maxHistoryLen:]
	}
	cp := *a
	return &cp
}

// Active returns copies of all currently firing alerts plus any alerts
// resolved within the past hour, sorted newest first.
func (e *Engine) Active() []*Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-recentWindowHours * time.Hour)
	out := make([]*Alert, 0, len(e.active))

	for _, a := range e.active {
		cp := *a
		out = append(out, &cp)
	}
	for _, a := range e.history {
		if a.ResolvedAt != nil && a.ResolvedAt.After(cutoff) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiredAt.After(out[j].FiredAt) })
	return out
}
