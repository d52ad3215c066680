package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// fact is one name/value line of a notification body.
type fact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// facts describes the upload behind a: rule condition, row count, mean
// duration and the share of rows per hardness category.
func facts(a *Alert) []fact {
	out := []fact{
		{"Upload", a.Upload},
		{"Condition", fmt.Sprintf("%s (observed %.2f)", a.Condition, a.Value)},
		{"Rows", fmt.Sprintf("%d", a.Rows)},
		{"Mean duration", fmt.Sprintf("%.1f min", a.MeanDuration)},
	}
	for _, c := range a.Categories {
		out = append(out, fact{string(c.Category), fmt.Sprintf("%d (%.1f%%)", c.Count, c.Percent)})
	}
	return out
}

// headline is the one-line notification title.
func headline(a *Alert) string {
	if a.State == StateResolved {
		return fmt.Sprintf("Resolved: %s on %s", a.RuleName, a.Upload)
	}
	return fmt.Sprintf("%s %s on %s", severityLabel(a.Severity), a.RuleName, a.Upload)
}

// deliverWebhooks posts a to every configured target with a resolvable URL.
// Failures are logged only.
func (e *Engine) deliverWebhooks(a *Alert) {
	e.mu.Lock()
	webhooks := e.webhooks
	e.mu.Unlock()

	for _, wh := range webhooks {
		url := wh.URL()
		if url == "" {
			continue
		}

		var body []byte
		switch wh.Type {
		case "slack":
			body = slackPayload(a)
		case "teams":
			body = teamsPayload(a)
		case "http":
			body = httpPayload(a)
		default:
			slog.Warn("alerts: unknown webhook type, skipping", "type", wh.Type)
			continue
		}

		if err := e.post(url, body); err != nil {
			slog.Error("alerts: webhook delivery failed",
				"type", wh.Type,
				"rule", a.RuleName,
				"upload", a.Upload,
				"err", err,
			)
			continue
		}
		slog.Debug("alerts: webhook delivered", "type", wh.Type, "rule", a.RuleName, "state", a.State)
	}
}

func slackPayload(a *Alert) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n%s", headline(a), a.Message)
	for _, f := range facts(a)[1:] {
		fmt.Fprintf(&b, "\n> %s: %s", f.Name, f.Value)
	}
	body, _ := json.Marshal(map[string]string{"text": b.String()})
	return body
}

func teamsPayload(a *Alert) []byte {
	color := severityColor(a.Severity)
	if a.State == StateResolved {
		color = "2EB67D"
	}
	body, _ := json.Marshal(map[string]any{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": color,
		"summary":    a.RuleName,
		"title":      "Drillscope: " + headline(a),
		"text":       a.Message,
		"sections":   []map[string]any{{"facts": facts(a)}},
	})
	return body
}

// httpPayload carries the full alert under "alert" and an event name of the
// form "alert.firing" or "alert.resolved".
func httpPayload(a *Alert) []byte {
	body, _ := json.Marshal(map[string]any{
		"event": "alert." + a.State,
		"alert": a,
	})
	return body
}

func (e *Engine) post(url string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

func severityLabel(s string) string {
	switch s {
	case "critical":
		return "[CRITICAL]"
	case "warning":
		return "[WARNING]"
	default:
		return "[INFO]"
	}
}

func severityColor(s string) string {
	switch s {
	case "critical":
		return "FF4F6A"
	case "warning":
		return "FFAB40"
	default:
		return "00D4FF"
	}
}
