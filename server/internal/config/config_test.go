package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/drillscope/drillscope/server/internal/records"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	// Server section absent; everything comes from defaults.
	p := writeConfig(t, "other: {}\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Server.Cache.TTL != DefaultCacheTTL {
		t.Errorf("cache.ttl: got %v, want %v", cfg.Server.Cache.TTL, DefaultCacheTTL)
	}
	if cfg.Server.Upload.MaxBytes != DefaultMaxUploadBytes {
		t.Errorf("upload.max_bytes: got %d, want %d", cfg.Server.Upload.MaxBytes, DefaultMaxUploadBytes)
	}
	if cfg.Server.Stream.Interval != DefaultStreamInterval {
		t.Errorf("stream.interval: got %v, want %v", cfg.Server.Stream.Interval, DefaultStreamInterval)
	}
	if cfg.Server.Columns != records.DefaultSchema() {
		t.Errorf("columns: got %+v, want defaults", cfg.Server.Columns)
	}
	if cfg.Server.Level() != slog.LevelInfo {
		t.Errorf("level: got %v, want INFO", cfg.Server.Level())
	}
	if cfg.Server.Timestamps.Zone() != time.UTC {
		t.Errorf("zone: got %v, want UTC", cfg.Server.Timestamps.Zone())
	}
}

func TestLoad_FullServer(t *testing.T) {
	p := writeConfig(t, `server:
  http_port: 9091
  log_level: debug
  upload:
    max_bytes: 1024
  cache:
    ttl: 10m
  stream:
    interval: 2s
  columns:
    start_time: start
    end_time: end
  timestamps:
    layouts: ["02/01/2006 15:04"]
    location: America/Santiago
  alerts:
    rules:
      - name: hard-ground
        condition: "very_hard_pct > 30"
        severity: warning
    webhooks:
      - type: slack
        url_env: SLACK_URL
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.Server
	if s.HTTPPort != 9091 {
		t.Errorf("http_port: got %d, want 9091", s.HTTPPort)
	}
	if s.Level() != slog.LevelDebug {
		t.Errorf("level: got %v, want DEBUG", s.Level())
	}
	if s.Upload.MaxBytes != 1024 {
		t.Errorf("max_bytes: got %d, want 1024", s.Upload.MaxBytes)
	}
	if s.Cache.TTL != 10*time.Minute {
		t.Errorf("cache.ttl: got %v, want 10m", s.Cache.TTL)
	}
	if s.Stream.Interval != 2*time.Second {
		t.Errorf("stream.interval: got %v, want 2s", s.Stream.Interval)
	}
	if s.Columns.StartTime != "start" || s.Columns.EndTime != "end" {
		t.Errorf("columns: got %+v", s.Columns)
	}
	// Columns not named in the file keep their defaults.
	if s.Columns.East != records.DefaultSchema().East {
		t.Errorf("columns.east: got %q, want default", s.Columns.East)
	}
	if z := s.Timestamps.Zone().String(); z != "America/Santiago" {
		t.Errorf("zone: got %q, want America/Santiago", z)
	}
	if len(s.Alerts.Rules) != 1 || s.Alerts.Rules[0].Name != "hard-ground" {
		t.Errorf("alerts.rules: got %+v", s.Alerts.Rules)
	}

	opts := s.ProcessorOptions(nil)
	if opts.Schema.StartTime != "start" || len(opts.Layouts) != 1 {
		t.Errorf("processor options: got %+v", opts)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"port out of range", "server:\n  http_port: 70000\n"},
		{"unknown log level", "server:\n  log_level: loud\n"},
		{"negative ttl", "server:\n  cache:\n    ttl: -1m\n"},
		{"zero max bytes", "server:\n  upload:\n    max_bytes: 0\n"},
		{"blank start column", "server:\n  columns:\n    start_time: \"\"\n"},
		{"bad location", "server:\n  timestamps:\n    location: Mars/Olympus\n"},
		{"rule without condition", "server:\n  alerts:\n    rules:\n      - name: x\n"},
		{"unknown webhook", "server:\n  alerts:\n    webhooks:\n      - type: pagerduty\n"},
		{"bad yaml", "server: [\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestWebhookConfig_URL(t *testing.T) {
	t.Setenv("TEST_HOOK_URL", "https://hooks.example.com/x")
	w := WebhookConfig{Type: "http", URLEnv: "TEST_HOOK_URL"}
	if got := w.URL(); got != "https://hooks.example.com/x" {
		t.Errorf("URL: got %q", got)
	}
	if got := (WebhookConfig{Type: "http"}).URL(); got != "" {
		t.Errorf("URL with no env: got %q, want empty", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestWatch_Reload(t *testing.T) {
	p := writeConfig(t, "server:\n  log_level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, p, func(c *Config) { got <- c }) }()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-got:
			if c.Server.LogLevel != "debug" {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch returned %v", err)
			}
			return
		case <-tick.C:
			if err := os.WriteFile(p, []byte("server:\n  log_level: debug\n"), 0o600); err != nil {
				t.Fatalf("rewrite config: %v", err)
			}
		case <-deadline:
			t.Fatal("onChange not called after rewrite")
		}
	}
}
