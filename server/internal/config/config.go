package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/drillscope/drillscope/server/internal/records"
)

// AlertsConfig holds alerting rules and webhook delivery targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one threshold-based alert condition evaluated against
// the summary of every processed upload.
type AlertRule struct {
	// Name is the human-readable alert identifier, used with the upload name
	// as the deduplication key.
	Name string `yaml:"name"`

	// Condition is a simple expression: "very_hard_pct > 30",
	// "inverted_rows > 0", "mean_duration >= 25".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	// Defaults to 15 minutes if zero.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Default values for the server configuration.
const (
	DefaultHTTPPort       = 8080
	DefaultLogLevel       = "info"
	DefaultMaxUploadBytes = 32 << 20
	DefaultCacheTTL       = 30 * time.Minute
	DefaultStreamInterval = 5 * time.Second
)

// Config holds the configuration parsed from the `server:` section of
// config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// LogLevel is one of: debug | info | warn | error. Hot-reloadable.
	LogLevel string `yaml:"log_level"`

	Upload     UploadConfig     `yaml:"upload"`
	Cache      CacheConfig      `yaml:"cache"`
	Stream     StreamConfig     `yaml:"stream"`
	Columns    records.Schema   `yaml:"columns"`
	Timestamps TimestampsConfig `yaml:"timestamps"`

	// Alerts holds rule definitions and webhook delivery targets. Hot-reloadable.
	Alerts AlertsConfig `yaml:"alerts"`
}

// UploadConfig limits accepted uploads.
type UploadConfig struct {
	// MaxBytes caps the request body of POST /api/v1/uploads (default 32 MiB).
	MaxBytes int64 `yaml:"max_bytes"`
}

// CacheConfig controls in-memory retention of processed uploads.
type CacheConfig struct {
	// TTL is how long a processed upload stays cached after it was last
	// uploaded. Default: 30m.
	TTL time.Duration `yaml:"ttl"`
}

// StreamConfig controls the WebSocket broadcast.
type StreamConfig struct {
	// Interval between pushes of the upload list. Default: 5s.
	Interval time.Duration `yaml:"interval"`
}

// TimestampsConfig controls how start/end cells are parsed.
type TimestampsConfig struct {
	// Layouts are tried in order ahead of records.DefaultLayouts, then
	// free-form parsing.
	Layouts []string `yaml:"layouts"`

	// Location is an IANA zone name applied to timestamps without an offset.
	// Empty means UTC.
	Location string `yaml:"location"`
}

// Zone resolves Location. Load has already validated it.
func (t TimestampsConfig) Zone() *time.Location {
	if t.Location == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(t.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Level converts LogLevel to a slog.Level.
func (s ServerConfig) Level() slog.Level {
	lvl, _ := parseLevel(s.LogLevel)
	return lvl
}

// ProcessorOptions builds the records processor options for this config.
func (s ServerConfig) ProcessorOptions(logger *slog.Logger) records.Options {
	return records.Options{
		Schema:   s.Columns,
		Layouts:  s.Timestamps.Layouts,
		Location: s.Timestamps.Zone(),
		Logger:   logger,
	}
}

// Load reads and parses the config file at path, returning the server configuration.
// Missing fields are filled with sensible defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes, applying defaults and validation.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a Config pre-populated with default values. It is what
// the binaries run with when no config file is given.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			LogLevel: DefaultLogLevel,
			Upload:   UploadConfig{MaxBytes: DefaultMaxUploadBytes},
			Cache:    CacheConfig{TTL: DefaultCacheTTL},
			Stream:   StreamConfig{Interval: DefaultStreamInterval},
			Columns:  records.DefaultSchema(),
		},
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("server.log_level %q unknown: want debug|info|warn|error", s)
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	if _, err := parseLevel(s.LogLevel); err != nil {
		return err
	}
	if s.Upload.MaxBytes <= 0 {
		return fmt.Errorf("server.upload.max_bytes must be positive")
	}
	if s.Cache.TTL <= 0 {
		return fmt.Errorf("server.cache.ttl must be positive")
	}
	if s.Stream.Interval <= 0 {
		return fmt.Errorf("server.stream.interval must be positive")
	}
	if s.Columns.StartTime == "" || s.Columns.EndTime == "" {
		return fmt.Errorf("server.columns: start_time and end_time must be set")
	}
	if s.Timestamps.Location != "" {
		if _, err := time.LoadLocation(s.Timestamps.Location); err != nil {
			return fmt.Errorf("server.timestamps.location: %w", err)
		}
	}
	for i, r := range s.Alerts.Rules {
		if r.Name == "" || r.Condition == "" {
			return fmt.Errorf("server.alerts.rules[%d]: name and condition are required", i)
		}
	}
	for i, w := range s.Alerts.Webhooks {
		switch w.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("server.alerts.webhooks[%d].type %q unknown: want slack|teams|http", i, w.Type)
		}
	}
	return nil
}
