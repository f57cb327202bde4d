// Package config defines service configuration structures and loading hooks.
package config

import (
	"runtime"
	"time"
)

// Chart renderer names accepted by ChartRenderer.
const (
	RendererGoChart = "gochart"
	RendererChrome  = "chrome"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFile, when set, also writes logs to a rotated file.
	LogFile string `koanf:"log_file"`

	// LogJSON switches log output to JSON.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RosterPath points to a YAML, TOML or JSON roster file. Empty uses the built-in roster.
	RosterPath string `koanf:"roster_path"`

	// StrictRoster rejects the whole roster when any record is invalid.
	StrictRoster bool `koanf:"strict_roster"`

	// KnownSports restricts accepted sports. Empty accepts any non-blank sport.
	KnownSports []string `koanf:"known_sports"`

	// ExportQueueSize bounds the in-memory export queue.
	ExportQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of export workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the idempotency-key cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ExportTTLSeconds is how long a finished report stays downloadable.
	ExportTTLSeconds int `koanf:"export_ttl_seconds"`

	// ExportCacheMB and SeriesCacheMB size the in-memory byte caches.
	ExportCacheMB int `koanf:"export_cache_mb"`
	SeriesCacheMB int `koanf:"series_cache_mb"`

	// ChartRenderer selects the chart rasterizer: gochart or chrome.
	ChartRenderer string `koanf:"chart_renderer"`

	// ChromeURL is the devtools websocket of a remote Chrome used by the chrome renderer.
	ChromeURL string `koanf:"chrome_url"`

	// ChartBaseURL is where the chrome renderer reaches this service's chart pages.
	ChartBaseURL string `koanf:"chart_base_url"`

	// ChartWidth and ChartHeight are the rasterized chart size in pixels.
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`

	// RenderTimeoutMS bounds a single chart rasterization.
	RenderTimeoutMS int `koanf:"render_timeout_ms"`

	// ReportSessions is the number of session rows put into a report.
	ReportSessions int `koanf:"report_sessions"`

	// DefaultWindow is the history window used when a request does not name one.
	DefaultWindow string `koanf:"default_window"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		ExportQueueSize:  1_000,
		WorkerCount:      runtime.NumCPU(),
		DedupeSize:       10_000,
		ExportTTLSeconds: 3600,
		ExportCacheMB:    64,
		SeriesCacheMB:    16,
		ChartRenderer:    RendererGoChart,
		ChartBaseURL:     "http://127.0.0.1:9080",
		ChartWidth:       1200,
		ChartHeight:      600,
		RenderTimeoutMS:  15_000,
		ReportSessions:   6,
		DefaultWindow:    "30d",
	}
}

// ExportTTL returns ExportTTLSeconds as a duration.
func (c *Config) ExportTTL() time.Duration {
	return time.Duration(c.ExportTTLSeconds) * time.Second
}

// RenderTimeout returns RenderTimeoutMS as a duration.
func (c *Config) RenderTimeout() time.Duration {
	return time.Duration(c.RenderTimeoutMS) * time.Millisecond
}
