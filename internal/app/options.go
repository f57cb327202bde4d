package service

import (
	"time"

	"github.com/M3kko/nolimit-dashboard/internal/config"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
	"github.com/M3kko/nolimit-dashboard/internal/domain/report"
	"github.com/M3kko/nolimit-dashboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of export workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the export queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency-key cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRoster loads the roster from path instead of the built-in one.
func WithRoster(path string, strict bool, knownSports ...string) Option {
	return func(s *Service) {
		s.rosterPath = path
		s.strictRoster = strict
		s.knownSports = knownSports
	}
}

// WithExportTTL sets how long finished reports stay downloadable.
func WithExportTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.exportTTL = ttl
		}
	}
}

// WithCacheSizes sizes the export file cache and the series cache in MB.
func WithCacheSizes(exportMB, seriesMB int) Option {
	return func(s *Service) {
		if exportMB > 0 {
			s.exportCacheMB = exportMB
		}
		if seriesMB > 0 {
			s.seriesCacheMB = seriesMB
		}
	}
}

// WithChartRenderer selects the chart rasterizer by name. chromeURL and
// baseURL are only used by the chrome renderer.
func WithChartRenderer(name, chromeURL, baseURL string) Option {
	return func(s *Service) {
		s.renderer = name
		s.chromeURL = chromeURL
		s.chartBaseURL = baseURL
	}
}

// WithRasterizer overrides the chart rasterizer.
func WithRasterizer(r report.Rasterizer) Option {
	return func(s *Service) {
		s.rasterizer = r
	}
}

// WithChartSize sets the rasterized chart size in pixels.
func WithChartSize(width, height int) Option {
	return func(s *Service) {
		if width > 0 && height > 0 {
			s.chartWidth = width
			s.chartHeight = height
		}
	}
}

// WithRenderTimeout bounds the composition of one report.
func WithRenderTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.renderTimeout = d
		}
	}
}

// WithReportSessions caps the session log length.
func WithReportSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.reportSessions = n
		}
	}
}

// WithDefaultWindow sets the window used when a request names none.
func WithDefaultWindow(w history.Window) Option {
	return func(s *Service) {
		if w > 0 {
			s.defaultWindow = w
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// FromConfig maps a loaded configuration onto options.
func FromConfig(cfg *config.Config) []Option {
	w, err := history.ParseWindow(cfg.DefaultWindow)
	if err != nil {
		w = history.Window30
	}
	return []Option{
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.ExportQueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithRoster(cfg.RosterPath, cfg.StrictRoster, cfg.KnownSports...),
		WithExportTTL(cfg.ExportTTL()),
		WithCacheSizes(cfg.ExportCacheMB, cfg.SeriesCacheMB),
		WithChartRenderer(cfg.ChartRenderer, cfg.ChromeURL, cfg.ChartBaseURL),
		WithChartSize(cfg.ChartWidth, cfg.ChartHeight),
		WithRenderTimeout(cfg.RenderTimeout()),
		WithReportSessions(cfg.ReportSessions),
		WithDefaultWindow(w),
	}
}
