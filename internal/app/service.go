// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/M3kko/nolimit-dashboard/internal/adapters/mq/queue"
	"github.com/M3kko/nolimit-dashboard/internal/adapters/mq/worker"
	"github.com/M3kko/nolimit-dashboard/internal/adapters/render/chart"
	"github.com/M3kko/nolimit-dashboard/internal/adapters/render/pdf"
	"github.com/M3kko/nolimit-dashboard/internal/adapters/repository"
	"github.com/M3kko/nolimit-dashboard/internal/domain/analytics"
	"github.com/M3kko/nolimit-dashboard/internal/domain/athlete"
	"github.com/M3kko/nolimit-dashboard/internal/domain/biometrics"
	"github.com/M3kko/nolimit-dashboard/internal/domain/dedupe"
	"github.com/M3kko/nolimit-dashboard/internal/domain/export"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
	"github.com/M3kko/nolimit-dashboard/internal/domain/report"
	"github.com/M3kko/nolimit-dashboard/internal/domain/sessions"
	"github.com/M3kko/nolimit-dashboard/pkg/logger"
	"github.com/M3kko/nolimit-dashboard/pkg/metrics"
)

const (
	stopTimeout   = 30 * time.Second
	sweepInterval = time.Minute
	// sessionsSalt keeps the session log draws apart from the series draws of the same day.
	sessionsSalt = 0x5e55
)

// Service implements the API dependencies for the analytics and reporting engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	roster   *repository.Roster
	series   *repository.SeriesCache
	exports  *repository.Exports
	deduper  dedupe.Deduper
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	plain    *report.Composer
	charted  *report.Composer
	encoder  *pdf.Encoder
	sports   athlete.Sports
	submitMu sync.Mutex

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	exportTTL      time.Duration
	exportCacheMB  int
	seriesCacheMB  int
	rosterPath     string
	strictRoster   bool
	knownSports    []string
	renderer       string
	chromeURL      string
	chartBaseURL   string
	chartWidth     int
	chartHeight    int
	renderTimeout  time.Duration
	reportSessions int
	defaultWindow  history.Window
	rasterizer     report.Rasterizer
	now            func() time.Time

	// State
	started bool
	cancel  context.CancelFunc
	sweeper sync.WaitGroup

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    2,
		queueSize:      1_000,
		dedupeSize:     10_000,
		exportTTL:      time.Hour,
		exportCacheMB:  64,
		seriesCacheMB:  16,
		renderer:       chart.NameGoChart,
		chartWidth:     1200,
		chartHeight:    600,
		renderTimeout:  15 * time.Second,
		reportSessions: 6,
		defaultWindow:  history.Window30,
		now:            time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the roster and starts the export workers. It fails when the
// roster cannot be loaded.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting analytics service...")

	s.sports = athlete.NewSports(s.knownSports...)
	roster, err := repository.LoadRoster(ctx, s.rosterPath, s.sports, s.strictRoster)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	s.roster = roster
	s.series = repository.NewSeriesCache(
		repository.WithSeriesCacheSizeMB(s.seriesCacheMB),
		repository.WithSeriesClock(s.now),
	)
	s.exports = repository.NewExports(
		repository.WithCacheSizeMB(s.exportCacheMB),
		repository.WithTTL(s.exportTTL),
		repository.WithClock(s.now),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	r, err := s.chartRasterizer()
	if err != nil {
		return err
	}
	chartSize := report.WithChartSize(s.chartWidth, s.chartHeight)
	s.plain = report.New(chartSize)
	s.charted = report.New(chartSize, report.WithRasterizer(r))
	s.encoder = pdf.New()

	// Workers outlive the start context; Stop ends them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool = worker.NewPool(s.workerCount, s.queue, worker.ProcessorFunc(s.Process))
	s.pool.Start(runCtx)

	s.sweeper.Add(1)
	go s.sweepLoop(runCtx)

	s.started = true
	s.logger.Info(ctx, "analytics service started",
		logger.Int("athletes", s.roster.Count(ctx)),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("renderer", s.renderer),
	)

	return nil
}

func (s *Service) chartRasterizer() (report.Rasterizer, error) {
	if s.rasterizer != nil {
		return s.rasterizer, nil
	}
	switch s.renderer {
	case chart.NameGoChart, "":
		return chart.GoChart{}, nil
	case chart.NameChrome:
		if s.chromeURL == "" {
			return nil, fmt.Errorf("%w: chrome renderer needs a devtools url", ErrInvalidOption)
		}
		return chart.NewChrome(s.chromeURL, s.chartBaseURL), nil
	}
	return nil, fmt.Errorf("%w: unknown chart renderer %q", ErrInvalidOption, s.renderer)
}

// Stop drains queued exports and stops background work.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping analytics service...")

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	if err := s.pool.Shutdown(stopCtx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
	}

	s.cancel()
	s.sweeper.Wait()

	s.started = false
	s.logger.Info(ctx, "analytics service stopped")
}

func (s *Service) sweepLoop(ctx context.Context) {
	defer s.sweeper.Done()
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.exports.Sweep(ctx); n > 0 {
				s.logger.Debug(ctx, "swept exports", logger.Int("count", n))
			}
		}
	}
}

func (s *Service) running() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Roster returns the admitted roster in load order.
func (s *Service) Roster(ctx context.Context) []athlete.Athlete {
	if s.running() != nil {
		return []athlete.Athlete{}
	}
	return s.roster.All(ctx)
}

// Athlete returns one athlete or repository.ErrNotFound.
func (s *Service) Athlete(ctx context.Context, id int) (athlete.Athlete, error) {
	if err := s.running(); err != nil {
		return athlete.Athlete{}, err
	}
	return s.roster.Get(ctx, id)
}

// Series returns today's generated series of an athlete. Within a calendar
// day repeated calls return the same series.
func (s *Service) Series(ctx context.Context, id int) (history.Series, error) {
	if _, err := s.Athlete(ctx, id); err != nil {
		return history.Series{}, err
	}
	return s.seriesOf(id), nil
}

func (s *Service) seriesOf(id int) history.Series {
	today := s.now()
	if cached, ok := s.series.Get(id, today); ok {
		return cached
	}
	series := history.Generate(id, today, history.NewSource(history.SeedFor(id, today)))
	s.series.Put(series, today)
	return series
}

// Snapshot derives today's biometric snapshot from the athlete's series.
func (s *Service) Snapshot(ctx context.Context, id int) (biometrics.Snapshot, error) {
	series, err := s.Series(ctx, id)
	if err != nil {
		return biometrics.Snapshot{}, err
	}
	return biometrics.FromHistory(id, series.Daily, biometrics.DefaultReference)
}

// Sessions returns the recent session log, newest first. Its length is the
// athlete's session count capped at the configured report size.
func (s *Service) Sessions(ctx context.Context, id int) ([]sessions.Record, error) {
	a, err := s.Athlete(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.sessionsOf(a), nil
}

func (s *Service) sessionsOf(a athlete.Athlete) []sessions.Record {
	n := min(a.Sessions, s.reportSessions)
	if n <= 0 {
		return []sessions.Record{}
	}
	today := s.now()
	src := history.NewSource(history.SeedFor(a.ID, today) ^ sessionsSalt)
	return sessions.Synthesize(a.ID, n, today, src)
}

// Overview aggregates the current roster.
func (s *Service) Overview(ctx context.Context) analytics.Overview {
	start := time.Now()
	o := analytics.Build(s.Roster(ctx), s.sports)
	metrics.RecordAggregationLatency(float64(time.Since(start).Microseconds()) / 1000)
	for _, w := range o.Warnings {
		metrics.RecordDataQualityWarning(w.Kind)
		s.logger.Debug(ctx, "data quality warning", logger.String("kind", w.Kind), logger.String("message", w.Message))
	}
	return o
}

// SubmitExport queues a report export. A non-empty key that was used before
// returns the job it was first bound to.
func (s *Service) SubmitExport(ctx context.Context, key string, req export.Request) (export.Job, bool, error) {
	a, err := s.Athlete(ctx, req.AthleteID)
	if err != nil {
		return export.Job{}, false, err
	}
	if a.Sessions <= 0 {
		return export.Job{}, false, fmt.Errorf("athlete %d: %w", a.ID, report.ErrNoSessions)
	}
	if req.Window == 0 {
		req.Window = s.defaultWindow
	}

	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	id := uuid.NewString()
	if key != "" {
		if bound, claimed := s.deduper.Claim(ctx, key, id); !claimed {
			job, err := s.exports.Get(ctx, bound)
			if err == nil {
				metrics.RecordExportDeduplicated()
				return job, true, nil
			}
			// The bound job was swept; the key starts over.
			s.deduper.Release(ctx, key)
			s.deduper.Claim(ctx, key, id)
		}
	}

	job := export.NewJob(id, a.ID, req.Window, req.IncludeChart, req.Notes, s.now())
	if err := s.exports.Create(ctx, job); err != nil {
		s.release(ctx, key)
		return export.Job{}, false, err
	}
	if !s.queue.Enqueue(ctx, job) {
		s.release(ctx, key)
		_, _ = s.exports.Update(ctx, id, func(j *export.Job) error {
			return j.MarkFailed(queue.ErrBackpressure, s.now())
		})
		metrics.RecordExportFailed("backpressure")
		return export.Job{}, false, queue.ErrBackpressure
	}

	metrics.RecordExportRequested()
	s.logger.Debug(ctx, "export queued",
		logger.String("job", id),
		logger.Int("athlete", a.ID),
		logger.String("range", req.Window.String()),
	)
	return job, false, nil
}

func (s *Service) release(ctx context.Context, key string) {
	if key != "" {
		s.deduper.Release(ctx, key)
	}
}

// Export returns the current state of a job.
func (s *Service) Export(ctx context.Context, jobID string) (export.Job, error) {
	if err := s.running(); err != nil {
		return export.Job{}, err
	}
	return s.exports.Get(ctx, jobID)
}

// ExportFile returns a ready job and its PDF. Jobs that are not ready yield
// export.ErrNotReady; expired ones yield repository.ErrFileGone.
func (s *Service) ExportFile(ctx context.Context, jobID string) (export.Job, []byte, error) {
	job, err := s.Export(ctx, jobID)
	if err != nil {
		return export.Job{}, nil, err
	}
	if job.Status == export.StatusExpired {
		return job, nil, fmt.Errorf("job %s: %w", jobID, repository.ErrFileGone)
	}
	if !job.CanDownload(s.now()) {
		return job, nil, fmt.Errorf("job %s is %s: %w", jobID, job.Status, export.ErrNotReady)
	}
	data, err := s.exports.File(ctx, jobID)
	if errors.Is(err, repository.ErrFileGone) {
		job, _ = s.exports.Update(ctx, jobID, func(j *export.Job) error {
			j.Expire()
			return nil
		})
		return job, nil, err
	}
	if err != nil {
		return job, nil, err
	}
	return job, data, nil
}

// ExportNow runs an export synchronously on the caller's goroutine.
func (s *Service) ExportNow(ctx context.Context, req export.Request) (export.Job, []byte, error) {
	a, err := s.Athlete(ctx, req.AthleteID)
	if err != nil {
		return export.Job{}, nil, err
	}
	if req.Window == 0 {
		req.Window = s.defaultWindow
	}
	job := export.NewJob(uuid.NewString(), a.ID, req.Window, req.IncludeChart, req.Notes, s.now())
	if err := s.exports.Create(ctx, job); err != nil {
		return export.Job{}, nil, err
	}
	metrics.RecordExportRequested()
	if err := s.Process(ctx, job); err != nil {
		failed, _ := s.exports.Get(ctx, job.ID)
		return failed, nil, err
	}
	return s.ExportFile(ctx, job.ID)
}

// Process executes one queued job: compose, rasterize at most once, encode,
// store the file, and only then mark the job ready. Any failure marks the
// job failed without a file. Process never takes the service lock because
// workers still run it while Stop drains the queue.
func (s *Service) Process(ctx context.Context, j export.Job) error { //nolint:gocritic // hugeParam: jobs travel by value
	if _, err := s.exports.Update(ctx, j.ID, func(job *export.Job) error {
		return job.MarkProcessing()
	}); err != nil {
		return err
	}

	data, doc, err := s.render(ctx, j)
	if err == nil {
		err = s.exports.StoreFile(ctx, j.ID, data)
	}
	if err == nil {
		_, err = s.exports.Update(ctx, j.ID, func(job *export.Job) error {
			return job.MarkReady(doc.FileName, len(data), len(doc.Pages), s.now(), s.exports.TTL())
		})
	}
	if err != nil {
		s.fail(ctx, j, err)
		return err
	}

	metrics.RecordExportCompleted()
	metrics.RecordReportPages(len(doc.Pages))
	s.logger.Info(ctx, "export ready",
		logger.String("job", j.ID),
		logger.String("file", doc.FileName),
		logger.Int("pages", len(doc.Pages)),
		logger.Int("bytes", len(data)),
	)
	return nil
}

func (s *Service) render(ctx context.Context, j export.Job) ([]byte, report.Document, error) { //nolint:gocritic // hugeParam
	a, err := s.roster.Get(ctx, j.AthleteID)
	if err != nil {
		return nil, report.Document{}, err
	}
	series := s.seriesOf(a.ID)
	snap, err := biometrics.FromHistory(a.ID, series.Daily, biometrics.DefaultReference)
	if err != nil {
		return nil, report.Document{}, err
	}
	log := s.sessionsOf(a)

	in := report.Input{
		Athlete:     a,
		Snapshot:    snap,
		Window:      j.Window,
		Daily:       series.Window(j.Window),
		Sessions:    log,
		Notes:       j.Notes,
		GeneratedAt: s.now(),
	}
	if len(in.Notes) == 0 {
		in.Notes = report.AutoNotes(in)
	}

	composer := s.plain
	if j.IncludeChart {
		composer = s.charted
	}
	renderCtx, cancel := context.WithTimeout(ctx, s.renderTimeout)
	defer cancel()

	start := time.Now()
	doc, err := composer.Compose(renderCtx, in)
	metrics.RecordComposeLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, report.Document{}, err
	}
	data, err := s.encoder.Encode(doc)
	if err != nil {
		return nil, report.Document{}, fmt.Errorf("%w: %w", report.ErrRenderFailure, err)
	}
	return data, doc, nil
}

func (s *Service) fail(ctx context.Context, j export.Job, cause error) { //nolint:gocritic // hugeParam
	reason := "internal"
	switch {
	case errors.Is(cause, report.ErrRenderFailure):
		reason = "render_failure"
	case errors.Is(cause, report.ErrNoSessions):
		reason = "no_sessions"
	case errors.Is(cause, repository.ErrNotFound):
		reason = "not_found"
	}
	metrics.RecordExportFailed(reason)
	if _, err := s.exports.Update(ctx, j.ID, func(job *export.Job) error {
		return job.MarkFailed(cause, s.now())
	}); err != nil {
		s.logger.Error(ctx, "could not mark export failed", logger.String("job", j.ID), logger.Error(err))
	}
	s.logger.Warn(ctx, "export failed",
		logger.String("job", j.ID),
		logger.Int("athlete", j.AthleteID),
		logger.String("reason", reason),
		logger.Error(cause),
	)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"renderer":    s.renderer,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["athletes"] = s.roster.Count(ctx)
		stats["exports"] = s.exports.Count(ctx)
		stats["busyWorkers"] = s.pool.Busy()
		stats["idempotencyKeys"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
