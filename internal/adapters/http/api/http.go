// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/M3kko/nolimit-dashboard/internal/adapters/mq/queue"
	"github.com/M3kko/nolimit-dashboard/internal/adapters/repository"
	"github.com/M3kko/nolimit-dashboard/internal/domain/analytics"
	"github.com/M3kko/nolimit-dashboard/internal/domain/athlete"
	"github.com/M3kko/nolimit-dashboard/internal/domain/biometrics"
	"github.com/M3kko/nolimit-dashboard/internal/domain/export"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
	"github.com/M3kko/nolimit-dashboard/internal/domain/report"
	"github.com/M3kko/nolimit-dashboard/internal/domain/sessions"
)

// AthleteReader serves roster and per-athlete reads.
type AthleteReader interface {
	Roster(ctx context.Context) []athlete.Athlete
	Athlete(ctx context.Context, id int) (athlete.Athlete, error)
	Series(ctx context.Context, id int) (history.Series, error)
	Snapshot(ctx context.Context, id int) (biometrics.Snapshot, error)
	Sessions(ctx context.Context, id int) ([]sessions.Record, error)
}

// AnalyticsReader serves the aggregated overview.
type AnalyticsReader interface {
	Overview(ctx context.Context) analytics.Overview
}

// Exporter accepts export requests and serves their results.
type Exporter interface {
	// SubmitExport queues a job. A repeated idempotency key returns the
	// original job with duplicate set.
	SubmitExport(ctx context.Context, key string, req export.Request) (job export.Job, duplicate bool, err error)
	Export(ctx context.Context, jobID string) (export.Job, error)
	ExportFile(ctx context.Context, jobID string) (export.Job, []byte, error)
}

// Dependencies required by HTTP handlers.
type Dependencies interface {
	AthleteReader
	AnalyticsReader
	Exporter
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	athletesHandler  *AthletesHandler
	analyticsHandler *AnalyticsHandler
	chartsHandler    *ChartsHandler
	reportsHandler   *ReportsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := options{defaultWindow: history.Window30, chartWidth: 1200, chartHeight: 600}
	for _, o := range opts {
		o(&cfg)
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		athletesHandler:  NewAthletesHandler(deps, cfg.defaultWindow),
		analyticsHandler: NewAnalyticsHandler(deps),
		chartsHandler:    NewChartsHandler(deps, cfg.defaultWindow, cfg.chartWidth, cfg.chartHeight),
		reportsHandler:   NewReportsHandler(deps, cfg.defaultWindow),
	}
}

// Register attaches all HTTP routes to router.
func (s *Server) Register(_ context.Context, router *mux.Router) {
	router.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	router.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)
	router.HandleFunc("/analytics", MetricsMiddleware(s.analyticsHandler.HandleOverview, "analytics")).Methods(http.MethodGet)

	router.HandleFunc("/athletes", MetricsMiddleware(s.athletesHandler.HandleList, "athletes")).Methods(http.MethodGet)
	router.HandleFunc("/athletes/{id:[0-9]+}", MetricsMiddleware(s.athletesHandler.HandleGet, "athlete")).Methods(http.MethodGet)
	router.HandleFunc("/athletes/{id:[0-9]+}/history", MetricsMiddleware(s.athletesHandler.HandleHistory, "history")).Methods(http.MethodGet)
	router.HandleFunc("/athletes/{id:[0-9]+}/snapshot", MetricsMiddleware(s.athletesHandler.HandleSnapshot, "snapshot")).Methods(http.MethodGet)
	router.HandleFunc("/athletes/{id:[0-9]+}/sessions", MetricsMiddleware(s.athletesHandler.HandleSessions, "sessions")).Methods(http.MethodGet)
	router.HandleFunc("/athletes/{id:[0-9]+}/charts", MetricsMiddleware(s.chartsHandler.HandleCharts, "charts")).Methods(http.MethodGet)

	router.HandleFunc("/athletes/{id:[0-9]+}/reports", MetricsMiddleware(s.reportsHandler.HandleSubmit, "reports_submit")).Methods(http.MethodPost)
	router.HandleFunc("/reports/{job}", MetricsMiddleware(s.reportsHandler.HandleStatus, "reports_status")).Methods(http.MethodGet)
	router.HandleFunc("/reports/{job}/download", MetricsMiddleware(s.reportsHandler.HandleDownload, "reports_download")).Methods(http.MethodGet)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps domain sentinels to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrJobNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, history.ErrUnknownWindow),
		errors.Is(err, athlete.ErrUnknownSort),
		errors.Is(err, athlete.ErrUnknownStatus):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, report.ErrNoSessions):
		writeError(w, http.StatusUnprocessableEntity, "no_sessions", err)
	case errors.Is(err, queue.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, export.ErrNotReady):
		writeError(w, http.StatusConflict, "not_ready", err)
	case errors.Is(err, repository.ErrFileGone):
		writeError(w, http.StatusConflict, "expired", err)
	case errors.Is(err, report.ErrRenderFailure):
		writeError(w, http.StatusInternalServerError, "render_failure", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// athleteID reads the {id} path variable.
func athleteID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, ErrBadRequest
	}
	return id, nil
}

// windowParam reads ?range=, falling back to def.
func windowParam(r *http.Request, def history.Window) (history.Window, error) {
	raw := r.URL.Query().Get("range")
	if raw == "" {
		return def, nil
	}
	return history.ParseWindow(raw)
}
