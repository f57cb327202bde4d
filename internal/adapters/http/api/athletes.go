package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/M3kko/nolimit-dashboard/internal/domain/athlete"
	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
	"github.com/M3kko/nolimit-dashboard/internal/domain/sessions"
)

// AthletesHandler serves the roster table and per-athlete views.
type AthletesHandler struct {
	deps          AthleteReader
	defaultWindow history.Window
}

// NewAthletesHandler creates a new athletes handler.
func NewAthletesHandler(deps AthleteReader, def history.Window) *AthletesHandler {
	return &AthletesHandler{deps: deps, defaultWindow: def}
}

// athleteRow is one roster table row.
type athleteRow struct {
	athlete.Athlete
	ProgressLevel  classify.Level `json:"progress_level"`
	SessionsLoad   classify.Load  `json:"sessions_load"`
	Initials       string         `json:"initials"`
	NeedsAttention bool           `json:"needs_attention"`
}

func rowOf(a athlete.Athlete) athleteRow {
	return athleteRow{
		Athlete:        a,
		ProgressLevel:  classify.ProgressLevel(a.WeeklyProgress),
		SessionsLoad:   classify.SessionsLoad(a.Sessions),
		Initials:       a.Initials(),
		NeedsAttention: a.NeedsAttention(),
	}
}

type listResponse struct {
	Athletes []athleteRow `json:"athletes"`
	Total    int          `json:"total"`
	Sports   []string     `json:"sports"`
}

// HandleList handles GET /athletes?search=&sport=&status=&sort=.
func (h *AthletesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortKey, err := athlete.ParseSortKey(q.Get("sort"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	status := q.Get("status")
	if status != "" && !strings.EqualFold(status, athlete.All) {
		if _, err := athlete.ParseStatus(status); err != nil {
			writeDomainError(w, err)
			return
		}
	}

	roster := h.deps.Roster(r.Context())
	view := athlete.Apply(roster, athlete.Query{
		Search: q.Get("search"),
		Sport:  q.Get("sport"),
		Status: strings.TrimSpace(status),
		Sort:   sortKey,
	})
	rows := make([]athleteRow, 0, len(view))
	for _, a := range view {
		rows = append(rows, rowOf(a))
	}
	sports := athlete.SportsOf(roster)
	if sports == nil {
		sports = []string{}
	}
	writeJSON(w, http.StatusOK, listResponse{Athletes: rows, Total: len(roster), Sports: sports})
}

// HandleGet handles GET /athletes/{id}.
func (h *AthletesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := athleteID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	a, err := h.deps.Athlete(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rowOf(a))
}

type historyResponse struct {
	AthleteID int                        `json:"athlete_id"`
	Range     history.Window             `json:"range"`
	Daily     []history.Point            `json:"daily"`
	Weekly    []history.WeekSummary      `json:"weekly"`
	Breakdown []history.SessionTypeCount `json:"breakdown"`
	Summary   history.Summary            `json:"summary"`
}

// HandleHistory handles GET /athletes/{id}/history?range=.
func (h *AthletesHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := athleteID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	win, err := windowParam(r, h.defaultWindow)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	series, err := h.series(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	daily := series.Window(win)
	writeJSON(w, http.StatusOK, historyResponse{
		AthleteID: id,
		Range:     win,
		Daily:     daily,
		Weekly:    series.Weekly,
		Breakdown: series.Breakdown,
		Summary:   history.Summarize(daily),
	})
}

// series resolves the athlete first so unknown ids are NotFound.
func (h *AthletesHandler) series(ctx context.Context, id int) (history.Series, error) {
	if _, err := h.deps.Athlete(ctx, id); err != nil {
		return history.Series{}, err
	}
	return h.deps.Series(ctx, id)
}

// HandleSnapshot handles GET /athletes/{id}/snapshot.
func (h *AthletesHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := athleteID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	snap, err := h.deps.Snapshot(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type sessionRow struct {
	sessions.Record
	Duration string        `json:"duration"`
	Zone     classify.Zone `json:"zone"`
	Color    string        `json:"color"`
}

// HandleSessions handles GET /athletes/{id}/sessions.
func (h *AthletesHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	id, err := athleteID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	log, err := h.deps.Sessions(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rows := make([]sessionRow, 0, len(log))
	for _, s := range log {
		zone := s.Zone()
		rows = append(rows, sessionRow{Record: s, Duration: s.Duration(), Zone: zone, Color: classify.ZoneColor(zone).Hex()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"athlete_id": id, "sessions": rows})
}

// AnalyticsHandler serves the aggregation overview.
type AnalyticsHandler struct {
	deps AnalyticsReader
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps AnalyticsReader) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

// HandleOverview handles GET /analytics. An empty roster is not an error.
func (h *AnalyticsHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Overview(r.Context()))
}
