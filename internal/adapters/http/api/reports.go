package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/M3kko/nolimit-dashboard/internal/domain/export"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
)

// IdempotencyHeader carries the client's dedupe key for report submissions.
const IdempotencyHeader = "Idempotency-Key"

const maxReportBody = 64 << 10

// ReportsHandler submits report exports and serves their results.
type ReportsHandler struct {
	deps          Exporter
	defaultWindow history.Window
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps Exporter, def history.Window) *ReportsHandler {
	return &ReportsHandler{deps: deps, defaultWindow: def}
}

// reportRequest mirrors the OpenAPI schema for POST /athletes/{id}/reports.
type reportRequest struct {
	Range        string   `json:"range"`
	IncludeChart *bool    `json:"include_chart"`
	Notes        []string `json:"notes"`
}

type submitResponse struct {
	Job       export.Job `json:"job"`
	Duplicate bool       `json:"duplicate"`
}

// HandleSubmit handles POST /athletes/{id}/reports. The body is optional.
func (h *ReportsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := athleteID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var body reportRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxReportBody)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	win := h.defaultWindow
	if body.Range != "" {
		if win, err = history.ParseWindow(body.Range); err != nil {
			writeDomainError(w, err)
			return
		}
	}
	req := export.Request{AthleteID: id, Window: win, IncludeChart: true, Notes: cleanNotes(body.Notes)}
	if body.IncludeChart != nil {
		req.IncludeChart = *body.IncludeChart
	}

	job, dup, err := h.deps.SubmitExport(r.Context(), strings.TrimSpace(r.Header.Get(IdempotencyHeader)), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Location", "/reports/"+job.ID)
	status := http.StatusAccepted
	if dup {
		status = http.StatusOK
	}
	writeJSON(w, status, submitResponse{Job: job, Duplicate: dup})
}

func cleanNotes(in []string) []string {
	var out []string
	for _, n := range in {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// HandleStatus handles GET /reports/{job}.
func (h *ReportsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	job, err := h.deps.Export(r.Context(), mux.Vars(r)["job"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// HandleDownload handles GET /reports/{job}/download. Only ready jobs have a file.
func (h *ReportsHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	job, data, err := h.deps.ExportFile(r.Context(), mux.Vars(r)["job"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", job.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
