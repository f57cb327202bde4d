package api

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/M3kko/nolimit-dashboard/internal/adapters/render/chart"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
)

// ChartsHandler serves the standalone chart page. The chrome rasterizer
// captures its #charts element for reports.
type ChartsHandler struct {
	deps          AthleteReader
	defaultWindow history.Window
	width, height int
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(deps AthleteReader, def history.Window, width, height int) *ChartsHandler {
	return &ChartsHandler{deps: deps, defaultWindow: def, width: width, height: height}
}

var chartsPage = template.Must(template.New("charts").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>{{.Name}} · {{.Range}}</title>
    <style>
      body{margin:0;background:#ffffff;font-family:Helvetica,Arial,sans-serif;color:#1f2937}
      #charts{width:{{.Width}}px;padding:0}
      #charts h1{font-size:16px;margin:8px 12px}
      .summary{font-size:12px;color:#6b7280;margin:0 12px 8px}
    </style>
  </head>
  <body>
    <div id="charts">
      <h1>{{.Name}} · last {{.Range}}</h1>
      <p class="summary">Avg recovery {{.Summary.AvgRecovery}}% · avg HRV {{.Summary.AvgHRV}} ms · avg strain {{.Summary.AvgStrain}} · peak strain {{.Summary.PeakStrain}}</p>
      {{.SVG}}
    </div>
  </body>
</html>`))

type chartsView struct {
	Name    string
	Range   history.Window
	Width   int
	Summary history.Summary
	SVG     template.HTML
}

// HandleCharts handles GET /athletes/{id}/charts?range=.
func (h *ChartsHandler) HandleCharts(w http.ResponseWriter, r *http.Request) {
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
	a, err := h.deps.Athlete(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	series, err := h.deps.Series(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	daily := series.Window(win)
	svg, err := chart.SVG(daily, h.width, h.height)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var buf bytes.Buffer
	err = chartsPage.Execute(&buf, chartsView{
		Name:    a.Name,
		Range:   win,
		Width:   h.width,
		Summary: history.Summarize(daily),
		SVG:     template.HTML(svg), //nolint:gosec // generated by go-chart
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
