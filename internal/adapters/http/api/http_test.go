package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/M3kko/nolimit-dashboard/internal/adapters/http/api"
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

var today = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

type mockDeps struct {
	mu      sync.Mutex
	roster  []athlete.Athlete
	log     []sessions.Record
	jobs    map[string]export.Job
	keys    map[string]string
	files   map[string][]byte
	full    bool
	lastReq export.Request
}

func newMockDeps(roster []athlete.Athlete) *mockDeps {
	return &mockDeps{
		roster: roster,
		log: []sessions.Record{
			{ID: "s1", Date: "2026-03-01", Type: "HIIT", DurationMinutes: 30, AvgHR: 165, MaxHR: 190, Strain: 16.2},
			{ID: "s2", Date: "2026-02-28", Type: "Mobility", DurationMinutes: 20, AvgHR: 120, MaxHR: 140, Strain: 8},
		},
		jobs:  map[string]export.Job{},
		keys:  map[string]string{},
		files: map[string][]byte{},
	}
}

func (m *mockDeps) Roster(context.Context) []athlete.Athlete { return m.roster }

func (m *mockDeps) Athlete(_ context.Context, id int) (athlete.Athlete, error) {
	for _, a := range m.roster {
		if a.ID == id {
			return a, nil
		}
	}
	return athlete.Athlete{}, repository.ErrNotFound
}

func (m *mockDeps) Series(_ context.Context, id int) (history.Series, error) {
	return history.Generate(id, today, history.NewSource(uint64(id))), nil
}

func (m *mockDeps) Snapshot(ctx context.Context, id int) (biometrics.Snapshot, error) {
	if _, err := m.Athlete(ctx, id); err != nil {
		return biometrics.Snapshot{}, err
	}
	s, _ := m.Series(ctx, id)
	return biometrics.FromHistory(id, s.Daily, biometrics.DefaultReference)
}

func (m *mockDeps) Sessions(ctx context.Context, id int) ([]sessions.Record, error) {
	if _, err := m.Athlete(ctx, id); err != nil {
		return nil, err
	}
	return m.log, nil
}

func (m *mockDeps) Overview(context.Context) analytics.Overview {
	return analytics.Build(m.roster, athlete.Sports{})
}

func (m *mockDeps) SubmitExport(ctx context.Context, key string, req export.Request) (export.Job, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReq = req
	if id, ok := m.keys[key]; ok && key != "" {
		return m.jobs[id], true, nil
	}
	if req.AthleteID == 99 {
		return export.Job{}, false, report.ErrNoSessions
	}
	for _, a := range m.roster {
		if a.ID == req.AthleteID {
			if m.full {
				return export.Job{}, false, queue.ErrBackpressure
			}
			id := fmt.Sprintf("job-%d", a.ID)
			j := export.NewJob(id, a.ID, req.Window, req.IncludeChart, req.Notes, today)
			m.jobs[id] = j
			if key != "" {
				m.keys[key] = id
			}
			return j, false, nil
		}
	}
	return export.Job{}, false, repository.ErrNotFound
}

func (m *mockDeps) Export(_ context.Context, id string) (export.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "broken" {
		return export.Job{}, fmt.Errorf("compose: %w", report.ErrRenderFailure)
	}
	j, ok := m.jobs[id]
	if !ok {
		return export.Job{}, repository.ErrJobNotFound
	}
	return j, nil
}

func (m *mockDeps) ExportFile(ctx context.Context, id string) (export.Job, []byte, error) {
	j, err := m.Export(ctx, id)
	if err != nil {
		return j, nil, err
	}
	if !j.CanDownload(today) {
		return j, nil, export.ErrNotReady
	}
	return j, m.files[id], nil
}

func (m *mockDeps) markReady(id string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j := m.jobs[id]
	_ = j.MarkProcessing()
	_ = j.MarkReady("natalie_chen_medical_report_2026-03-01.pdf", len(data), 3, today, time.Hour)
	m.jobs[id] = j
	m.files[id] = data
}

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"roster_size": 2}
}

func team() []athlete.Athlete {
	return []athlete.Athlete{
		{ID: 1, Name: "Alexander Smith", Sport: "Track & Field", WeeklyProgress: 94, Sessions: 12, Status: athlete.StatusActive},
		{ID: 2, Name: "Natalie Chen", Sport: "Swimming", WeeklyProgress: 88, Sessions: 10, Status: athlete.StatusActive},
		{ID: 7, Name: "Lucas Silva", Sport: "Swimming", WeeklyProgress: 45, Sessions: 4, Status: athlete.StatusInjury},
	}
}

func newRouter(deps *mockDeps) *mux.Router {
	router := mux.NewRouter()
	api.NewServer(deps, mockStats{}, api.WithChartSize(600, 300)).Register(context.Background(), router)
	return router
}

func do(router http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, v any) {
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

func TestServiceRoutes(t *testing.T) {
	Convey("Given the API server", t, func() {
		router := newRouter(newMockDeps(team()))

		Convey("Health serves prometheus metrics", func() {
			w := do(router, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Stats are served as JSON", func() {
			w := do(router, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "roster_size")
		})

		Convey("Unknown routes and wrong methods are rejected", func() {
			So(do(router, http.MethodGet, "/nope", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(router, http.MethodDelete, "/athletes", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestAthletesRoutes(t *testing.T) {
	Convey("Given a roster of three athletes", t, func() {
		router := newRouter(newMockDeps(team()))

		Convey("The list sorts by progress and decorates rows", func() {
			w := do(router, http.MethodGet, "/athletes?sort=progress", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var got struct {
				Athletes []struct {
					ID             int    `json:"id"`
					ProgressLevel  string `json:"progress_level"`
					SessionsLoad   string `json:"sessions_load"`
					Initials       string `json:"initials"`
					NeedsAttention bool   `json:"needs_attention"`
				} `json:"athletes"`
				Total  int      `json:"total"`
				Sports []string `json:"sports"`
			}
			decode(w, &got)
			So(got.Total, ShouldEqual, 3)
			So(len(got.Athletes), ShouldEqual, 3)
			So(got.Athletes[0].ID, ShouldEqual, 1)
			So(got.Athletes[0].ProgressLevel, ShouldEqual, "excellent")
			So(got.Athletes[0].SessionsLoad, ShouldEqual, "high")
			So(got.Athletes[2].ID, ShouldEqual, 7)
			So(got.Athletes[2].NeedsAttention, ShouldBeTrue)
			So(got.Athletes[2].Initials, ShouldEqual, "LS")
			So(got.Sports, ShouldResemble, []string{"Track & Field", "Swimming"})
		})

		Convey("Filters combine search, sport and status", func() {
			w := do(router, http.MethodGet, "/athletes?sport=swimming&status=active&search=nat", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Natalie Chen")
			So(w.Body.String(), ShouldNotContainSubstring, "Lucas Silva")
		})

		Convey("Bad query values are 400", func() {
			So(do(router, http.MethodGet, "/athletes?sort=age", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(router, http.MethodGet, "/athletes?status=retired", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A known athlete is returned whole", func() {
			w := do(router, http.MethodGet, "/athletes/2", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"weekly_progress":88`)
		})

		Convey("An unknown athlete is 404 not_found", func() {
			for _, path := range []string{"/athletes/3", "/athletes/3/history", "/athletes/3/snapshot", "/athletes/3/sessions", "/athletes/3/charts"} {
				w := do(router, http.MethodGet, path, "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldContainSubstring, `"code":"not_found"`)
			}
		})

		Convey("History returns the requested window", func() {
			w := do(router, http.MethodGet, "/athletes/2/history?range=7d", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var got struct {
				Range  string            `json:"range"`
				Daily  []history.Point   `json:"daily"`
				Weekly []json.RawMessage `json:"weekly"`
			}
			decode(w, &got)
			So(got.Range, ShouldEqual, "7d")
			So(len(got.Daily), ShouldEqual, 7)
			So(len(got.Weekly), ShouldEqual, 8)

			full := history.Generate(2, today, history.NewSource(2))
			So(got.Daily, ShouldResemble, full.Daily[23:])
		})

		Convey("History defaults to 30 days and rejects unknown windows", func() {
			w := do(router, http.MethodGet, "/athletes/2/history", "")
			So(w.Body.String(), ShouldContainSubstring, `"range":"30d"`)
			So(do(router, http.MethodGet, "/athletes/2/history?range=9d", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Sessions carry the shared intensity zone", func() {
			w := do(router, http.MethodGet, "/athletes/2/sessions", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"zone":"High Intensity"`)
			So(w.Body.String(), ShouldContainSubstring, `"zone":"Recovery"`)
			So(w.Body.String(), ShouldContainSubstring, `"duration":"30m"`)
		})

		Convey("Snapshot is served", func() {
			w := do(router, http.MethodGet, "/athletes/1/snapshot", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"recovery"`)
		})

		Convey("The chart page holds the capture region", func() {
			w := do(router, http.MethodGet, "/athletes/2/charts?range=14d", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "text/html; charset=utf-8")
			So(w.Body.String(), ShouldContainSubstring, `id="charts"`)
			So(w.Body.String(), ShouldContainSubstring, "<svg")
			So(w.Body.String(), ShouldContainSubstring, "last 14d")
		})
	})
}

func TestAnalyticsRoute(t *testing.T) {
	Convey("Given the analytics route", t, func() {
		Convey("A populated roster yields totals", func() {
			w := do(newRouter(newMockDeps(team())), http.MethodGet, "/analytics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var got analytics.Overview
			decode(w, &got)
			So(got.HasData, ShouldBeTrue)
			So(got.Totals.TotalAthletes, ShouldEqual, 3)
			So(got.Statuses.Total(), ShouldEqual, 3)
		})

		Convey("An empty roster is not an error", func() {
			w := do(newRouter(newMockDeps(nil)), http.MethodGet, "/analytics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"has_data":false`)
		})
	})
}

func TestReportRoutes(t *testing.T) {
	Convey("Given the report routes", t, func() {
		deps := newMockDeps(team())
		router := newRouter(deps)

		Convey("Submitting queues a job", func() {
			w := do(router, http.MethodPost, "/athletes/2/reports", `{"range":"14d","include_chart":false,"notes":[" hydrate ",""]}`, api.IdempotencyHeader, "k1")
			So(w.Code, ShouldEqual, http.StatusAccepted)
			So(w.Header().Get("Location"), ShouldEqual, "/reports/job-2")
			So(deps.lastReq.Window, ShouldEqual, history.Window14)
			So(deps.lastReq.IncludeChart, ShouldBeFalse)
			So(deps.lastReq.Notes, ShouldResemble, []string{"hydrate"})

			Convey("And resubmitting with the same key is a duplicate", func() {
				w := do(router, http.MethodPost, "/athletes/2/reports", "", api.IdempotencyHeader, "k1")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)
			})

			Convey("And downloading before ready is 409", func() {
				w := do(router, http.MethodGet, "/reports/job-2/download", "")
				So(w.Code, ShouldEqual, http.StatusConflict)
			})

			Convey("And a ready job downloads as a named PDF", func() {
				deps.markReady("job-2", []byte("%PDF-1.3"))
				status := do(router, http.MethodGet, "/reports/job-2", "")
				So(status.Body.String(), ShouldContainSubstring, `"status":"ready"`)

				w := do(router, http.MethodGet, "/reports/job-2/download", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/pdf")
				So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "natalie_chen_medical_report_2026-03-01.pdf")
				So(w.Body.String(), ShouldEqual, "%PDF-1.3")
			})
		})

		Convey("Defaults apply to an empty body", func() {
			w := do(router, http.MethodPost, "/athletes/1/reports", "")
			So(w.Code, ShouldEqual, http.StatusAccepted)
			So(deps.lastReq.Window, ShouldEqual, history.Window30)
			So(deps.lastReq.IncludeChart, ShouldBeTrue)
		})

		Convey("Errors map to statuses", func() {
			So(do(router, http.MethodPost, "/athletes/1/reports", "{").Code, ShouldEqual, http.StatusBadRequest)
			So(do(router, http.MethodPost, "/athletes/1/reports", `{"range":"1y"}`).Code, ShouldEqual, http.StatusBadRequest)
			So(do(router, http.MethodPost, "/athletes/3/reports", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(router, http.MethodPost, "/athletes/99/reports", "").Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(do(router, http.MethodGet, "/reports/missing", "").Code, ShouldEqual, http.StatusNotFound)

			w := do(router, http.MethodGet, "/reports/broken", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldContainSubstring, `"code":"render_failure"`)

			deps.full = true
			w = do(router, http.MethodPost, "/athletes/1/reports", "")
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(w.Body.String(), ShouldContainSubstring, `"code":"backpressure"`)
		})
	})
}
