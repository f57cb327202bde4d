package testroster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/M3kko/nolimit-dashboard/internal/domain/analytics"
	"github.com/M3kko/nolimit-dashboard/internal/domain/athlete"
	"github.com/M3kko/nolimit-dashboard/internal/domain/export"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
	"github.com/M3kko/nolimit-dashboard/pkg/logger"
)

const percentageMultiplier = 100

var pdfMagic = []byte("%PDF")

// windows is ordered longest first so shorter ranges can be compared
// against the 30 day tail.
var windows = []history.Window{history.Window30, history.Window14, history.Window7}

// Run executes a verification pass against a running service. With
// Generate set it only writes the roster file.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting roster verification",
		logger.String("baseURL", config.BaseURL),
		logger.Int("athletes", config.Athletes),
		logger.Any("seed", config.Seed),
		logger.Int("reports", config.Reports),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	records := Generate(config.Athletes, config.Seed)
	stats.AthletesGenerated = len(records)

	if config.Generate {
		if err := WriteRoster(config.RosterFile, records); err != nil {
			return fmt.Errorf("write roster: %w", err)
		}
		log.Info(ctx, "roster written",
			logger.String("file", config.RosterFile),
			logger.Int("athletes", len(records)))
		return nil
	}

	client := NewHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: health
	if err := checkServiceHealth(ctx, client); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: roster and overview
	list, err := checkRoster(ctx, client, records, stats)
	if err != nil {
		return fmt.Errorf("roster verification failed: %w", err)
	}
	if err := checkOverview(ctx, client, list, stats); err != nil {
		return fmt.Errorf("overview verification failed: %w", err)
	}

	// Step 3: per-athlete history
	if err := checkHistories(ctx, client, config, list.Athletes, stats); err != nil {
		return fmt.Errorf("history verification failed: %w", err)
	}

	// Step 4: report exports
	if err := checkReports(ctx, client, config, list.Athletes, stats); err != nil {
		return fmt.Errorf("report verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	log.Info(ctx, "verification completed successfully")
	return nil
}

func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")
	resp, err := client.Do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if resp.Status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.Status)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

func checkRoster(ctx context.Context, client *HTTPClient, records []athlete.Record, stats *Stats) (List, error) {
	var list List
	if err := client.GetJSON(ctx, "/athletes", &list); err != nil {
		return List{}, err
	}
	if err := CheckRoster(records, list); err != nil {
		stats.Violations += len(multierr.Errors(err))
		return List{}, err
	}

	// Ids past the generated range must not resolve.
	missing := "/athletes/" + strconv.Itoa(len(records)+1)
	resp, err := client.Do(ctx, http.MethodGet, missing, nil, nil)
	if err != nil {
		return List{}, err
	}
	if resp.Status != http.StatusNotFound {
		stats.Violations++
		return List{}, fmt.Errorf("GET %s: status %d, want 404", missing, resp.Status)
	}

	logger.Get().Info(ctx, "roster matches", logger.Int("athletes", list.Total))
	return list, nil
}

func checkOverview(ctx context.Context, client *HTTPClient, list List, stats *Stats) error {
	var o analytics.Overview
	if err := client.GetJSON(ctx, "/analytics", &o); err != nil {
		return err
	}
	if err := CheckOverview(o, list.Athletes); err != nil {
		stats.Violations += len(multierr.Errors(err))
		return err
	}
	logger.Get().Info(ctx, "overview consistent",
		logger.Int("sessions", o.Totals.TotalSessions),
		logger.Int("attention", len(o.Attention)),
		logger.Int("warnings", len(o.Warnings)))
	return nil
}

type historyBody struct {
	AthleteID int                   `json:"athlete_id"`
	Range     history.Window        `json:"range"`
	Daily     []history.Point       `json:"daily"`
	Weekly    []history.WeekSummary `json:"weekly"`
}

func checkHistories(ctx context.Context, client *HTTPClient, config *Config, rows []Row, stats *Stats) error {
	logger.Get().Info(ctx, "checking histories", logger.Int("athletes", len(rows)))

	ids := make(chan int)
	var (
		mu   sync.Mutex
		errs error
		wg   sync.WaitGroup
	)
	for range max(config.Workers, 1) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				err := checkHistory(ctx, client, id)
				mu.Lock()
				stats.AthletesChecked++
				if err != nil {
					stats.Violations += len(multierr.Errors(err))
					errs = multierr.Append(errs, fmt.Errorf("athlete %d: %w", id, err))
				}
				mu.Unlock()
				if config.Verbose {
					logger.Get().Debug(ctx, "history checked", logger.Int("athlete", id), logger.Error(err))
				}
			}
		}()
	}
	for _, r := range rows {
		select {
		case ids <- r.ID:
		case <-ctx.Done():
		}
	}
	close(ids)
	wg.Wait()

	if errs != nil {
		return errs
	}
	return ctx.Err()
}

func checkHistory(ctx context.Context, client *HTTPClient, id int) error {
	var errs error
	var month []history.Point
	for _, w := range windows {
		var body historyBody
		path := fmt.Sprintf("/athletes/%d/history?range=%s", id, w)
		if err := client.GetJSON(ctx, path, &body); err != nil {
			return err
		}
		if body.AthleteID != id || body.Range != w {
			errs = multierr.Append(errs, fmt.Errorf("%s answered for athlete %d range %s", path, body.AthleteID, body.Range))
		}
		errs = multierr.Append(errs, CheckDaily(body.Daily, w))
		if w == history.Window30 {
			month = body.Daily
		}
		if w != history.Window30 && len(month) >= len(body.Daily) {
			tail := month[len(month)-len(body.Daily):]
			for i := range tail {
				if tail[i] != body.Daily[i] {
					errs = multierr.Append(errs, fmt.Errorf("%s window is not the tail of 30d at %s", w, body.Daily[i].Date))
					break
				}
			}
		}
	}
	return errs
}

func checkReports(ctx context.Context, client *HTTPClient, config *Config, rows []Row, stats *Stats) error {
	var targets []Row
	for _, r := range rows {
		if r.Sessions > 0 {
			targets = append(targets, r)
		}
		if len(targets) == config.Reports {
			break
		}
	}
	if len(targets) == 0 {
		logger.Get().Warn(ctx, "no athlete with sessions, skipping reports")
		return nil
	}

	logger.Get().Info(ctx, "requesting reports", logger.Int("reports", len(targets)))
	run := strconv.FormatInt(time.Now().UnixNano(), 36)

	var (
		mu   sync.Mutex
		errs error
		wg   sync.WaitGroup
		sem  = make(chan struct{}, max(config.Workers, 1))
	)
	for i, r := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			key := fmt.Sprintf("testroster-%s-%d", run, i)
			res, err := exportOne(ctx, client, r, key, i%2 == 0)

			mu.Lock()
			defer mu.Unlock()
			stats.ReportsRequested++
			stats.Duplicates += res.duplicates
			stats.BytesDownloaded += res.bytes
			if err != nil {
				stats.ReportsFailed++
				errs = multierr.Append(errs, fmt.Errorf("athlete %d: %w", r.ID, err))
				return
			}
			stats.ReportsReady++
		}()
	}
	wg.Wait()
	return errs
}

type exportResult struct {
	duplicates int
	bytes      int
}

func exportOne(ctx context.Context, client *HTTPClient, r Row, key string, chart bool) (exportResult, error) {
	var res exportResult
	body := map[string]any{
		"range":         history.Window7.String(),
		"include_chart": chart,
		"notes":         []string{"Generated by testroster."},
	}
	header := http.Header{IdempotencyHeader: []string{key}}
	path := fmt.Sprintf("/athletes/%d/reports", r.ID)

	first, err := submit(ctx, client, path, body, header)
	if err != nil {
		return res, err
	}
	again, err := submit(ctx, client, path, body, header)
	if err != nil {
		return res, err
	}
	if !again.Duplicate || again.Job.ID != first.Job.ID {
		return res, fmt.Errorf("resubmitting key %s created job %s next to %s", key, again.Job.ID, first.Job.ID)
	}
	res.duplicates++

	job, err := waitForReport(ctx, client, first.Job.ID)
	if err != nil {
		return res, err
	}

	resp, err := client.Do(ctx, http.MethodGet, "/reports/"+job.ID+"/download", nil, nil)
	if err != nil {
		return res, err
	}
	if resp.Status != http.StatusOK {
		return res, fmt.Errorf("download %s: status %d", job.ID, resp.Status)
	}
	res.bytes = len(resp.Body)
	if len(resp.Body) < len(pdfMagic) || string(resp.Body[:len(pdfMagic)]) != string(pdfMagic) {
		return res, fmt.Errorf("download %s is not a PDF", job.ID)
	}
	if len(resp.Body) != job.FileSize {
		return res, fmt.Errorf("download %s has %d bytes, job says %d", job.ID, len(resp.Body), job.FileSize)
	}
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err != nil || params["filename"] != job.FileName {
		return res, fmt.Errorf("download %s: filename %q, job says %q", job.ID, params["filename"], job.FileName)
	}
	return res, nil
}

func submit(ctx context.Context, client *HTTPClient, path string, body any, header http.Header) (SubmitResponse, error) {
	var out SubmitResponse
	resp, err := client.Do(ctx, http.MethodPost, path, body, header)
	if err != nil {
		return out, err
	}
	if resp.Status != http.StatusAccepted && resp.Status != http.StatusOK {
		return out, fmt.Errorf("POST %s: status %d", path, resp.Status)
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, fmt.Errorf("POST %s: decode: %w", path, err)
	}
	return out, nil
}

var errReportFailed = errors.New("report failed")

func waitForReport(ctx context.Context, client *HTTPClient, id string) (export.Job, error) {
	ctx, cancel := context.WithTimeout(ctx, ReportWait)
	defer cancel()

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		var job export.Job
		if err := client.GetJSON(ctx, "/reports/"+id, &job); err != nil {
			return job, err
		}
		switch job.Status {
		case export.StatusReady:
			return job, nil
		case export.StatusFailed, export.StatusExpired:
			return job, fmt.Errorf("%w: job %s is %s: %s", errReportFailed, id, job.Status, job.Error)
		}
		select {
		case <-ctx.Done():
			return job, fmt.Errorf("job %s still %s: %w", id, job.Status, ctx.Err())
		case <-ticker.C:
		}
	}
}

func displayFinalStats(stats *Stats) {
	var readyRate float64
	if stats.ReportsRequested > 0 {
		readyRate = float64(stats.ReportsReady) / float64(stats.ReportsRequested) * percentageMultiplier
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("athletesGenerated", stats.AthletesGenerated),
		logger.Int("athletesChecked", stats.AthletesChecked),
		logger.Int("reportsRequested", stats.ReportsRequested),
		logger.Int("reportsReady", stats.ReportsReady),
		logger.Int("reportsFailed", stats.ReportsFailed),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("bytesDownloaded", stats.BytesDownloaded),
		logger.Int("violations", stats.Violations),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("readyRate", readyRate))
}
