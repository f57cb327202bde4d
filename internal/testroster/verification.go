package testroster

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/M3kko/nolimit-dashboard/internal/domain/analytics"
	"github.com/M3kko/nolimit-dashboard/internal/domain/athlete"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
)

// CheckRoster compares the served roster with the generated records. Every
// valid record must be served exactly once and nothing else.
func CheckRoster(records []athlete.Record, list List) error {
	var errs error
	if list.Total != len(list.Athletes) {
		errs = multierr.Append(errs, fmt.Errorf("total %d does not match %d rows", list.Total, len(list.Athletes)))
	}
	want := make(map[int]athlete.Record, len(records))
	for _, r := range records {
		want[r.ID] = r
	}
	seen := make(map[int]bool, len(list.Athletes))
	for _, row := range list.Athletes {
		r, ok := want[row.ID]
		switch {
		case !ok:
			errs = multierr.Append(errs, fmt.Errorf("athlete %d was never generated", row.ID))
		case seen[row.ID]:
			errs = multierr.Append(errs, fmt.Errorf("athlete %d served twice", row.ID))
		case row.Name != r.Name || row.WeeklyProgress != r.WeeklyProgress || row.Sessions != r.Sessions:
			errs = multierr.Append(errs, fmt.Errorf("athlete %d differs from the generated record", row.ID))
		}
		seen[row.ID] = true
	}
	for _, r := range records {
		if !seen[r.ID] {
			errs = multierr.Append(errs, fmt.Errorf("athlete %d is missing", r.ID))
		}
	}
	return errs
}

// CheckOverview verifies the aggregation invariants against the roster rows.
func CheckOverview(o analytics.Overview, rows []Row) error {
	var errs error
	n := len(rows)
	if n == 0 {
		if o.HasData {
			errs = multierr.Append(errs, fmt.Errorf("empty roster reported as having data"))
		}
		return errs
	}
	if o.Totals.TotalAthletes != n {
		errs = multierr.Append(errs, fmt.Errorf("total athletes %d, want %d", o.Totals.TotalAthletes, n))
	}
	if got := o.Statuses.Total(); got != n {
		errs = multierr.Append(errs, fmt.Errorf("status counts sum to %d, want %d", got, n))
	}
	if got := o.Performance.Total(); got != n {
		errs = multierr.Append(errs, fmt.Errorf("performance buckets sum to %d, want %d", got, n))
	}

	sum, sessions := 0, 0
	for i, s := range o.Sports {
		sum += s.AthleteCount
		if i > 0 && s.TotalSessions > o.Sports[i-1].TotalSessions {
			errs = multierr.Append(errs, fmt.Errorf("sport breakdown not ordered at %q", s.Sport))
		}
	}
	if sum != n {
		errs = multierr.Append(errs, fmt.Errorf("sport breakdown sums to %d, want %d", sum, n))
	}

	attention := 0
	for _, r := range rows {
		sessions += r.Sessions
		if r.Status == string(athlete.StatusRecovery) || r.Status == string(athlete.StatusInjury) {
			attention++
		}
	}
	if o.Totals.TotalSessions != sessions {
		errs = multierr.Append(errs, fmt.Errorf("total sessions %d, want %d", o.Totals.TotalSessions, sessions))
	}
	if len(o.Attention) != attention {
		errs = multierr.Append(errs, fmt.Errorf("attention list has %d athletes, want %d", len(o.Attention), attention))
	}
	return errs
}

// CheckDaily verifies window length, chronological order and value bounds.
func CheckDaily(points []history.Point, w history.Window) error {
	var errs error
	if len(points) != int(w) {
		errs = multierr.Append(errs, fmt.Errorf("window %s has %d points", w, len(points)))
	}
	for i, p := range points {
		if i > 0 && strings.Compare(points[i-1].Date, p.Date) >= 0 {
			errs = multierr.Append(errs, fmt.Errorf("point %d (%s) is not after %s", i, p.Date, points[i-1].Date))
		}
		if p.Recovery < 30 || p.Recovery > 100 {
			errs = multierr.Append(errs, fmt.Errorf("%s: recovery %d out of range", p.Date, p.Recovery))
		}
		if p.Strain < 2 || p.Strain > 21 {
			errs = multierr.Append(errs, fmt.Errorf("%s: strain %.1f out of range", p.Date, p.Strain))
		}
		if p.Sleep < 4 || p.Sleep > 10 {
			errs = multierr.Append(errs, fmt.Errorf("%s: sleep %.1f out of range", p.Date, p.Sleep))
		}
		if p.HRV < 25 || p.RHR < 40 {
			errs = multierr.Append(errs, fmt.Errorf("%s: hrv %d or rhr %d below floor", p.Date, p.HRV, p.RHR))
		}
	}
	return errs
}
