package analytics

import (
	"errors"
	"fmt"

	"github.com/M3kko/nolimit-dashboard/internal/domain/athlete"
	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
)

// Warning is a data-quality issue found while aggregating.
type Warning struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Warning kinds.
const (
	WarnUnknownStatus = "unknown_status"
	WarnUnknownSport  = "unknown_sport"
)

// Overview is the complete view-model of the overview and analytics views.
type Overview struct {
	Totals        TeamTotals              `json:"totals"`
	Verdict       string                  `json:"verdict"`
	ActivePercent int                     `json:"active_percent"`
	Performance   PerformanceDistribution `json:"performance"`
	Buckets       []Bucket                `json:"buckets"`
	Sports        []SportSummary          `json:"sports"`
	Attention     []athlete.Athlete       `json:"attention"`
	Statuses      StatusDistribution      `json:"statuses"`
	Activity      ActivitySummary         `json:"activity"`
	Warnings      []Warning               `json:"warnings"`
	HasData       bool                    `json:"has_data"`
}

// Build assembles the overview. An empty roster yields HasData false and no
// error; sports outside a restricted set are reported as warnings.
func Build(roster []athlete.Athlete, sports athlete.Sports) Overview {
	o := Overview{
		Performance: Performance(roster),
		Sports:      SportBreakdown(roster),
		Attention:   AttentionList(roster),
		Warnings:    []Warning{},
	}
	o.Buckets = o.Performance.Buckets()

	totals, err := Totals(roster)
	if errors.Is(err, ErrEmptyRoster) {
		o.Sports = []SportSummary{}
		return o
	}
	o.Totals = totals
	o.HasData = true
	o.Verdict = classify.ProgressVerdict(totals.AvgProgress)
	o.ActivePercent, _ = classify.Percent(totals.ActiveCount, totals.TotalAthletes)
	o.Activity, _ = Activity(roster)

	o.Statuses, err = Statuses(roster)
	if err != nil {
		o.Warnings = append(o.Warnings, Warning{Kind: WarnUnknownStatus, Message: err.Error()})
	}
	for _, a := range roster {
		if _, err := sports.Canonical(a.Sport); err != nil {
			o.Warnings = append(o.Warnings, Warning{
				Kind:    WarnUnknownSport,
				Message: fmt.Sprintf("athlete %d: %v", a.ID, err),
			})
		}
	}
	return o
}
