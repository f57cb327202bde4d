// Package analytics aggregates a roster into the team-level figures of the
// overview and analytics views. Every function is pure and safe for
// concurrent use on a shared roster slice.
package analytics

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/M3kko/nolimit-dashboard/internal/domain/athlete"
	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
)

// TeamTotals are the headline counts of a roster.
type TeamTotals struct {
	TotalAthletes int  `json:"total_athletes"`
	TotalSessions int  `json:"total_sessions"`
	AvgProgress   int  `json:"avg_progress"`
	ActiveCount   int  `json:"active_count"`
	RecoveryCount int  `json:"recovery_count"`
	InjuryCount   int  `json:"injury_count"`
	HasData       bool `json:"has_data"`
}

// Totals computes team totals. The average is rounded half up. An empty roster
// returns the zero value with ErrEmptyRoster.
func Totals(roster []athlete.Athlete) (TeamTotals, error) {
	if len(roster) == 0 {
		return TeamTotals{}, ErrEmptyRoster
	}
	t := TeamTotals{TotalAthletes: len(roster), HasData: true}
	sum := 0
	for _, a := range roster {
		t.TotalSessions += a.Sessions
		sum += a.WeeklyProgress
		switch a.Status {
		case athlete.StatusActive:
			t.ActiveCount++
		case athlete.StatusRecovery:
			t.RecoveryCount++
		case athlete.StatusInjury:
			t.InjuryCount++
		}
	}
	t.AvgProgress = meanHalfUp(sum, len(roster))
	return t, nil
}

// meanHalfUp is round(sum/n) with halves going up, in integers. Progress values
// are non-negative so the numerator never goes below zero.
func meanHalfUp(sum, n int) int {
	return (2*sum + n) / (2 * n)
}

// PerformanceDistribution counts athletes per progress band. Bands are
// exclusive and exhaustive so the counts sum to the roster size.
type PerformanceDistribution struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Moderate  int `json:"moderate"`
	Low       int `json:"low"`
}

// Total is the number of athletes counted.
func (d PerformanceDistribution) Total() int {
	return d.Excellent + d.Good + d.Moderate + d.Low
}

// Performance buckets the roster by weekly progress.
func Performance(roster []athlete.Athlete) PerformanceDistribution {
	var d PerformanceDistribution
	for _, a := range roster {
		switch classify.ProgressLevel(a.WeeklyProgress) {
		case classify.Excellent:
			d.Excellent++
		case classify.Good:
			d.Good++
		case classify.Moderate:
			d.Moderate++
		default:
			d.Low++
		}
	}
	return d
}

// Bucket is one bar of the performance distribution chart.
type Bucket struct {
	Level  classify.Level `json:"level"`
	Label  string         `json:"label"`
	Count  int            `json:"count"`
	Height int            `json:"height"`
	Color  string         `json:"color"`
}

// Buckets returns the four bars, highest band first. Height is the count as a
// percentage of the largest bucket.
func (d PerformanceDistribution) Buckets() []Bucket {
	counts := []int{d.Excellent, d.Good, d.Moderate, d.Low}
	peak := max(1, slices.Max(counts))
	levels := []classify.Level{classify.Excellent, classify.Good, classify.Moderate, classify.Low}
	labels := []string{"90-100%", "80-89%", "65-79%", "<65%"}
	out := make([]Bucket, len(levels))
	for i, l := range levels {
		h, _ := classify.Percent(counts[i], peak)
		out[i] = Bucket{
			Level:  l,
			Label:  labels[i],
			Count:  counts[i],
			Height: h,
			Color:  classify.LevelColor(l).Hex(),
		}
	}
	return out
}

// SportSummary aggregates the athletes of one sport.
type SportSummary struct {
	Sport         string `json:"sport"`
	AthleteCount  int    `json:"athlete_count"`
	TotalSessions int    `json:"total_sessions"`
	AvgProgress   int    `json:"avg_progress"`
}

// SportBreakdown groups the roster by sport, ordered by total sessions
// descending then sport name ascending.
func SportBreakdown(roster []athlete.Athlete) []SportSummary {
	idx := make(map[string]int)
	var out []SportSummary
	sums := make([]int, 0)
	for _, a := range roster {
		i, ok := idx[a.Sport]
		if !ok {
			i = len(out)
			idx[a.Sport] = i
			out = append(out, SportSummary{Sport: a.Sport})
			sums = append(sums, 0)
		}
		out[i].AthleteCount++
		out[i].TotalSessions += a.Sessions
		sums[i] += a.WeeklyProgress
	}
	for i := range out {
		out[i].AvgProgress = meanHalfUp(sums[i], out[i].AthleteCount)
	}
	slices.SortFunc(out, func(x, y SportSummary) int {
		if c := cmp.Compare(y.TotalSessions, x.TotalSessions); c != 0 {
			return c
		}
		return cmp.Compare(x.Sport, y.Sport)
	})
	return out
}

// AttentionList returns athletes in recovery or injured, in roster order.
func AttentionList(roster []athlete.Athlete) []athlete.Athlete {
	out := make([]athlete.Athlete, 0)
	for _, a := range roster {
		if a.NeedsAttention() {
			out = append(out, a)
		}
	}
	return out
}

// StatusDistribution counts athletes per status.
type StatusDistribution struct {
	Active   int `json:"active"`
	Recovery int `json:"recovery"`
	Injury   int `json:"injury"`
}

// Total is the number of athletes counted.
func (s StatusDistribution) Total() int { return s.Active + s.Recovery + s.Injury }

// Count returns the count of one status.
func (s StatusDistribution) Count(st athlete.Status) int {
	switch st {
	case athlete.StatusActive:
		return s.Active
	case athlete.StatusRecovery:
		return s.Recovery
	case athlete.StatusInjury:
		return s.Injury
	}
	return 0
}

// Percent is the share of one status, with ok false for an empty distribution.
func (s StatusDistribution) Percent(st athlete.Status) (int, bool) {
	return classify.Percent(s.Count(st), s.Total())
}

// Statuses counts the roster by status. An athlete carrying a status outside
// the taxonomy is not counted and is reported as ErrUnknownStatus.
func Statuses(roster []athlete.Athlete) (StatusDistribution, error) {
	var (
		d   StatusDistribution
		bad []int
	)
	for _, a := range roster {
		switch a.Status {
		case athlete.StatusActive:
			d.Active++
		case athlete.StatusRecovery:
			d.Recovery++
		case athlete.StatusInjury:
			d.Injury++
		default:
			bad = append(bad, a.ID)
		}
	}
	if len(bad) > 0 {
		return d, fmt.Errorf("%w: athletes %v", athlete.ErrUnknownStatus, bad)
	}
	return d, nil
}

// ActivitySummary is the training volume card.
type ActivitySummary struct {
	TotalSessions       int     `json:"total_sessions"`
	AvgPerAthlete       float64 `json:"avg_per_athlete"`
	MostActiveSessions  int     `json:"most_active_sessions"`
	MostActiveAthleteID int     `json:"most_active_athlete_id"`
}

// Activity summarizes session volume. The first athlete with the highest count
// wins ties. An empty roster returns ErrEmptyRoster.
func Activity(roster []athlete.Athlete) (ActivitySummary, error) {
	if len(roster) == 0 {
		return ActivitySummary{}, ErrEmptyRoster
	}
	s := ActivitySummary{MostActiveSessions: -1}
	for _, a := range roster {
		s.TotalSessions += a.Sessions
		if a.Sessions > s.MostActiveSessions {
			s.MostActiveSessions = a.Sessions
			s.MostActiveAthleteID = a.ID
		}
	}
	s.AvgPerAthlete = classify.Round1(float64(s.TotalSessions) / float64(len(roster)))
	return s, nil
}
