// Package history synthesizes the per-athlete historical series shown on the
// athlete detail view and embedded in reports.
package history

import (
	"fmt"
	"math"
	"time"

	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
)

// Series lengths.
const (
	Days  = 30
	Weeks = 8
)

// Point is one day of the daily series.
type Point struct {
	Date      string  `json:"date"`
	DateShort string  `json:"date_short"`
	Recovery  int     `json:"recovery"`
	HRV       int     `json:"hrv"`
	Strain    float64 `json:"strain"`
	Sleep     float64 `json:"sleep"`
	RHR       int     `json:"rhr"`
}

// WeekSummary is one week of the weekly series.
type WeekSummary struct {
	Week        string  `json:"week"`
	AvgRecovery int     `json:"avg_recovery"`
	AvgStrain   float64 `json:"avg_strain"`
}

// SessionTypeCount is one slice of the session-type breakdown.
type SessionTypeCount struct {
	Type     string `json:"type"`
	Sessions int    `json:"sessions"`
	Color    string `json:"color"`
}

// Series bundles the three generated series of an athlete.
type Series struct {
	AthleteID int                `json:"athlete_id"`
	Daily     []Point            `json:"daily"`
	Weekly    []WeekSummary      `json:"weekly"`
	Breakdown []SessionTypeCount `json:"breakdown"`
}

// Generate draws the daily, weekly and breakdown series in that order.
func Generate(athleteID int, today time.Time, src Source) Series {
	p := ProfileFor(athleteID)
	return Series{
		AthleteID: athleteID,
		Daily:     Daily(p, today, src),
		Weekly:    Weekly(p, src),
		Breakdown: Breakdown(src),
	}
}

// Daily produces 30 chronological days ending at today. Per day the draws are
// taken in the order recovery, hrv, strain, sleep, rhr.
func Daily(p Profile, today time.Time, src Source) []Point {
	y, m, d := today.UTC().Date()
	today = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	out := make([]Point, 0, Days)
	for i := Days - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		out = append(out, Point{
			Date:      d.Format(time.DateOnly),
			DateShort: fmt.Sprintf("%d/%d", int(d.Month()), d.Day()),
			Recovery:  clampInt(classify.RoundHalfUp(p.Recovery+jitter(src, 20)), 30, 100),
			HRV:       max(25, classify.RoundHalfUp(p.HRV+jitter(src, 10))),
			Strain:    clamp(classify.Round1(p.Strain+jitter(src, 6)), 2, 21),
			Sleep:     clamp(classify.Round1(p.Sleep+jitter(src, 2)), 4, 10),
			RHR:       max(40, classify.RoundHalfUp(52+jitter(src, 5))),
		})
	}
	return out
}

// Weekly produces eight weeks labelled W1..W8, oldest first.
func Weekly(p Profile, src Source) []WeekSummary {
	out := make([]WeekSummary, 0, Weeks)
	for i := Weeks - 1; i >= 0; i-- {
		out = append(out, WeekSummary{
			Week:        fmt.Sprintf("W%d", Weeks-i),
			AvgRecovery: clampInt(classify.RoundHalfUp(p.Recovery+jitter(src, 15)), 40, 100),
			AvgStrain:   clamp(classify.Round1(p.Strain+jitter(src, 4)), 5, 18),
		})
	}
	return out
}

// session types with their count ranges [min, min+span).
var sessionTypes = []struct {
	name  string
	min   int
	span  int
	color classify.RGB
}{
	{"Strength", 4, 8, classify.Blue},
	{"Cardio", 3, 6, classify.Green},
	{"HIIT", 2, 5, classify.Amber},
	{"Recovery", 2, 4, classify.Violet},
}

// Breakdown draws the session counts per training type.
func Breakdown(src Source) []SessionTypeCount {
	out := make([]SessionTypeCount, 0, len(sessionTypes))
	for _, t := range sessionTypes {
		out = append(out, SessionTypeCount{
			Type:     t.name,
			Sessions: src.IntN(t.span) + t.min,
			Color:    t.color.Hex(),
		})
	}
	return out
}

// jitter is uniform on [-span/2, span/2).
func jitter(src Source, span float64) float64 {
	return (src.Float64() - 0.5) * span
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func clampInt(v, lo, hi int) int {
	return min(hi, max(lo, v))
}
