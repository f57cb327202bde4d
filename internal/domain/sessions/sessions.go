// Package sessions models the per-athlete training session log.
package sessions

import (
	"fmt"
	"math"
	"time"

	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
)

// Record is one logged training session.
type Record struct {
	ID              string  `json:"id"`
	Date            string  `json:"date"`
	Type            string  `json:"type"`
	DurationMinutes int     `json:"duration_minutes"`
	AvgHR           int     `json:"avg_hr"`
	MaxHR           int     `json:"max_hr"`
	Strain          float64 `json:"strain"`
}

// Zone is the intensity zone of the session.
func (r Record) Zone() classify.Zone {
	return classify.IntensityZone(r.Strain)
}

// Duration renders the session length as "1h 15m" or "45m".
func (r Record) Duration() string {
	h, m := r.DurationMinutes/60, r.DurationMinutes%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

var kinds = []struct {
	name        string
	minDuration int
	spanMinutes int
	strainShift float64
}{
	{"Strength Training", 45, 31, 0},
	{"Interval Run", 30, 31, 2},
	{"HIIT", 25, 21, 3},
	{"Recovery Swim", 30, 16, -5},
	{"Endurance Ride", 60, 61, 1},
	{"Mobility", 20, 16, -7},
}

// Synthesize builds a newest-first log of count sessions for an athlete whose
// baseline strain comes from its history profile. Days between sessions are 1 or 2.
func Synthesize(athleteID, count int, today time.Time, src history.Source) []Record {
	p := history.ProfileFor(athleteID)
	y, m, d := today.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	out := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		k := kinds[src.IntN(len(kinds))]
		strain := classify.Round1(p.Strain + k.strainShift + (src.Float64()-0.5)*4)
		strain = math.Min(21, math.Max(2, strain))
		avg := 100 + classify.RoundHalfUp(strain*4)
		out = append(out, Record{
			ID:              fmt.Sprintf("%d-%s-%d", athleteID, day.Format("20060102"), i+1),
			Date:            day.Format(time.DateOnly),
			Type:            k.name,
			DurationMinutes: k.minDuration + src.IntN(k.spanMinutes),
			AvgHR:           avg,
			MaxHR:           avg + 20 + src.IntN(15),
			Strain:          strain,
		})
		day = day.AddDate(0, 0, -(1 + src.IntN(2)))
	}
	return out
}
