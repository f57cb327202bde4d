// Package biometrics builds the current-day biometric snapshot of an athlete.
package biometrics

import (
	"errors"

	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
)

// ErrNoHistory is returned when a snapshot is requested from an empty series.
var ErrNoHistory = errors.New("no history to build snapshot from")

// Metric is one named reading.
type Metric struct {
	Name   string         `json:"name"`
	Value  float64        `json:"value"`
	Unit   string         `json:"unit"`
	Trend  string         `json:"trend"`
	Status classify.Level `json:"status"`
}

// Sleep splits last night's sleep into stages, hours with one decimal.
type Sleep struct {
	Total      float64 `json:"total"`
	Deep       float64 `json:"deep"`
	REM        float64 `json:"rem"`
	Light      float64 `json:"light"`
	Awake      float64 `json:"awake"`
	Efficiency int     `json:"efficiency"`
}

// Calories is the daily energy expenditure in kcal.
type Calories struct {
	Active  int `json:"active"`
	Resting int `json:"resting"`
	Total   int `json:"total"`
}

// Snapshot is the fixed set of current-day readings.
type Snapshot struct {
	AthleteID       int      `json:"athlete_id"`
	Date            string   `json:"date"`
	Recovery        Metric   `json:"recovery"`
	HRV             Metric   `json:"hrv"`
	RestingHR       Metric   `json:"resting_hr"`
	Strain          Metric   `json:"strain"`
	SleepPerf       Metric   `json:"sleep_performance"`
	VO2Max          Metric   `json:"vo2_max"`
	RespiratoryRate Metric   `json:"respiratory_rate"`
	SpO2            Metric   `json:"spo2"`
	SkinTemp        Metric   `json:"skin_temp"`
	Sleep           Sleep    `json:"sleep"`
	Calories        Calories `json:"calories"`
}

// Rows returns the metrics in display order.
func (s Snapshot) Rows() []Metric {
	return []Metric{
		s.Recovery, s.HRV, s.RestingHR, s.Strain, s.SleepPerf,
		s.VO2Max, s.RespiratoryRate, s.SpO2, s.SkinTemp,
	}
}

// Reference holds the readings the synthetic series does not model.
type Reference struct {
	VO2Max          float64
	RespiratoryRate float64
	SpO2            float64
	SkinTempDelta   float64
	RestingCalories int
}

// DefaultReference is used when no device data is attached.
var DefaultReference = Reference{
	VO2Max:          52.4,
	RespiratoryRate: 14.6,
	SpO2:            97,
	SkinTempDelta:   0.2,
	RestingCalories: 1750,
}

// FromHistory builds today's snapshot from the last daily point; trends
// compare it with the day before.
func FromHistory(athleteID int, daily []history.Point, ref Reference) (Snapshot, error) {
	if len(daily) == 0 {
		return Snapshot{}, ErrNoHistory
	}
	cur := daily[len(daily)-1]
	prev := cur
	if len(daily) > 1 {
		prev = daily[len(daily)-2]
	}

	active := classify.RoundHalfUp(cur.Strain * 95)
	return Snapshot{
		AthleteID: athleteID,
		Date:      cur.Date,
		Recovery: Metric{
			Name: "Recovery", Value: float64(cur.Recovery), Unit: "%",
			Trend:  classify.FormatTrend(float64(cur.Recovery - prev.Recovery)),
			Status: recoveryLevel(cur.Recovery),
		},
		HRV: Metric{
			Name: "HRV", Value: float64(cur.HRV), Unit: "ms",
			Trend:  classify.FormatTrend(float64(cur.HRV - prev.HRV)),
			Status: hrvLevel(cur.HRV),
		},
		RestingHR: Metric{
			Name: "Resting HR", Value: float64(cur.RHR), Unit: "bpm",
			Trend:  classify.FormatTrend(float64(cur.RHR - prev.RHR)),
			Status: rhrLevel(cur.RHR),
		},
		Strain: Metric{
			Name: "Day Strain", Value: cur.Strain, Unit: "",
			Trend:  classify.FormatTrend(cur.Strain - prev.Strain),
			Status: strainLevel(cur.Strain),
		},
		SleepPerf: Metric{
			Name: "Sleep", Value: cur.Sleep, Unit: "h",
			Trend:  classify.FormatTrend(cur.Sleep - prev.Sleep),
			Status: sleepLevel(cur.Sleep),
		},
		VO2Max:          Metric{Name: "VO2 Max", Value: ref.VO2Max, Unit: "ml/kg/min", Trend: "0", Status: classify.Excellent},
		RespiratoryRate: Metric{Name: "Respiratory Rate", Value: ref.RespiratoryRate, Unit: "rpm", Trend: "0", Status: classify.Good},
		SpO2:            Metric{Name: "SpO2", Value: ref.SpO2, Unit: "%", Trend: "0", Status: spo2Level(ref.SpO2)},
		SkinTemp:        Metric{Name: "Skin Temp", Value: ref.SkinTempDelta, Unit: "°C", Trend: "0", Status: classify.Good},
		Sleep:           sleepStages(cur.Sleep),
		Calories: Calories{
			Active:  active,
			Resting: ref.RestingCalories,
			Total:   active + ref.RestingCalories,
		},
	}, nil
}

const awakeHours = 0.4

func sleepStages(total float64) Sleep {
	deep := classify.Round1(total * 0.2)
	rem := classify.Round1(total * 0.22)
	return Sleep{
		Total:      total,
		Deep:       deep,
		REM:        rem,
		Light:      classify.Round1(total - deep - rem),
		Awake:      awakeHours,
		Efficiency: classify.RoundHalfUp(total / (total + awakeHours) * 100),
	}
}

func recoveryLevel(v int) classify.Level {
	switch {
	case v >= 80:
		return classify.Excellent
	case v >= 67:
		return classify.Good
	case v >= 34:
		return classify.Moderate
	default:
		return classify.Low
	}
}

func hrvLevel(v int) classify.Level {
	switch {
	case v >= 60:
		return classify.Excellent
	case v >= 50:
		return classify.Good
	case v >= 40:
		return classify.Moderate
	default:
		return classify.Low
	}
}

// lower is better
func rhrLevel(v int) classify.Level {
	switch {
	case v <= 50:
		return classify.Excellent
	case v <= 55:
		return classify.Good
	case v <= 62:
		return classify.Moderate
	default:
		return classify.Low
	}
}

// Strain above 18 is overreaching; below 10 is a rest day.
func strainLevel(v float64) classify.Level {
	switch {
	case v > 18:
		return classify.Low
	case v > 15:
		return classify.Moderate
	case v >= 10:
		return classify.Excellent
	default:
		return classify.Good
	}
}

func sleepLevel(v float64) classify.Level {
	switch {
	case v >= 8:
		return classify.Excellent
	case v >= 7:
		return classify.Good
	case v >= 6:
		return classify.Moderate
	default:
		return classify.Low
	}
}

func spo2Level(v float64) classify.Level {
	switch {
	case v >= 96:
		return classify.Excellent
	case v >= 94:
		return classify.Good
	case v >= 90:
		return classify.Moderate
	default:
		return classify.Low
	}
}
