// Package classify holds the threshold tables shared by the roster view, the
// analytics aggregates and the report composer.
package classify

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Level is a four-step quality band.
type Level string

const (
	Excellent Level = "excellent"
	Good      Level = "good"
	Moderate  Level = "moderate"
	Low       Level = "low"
)

// Progress thresholds, inclusive lower bounds.
const (
	ExcellentFrom = 90
	GoodFrom      = 80
	ModerateFrom  = 65
)

// ProgressLevel buckets a weekly progress percentage.
func ProgressLevel(progress int) Level {
	switch {
	case progress >= ExcellentFrom:
		return Excellent
	case progress >= GoodFrom:
		return Good
	case progress >= ModerateFrom:
		return Moderate
	default:
		return Low
	}
}

// Load is the weekly session volume class.
type Load string

const (
	LoadHigh   Load = "high"
	LoadMedium Load = "medium"
	LoadLow    Load = "low"
)

// SessionsLoad classifies a weekly session count.
func SessionsLoad(sessions int) Load {
	switch {
	case sessions >= 12:
		return LoadHigh
	case sessions >= 8:
		return LoadMedium
	default:
		return LoadLow
	}
}

// Zone is a training intensity zone derived from day strain.
type Zone string

const (
	ZoneHigh     Zone = "High Intensity"
	ZoneModerate Zone = "Moderate"
	ZoneRecovery Zone = "Recovery"
)

// IntensityZone maps strain to its zone: above 15 is high, above 10 moderate.
func IntensityZone(strain float64) Zone {
	switch {
	case strain > 15:
		return ZoneHigh
	case strain > 10:
		return ZoneModerate
	default:
		return ZoneRecovery
	}
}

// ProgressVerdict is the team headline for an average progress value.
func ProgressVerdict(avg int) string {
	switch {
	case avg >= GoodFrom:
		return "On track"
	case avg >= ModerateFrom:
		return "Moderate"
	default:
		return "Needs attention"
	}
}

// Percent returns round(count/total*100). ok is false when total is zero.
func Percent(count, total int) (pct int, ok bool) {
	if total <= 0 {
		return 0, false
	}
	return RoundHalfUp(float64(count) * 100 / float64(total)), true
}

// RoundHalfUp rounds to the nearest integer with halves going up.
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Round1 rounds to one decimal place with halves going up.
func Round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// Direction of a trend delta.
type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

// FormatTrend renders a delta as "+3", "-1.2" or "0".
func FormatTrend(delta float64) string {
	d := Round1(delta)
	if d == 0 {
		return "0"
	}
	s := strconv.FormatFloat(d, 'f', -1, 64)
	if d > 0 {
		return "+" + s
	}
	return s
}

// ParseTrend reads a trend string produced by FormatTrend.
func ParseTrend(s string) (float64, Direction, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(strings.TrimPrefix(s, "+"), 64)
	if err != nil {
		return 0, Flat, fmt.Errorf("parse trend %q: %w", s, err)
	}
	switch {
	case v > 0:
		return v, Up, nil
	case v < 0:
		return v, Down, nil
	default:
		return 0, Flat, nil
	}
}
