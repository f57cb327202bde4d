package history

import (
	"errors"
	"fmt"
	"strings"

	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
)

// ErrUnknownWindow marks a range other than 7d, 14d or 30d.
var ErrUnknownWindow = errors.New("unknown window")

// Window is a trailing range of the daily series, in days.
type Window int

const (
	Window7  Window = 7
	Window14 Window = 14
	Window30 Window = 30
)

// ParseWindow reads "7d", "14d" or "30d".
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "7d":
		return Window7, nil
	case "14d":
		return Window14, nil
	case "30d":
		return Window30, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWindow, s)
}

func (w Window) String() string { return fmt.Sprintf("%dd", int(w)) }

// MarshalText renders the window label, e.g. "7d".
func (w Window) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// UnmarshalText parses a window label.
func (w *Window) UnmarshalText(b []byte) error {
	v, err := ParseWindow(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

// Window returns the trailing w days of the daily series, clamped to what the
// series holds. It never regenerates; the result shares the backing array
// with s.Daily.
func (s Series) Window(w Window) []Point {
	n := min(max(int(w), 0), len(s.Daily))
	return s.Daily[len(s.Daily)-n:]
}

// Summary holds window averages.
type Summary struct {
	Days        int     `json:"days"`
	AvgRecovery float64 `json:"avg_recovery"`
	AvgHRV      float64 `json:"avg_hrv"`
	AvgStrain   float64 `json:"avg_strain"`
	AvgSleep    float64 `json:"avg_sleep"`
	AvgRHR      float64 `json:"avg_rhr"`
	PeakStrain  float64 `json:"peak_strain"`
	LowRecovery int     `json:"low_recovery"`
}

// Summarize averages a window, one decimal each. An empty window yields the zero Summary.
func Summarize(points []Point) Summary {
	if len(points) == 0 {
		return Summary{}
	}
	var rec, hrv, strain, sleep, rhr float64
	s := Summary{Days: len(points), LowRecovery: points[0].Recovery}
	for _, p := range points {
		rec += float64(p.Recovery)
		hrv += float64(p.HRV)
		strain += p.Strain
		sleep += p.Sleep
		rhr += float64(p.RHR)
		s.PeakStrain = max(s.PeakStrain, p.Strain)
		s.LowRecovery = min(s.LowRecovery, p.Recovery)
	}
	n := float64(len(points))
	s.AvgRecovery = classify.Round1(rec / n)
	s.AvgHRV = classify.Round1(hrv / n)
	s.AvgStrain = classify.Round1(strain / n)
	s.AvgSleep = classify.Round1(sleep / n)
	s.AvgRHR = classify.Round1(rhr / n)
	return s
}
