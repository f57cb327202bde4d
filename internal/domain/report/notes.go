package report

import (
	"fmt"
	"strings"

	"github.com/M3kko/nolimit-dashboard/internal/domain/athlete"
	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
)

// wrapChars fits a 9pt Helvetica line into the content width.
const wrapChars = 100

// AutoNotes describes the window in plain figures. It states observations
// only; it does not diagnose.
func AutoNotes(in Input) []string {
	s := history.Summarize(in.Daily)
	notes := make([]string, 0, 5)
	if s.Days > 0 {
		notes = append(notes,
			fmt.Sprintf("Over the last %d days average recovery was %.1f%% (lowest %d%%), HRV averaged %.1f ms and resting heart rate %.1f bpm.",
				s.Days, s.AvgRecovery, s.LowRecovery, s.AvgHRV, s.AvgRHR),
			fmt.Sprintf("Average day strain was %.1f with a peak of %.1f; sleep averaged %.1f h per night.",
				s.AvgStrain, s.PeakStrain, s.AvgSleep),
		)
	}
	high := 0
	for _, r := range in.Sessions {
		if r.Zone() == classify.ZoneHigh {
			high++
		}
	}
	notes = append(notes, fmt.Sprintf("%d recent sessions logged, %d in the high intensity zone.", len(in.Sessions), high))
	if in.Athlete.Status != athlete.StatusActive {
		notes = append(notes, fmt.Sprintf("Current availability status: %s.", in.Athlete.Status))
	}
	return notes
}

// Wrap breaks text on spaces into lines of at most width runes. Words longer
// than width are split.
func Wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var (
		lines []string
		cur   []rune
	)
	for _, w := range words {
		r := []rune(w)
		for len(r) > width {
			if len(cur) > 0 {
				lines = append(lines, string(cur))
				cur = cur[:0]
			}
			lines = append(lines, string(r[:width]))
			r = r[width:]
		}
		switch {
		case len(cur) == 0:
			cur = append(cur, r...)
		case len(cur)+1+len(r) <= width:
			cur = append(cur, ' ')
			cur = append(cur, r...)
		default:
			lines = append(lines, string(cur))
			cur = append(cur[:0], r...)
		}
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
