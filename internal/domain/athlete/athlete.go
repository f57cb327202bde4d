// Package athlete contains the roster record model and its validation.
package athlete

import (
	"fmt"
	"strings"
	"unicode"
)

// Status is the closed availability taxonomy of an athlete.
type Status string

const (
	StatusActive   Status = "active"
	StatusRecovery Status = "recovery"
	StatusInjury   Status = "injury"
)

// Statuses lists the taxonomy in display order.
var Statuses = []Status{StatusActive, StatusRecovery, StatusInjury}

// ParseStatus accepts a status name case-insensitively. Anything outside the
// taxonomy is ErrUnknownStatus; there is no default.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive, nil
	case StatusRecovery:
		return StatusRecovery, nil
	case StatusInjury:
		return StatusInjury, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Valid reports whether s belongs to the taxonomy.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusRecovery, StatusInjury:
		return true
	}
	return false
}

// Athlete is a validated roster entry. Values are never mutated after admission.
type Athlete struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Sport          string `json:"sport"`
	WeeklyProgress int    `json:"weekly_progress"`
	Sessions       int    `json:"sessions"`
	Status         Status `json:"status"`
}

// NeedsAttention is true for athletes in recovery or injured.
func (a Athlete) NeedsAttention() bool {
	return a.Status == StatusRecovery || a.Status == StatusInjury
}

// Initials returns up to two uppercase initials of the athlete's name.
func (a Athlete) Initials() string {
	out := make([]rune, 0, 2)
	for _, w := range strings.Fields(a.Name) {
		r := []rune(w)[0]
		if !unicode.IsLetter(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

// Validate checks the numeric ranges and the status of an athlete.
func (a Athlete) Validate() error {
	switch {
	case a.ID <= 0:
		return fmt.Errorf("%w: id must be positive", ErrInvalidAthlete)
	case strings.TrimSpace(a.Name) == "":
		return fmt.Errorf("%w: athlete %d: empty name", ErrInvalidAthlete, a.ID)
	case a.WeeklyProgress < 0 || a.WeeklyProgress > 100:
		return fmt.Errorf("%w: athlete %d: weekly progress %d out of [0,100]", ErrInvalidAthlete, a.ID, a.WeeklyProgress)
	case a.Sessions < 0:
		return fmt.Errorf("%w: athlete %d: negative sessions", ErrInvalidAthlete, a.ID)
	case !a.Status.Valid():
		return fmt.Errorf("%w: athlete %d: %q", ErrUnknownStatus, a.ID, a.Status)
	}
	return nil
}
