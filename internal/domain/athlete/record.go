package athlete

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// Record is the loose shape read from roster files and requests.
type Record struct {
	ID             int    `json:"id" yaml:"id" toml:"id"`
	Name           string `json:"name" yaml:"name" toml:"name"`
	Sport          string `json:"sport" yaml:"sport" toml:"sport"`
	WeeklyProgress int    `json:"weekly_progress" yaml:"weekly_progress" toml:"weekly_progress"`
	Sessions       int    `json:"sessions" yaml:"sessions" toml:"sessions"`
	Status         string `json:"status" yaml:"status" toml:"status"`
}

// Sports is the set of sports a roster may reference. The zero value accepts
// any non-blank sport.
type Sports struct {
	known map[string]string
}

// NewSports builds a sport set. Matching is case-insensitive and returns the
// configured spelling.
func NewSports(names ...string) Sports {
	if len(names) == 0 {
		return Sports{}
	}
	known := make(map[string]string, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			known[strings.ToLower(n)] = n
		}
	}
	return Sports{known: known}
}

// Restricted reports whether only configured sports are accepted.
func (s Sports) Restricted() bool { return len(s.known) > 0 }

// Names returns the configured sports sorted.
func (s Sports) Names() []string {
	out := make([]string, 0, len(s.known))
	for _, v := range s.known {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Canonical validates a sport name.
func (s Sports) Canonical(sport string) (string, error) {
	sport = strings.TrimSpace(sport)
	if sport == "" {
		return "", fmt.Errorf("%w: blank", ErrUnknownSport)
	}
	if !s.Restricted() {
		return sport, nil
	}
	if c, ok := s.known[strings.ToLower(sport)]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSport, sport)
}

// FromRecord converts a record into an Athlete.
func FromRecord(r Record, sports Sports) (Athlete, error) {
	status, err := ParseStatus(r.Status)
	if err != nil {
		return Athlete{}, fmt.Errorf("athlete %d: %w", r.ID, err)
	}
	sport, err := sports.Canonical(r.Sport)
	if err != nil {
		return Athlete{}, fmt.Errorf("athlete %d: %w", r.ID, err)
	}
	a := Athlete{
		ID:             r.ID,
		Name:           strings.TrimSpace(r.Name),
		Sport:          sport,
		WeeklyProgress: r.WeeklyProgress,
		Sessions:       r.Sessions,
		Status:         status,
	}
	if err := a.Validate(); err != nil {
		return Athlete{}, err
	}
	return a, nil
}

// Convert admits every valid record in input order. Rejected records are
// reported together in the returned error; the accepted slice is still usable.
func Convert(records []Record, sports Sports) ([]Athlete, error) {
	out := make([]Athlete, 0, len(records))
	seen := make(map[int]struct{}, len(records))
	var errs error
	for _, r := range records {
		a, err := FromRecord(r, sports)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, dup := seen[a.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%w: %d", ErrDuplicateID, a.ID))
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out, errs
}

// ToRecord converts an athlete back to its file form.
func ToRecord(a Athlete) Record {
	return Record{
		ID:             a.ID,
		Name:           a.Name,
		Sport:          a.Sport,
		WeeklyProgress: a.WeeklyProgress,
		Sessions:       a.Sessions,
		Status:         string(a.Status),
	}
}
