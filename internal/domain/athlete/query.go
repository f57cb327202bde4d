package athlete

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortKey orders a roster view.
type SortKey string

const (
	SortName     SortKey = "name"
	SortProgress SortKey = "progress"
	SortSessions SortKey = "sessions"
)

// ParseSortKey reads a sort key; blank means name.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortName:
		return SortName, nil
	case SortProgress:
		return SortProgress, nil
	case SortSessions:
		return SortSessions, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSort, s)
}

// All is the filter value that disables a filter.
const All = "all"

// Query selects and orders a roster view.
type Query struct {
	Search string
	Sport  string
	Status string
	Sort   SortKey
}

// Apply returns a new slice holding the matching athletes in query order.
// Name sorts ascending; progress and sessions sort descending. Ties keep
// roster order.
func Apply(roster []Athlete, q Query) []Athlete {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]Athlete, 0, len(roster))
	for _, a := range roster {
		if search != "" && !strings.Contains(strings.ToLower(a.Name), search) {
			continue
		}
		if !matches(q.Sport, a.Sport) || !matches(q.Status, string(a.Status)) {
			continue
		}
		out = append(out, a)
	}

	switch q.Sort {
	case SortProgress:
		slices.SortStableFunc(out, func(x, y Athlete) int { return cmp.Compare(y.WeeklyProgress, x.WeeklyProgress) })
	case SortSessions:
		slices.SortStableFunc(out, func(x, y Athlete) int { return cmp.Compare(y.Sessions, x.Sessions) })
	default:
		slices.SortStableFunc(out, func(x, y Athlete) int {
			return cmp.Compare(strings.ToLower(x.Name), strings.ToLower(y.Name))
		})
	}
	return out
}

func matches(filter, value string) bool {
	filter = strings.TrimSpace(filter)
	return filter == "" || strings.EqualFold(filter, All) || strings.EqualFold(filter, value)
}

// SportsOf lists the distinct sports of a roster in first-seen order.
func SportsOf(roster []Athlete) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range roster {
		if _, ok := seen[a.Sport]; ok {
			continue
		}
		seen[a.Sport] = struct{}{}
		out = append(out, a.Sport)
	}
	return out
}
