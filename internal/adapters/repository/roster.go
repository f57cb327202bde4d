package repository

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/M3kko/nolimit-dashboard/internal/domain/athlete"
	"github.com/M3kko/nolimit-dashboard/pkg/metrics"
)

// rosterSnapshot is immutable once published.
type rosterSnapshot struct {
	list []athlete.Athlete
	byID map[int]int
}

// Roster is an in-memory RosterStore. Readers never block: every Replace
// publishes a fresh snapshot.
type Roster struct {
	snapshot atomic.Pointer[rosterSnapshot]
}

var _ RosterStore = (*Roster)(nil)

// NewRoster builds a store holding roster. Ids must be unique.
func NewRoster(roster []athlete.Athlete) (*Roster, error) {
	r := &Roster{}
	if err := r.Replace(context.Background(), roster); err != nil {
		return nil, err
	}
	return r, nil
}

// Replace implements RosterStore.Replace.
func (r *Roster) Replace(_ context.Context, roster []athlete.Athlete) error {
	snap := &rosterSnapshot{
		list: make([]athlete.Athlete, len(roster)),
		byID: make(map[int]int, len(roster)),
	}
	copy(snap.list, roster)
	for i, a := range snap.list {
		if _, dup := snap.byID[a.ID]; dup {
			return fmt.Errorf("%w: %w: %d", ErrInvalidRoster, athlete.ErrDuplicateID, a.ID)
		}
		snap.byID[a.ID] = i
	}
	r.snapshot.Store(snap)
	metrics.UpdateRosterAthletes(len(snap.list))
	return nil
}

func (r *Roster) current() *rosterSnapshot {
	if s := r.snapshot.Load(); s != nil {
		return s
	}
	return &rosterSnapshot{}
}

// All implements RosterStore.All.
func (r *Roster) All(_ context.Context) []athlete.Athlete {
	s := r.current()
	out := make([]athlete.Athlete, len(s.list))
	copy(out, s.list)
	return out
}

// Get implements RosterStore.Get.
func (r *Roster) Get(_ context.Context, id int) (athlete.Athlete, error) {
	s := r.current()
	i, ok := s.byID[id]
	if !ok {
		return athlete.Athlete{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return s.list[i], nil
}

// Count implements RosterStore.Count.
func (r *Roster) Count(_ context.Context) int {
	return len(r.current().list)
}
