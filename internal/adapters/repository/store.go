// Package repository holds the roster, export jobs and cached series.
package repository

import (
	"context"
	"time"

	"github.com/M3kko/nolimit-dashboard/internal/domain/athlete"
	"github.com/M3kko/nolimit-dashboard/internal/domain/export"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
)

// RosterStore provides read access to the admitted roster.
type RosterStore interface {
	// All returns the roster in admission order. The slice is a copy.
	All(ctx context.Context) []athlete.Athlete

	// Get returns one athlete or ErrNotFound. Never a partial record.
	Get(ctx context.Context, id int) (athlete.Athlete, error)

	// Replace swaps the whole roster atomically.
	Replace(ctx context.Context, roster []athlete.Athlete) error

	// Count returns the number of athletes.
	Count(ctx context.Context) int
}

// ExportStore tracks export jobs and the files they produce.
type ExportStore interface {
	Create(ctx context.Context, j export.Job) error
	Get(ctx context.Context, id string) (export.Job, error)
	// Update applies fn to the stored job under lock; fn's error aborts the update.
	Update(ctx context.Context, id string, fn func(*export.Job) error) (export.Job, error)
	// StoreFile saves the encoded report. A job must not be marked ready before this succeeds.
	StoreFile(ctx context.Context, id string, data []byte) error
	// File returns the encoded report, or ErrFileGone once evicted or expired.
	File(ctx context.Context, id string) ([]byte, error)
	Count(ctx context.Context) int
}

// SeriesStore caches generated series per athlete per day.
type SeriesStore interface {
	Get(athleteID int, day time.Time) (history.Series, bool)
	Put(s history.Series, day time.Time)
}
