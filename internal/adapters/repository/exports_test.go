package repository

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M3kko/nolimit-dashboard/internal/domain/export"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newJob(id string, at time.Time) export.Job {
	return export.NewJob(id, 1, history.Window30, true, nil, at)
}

func TestExportsLifecycle(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := NewExports(WithCacheSizeMB(1), WithTTL(time.Hour), WithClock(clock.Now))

	require.NoError(t, store.Create(ctx, newJob("j1", clock.Now())))
	assert.ErrorIs(t, store.Create(ctx, newJob("j1", clock.Now())), ErrDuplicateJob)
	assert.ErrorIs(t, store.Create(ctx, newJob("", clock.Now())), export.ErrEmptyJobID)

	_, err := store.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrJobNotFound)

	_, err = store.File(ctx, "j1")
	assert.ErrorIs(t, err, ErrFileGone)

	// Larger than one chunk of a 1MB cache.
	data := bytes.Repeat([]byte("%PDF-"), 1000)
	require.NoError(t, store.StoreFile(ctx, "j1", data))

	j, err := store.Update(ctx, "j1", func(j *export.Job) error {
		if err := j.MarkProcessing(); err != nil {
			return err
		}
		return j.MarkReady("a.pdf", len(data), 3, clock.Now(), store.TTL())
	})
	require.NoError(t, err)
	assert.Equal(t, export.StatusReady, j.Status)

	got, err := store.File(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	clock.Advance(2 * time.Hour)
	j, err = store.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, export.StatusExpired, j.Status)
	assert.False(t, j.CanDownload(clock.Now()))
}

func TestExportsUpdateErrorLeavesJobUntouched(t *testing.T) {
	ctx := context.Background()
	store := NewExports(WithCacheSizeMB(1))
	require.NoError(t, store.Create(ctx, newJob("j1", time.Now())))

	boom := errors.New("boom")
	_, err := store.Update(ctx, "j1", func(j *export.Job) error {
		j.Status = export.StatusProcessing
		return boom
	})
	assert.ErrorIs(t, err, boom)

	j, err := store.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, export.StatusPending, j.Status)

	_, err = store.Update(ctx, "missing", func(*export.Job) error { return nil })
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestExportsSweepAndList(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := NewExports(WithCacheSizeMB(1), WithTTL(time.Hour), WithRetention(3*time.Hour), WithClock(clock.Now))

	require.NoError(t, store.Create(ctx, newJob("old", clock.Now())))
	_, err := store.Update(ctx, "old", func(j *export.Job) error {
		return j.MarkFailed(errors.New("render failed"), clock.Now())
	})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	require.NoError(t, store.Create(ctx, newJob("new", clock.Now())))

	list := store.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)

	clock.Advance(150 * time.Minute)
	assert.Equal(t, 1, store.Sweep(ctx))
	assert.Equal(t, 1, store.Count(ctx))
	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrJobNotFound)
}
