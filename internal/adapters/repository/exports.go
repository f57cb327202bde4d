package repository

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coocood/freecache"

	"github.com/M3kko/nolimit-dashboard/internal/domain/export"
	"github.com/M3kko/nolimit-dashboard/pkg/metrics"
)

const (
	defaultExportCacheMB = 64
	defaultExportTTL     = time.Hour
	// freecache rejects entries above 1/1024 of its size; keys and headers need room too.
	chunkOverhead = 128
)

// Exports is an in-memory ExportStore. Job records live in a map; encoded
// files live in a bounded freecache split into chunks, so eviction or
// expiry of any chunk makes the file unavailable as a whole.
type Exports struct {
	mu    sync.RWMutex
	jobs  map[string]*export.Job
	files *freecache.Cache

	chunkSize int
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
}

var _ ExportStore = (*Exports)(nil)

// NewExports creates an export store.
func NewExports(opts ...ExportOption) *Exports {
	cfg := exportConfig{cacheMB: defaultExportCacheMB, ttl: defaultExportTTL, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.retention <= 0 {
		cfg.retention = 2 * cfg.ttl
	}
	size := cfg.cacheMB * 1024 * 1024
	return &Exports{
		jobs:      make(map[string]*export.Job),
		files:     freecache.NewCache(size),
		chunkSize: size/1024 - chunkOverhead,
		ttl:       cfg.ttl,
		retention: cfg.retention,
		now:       cfg.now,
	}
}

// TTL returns how long stored files stay downloadable.
func (e *Exports) TTL() time.Duration { return e.ttl }

// Create implements ExportStore.Create.
func (e *Exports) Create(_ context.Context, j export.Job) error { //nolint:gocritic // hugeParam
	if err := j.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.jobs[j.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, j.ID)
	}
	stored := j
	e.jobs[j.ID] = &stored
	metrics.UpdateExportsStored(len(e.jobs))
	return nil
}

// Get implements ExportStore.Get. A ready job past its expiry is reported as expired.
func (e *Exports) Get(_ context.Context, id string) (export.Job, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	j, ok := e.jobs[id]
	if !ok {
		return export.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if j.Status == export.StatusReady && j.IsExpired(e.now()) {
		j.Expire()
	}
	return *j, nil
}

// Update implements ExportStore.Update.
func (e *Exports) Update(_ context.Context, id string, fn func(*export.Job) error) (export.Job, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	j, ok := e.jobs[id]
	if !ok {
		return export.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	next := *j
	if err := fn(&next); err != nil {
		return *j, err
	}
	*j = next
	return next, nil
}

// StoreFile implements ExportStore.StoreFile.
func (e *Exports) StoreFile(_ context.Context, id string, data []byte) error {
	expire := int(e.ttl.Seconds())
	chunks := (len(data) + e.chunkSize - 1) / e.chunkSize
	for i := 0; i < chunks; i++ {
		end := min((i+1)*e.chunkSize, len(data))
		if err := e.files.Set(chunkKey(id, i), data[i*e.chunkSize:end], expire); err != nil {
			return fmt.Errorf("store export %s chunk %d: %w", id, i, err)
		}
	}
	head := make([]byte, 16)
	binary.BigEndian.PutUint64(head, uint64(chunks))
	binary.BigEndian.PutUint64(head[8:], uint64(len(data)))
	if err := e.files.Set(headKey(id), head, expire); err != nil {
		return fmt.Errorf("store export %s: %w", id, err)
	}
	return nil
}

// File implements ExportStore.File.
func (e *Exports) File(_ context.Context, id string) ([]byte, error) {
	head, err := e.files.Get(headKey(id))
	if err != nil || len(head) != 16 {
		return nil, fmt.Errorf("%w: %s", ErrFileGone, id)
	}
	chunks := int(binary.BigEndian.Uint64(head))
	size := int(binary.BigEndian.Uint64(head[8:]))
	out := make([]byte, 0, size)
	for i := 0; i < chunks; i++ {
		part, err := e.files.Get(chunkKey(id, i))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrFileGone, id)
		}
		out = append(out, part...)
	}
	if len(out) != size {
		return nil, fmt.Errorf("%w: %s", ErrFileGone, id)
	}
	return out, nil
}

// Count implements ExportStore.Count.
func (e *Exports) Count(_ context.Context) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.jobs)
}

// List returns jobs newest first.
func (e *Exports) List(_ context.Context) []export.Job {
	e.mu.RLock()
	out := make([]export.Job, 0, len(e.jobs))
	for _, j := range e.jobs {
		out = append(out, *j)
	}
	e.mu.RUnlock()
	sort.Slice(out, func(a, b int) bool {
		if !out[a].RequestedAt.Equal(out[b].RequestedAt) {
			return out[a].RequestedAt.After(out[b].RequestedAt)
		}
		return out[a].ID < out[b].ID
	})
	return out
}

// Sweep expires ready jobs past their TTL and forgets terminal jobs older
// than the retention period. It returns the number of forgotten jobs.
func (e *Exports) Sweep(_ context.Context) int {
	now := e.now()
	e.mu.Lock()
	defer e.mu.Unlock()
	removed := 0
	for id, j := range e.jobs {
		if j.Status == export.StatusReady && j.IsExpired(now) {
			j.Expire()
		}
		if j.Terminal() && j.CompletedAt != nil && now.Sub(*j.CompletedAt) > e.retention {
			delete(e.jobs, id)
			e.files.Del(headKey(id))
			removed++
		}
	}
	metrics.UpdateExportsStored(len(e.jobs))
	return removed
}

func headKey(id string) []byte { return []byte("export:" + id) }

func chunkKey(id string, i int) []byte { return []byte(fmt.Sprintf("export:%s:%d", id, i)) }
