package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/coocood/freecache"

	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
	"github.com/M3kko/nolimit-dashboard/pkg/metrics"
)

const defaultSeriesCacheMB = 16

// SeriesCache keeps each athlete's generated series until the end of the UTC
// day it was generated for.
type SeriesCache struct {
	cache  *freecache.Cache
	sizeMB int
	now    func() time.Time
}

var _ SeriesStore = (*SeriesCache)(nil)

// NewSeriesCache creates a series cache.
func NewSeriesCache(opts ...SeriesOption) *SeriesCache {
	c := &SeriesCache{sizeMB: defaultSeriesCacheMB, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = freecache.NewCache(c.sizeMB * 1024 * 1024)
	return c
}

// Get implements SeriesStore.Get.
func (c *SeriesCache) Get(athleteID int, day time.Time) (history.Series, bool) {
	raw, err := c.cache.Get(seriesKey(athleteID, day))
	if err != nil {
		metrics.RecordSeriesCacheMiss()
		return history.Series{}, false
	}
	var s history.Series
	if err := json.Unmarshal(raw, &s); err != nil {
		metrics.RecordSeriesCacheMiss()
		return history.Series{}, false
	}
	metrics.RecordSeriesCacheHit()
	return s, true
}

// Put implements SeriesStore.Put. Oversized or unencodable series are not cached.
func (c *SeriesCache) Put(s history.Series, day time.Time) {
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	_ = c.cache.Set(seriesKey(s.AthleteID, day), raw, c.secondsLeft(day))
}

// secondsLeft is the time until the end of the UTC day, at least one second.
func (c *SeriesCache) secondsLeft(day time.Time) int {
	y, m, d := day.UTC().Date()
	end := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
	return max(1, int(end.Sub(c.now()).Seconds()))
}

func seriesKey(athleteID int, day time.Time) []byte {
	return []byte(fmt.Sprintf("series:%d:%s", athleteID, day.UTC().Format("20060102")))
}
