package repository

import "time"

type exportConfig struct {
	cacheMB   int
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
}

// ExportOption configures Exports.
type ExportOption func(*exportConfig)

// WithCacheSizeMB bounds the memory used by stored files.
func WithCacheSizeMB(mb int) ExportOption {
	return func(c *exportConfig) {
		if mb > 0 {
			c.cacheMB = mb
		}
	}
}

// WithTTL sets how long files stay downloadable.
func WithTTL(ttl time.Duration) ExportOption {
	return func(c *exportConfig) {
		if ttl >= time.Second {
			c.ttl = ttl
		}
	}
}

// WithRetention sets how long finished job records are kept. Defaults to twice the TTL.
func WithRetention(d time.Duration) ExportOption {
	return func(c *exportConfig) {
		if d > 0 {
			c.retention = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ExportOption {
	return func(c *exportConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// SeriesOption configures SeriesCache.
type SeriesOption func(*SeriesCache)

// WithSeriesCacheSizeMB bounds the series cache.
func WithSeriesCacheSizeMB(mb int) SeriesOption {
	return func(c *SeriesCache) {
		if mb > 0 {
			c.sizeMB = mb
		}
	}
}

// WithSeriesClock overrides time.Now when computing entry expiry.
func WithSeriesClock(now func() time.Time) SeriesOption {
	return func(c *SeriesCache) {
		if now != nil {
			c.now = now
		}
	}
}
