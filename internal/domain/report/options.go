package report

// Option configures a Composer.
type Option func(*Composer)

// WithRasterizer sets the chart backend. Without one the chart section holds a placeholder.
func WithRasterizer(r Rasterizer) Option {
	return func(c *Composer) {
		c.rasterizer = r
	}
}

// WithChartSize sets the requested chart size in pixels.
func WithChartSize(widthPx, heightPx int) Option {
	return func(c *Composer) {
		if widthPx > 0 && heightPx > 0 {
			c.widthPx = widthPx
			c.heightPx = heightPx
		}
	}
}
