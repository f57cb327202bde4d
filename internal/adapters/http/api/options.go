package api

import "github.com/M3kko/nolimit-dashboard/internal/domain/history"

type options struct {
	defaultWindow history.Window
	chartWidth    int
	chartHeight   int
}

// Option configures the Server.
type Option func(*options)

// WithDefaultWindow sets the window used when ?range= is absent.
func WithDefaultWindow(w history.Window) Option {
	return func(o *options) {
		if w > 0 {
			o.defaultWindow = w
		}
	}
}

// WithChartSize sets the pixel size of the chart page.
func WithChartSize(width, height int) Option {
	return func(o *options) {
		if width > 0 && height > 0 {
			o.chartWidth, o.chartHeight = width, height
		}
	}
}
