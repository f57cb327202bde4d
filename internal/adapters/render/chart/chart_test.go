package chart

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
	"github.com/M3kko/nolimit-dashboard/internal/domain/report"
)

func points() []history.Point {
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return history.Generate(1, today, history.NewSource(42)).Window(history.Window14)
}

func TestGoChartRasterize(t *testing.T) {
	img, err := GoChart{}.Rasterize(context.Background(), report.ChartRequest{
		AthleteID: 1, Window: history.Window14, Points: points(), WidthPx: 800, HeightPx: 400,
	})
	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)

	cfg, err := png.DecodeConfig(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 400, cfg.Height)
}

func TestGoChartCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GoChart{}.Rasterize(ctx, report.ChartRequest{Points: points(), WidthPx: 800, HeightPx: 400})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSVG(t *testing.T) {
	out, err := SVG(points(), 600, 300)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<svg")

	_, err = SVG(points()[:1], 600, 300)
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestChromePageURL(t *testing.T) {
	c := NewChrome("ws://127.0.0.1:9222", "http://dashboard:9080/")
	got := c.PageURL(report.ChartRequest{AthleteID: 6, Window: history.Window7})
	assert.Equal(t, "http://dashboard:9080/athletes/6/charts?range=7d", got)
}
