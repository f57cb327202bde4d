// Package chart rasterizes trend charts for reports and the chart page.
package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
	"github.com/M3kko/nolimit-dashboard/internal/domain/report"
	"github.com/M3kko/nolimit-dashboard/pkg/metrics"
)

// Renderer names as used in config and metrics.
const (
	NameGoChart = "gochart"
	NameChrome  = "chrome"
)

var ErrTooFewPoints = errors.New("chart needs at least two points")

// tickEvery keeps x labels readable on the 30 day window.
const tickEvery = 5

// GoChart draws the trend chart in-process.
type GoChart struct{}

var _ report.Rasterizer = GoChart{}

// Rasterize implements report.Rasterizer.
func (GoChart) Rasterize(ctx context.Context, req report.ChartRequest) (report.Image, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRasterizeLatency(NameGoChart, float64(time.Since(start).Milliseconds()))
	}()
	if err := ctx.Err(); err != nil {
		return report.Image{}, err
	}
	data, err := Render(req.Points, req.WidthPx, req.HeightPx, gochart.PNG)
	if err != nil {
		return report.Image{}, err
	}
	return report.Image{Format: "png", Data: data, WidthPx: req.WidthPx, HeightPx: req.HeightPx}, nil
}

// SVG draws the trend chart for the chart page.
func SVG(points []history.Point, width, height int) ([]byte, error) {
	return Render(points, width, height, gochart.SVG)
}

// Render draws recovery and HRV on the left axis and strain on the right.
func Render(points []history.Point, width, height int, provider gochart.RendererProvider) ([]byte, error) {
	if len(points) < 2 {
		return nil, ErrTooFewPoints
	}
	xs := make([]float64, len(points))
	recovery := make([]float64, len(points))
	hrv := make([]float64, len(points))
	strain := make([]float64, len(points))
	ticks := make([]gochart.Tick, 0, len(points)/tickEvery+2)
	for i, p := range points {
		xs[i] = float64(i)
		recovery[i] = float64(p.Recovery)
		hrv[i] = float64(p.HRV)
		strain[i] = p.Strain
		if i%tickEvery == 0 || i == len(points)-1 {
			ticks = append(ticks, gochart.Tick{Value: float64(i), Label: p.DateShort})
		}
	}

	graph := gochart.Chart{
		Width:  width,
		Height: height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{Ticks: ticks},
		YAxis: gochart.YAxis{
			Name:  "Recovery % / HRV ms",
			Range: &gochart.ContinuousRange{Min: 0, Max: 100},
		},
		YAxisSecondary: gochart.YAxis{
			Name:  "Strain",
			Range: &gochart.ContinuousRange{Min: 0, Max: 21},
		},
		Series: []gochart.Series{
			line("Recovery", xs, recovery, classify.Green, gochart.YAxisPrimary),
			line("HRV", xs, hrv, classify.Blue, gochart.YAxisPrimary),
			line("Strain", xs, strain, classify.Amber, gochart.YAxisSecondary),
		},
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(provider, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

func line(name string, xs, ys []float64, c classify.RGB, axis gochart.YAxisType) gochart.ContinuousSeries {
	return gochart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		YAxis:   axis,
		Style: gochart.Style{
			StrokeColor: drawing.ColorFromHex(strings.TrimPrefix(c.Hex(), "#")),
			StrokeWidth: 2,
		},
	}
}
