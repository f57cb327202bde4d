package chart

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png" // screenshot decoding
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/M3kko/nolimit-dashboard/internal/domain/report"
	"github.com/M3kko/nolimit-dashboard/pkg/metrics"
)

// chartRegion is the element captured on the chart page.
const chartRegion = "#charts"

// Chrome captures the chart region of the service's own chart page through a
// remote headless browser.
type Chrome struct {
	remoteURL string
	baseURL   string
}

var _ report.Rasterizer = (*Chrome)(nil)

// NewChrome creates a rasterizer talking to the devtools endpoint at
// remoteURL and loading pages from baseURL.
func NewChrome(remoteURL, baseURL string) *Chrome {
	return &Chrome{remoteURL: remoteURL, baseURL: strings.TrimRight(baseURL, "/")}
}

// PageURL is the chart page captured for req.
func (c *Chrome) PageURL(req report.ChartRequest) string {
	q := url.Values{"range": []string{req.Window.String()}}
	return fmt.Sprintf("%s/athletes/%d/charts?%s", c.baseURL, req.AthleteID, q.Encode())
}

// Rasterize implements report.Rasterizer.
func (c *Chrome) Rasterize(ctx context.Context, req report.ChartRequest) (report.Image, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRasterizeLatency(NameChrome, float64(time.Since(start).Milliseconds()))
	}()

	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, c.remoteURL)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	var shot []byte
	err := chromedp.Run(tabCtx, chromedp.Tasks{
		chromedp.EmulateViewport(int64(req.WidthPx), int64(req.HeightPx)),
		chromedp.Navigate(c.PageURL(req)),
		chromedp.WaitVisible(chartRegion, chromedp.ByQuery),
		chromedp.Screenshot(chartRegion, &shot, chromedp.NodeVisible, chromedp.ByQuery),
	})
	if err != nil {
		return report.Image{}, fmt.Errorf("capture %s: %w", chartRegion, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(shot))
	if err != nil {
		return report.Image{}, fmt.Errorf("decode screenshot: %w", err)
	}
	return report.Image{Format: "png", Data: shot, WidthPx: cfg.Width, HeightPx: cfg.Height}, nil
}
