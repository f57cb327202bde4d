package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/M3kko/nolimit-dashboard/internal/domain/athlete"
	"github.com/M3kko/nolimit-dashboard/internal/domain/biometrics"
	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
	"github.com/M3kko/nolimit-dashboard/internal/domain/history"
	"github.com/M3kko/nolimit-dashboard/internal/domain/sessions"
)

// Title of every report.
const Title = "Athlete Medical Report"

const chartKey = "chart"

// Input is everything a report is composed from.
type Input struct {
	Athlete     athlete.Athlete
	Snapshot    biometrics.Snapshot
	Window      history.Window
	Daily       []history.Point
	Sessions    []sessions.Record
	Notes       []string
	GeneratedAt time.Time
}

func (in Input) validate() error {
	if len(in.Sessions) == 0 {
		return fmt.Errorf("athlete %d: %w", in.Athlete.ID, ErrNoSessions)
	}
	return nil
}

// ChartRequest asks a rasterizer for the trend chart of a window.
type ChartRequest struct {
	AthleteID int
	Window    history.Window
	Points    []history.Point
	WidthPx   int
	HeightPx  int
}

// Rasterizer turns a chart request into a bitmap.
type Rasterizer interface {
	Rasterize(ctx context.Context, req ChartRequest) (Image, error)
}

// Composer lays out reports. The zero value is not usable; use New.
type Composer struct {
	rasterizer Rasterizer
	widthPx    int
	heightPx   int
}

// New creates a Composer.
func New(opts ...Option) *Composer {
	c := &Composer{widthPx: 1200, heightPx: 600}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compose builds the report. When a rasterizer is configured exactly one chart
// request is issued; page one is laid out while it runs. A rasterization error
// aborts composition with ErrRenderFailure.
func (c *Composer) Compose(ctx context.Context, in Input) (Document, error) {
	if err := in.validate(); err != nil {
		return Document{}, err
	}
	if c.rasterizer == nil {
		return Layout(in, nil)
	}

	type result struct {
		img Image
		err error
	}
	done := make(chan result, 1)
	req := ChartRequest{
		AthleteID: in.Athlete.ID,
		Window:    in.Window,
		Points:    in.Daily,
		WidthPx:   c.widthPx,
		HeightPx:  c.heightPx,
	}
	go func() {
		img, err := c.rasterizer.Rasterize(ctx, req)
		done <- result{img: img, err: err}
	}()

	doc := newDocument(in)
	l := newLayout(&doc)
	firstPart(l, in)

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return Document{}, fmt.Errorf("%w: %w", ErrRenderFailure, ctx.Err())
	}
	if res.err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrRenderFailure, res.err)
	}
	if len(res.img.Data) == 0 {
		return Document{}, fmt.Errorf("%w: empty chart image", ErrRenderFailure)
	}

	secondPart(l, in, &res.img)
	return doc, nil
}

// Layout composes a report synchronously. A nil chart leaves a placeholder in
// the chart section.
func Layout(in Input, chart *Image) (Document, error) {
	if err := in.validate(); err != nil {
		return Document{}, err
	}
	doc := newDocument(in)
	l := newLayout(&doc)
	firstPart(l, in)
	secondPart(l, in, chart)
	return doc, nil
}

func newDocument(in Input) Document {
	return Document{
		Title:    Title,
		FileName: FileName(in.Athlete.Name, in.GeneratedAt),
		Width:    PageWidth,
		Height:   PageHeight,
		Images:   map[string]Image{},
	}
}

// FileName is <name>_medical_report_<YYYY-MM-DD>.pdf with the name lowercased.
// Runs of anything outside [a-z0-9-] become a single underscore, so the result
// is always one path element.
func FileName(name string, at time.Time) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "_"):
			b.WriteByte('_')
		}
	}
	base := strings.TrimRight(b.String(), "_")
	if base == "" {
		base = "athlete"
	}
	return fmt.Sprintf("%s_medical_report_%s.pdf", base, at.Format(time.DateOnly))
}

func firstPart(l *layout, in Input) {
	header(l, in)
	identity(l, in.Athlete)
	biometricsTable(l, in.Snapshot)
	sleepTable(l, in.Snapshot.Sleep)
	energyTable(l, in.Snapshot.Calories)
	sessionsTable(l, in.Sessions)
}

func secondPart(l *layout, in Input, chart *Image) {
	l.newPage()
	chartSection(l, in, chart)
	notesSection(l, in)
	footers(l.doc, in.GeneratedAt)
}

func header(l *layout, in Input) {
	l.rect(0, 0, PageWidth, Margin+16, classify.Ink)
	l.text(Margin, Margin-6, contentWidth, 10, Title, fontTitle, classify.White, AlignLeft)
	l.text(Margin, Margin+4, contentWidth, 6, "NoLimit Performance", fontSmall, classify.Rule, AlignLeft)
	l.text(Margin, Margin+4, contentWidth, 6, in.GeneratedAt.Format("January 2, 2006"), fontSmall, classify.Rule, AlignRight)
	l.y = Margin + 16 + sectionGap
}

// StatusColor colors an athlete status.
func StatusColor(s athlete.Status) classify.RGB {
	switch s {
	case athlete.StatusActive:
		return classify.Green
	case athlete.StatusRecovery:
		return classify.Amber
	default:
		return classify.Red
	}
}

func identity(l *layout, a athlete.Athlete) {
	const rows = 3
	l.ensure(headingSpace + rows*rowPitch + sectionGap)
	l.heading("Athlete")

	half := contentWidth / 2
	pair := func(x float64, label, value string, c classify.RGB) {
		l.text(x, l.y, 35, rowPitch, label, fontBody, classify.Muted, AlignLeft)
		l.text(x+35, l.y, half-35, rowPitch, value, fontBold, c, AlignLeft)
	}
	level := classify.ProgressLevel(a.WeeklyProgress)

	pair(Margin, "Name", a.Name, classify.Ink)
	pair(Margin+half, "Athlete ID", strconv.Itoa(a.ID), classify.Ink)
	l.y += rowPitch
	pair(Margin, "Sport", a.Sport, classify.Ink)
	pair(Margin+half, "Status", titleCase(string(a.Status)), StatusColor(a.Status))
	l.y += rowPitch
	pair(Margin, "Weekly progress", fmt.Sprintf("%d%% (%s)", a.WeeklyProgress, level), classify.LevelColor(level))
	pair(Margin+half, "Sessions / week", fmt.Sprintf("%d (%s)", a.Sessions, classify.SessionsLoad(a.Sessions)), classify.Ink)
	l.y += rowPitch + sectionGap
}

func biometricsTable(l *layout, s biometrics.Snapshot) {
	cols := []column{
		{"Metric", 60, AlignLeft},
		{"Value", 45, AlignRight},
		{"Trend", 35, AlignRight},
		{"Status", 40, AlignLeft},
	}
	var rows [][]cell
	for _, m := range s.Rows() {
		rows = append(rows, []cell{
			{text: m.Name},
			{text: formatValue(m)},
			{text: m.Trend},
			{text: titleCase(string(m.Status)), color: classify.LevelColor(m.Status), bold: true},
		})
	}
	l.table("Biometrics ("+s.Date+")", cols, rows)
}

func sleepTable(l *layout, s biometrics.Sleep) {
	cols := []column{{"Stage", 90, AlignLeft}, {"Hours", 90, AlignRight}}
	rows := [][]cell{
		{{text: "Deep"}, {text: hours(s.Deep)}},
		{{text: "REM"}, {text: hours(s.REM)}},
		{{text: "Light"}, {text: hours(s.Light)}},
		{{text: "Awake"}, {text: hours(s.Awake)}},
		{{text: "Total", bold: true}, {text: hours(s.Total), bold: true}},
		{{text: "Efficiency"}, {text: fmt.Sprintf("%d%%", s.Efficiency)}},
	}
	l.table("Sleep Breakdown", cols, rows)
}

func energyTable(l *layout, c biometrics.Calories) {
	cols := []column{{"Expenditure", 90, AlignLeft}, {"kcal", 90, AlignRight}}
	rows := [][]cell{
		{{text: "Active"}, {text: strconv.Itoa(c.Active)}},
		{{text: "Resting"}, {text: strconv.Itoa(c.Resting)}},
		{{text: "Total", bold: true}, {text: strconv.Itoa(c.Total), bold: true}},
	}
	l.table("Energy", cols, rows)
}

func sessionsTable(l *layout, log []sessions.Record) {
	cols := []column{
		{"Date", 26, AlignLeft},
		{"Session", 50, AlignLeft},
		{"Duration", 22, AlignRight},
		{"Avg HR", 18, AlignRight},
		{"Max HR", 18, AlignRight},
		{"Strain", 16, AlignRight},
		{"Zone", 30, AlignLeft},
	}
	rows := make([][]cell, 0, len(log))
	for _, r := range log {
		z := r.Zone()
		rows = append(rows, []cell{
			{text: r.Date},
			{text: r.Type},
			{text: r.Duration()},
			{text: strconv.Itoa(r.AvgHR)},
			{text: strconv.Itoa(r.MaxHR)},
			{text: strconv.FormatFloat(r.Strain, 'f', 1, 64)},
			{text: string(z), color: classify.ZoneColor(z), bold: true},
		})
	}
	l.table("Recent Sessions", cols, rows)
}

func chartSection(l *layout, in Input, chart *Image) {
	l.heading(fmt.Sprintf("Recovery & Strain Trend (%s)", in.Window))
	if chart == nil {
		l.text(Margin, l.y, contentWidth, rowPitch, "Chart not included in this export.", fontBody, classify.Muted, AlignLeft)
		l.y += rowPitch + sectionGap
		return
	}
	w, h := contentWidth, contentWidth/2
	if chart.WidthPx > 0 && chart.HeightPx > 0 {
		h = contentWidth * float64(chart.HeightPx) / float64(chart.WidthPx)
	}
	// A bitmap taller than the space left shrinks as a whole, centred.
	if room := bottomLimit - l.y; h > room {
		w *= room / h
		h = room
	}
	l.doc.Images[chartKey] = *chart
	l.image(Margin+(contentWidth-w)/2, l.y, w, h, chartKey)
	l.y += h + sectionGap
}

func notesSection(l *layout, in Input) {
	notes := in.Notes
	if len(notes) == 0 {
		notes = AutoNotes(in)
	}
	l.ensure(headingSpace + noteLine)
	l.heading("Notes")
	for _, n := range notes {
		for _, line := range Wrap(n, wrapChars) {
			l.ensure(noteLine)
			l.text(Margin, l.y, contentWidth, noteLine, line, fontBody, classify.Ink, AlignLeft)
			l.y += noteLine
		}
		l.y += 1.5
	}
}

// footers stamps every page once the page count is known.
func footers(doc *Document, at time.Time) {
	n := len(doc.Pages)
	y := PageHeight - Margin
	for i := range doc.Pages {
		p := &doc.Pages[i]
		p.Ops = append(p.Ops,
			Op{Kind: OpLine, X: Margin, Y: y - 1, X2: Margin + contentWidth, Y2: y - 1, Color: classify.Rule},
			Op{Kind: OpText, X: Margin, Y: y, W: contentWidth, H: 5, Text: "Generated " + at.Format(time.DateOnly) + " | Confidential", Font: fontSmall, Color: classify.Muted, Align: AlignLeft},
			Op{Kind: OpText, X: Margin, Y: y, W: contentWidth, H: 5, Text: fmt.Sprintf("Page %d of %d", i+1, n), Font: fontSmall, Color: classify.Muted, Align: AlignRight},
		)
	}
}

func formatValue(m biometrics.Metric) string {
	v := strconv.FormatFloat(m.Value, 'f', -1, 64)
	if m.Unit == "" {
		return v
	}
	if m.Unit == "%" {
		return v + "%"
	}
	return v + " " + m.Unit
}

func hours(h float64) string {
	return strconv.FormatFloat(h, 'f', 1, 64) + " h"
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
