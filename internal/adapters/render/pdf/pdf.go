// Package pdf draws composed reports with fpdf.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
	"github.com/M3kko/nolimit-dashboard/internal/domain/report"
	"github.com/M3kko/nolimit-dashboard/pkg/metrics"
)

const creator = "nolimit-dashboard"

var (
	ErrNoPages      = errors.New("document has no pages")
	ErrUnknownImage = errors.New("image op references unknown image")
)

// Encoder turns report documents into PDF bytes.
type Encoder struct {
	compress bool
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithCompression toggles stream compression. On by default.
func WithCompression(on bool) Option {
	return func(e *Encoder) { e.compress = on }
}

// New creates an Encoder.
func New(opts ...Option) *Encoder {
	e := &Encoder{compress: true}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Encode draws every page of doc in order.
func (e *Encoder) Encode(doc report.Document) ([]byte, error) { //nolint:gocritic // hugeParam
	if len(doc.Pages) == 0 {
		return nil, ErrNoPages
	}
	start := time.Now()
	defer func() {
		metrics.RecordEncodeLatency(float64(time.Since(start).Milliseconds()))
	}()

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: doc.Width, Ht: doc.Height},
	})
	pdf.SetCompression(e.compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator(creator, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for key, img := range doc.Images {
		opts := fpdf.ImageOptions{ImageType: imageType(img.Format)}
		pdf.RegisterImageOptionsReader(key, opts, bytes.NewReader(img.Data))
		if pdf.Err() {
			return nil, fmt.Errorf("register image %s: %w", key, pdf.Error())
		}
	}

	for _, page := range doc.Pages {
		pdf.AddPage()
		for i := range page.Ops {
			if err := draw(pdf, tr, doc, &page.Ops[i]); err != nil {
				return nil, fmt.Errorf("page %d: %w", page.Number, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	metrics.RecordReportBytes(buf.Len())
	return buf.Bytes(), nil
}

func draw(pdf *fpdf.Fpdf, tr func(string) string, doc report.Document, op *report.Op) error { //nolint:gocritic // hugeParam
	switch op.Kind {
	case report.OpText:
		pdf.SetFont(op.Font.Family, op.Font.Style, op.Font.Size)
		setText(pdf, op.Color)
		pdf.SetXY(op.X, op.Y)
		pdf.CellFormat(op.W, op.H, tr(op.Text), "", 0, string(op.Align)+"M", false, 0, "")
	case report.OpRect:
		pdf.SetFillColor(int(op.Fill.R), int(op.Fill.G), int(op.Fill.B))
		pdf.Rect(op.X, op.Y, op.W, op.H, "F")
	case report.OpLine:
		pdf.SetDrawColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
		pdf.Line(op.X, op.Y, op.X2, op.Y2)
	case report.OpImage:
		img, ok := doc.Images[op.Image]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownImage, op.Image)
		}
		opts := fpdf.ImageOptions{ImageType: imageType(img.Format)}
		pdf.ImageOptions(op.Image, op.X, op.Y, op.W, op.H, false, opts, 0, "")
	}
	if pdf.Err() {
		return pdf.Error()
	}
	return nil
}

func setText(pdf *fpdf.Fpdf, c classify.RGB) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}

func imageType(format string) string {
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		return "JPG"
	default:
		return "PNG"
	}
}
