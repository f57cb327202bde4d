// Package report composes the athlete medical report as a backend-neutral
// sequence of pages and drawing operations.
package report

import (
	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
)

// OpKind enumerates the drawing primitives.
type OpKind int

const (
	OpText OpKind = iota
	OpRect
	OpLine
	OpImage
)

func (k OpKind) String() string {
	switch k {
	case OpText:
		return "text"
	case OpRect:
		return "rect"
	case OpLine:
		return "line"
	case OpImage:
		return "image"
	}
	return "unknown"
}

// Font selects a face. Style is "" or "B".
type Font struct {
	Family string
	Style  string
	Size   float64 // points
}

// Align of a text op within its box.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// Op is one positioned drawing operation. Coordinates are millimetres from
// the top-left corner of the page.
//
//   - text:  Text drawn in the box X,Y,W,H using Font, Color and Align.
//   - rect:  box X,Y,W,H filled with Fill.
//   - line:  from X,Y to X2,Y2 stroked with Color.
//   - image: Image key drawn into box X,Y,W,H.
type Op struct {
	Kind  OpKind
	X, Y  float64
	W, H  float64
	X2    float64
	Y2    float64
	Text  string
	Font  Font
	Align Align
	Color classify.RGB
	Fill  classify.RGB
	Image string
}

// Page is one page of a document.
type Page struct {
	Number int
	Ops    []Op
}

// Image is an encoded bitmap referenced by image ops.
type Image struct {
	Format   string // "png" or "jpeg"
	Data     []byte
	WidthPx  int
	HeightPx int
}

// Document is a composed report.
type Document struct {
	Title    string
	FileName string
	Width    float64
	Height   float64
	Pages    []Page
	Images   map[string]Image
}

// Texts returns the text of every text op on a page, in drawing order.
func (p Page) Texts() []string {
	var out []string
	for _, op := range p.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}
