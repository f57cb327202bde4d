package report

import (
	"github.com/M3kko/nolimit-dashboard/internal/domain/classify"
)

// A4 portrait in millimetres.
const (
	PageWidth  = 210.0
	PageHeight = 297.0
	Margin     = 15.0

	contentWidth = PageWidth - 2*Margin
	footerSpace  = 10.0
	bottomLimit  = PageHeight - Margin - footerSpace

	rowPitch     = 7.0
	headingSpace = 9.0
	sectionGap   = 5.0
	noteLine     = 5.0
)

const family = "Helvetica"

var (
	fontTitle   = Font{Family: family, Style: "B", Size: 18}
	fontHeading = Font{Family: family, Style: "B", Size: 12}
	fontBody    = Font{Family: family, Size: 9}
	fontBold    = Font{Family: family, Style: "B", Size: 9}
	fontSmall   = Font{Family: family, Size: 8}
)

// layout is the cursor based page writer. It starts a new page whenever a
// block does not fit above the footer area.
type layout struct {
	doc  *Document
	page int
	y    float64
}

func newLayout(doc *Document) *layout {
	l := &layout{doc: doc}
	l.newPage()
	return l
}

func (l *layout) newPage() {
	l.doc.Pages = append(l.doc.Pages, Page{Number: len(l.doc.Pages) + 1})
	l.page = len(l.doc.Pages) - 1
	l.y = Margin
}

// fits reports whether h millimetres fit on the current page.
func (l *layout) fits(h float64) bool {
	return l.y+h <= bottomLimit
}

// ensure breaks the page when h does not fit. It returns true on a break.
// A block taller than a full page is placed at the top of a fresh page.
func (l *layout) ensure(h float64) bool {
	if l.fits(h) || l.y == Margin {
		return false
	}
	l.newPage()
	return true
}

func (l *layout) add(op Op) {
	p := &l.doc.Pages[l.page]
	p.Ops = append(p.Ops, op)
}

func (l *layout) text(x, y, w, h float64, s string, f Font, c classify.RGB, a Align) {
	l.add(Op{Kind: OpText, X: x, Y: y, W: w, H: h, Text: s, Font: f, Color: c, Align: a})
}

func (l *layout) rect(x, y, w, h float64, fill classify.RGB) {
	l.add(Op{Kind: OpRect, X: x, Y: y, W: w, H: h, Fill: fill})
}

func (l *layout) line(x, y, x2, y2 float64, c classify.RGB) {
	l.add(Op{Kind: OpLine, X: x, Y: y, X2: x2, Y2: y2, Color: c})
}

func (l *layout) image(x, y, w, h float64, key string) {
	l.add(Op{Kind: OpImage, X: x, Y: y, W: w, H: h, Image: key})
}

func (l *layout) heading(title string) {
	l.text(Margin, l.y, contentWidth, 7, title, fontHeading, classify.Ink, AlignLeft)
	l.line(Margin, l.y+7.5, Margin+contentWidth, l.y+7.5, classify.Rule)
	l.y += headingSpace
}

// column of a table.
type column struct {
	title string
	width float64
	align Align
}

// cell is one table cell; a zero Color means ink.
type cell struct {
	text  string
	color classify.RGB
	bold  bool
}

func (l *layout) tableHeader(cols []column) {
	l.rect(Margin, l.y, contentWidth, rowPitch, classify.Rule)
	x := Margin
	for _, c := range cols {
		l.text(x+1.5, l.y, c.width-3, rowPitch, c.title, fontBold, classify.Ink, c.align)
		x += c.width
	}
	l.y += rowPitch
}

// table draws a titled table. The title stays with the header and the first
// row; rows that run past the page continue on the next page under a repeated
// header.
func (l *layout) table(title string, cols []column, rows [][]cell) {
	l.ensure(headingSpace + 2*rowPitch)
	l.heading(title)
	l.tableHeader(cols)
	for i, row := range rows {
		if l.ensure(rowPitch) {
			l.tableHeader(cols)
		}
		if i%2 == 1 {
			l.rect(Margin, l.y, contentWidth, rowPitch, classify.Stripe)
		}
		x := Margin
		for j, c := range row {
			col := cols[j]
			color := c.color
			if color == (classify.RGB{}) {
				color = classify.Ink
			}
			f := fontBody
			if c.bold {
				f = fontBold
			}
			l.text(x+1.5, l.y, col.width-3, rowPitch, c.text, f, color, col.align)
			x += col.width
		}
		l.y += rowPitch
	}
	l.y += sectionGap
}
