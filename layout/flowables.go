package layout

import "github.com/ByLCY/cvpress/markup"

// Flowable is a unit of content placed into the page frame in story order.
// Implementations: *Paragraph, Spacer, HRule, *Image, *Table.
type Flowable interface {
	flowable()
}

// Paragraph is styled text. Spans take precedence over Markup when set.
type Paragraph struct {
	Markup string
	Spans  []markup.Span
	Style  string
}

// Spacer reserves vertical space (mm). Width only matters inside tables.
type Spacer struct {
	Width  float64
	Height float64
}

// HRule is a horizontal rule. Width is a percentage of the frame width;
// Thickness and spacing are in points.
type HRule struct {
	Width       float64
	Thickness   float64
	Color       string
	SpaceBefore float64
	SpaceAfter  float64
}

// Image places a picture. Name refers to a theme image resource whose size
// and optional flag are used unless overridden here; Src is a direct path.
type Image struct {
	Name     string
	Src      string
	Width    float64
	Height   float64
	Optional bool
}

// Table is a grid of cells; each cell holds one flowable or nil.
// ColWidths are mm; 0 shares the remaining frame width equally.
type Table struct {
	Rows      [][]Flowable
	ColWidths []float64
	Style     TableStyle
}

// TableStyle applies to every cell. Padding is in points.
type TableStyle struct {
	VAlign     string // top | middle | bottom
	Align      string // left | center | right, for images
	Padding    Padding
	Background string
}

// Padding in points.
type Padding struct {
	Top, Right, Bottom, Left float64
}

// NewParagraph is a shorthand for a markup paragraph.
func NewParagraph(text, style string) *Paragraph {
	return &Paragraph{Markup: text, Style: style}
}

func (*Paragraph) flowable() {}
func (Spacer) flowable()     {}
func (HRule) flowable()      {}
func (*Image) flowable()     {}
func (*Table) flowable()     {}
