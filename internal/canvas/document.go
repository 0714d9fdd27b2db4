// Package canvas holds the write-once display list a CV is drawn into before
// it is serialized, plus the decorative primitives built from solid shapes.
package canvas

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/cv-builder/internal/layout"
)

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// Common colors.
var (
	White = Color{255, 255, 255}
	Black = Color{0, 0, 0}
)

// RGB builds a Color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Lerp interpolates each channel as round(a*(1-t) + b*t).
func Lerp(a, b Color, t float64) Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x)*(1-t) + float64(y)*t))
	}
	return Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B)}
}

// Geometry is the fixed page size and margins, in millimetres.
type Geometry struct {
	Width        float64
	Height       float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
}

// A4 returns portrait A4 with the CV margins.
func A4() Geometry {
	return Geometry{
		Width:        210,
		Height:       297,
		MarginTop:    20,
		MarginBottom: 17,
		MarginLeft:   20,
		MarginRight:  20,
	}
}

// ContentBottom is the last Y a body line may start at.
func (g Geometry) ContentBottom() float64 {
	return g.Height - g.MarginBottom
}

// Metadata is written into the document info dictionary.
type Metadata struct {
	Title        string
	Subject      string
	Author       string
	Creator      string
	Producer     string
	Keywords     string
	CreationDate time.Time
}

// ImageType is the encoding of an embedded image.
type ImageType string

// Supported embedded image types.
const (
	ImageJPEG ImageType = "JPG"
	ImagePNG  ImageType = "PNG"
)

// Image is a named raster registered once and placed by Image ops.
type Image struct {
	Name string
	Type ImageType
	Data []byte
}

// Document is a sequence of pages of drawing ops. Pages are created on first use.
type Document struct {
	Geometry Geometry
	Metadata Metadata

	pages  []*Page
	images map[string]Image
}

// NewDocument creates an empty document with the given geometry.
func NewDocument(g Geometry) *Document {
	return &Document{Geometry: g, images: map[string]Image{}}
}

// Page returns page i (0-based), creating any missing pages up to it.
func (d *Document) Page(i int) *Page {
	for len(d.pages) <= i {
		d.pages = append(d.pages, &Page{Index: len(d.pages)})
	}
	return d.pages[i]
}

// Pages returns all pages in order.
func (d *Document) Pages() []*Page {
	return d.pages
}

// PageCount returns the number of pages created so far.
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Mark is a snapshot of how far the display list extends.
type Mark struct {
	ops []int
}

// Mark records the current page count and the op count of every page.
func (d *Document) Mark() Mark {
	m := Mark{ops: make([]int, len(d.pages))}
	for i, p := range d.pages {
		m.ops[i] = len(p.Ops)
	}
	return m
}

// Rollback discards every page and op added since m was taken.
func (d *Document) Rollback(m Mark) {
	if len(d.pages) > len(m.ops) {
		d.pages = d.pages[:len(m.ops)]
	}
	for i, p := range d.pages {
		if len(p.Ops) > m.ops[i] {
			p.Ops = p.Ops[:m.ops[i]]
		}
	}
}

// AddImage registers img under its name, replacing any previous one.
func (d *Document) AddImage(img Image) {
	d.images[img.Name] = img
}

// Images returns the registered images sorted by name.
func (d *Document) Images() []Image {
	out := make([]Image, 0, len(d.images))
	for _, img := range d.images {
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Texts returns every drawn string across all pages, in draw order.
func (d *Document) Texts() []string {
	var out []string
	for _, p := range d.pages {
		out = append(out, p.Texts()...)
	}
	return out
}

// ContainsText reports whether any drawn string contains s.
func (d *Document) ContainsText(s string) bool {
	for _, t := range d.Texts() {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

// OpKind tags a drawing op.
type OpKind string

// Drawing op kinds.
const (
	OpFillRect   OpKind = "fill_rect"
	OpStrokeRect OpKind = "stroke_rect"
	OpFillCircle OpKind = "fill_circle"
	OpCircle     OpKind = "stroke_circle"
	OpLine       OpKind = "line"
	OpText       OpKind = "text"
	OpAlpha      OpKind = "alpha"
	OpImage      OpKind = "image"
)

// Op is one recorded drawing call. Which fields matter depends on Kind.
type Op struct {
	Kind      OpKind
	X, Y      float64
	W, H      float64 // rect and image size
	X2, Y2    float64 // line end
	R         float64 // circle radius
	Color     Color
	LineWidth float64
	Alpha     float64
	Text      string
	Font      layout.Font
	Image     string
}

// Surface is what primitives and section renderers draw on.
type Surface interface {
	FillRect(x, y, w, h float64, c Color)
	StrokeRect(x, y, w, h float64, c Color, lineWidth float64)
	FillCircle(x, y, r float64, c Color)
	StrokeCircle(x, y, r float64, c Color, lineWidth float64)
	Line(x1, y1, x2, y2 float64, c Color, lineWidth float64)
	Text(x, y float64, text string, font layout.Font, c Color)
	SetAlpha(alpha float64)
	Image(name string, x, y, w, h float64)
}

// Page records ops in draw order.
type Page struct {
	Index int
	Ops   []Op
}

var _ Surface = (*Page)(nil)

// FillRect implements Surface.
func (p *Page) FillRect(x, y, w, h float64, c Color) {
	p.Ops = append(p.Ops, Op{Kind: OpFillRect, X: x, Y: y, W: w, H: h, Color: c})
}

// StrokeRect implements Surface.
func (p *Page) StrokeRect(x, y, w, h float64, c Color, lineWidth float64) {
	p.Ops = append(p.Ops, Op{Kind: OpStrokeRect, X: x, Y: y, W: w, H: h, Color: c, LineWidth: lineWidth})
}

// FillCircle implements Surface.
func (p *Page) FillCircle(x, y, r float64, c Color) {
	p.Ops = append(p.Ops, Op{Kind: OpFillCircle, X: x, Y: y, R: r, Color: c})
}

// StrokeCircle implements Surface.
func (p *Page) StrokeCircle(x, y, r float64, c Color, lineWidth float64) {
	p.Ops = append(p.Ops, Op{Kind: OpCircle, X: x, Y: y, R: r, Color: c, LineWidth: lineWidth})
}

// Line implements Surface.
func (p *Page) Line(x1, y1, x2, y2 float64, c Color, lineWidth float64) {
	p.Ops = append(p.Ops, Op{Kind: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, Color: c, LineWidth: lineWidth})
}

// Text implements Surface.
func (p *Page) Text(x, y float64, text string, font layout.Font, c Color) {
	p.Ops = append(p.Ops, Op{Kind: OpText, X: x, Y: y, Text: text, Font: font, Color: c})
}

// SetAlpha implements Surface.
func (p *Page) SetAlpha(alpha float64) {
	p.Ops = append(p.Ops, Op{Kind: OpAlpha, Alpha: alpha})
}

// Image implements Surface.
func (p *Page) Image(name string, x, y, w, h float64) {
	p.Ops = append(p.Ops, Op{Kind: OpImage, Image: name, X: x, Y: y, W: w, H: h})
}

// Texts returns the strings drawn on this page.
func (p *Page) Texts() []string {
	var out []string
	for _, op := range p.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// TextOps returns the text ops drawn on this page.
func (p *Page) TextOps() []Op {
	var out []Op
	for _, op := range p.Ops {
		if op.Kind == OpText {
			out = append(out, op)
		}
	}
	return out
}
