package rendering

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/canvas"
	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
)

// continuationGap is added to the top margin when a column continues on a new page.
const continuationGap = 8

// minKeptLines is how many body lines must fit under a heading before the
// heading is allowed to stay at the bottom of a page.
const minKeptLines = 2

// footerFormat is drawn centered at the bottom of every page.
const footerFormat = "Página %d de %d"

// InstructionKind tags a render instruction.
type InstructionKind int

// Instruction kinds.
const (
	PlaceSection InstructionKind = iota
	AlignColumns
)

func (k InstructionKind) String() string {
	switch k {
	case PlaceSection:
		return "place"
	case AlignColumns:
		return "align"
	}
	return "unknown"
}

// Column selects a cursor.
type Column int

// Columns of a two-column layout. Single-column templates only use Left.
const (
	Left Column = iota
	Right
)

func (c Column) String() string {
	if c == Right {
		return "right"
	}
	return "left"
}

// Instruction is one step of a layout plan.
type Instruction struct {
	Kind   InstructionKind
	Block  Block
	Column Column
	X      float64
	Width  float64
	Accent *canvas.Color
}

// Cursor is a vertical position on a given page.
type Cursor struct {
	Page int
	Y    float64
}

func (c Cursor) after(o Cursor) bool {
	if c.Page != o.Page {
		return c.Page > o.Page
	}
	return c.Y > o.Y
}

// Cursors is the fold state: one cursor per column.
type Cursors struct {
	Left  Cursor
	Right Cursor
}

func (c Cursors) get(col Column) Cursor {
	if col == Right {
		return c.Right
	}
	return c.Left
}

func (c Cursors) with(col Column, cur Cursor) Cursors {
	if col == Right {
		c.Right = cur
	} else {
		c.Left = cur
	}
	return c
}

// Placement records where a section ended up.
type Placement struct {
	Key       string
	Title     string
	Column    Column
	Page      int
	StartY    float64
	EndPage   int
	EndY      float64
	Lines     int
	Continued int // number of page breaks inside the section
}

// Report summarizes one render.
type Report struct {
	Template   TemplateID
	Placements []Placement
	Skipped    []string
	Pages      int
}

// Engine lays a CV out with one template. An Engine has no per-document
// state and may be shared across goroutines.
type Engine struct {
	style    *Style
	measurer layout.Measurer
	logger   *zap.Logger
}

// NewEngine returns the engine for id. The measurer must match the backend
// the document will be written with.
func NewEngine(id TemplateID, m layout.Measurer, logger *zap.Logger) (*Engine, error) {
	st, err := Lookup(id)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		style:    st,
		measurer: m,
		logger:   logger.With(zap.String("template", string(id))),
	}, nil
}

// Style returns the template descriptor.
func (e *Engine) Style() *Style {
	return e.style
}

// Plan returns the ordered instructions for data without drawing anything.
func (e *Engine) Plan(data *types.CVData, opts Options) []Instruction {
	return e.style.Arrange(buildBlocks(data, opts, e.style), e.style)
}

// Render draws data into doc: header, then every planned section, then the
// page footers. A section that fails to lay out is logged and skipped.
func (e *Engine) Render(doc *canvas.Document, data *types.CVData, opts Options) (*Report, error) {
	if doc == nil || data == nil {
		return nil, &RenderError{Message: "nil document or data"}
	}
	st := e.style

	info := HeaderInfo{
		Name:    orDefault(data.Personal.FullName, PlaceholderName),
		Title:   orDefault(data.Personal.DesiredTitle, PlaceholderTitle),
		Contact: ContactLine(data.Personal),
		Photo:   registerPhoto(doc, data.ProfilePhoto),
	}
	st.Header(doc.Page(0), e.measurer, doc.Geometry, info, st)

	report := &Report{Template: st.ID}
	cur := Cursors{
		Left:  Cursor{Y: st.BodyTop},
		Right: Cursor{Y: st.BodyTop},
	}
	for _, ins := range e.Plan(data, opts) {
		next, placement, err := e.Step(doc, cur, ins)
		if err != nil {
			var le *LayoutError
			if !errors.As(err, &le) {
				return nil, &RenderError{Message: "step failed", Cause: err}
			}
			e.logger.Warn("section skipped", zap.String("section", le.Section), zap.Error(err))
			report.Skipped = append(report.Skipped, ins.Block.Key)
			continue
		}
		cur = next
		if ins.Kind == PlaceSection {
			report.Placements = append(report.Placements, placement)
		}
	}

	e.drawFooters(doc)
	report.Pages = doc.PageCount()
	e.logger.Debug("layout complete",
		zap.Int("pages", report.Pages),
		zap.Int("sections", len(report.Placements)),
		zap.Int("skipped", len(report.Skipped)))
	return report, nil
}

// Step applies one instruction to the cursors. It draws into doc and never
// panics; failures come back as *LayoutError with the cursors unchanged and
// anything the failed section drew removed again.
func (e *Engine) Step(doc *canvas.Document, cur Cursors, ins Instruction) (next Cursors, p Placement, err error) {
	mark := doc.Mark()
	defer func() {
		if r := recover(); r != nil {
			next, p = cur, Placement{}
			err = &LayoutError{Section: ins.Block.Key, Message: fmt.Sprintf("panic: %v", r)}
		}
		if err != nil {
			doc.Rollback(mark)
		}
	}()

	switch ins.Kind {
	case AlignColumns:
		m := cur.Left
		if cur.Right.after(m) {
			m = cur.Right
		}
		return Cursors{Left: m, Right: m}, Placement{}, nil
	case PlaceSection:
		return e.placeSection(doc, cur, ins)
	}
	return cur, Placement{}, &LayoutError{Section: ins.Block.Key, Message: fmt.Sprintf("unknown instruction %d", ins.Kind)}
}

func (e *Engine) placeSection(doc *canvas.Document, cur Cursors, ins Instruction) (Cursors, Placement, error) {
	st := e.style
	g := doc.Geometry
	r := &Renderer{Measurer: e.measurer, Geometry: g}
	b := ins.Block
	at := cur.get(ins.Column)

	sec := Section{
		Title:     b.Title,
		Body:      b.Body,
		Meters:    b.Meters,
		MeterMode: b.MeterMode,
		X:         ins.X,
		Y:         at.Y,
		Width:     ins.Width,
		Icon:      b.Icon,
		Accent:    ins.Accent,
	}
	height, err := r.Height(sec, st)
	if err != nil {
		return cur, Placement{}, &LayoutError{Section: b.Key, Message: "measure", Cause: err}
	}

	top := e.continuationTop(g)
	if e.moveToNextPage(at, height, g) {
		at = Cursor{Page: at.Page + 1, Y: top}
		sec.Y = top
	}

	p := Placement{Key: b.Key, Title: b.Title, Column: ins.Column, Page: at.Page, StartY: at.Y}
	page := at.Page
	for {
		res, err := r.RenderSection(doc.Page(page), sec, st)
		if err != nil {
			return cur, Placement{}, &LayoutError{Section: b.Key, Message: "render", Cause: err}
		}
		p.Lines += res.Drawn
		if !res.Overflowed() {
			p.EndPage, p.EndY = page, res.Y
			return cur.with(ins.Column, Cursor{Page: page, Y: res.Y}), p, nil
		}
		if res.Drawn == 0 && sec.Continued {
			return cur, Placement{}, &LayoutError{Section: b.Key, Message: "continuation does not fit an empty page"}
		}
		page++
		p.Continued++
		sec = Section{
			Lines:     res.Remaining,
			Meters:    res.RemainingMeters,
			MeterMode: b.MeterMode,
			X:         ins.X,
			Y:         top,
			Width:     ins.Width,
			Icon:      b.Icon,
			Accent:    ins.Accent,
			Continued: true,
		}
	}
}

// moveToNextPage keeps a section together when it would straddle the page
// break but fits on a fresh page, and never leaves a heading stranded with
// fewer than minKeptLines lines under it. A section already at the top of a
// page always starts there.
func (e *Engine) moveToNextPage(at Cursor, height float64, g canvas.Geometry) bool {
	bottom := g.ContentBottom()
	if at.Y <= e.pageTop(at.Page, g) || at.Y+height <= bottom {
		return false
	}
	st := e.style
	fitsFresh := e.continuationTop(g)+height <= bottom
	headFits := at.Y+st.BodyOffset+float64(minKeptLines)*st.lineAdvance() <= bottom
	return fitsFresh || !headFits
}

func (e *Engine) pageTop(page int, g canvas.Geometry) float64 {
	if page == 0 {
		return e.style.BodyTop
	}
	return e.continuationTop(g)
}

func (e *Engine) continuationTop(g canvas.Geometry) float64 {
	return g.MarginTop + continuationGap
}

func (e *Engine) drawFooters(doc *canvas.Document) {
	st := e.style
	g := doc.Geometry
	font := st.font(fontSmall)
	total := doc.PageCount()
	for _, page := range doc.Pages() {
		text := fmt.Sprintf(footerFormat, page.Index+1, total)
		x := (g.Width - e.measurer.StringWidth(font, text)) / 2
		page.Text(x, g.Height-8, text, font, st.Palette.Accent)
	}
}

// IsFooter reports whether text is a page footer drawn by the engine.
func IsFooter(text string) bool {
	var n, total int
	_, err := fmt.Sscanf(text, footerFormat, &n, &total)
	return err == nil && strings.HasPrefix(text, "Página ")
}

func registerPhoto(doc *canvas.Document, photo *types.Photo) string {
	if photo == nil || len(photo.Data) == 0 {
		return ""
	}
	var t canvas.ImageType
	switch strings.ToLower(photo.MimeType) {
	case "image/png":
		t = canvas.ImagePNG
	case "image/jpeg", "image/jpg":
		t = canvas.ImageJPEG
	default:
		return ""
	}
	doc.AddImage(canvas.Image{Name: photoImageName, Type: t, Data: photo.Data})
	return photoImageName
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
