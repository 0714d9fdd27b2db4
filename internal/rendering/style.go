package rendering

import (
	"sort"
	"strings"

	"github.com/jonathan/cv-builder/internal/canvas"
	"github.com/jonathan/cv-builder/internal/layout"
)

// TemplateID names a registered template.
type TemplateID string

// Registered templates.
const (
	Modern   TemplateID = "modern"
	Classic  TemplateID = "classic"
	Creative TemplateID = "creative"
)

// DefaultTemplate is used when a caller asks for an unknown template.
const DefaultTemplate = Modern

const fontFamily = "Helvetica"

// Palette is the five colors every template is drawn with.
type Palette struct {
	Primary   canvas.Color
	Secondary canvas.Color
	Accent    canvas.Color
	Text      canvas.Color
	Light     canvas.Color
}

// FontSizes are in points.
type FontSizes struct {
	Name    float64
	Title   float64
	Section float64
	Body    float64
	Small   float64
}

// RuleKind is how a section heading is underlined.
type RuleKind int

// Heading rules.
const (
	RuleDouble RuleKind = iota
	RuleSingle
	RuleSideBar
)

// ColumnGeometry places the left and right columns. Single-column templates
// leave RightWidth at zero.
type ColumnGeometry struct {
	LeftX      float64
	LeftWidth  float64
	RightX     float64
	RightWidth float64
}

// SectionLook is the heading text and glyph of one section in a template.
type SectionLook struct {
	Title string
	Icon  canvas.IconKind
}

// HeaderInfo is what a header hook draws.
type HeaderInfo struct {
	Name    string
	Title   string
	Contact string
	Photo   string // registered image name, empty when there is no photo
}

// HeaderFunc draws the template header on the first page.
type HeaderFunc func(s canvas.Surface, m layout.Measurer, g canvas.Geometry, h HeaderInfo, st *Style)

// ArrangeFunc turns content blocks into ordered placement instructions.
type ArrangeFunc func(blocks []Block, st *Style) []Instruction

// OptionalFormatter renders the non-blank entries of an optional section as body text.
type OptionalFormatter func(entries []Entry) string

// Style is everything that distinguishes one template from another.
type Style struct {
	ID          TemplateID
	Name        string
	Description string

	Palette    Palette
	Sizes      FontSizes
	LineHeight float64

	// SectionSpacing is added after a section body. BodyOffset is the gap
	// between the heading baseline and the first body line.
	SectionSpacing float64
	BodyOffset     float64

	Banded     bool // gradient band and shadow behind headings
	Icons      bool
	IconShift  float64 // icon X relative to the section X
	IconSize   float64
	IconOffset float64 // title and body indent when an icon is drawn
	Rule       RuleKind

	BodyTop         float64
	Columns         ColumnGeometry
	OptionalColumns ColumnGeometry
	SectionColors   []canvas.Color // side-bar rotation for optional sections

	Sections       map[string]SectionLook
	Header         HeaderFunc
	Arrange        ArrangeFunc
	FormatOptional map[string]OptionalFormatter
}

type fontRole int

const (
	fontName fontRole = iota
	fontTitle
	fontSection
	fontBody
	fontBodyBold
	fontSmall
)

func (st *Style) font(role fontRole) layout.Font {
	switch role {
	case fontName:
		return layout.Font{Family: fontFamily, Style: "B", Size: st.Sizes.Name}
	case fontTitle:
		return layout.Font{Family: fontFamily, Size: st.Sizes.Title}
	case fontSection:
		return layout.Font{Family: fontFamily, Style: "B", Size: st.Sizes.Section}
	case fontBodyBold:
		return layout.Font{Family: fontFamily, Style: "B", Size: st.Sizes.Body}
	case fontSmall:
		return layout.Font{Family: fontFamily, Style: "I", Size: st.Sizes.Small}
	default:
		return layout.Font{Family: fontFamily, Size: st.Sizes.Body}
	}
}

// lineAdvance is the height of one body line in millimetres.
func (st *Style) lineAdvance() float64 {
	return layout.LineAdvance(st.font(fontBody), st.LineHeight)
}

func (st *Style) look(key string) SectionLook {
	if l, ok := st.Sections[key]; ok {
		return l
	}
	return SectionLook{Title: strings.ToUpper(key)}
}

var registry = map[TemplateID]*Style{
	Modern:   modernStyle(),
	Classic:  classicStyle(),
	Creative: creativeStyle(),
}

// Lookup returns the style registered under id.
func Lookup(id TemplateID) (*Style, error) {
	st, ok := registry[id]
	if !ok {
		return nil, &UnknownTemplateError{ID: string(id)}
	}
	return st, nil
}

// TemplateIDs lists the registered templates in a stable order.
func TemplateIDs() []TemplateID {
	ids := make([]TemplateID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return templateOrder(ids[i]) < templateOrder(ids[j]) })
	return ids
}

func templateOrder(id TemplateID) int {
	switch id {
	case Modern:
		return 0
	case Classic:
		return 1
	case Creative:
		return 2
	}
	return 3
}
