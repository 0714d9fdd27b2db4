package rendering

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/canvas"
	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
)

// Skill meter geometry, relative to the body width.
const (
	meterOffset   = 0.6
	meterWidth    = 0.4
	meterHeight   = 3
	starRadius    = 1.2
	starSpacing   = 3.2
	maxStars      = types.MaxSkillLevel
	headingLineLW = 2
	subRuleLW     = 0.5
	subRuleRatio  = 0.7
	sideBarWidth  = 4
	sideBarHeight = 15
)

// Section is one titled block handed to the renderer.
type Section struct {
	Title     string
	Body      string
	Lines     []string // pre-wrapped body; takes precedence over Body
	Meters    []Meter
	MeterMode types.SkillDisplayMode
	X, Y      float64
	Width     float64
	Icon      canvas.IconKind
	Accent    *canvas.Color // side bar color, primary when nil
	Continued bool          // heading already drawn on a previous page
}

// SectionResult is where the cursor ended and what did not fit on the page.
type SectionResult struct {
	Y               float64
	Remaining       []string
	RemainingMeters []Meter
	Drawn           int
}

// Overflowed reports whether part of the body is still undrawn.
func (r SectionResult) Overflowed() bool {
	return len(r.Remaining) > 0 || len(r.RemainingMeters) > 0
}

// Renderer draws single sections. It holds no per-document state.
type Renderer struct {
	Measurer layout.Measurer
	Geometry canvas.Geometry
}

// sectionPlan is a section after wrapping, before drawing.
type sectionPlan struct {
	textX     float64
	textWidth float64
	lines     []string
	meters    []Meter
}

func (r *Renderer) plan(sec Section, st *Style) (sectionPlan, error) {
	if sec.Width <= 0 {
		return sectionPlan{}, layout.NonPositive("width", sec.Width)
	}
	p := sectionPlan{textX: sec.X, textWidth: sec.Width}
	if st.Icons && sec.Icon != canvas.IconNone {
		p.textX += st.IconOffset
		p.textWidth -= st.IconOffset
	}
	if p.textWidth <= 0 {
		return sectionPlan{}, layout.NonPositive("width", p.textWidth)
	}

	if len(sec.Meters) > 0 && sec.MeterMode != types.DisplayText {
		p.meters = sec.Meters
		return p, nil
	}
	if sec.Lines != nil {
		p.lines = sec.Lines
		return p, nil
	}
	body := sec.Body
	if strings.TrimSpace(body) == "" {
		body = PlaceholderBody
	}
	lines, err := layout.WrapText(r.Measurer, st.font(fontBody), body, p.textWidth)
	if err != nil {
		return sectionPlan{}, err
	}
	p.lines = lines
	return p, nil
}

// bodyHeight is the vertical space the whole body would take.
func (p sectionPlan) bodyHeight(st *Style) float64 {
	return float64(len(p.lines)+len(p.meters)) * st.lineAdvance()
}

// Height is the anticipated height of sec from its heading baseline to the
// cursor after it, ignoring page breaks.
func (r *Renderer) Height(sec Section, st *Style) (float64, error) {
	p, err := r.plan(sec, st)
	if err != nil {
		return 0, err
	}
	h := p.bodyHeight(st) + st.SectionSpacing
	if !sec.Continued {
		h += st.BodyOffset
	}
	return h, nil
}

// RenderSection draws sec onto s. Body lines stop at the bottom margin; the
// undrawn rest is returned in the result for the caller to continue on a
// new page.
func (r *Renderer) RenderSection(s canvas.Surface, sec Section, st *Style) (SectionResult, error) {
	p, err := r.plan(sec, st)
	if err != nil {
		return SectionResult{}, err
	}

	y := sec.Y
	if !sec.Continued {
		r.drawHeading(s, sec, p, st)
		y += st.BodyOffset
	}

	g := r.Geometry
	body := st.font(fontBody)
	adv := st.lineAdvance()
	res := SectionResult{}

	for i, line := range p.lines {
		if layout.WillOverflow(y, g.Height, g.MarginBottom) {
			res.Remaining = p.lines[i:]
			res.Y = y
			return res, nil
		}
		if line != "" {
			s.Text(p.textX, y, line, body, st.Palette.Text)
		}
		y += adv
		res.Drawn++
	}
	for i, m := range p.meters {
		if layout.WillOverflow(y, g.Height, g.MarginBottom) {
			res.RemainingMeters = p.meters[i:]
			res.Y = y
			return res, nil
		}
		r.drawMeter(s, m, sec.MeterMode, p, y, st)
		y += adv
		res.Drawn++
	}

	res.Y = y + st.SectionSpacing
	return res, nil
}

func (r *Renderer) drawHeading(s canvas.Surface, sec Section, p sectionPlan, st *Style) {
	x, y, w := sec.X, sec.Y, sec.Width
	pal := st.Palette

	if st.Banded {
		canvas.DrawGradient(s, x-8, y-8, w+16, 12, pal.Light, canvas.Lerp(pal.Light, pal.Primary, 0.1), 5)
		canvas.DrawShadow(s, x-6, y-6, w+12, 8, 1)
	}
	if st.Icons {
		canvas.DrawIcon(s, sec.Icon, x+st.IconShift, y-4, st.IconSize, pal.Accent)
	}

	s.Text(p.textX, y, strings.ToUpper(sec.Title), st.font(fontSection), pal.Primary)

	switch st.Rule {
	case RuleDouble:
		s.Line(p.textX, y+2, p.textX+p.textWidth, y+2, pal.Accent, headingLineLW)
		s.Line(p.textX, y+3, p.textX+p.textWidth*subRuleRatio, y+3, pal.Secondary, subRuleLW)
	case RuleSingle:
		s.Line(x, y+2, x+w, y+2, pal.Accent, subRuleLW)
	case RuleSideBar:
		c := pal.Primary
		if sec.Accent != nil {
			c = *sec.Accent
		}
		s.FillRect(x-8, y-5, sideBarWidth, sideBarHeight, c)
	}
}

func (r *Renderer) drawMeter(s canvas.Surface, m Meter, mode types.SkillDisplayMode, p sectionPlan, y float64, st *Style) {
	pal := st.Palette
	s.Text(p.textX, y, m.Name, st.font(fontBody), pal.Text)

	level := types.ClampLevel(m.Level)
	mx := p.textX + p.textWidth*meterOffset
	switch mode {
	case types.DisplayStars:
		for i := 0; i < maxStars; i++ {
			c := pal.Light
			if i < level {
				c = pal.Primary
			}
			s.FillCircle(mx+starRadius+float64(i)*starSpacing, y-starRadius, starRadius, c)
		}
	default:
		full := p.textWidth * meterWidth
		s.FillRect(mx, y-meterHeight+0.5, full, meterHeight, pal.Light)
		s.FillRect(mx, y-meterHeight+0.5, full*float64(level)/float64(types.MaxSkillLevel), meterHeight, pal.Primary)
	}
}
