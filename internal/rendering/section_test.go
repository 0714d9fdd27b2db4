package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-builder/internal/canvas"
	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
)

func newTestRenderer() *Renderer {
	return &Renderer{Measurer: testMeasurer, Geometry: canvas.A4()}
}

func mustStyle(t *testing.T, id TemplateID) *Style {
	t.Helper()
	st, err := Lookup(id)
	require.NoError(t, err)
	return st
}

func opsOfKind(p *canvas.Page, kind canvas.OpKind) []canvas.Op {
	var out []canvas.Op
	for _, op := range p.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

func TestRenderSection_ZeroWidth(t *testing.T) {
	_, err := newTestRenderer().RenderSection(&canvas.Page{}, Section{Title: "X", Body: "y"}, mustStyle(t, Classic))
	var cfg *layout.InvalidLayoutConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Contains(t, cfg.Message, "width")
}

func TestRenderSection_BlankBodyUsesPlaceholder(t *testing.T) {
	p := &canvas.Page{}
	res, err := newTestRenderer().RenderSection(p, Section{Title: "idiomas", Body: "   ", X: 20, Y: 100, Width: 170}, mustStyle(t, Classic))
	require.NoError(t, err)

	assert.Equal(t, []string{"IDIOMAS", PlaceholderBody}, p.Texts())
	assert.Equal(t, 1, res.Drawn)
	assert.False(t, res.Overflowed())
}

func TestRenderSection_ReturnsNewY(t *testing.T) {
	st := mustStyle(t, Classic)
	res, err := newTestRenderer().RenderSection(&canvas.Page{}, Section{Title: "A", Body: "uno\ndos", X: 20, Y: 100, Width: 170}, st)
	require.NoError(t, err)

	want := 100 + st.BodyOffset + 2*st.lineAdvance() + st.SectionSpacing
	assert.InDelta(t, want, res.Y, 1e-9)

	h, err := newTestRenderer().Height(Section{Title: "A", Body: "uno\ndos", X: 20, Y: 100, Width: 170}, st)
	require.NoError(t, err)
	assert.InDelta(t, want-100, h, 1e-9)
}

func TestRenderSection_ModernHeading(t *testing.T) {
	st := mustStyle(t, Modern)
	p := &canvas.Page{}
	_, err := newTestRenderer().RenderSection(p, Section{
		Title: "experiencia profesional", Body: "Dev", X: 20, Y: 70, Width: 80, Icon: canvas.IconBriefcase,
	}, st)
	require.NoError(t, err)

	texts := p.TextOps()
	require.Len(t, texts, 2)
	assert.Equal(t, "EXPERIENCIA PROFESIONAL", texts[0].Text)
	assert.Equal(t, 28.0, texts[0].X)
	assert.Equal(t, st.Palette.Primary, texts[0].Color)
	assert.Equal(t, 80.0, texts[1].Y)

	lines := opsOfKind(p, canvas.OpLine)
	require.Len(t, lines, 2)
	assert.Equal(t, 2.0, lines[0].LineWidth)
	assert.Equal(t, st.Palette.Accent, lines[0].Color)
	assert.Equal(t, 100.0, lines[0].X2)
	assert.Equal(t, 0.5, lines[1].LineWidth)
	assert.InDelta(t, 28+72*0.7, lines[1].X2, 1e-9)

	// Band gradient behind the heading plus the briefcase outline.
	assert.Len(t, opsOfKind(p, canvas.OpStrokeRect), 2)
	assert.GreaterOrEqual(t, len(opsOfKind(p, canvas.OpFillRect)), 6)
}

func TestRenderSection_ClassicHasNoIcons(t *testing.T) {
	p := &canvas.Page{}
	_, err := newTestRenderer().RenderSection(p, Section{
		Title: "EDUCACIÓN", Body: "UNAM", X: 20, Y: 70, Width: 170, Icon: canvas.IconGraduation,
	}, mustStyle(t, Classic))
	require.NoError(t, err)

	assert.Empty(t, opsOfKind(p, canvas.OpCircle))
	lines := opsOfKind(p, canvas.OpLine)
	require.Len(t, lines, 1)
	assert.Equal(t, 20.0, lines[0].X)
	assert.Equal(t, 190.0, lines[0].X2)
	assert.Equal(t, 72.0, lines[0].Y)
	assert.Equal(t, 20.0, p.TextOps()[0].X)
}

func TestRenderSection_CreativeSideBar(t *testing.T) {
	st := mustStyle(t, Creative)
	accent := st.Palette.Secondary
	p := &canvas.Page{}
	_, err := newTestRenderer().RenderSection(p, Section{
		Title: "HABILIDADES", Body: "Go", X: 115, Y: 80, Width: 75, Accent: &accent,
	}, st)
	require.NoError(t, err)

	rects := opsOfKind(p, canvas.OpFillRect)
	require.Len(t, rects, 1)
	assert.Equal(t, canvas.Op{Kind: canvas.OpFillRect, X: 107, Y: 75, W: 4, H: 15, Color: accent}, rects[0])
	assert.Empty(t, opsOfKind(p, canvas.OpLine))
}

func TestRenderSection_StopsAtBottomMargin(t *testing.T) {
	st := mustStyle(t, Classic)
	p := &canvas.Page{}
	res, err := newTestRenderer().RenderSection(p, Section{
		Title: "A", Lines: []string{"1", "2", "3", "4", "5", "6"}, X: 20, Y: 260, Width: 170,
	}, st)
	require.NoError(t, err)

	require.True(t, res.Overflowed())
	assert.Equal(t, 3, res.Drawn)
	assert.Equal(t, []string{"4", "5", "6"}, res.Remaining)
	for _, op := range p.TextOps() {
		assert.LessOrEqual(t, op.Y, 280.0)
	}
}

func TestRenderSection_ContinuedSkipsHeading(t *testing.T) {
	p := &canvas.Page{}
	res, err := newTestRenderer().RenderSection(p, Section{
		Title: "A", Lines: []string{"x", "y"}, X: 20, Y: 28, Width: 170, Continued: true,
	}, mustStyle(t, Classic))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, p.Texts())
	assert.Equal(t, 28.0, p.TextOps()[0].Y)
	assert.Equal(t, 2, res.Drawn)
}

func TestRenderSection_Meters(t *testing.T) {
	st := mustStyle(t, Modern)
	meters := []Meter{{Name: "Go", Level: 4}, {Name: "SQL", Level: 9}}

	t.Run("bars", func(t *testing.T) {
		p := &canvas.Page{}
		_, err := newTestRenderer().RenderSection(p, Section{
			Title: "HABILIDADES", Meters: meters, MeterMode: types.DisplayBars, X: 115, Y: 70, Width: 80,
		}, st)
		require.NoError(t, err)

		var bars []canvas.Op
		for _, r := range opsOfKind(p, canvas.OpFillRect) {
			if r.X == 115+80*0.6 {
				bars = append(bars, r)
			}
		}
		require.Len(t, bars, 4)
		assert.InDelta(t, 32.0, bars[0].W, 1e-9)
		assert.InDelta(t, 32.0*4/5, bars[1].W, 1e-9)
		assert.InDelta(t, 32.0, bars[3].W, 1e-9)
	})

	t.Run("stars", func(t *testing.T) {
		p := &canvas.Page{}
		_, err := newTestRenderer().RenderSection(p, Section{
			Title: "HABILIDADES", Meters: meters, MeterMode: types.DisplayStars, X: 115, Y: 70, Width: 80,
		}, st)
		require.NoError(t, err)

		circles := opsOfKind(p, canvas.OpFillCircle)
		require.Len(t, circles, 10)
		var filled int
		for _, c := range circles {
			if c.Color == st.Palette.Primary {
				filled++
			}
		}
		assert.Equal(t, 9, filled)
	})
}

func TestRenderSection_UnknownIconIgnored(t *testing.T) {
	p := &canvas.Page{}
	_, err := newTestRenderer().RenderSection(p, Section{
		Title: "A", Body: "b", X: 20, Y: 70, Width: 80, Icon: "rocket",
	}, mustStyle(t, Modern))
	require.NoError(t, err)
	assert.Equal(t, "A", p.TextOps()[0].Text)
}
