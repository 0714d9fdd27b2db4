package rendering

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/canvas"
	"github.com/jonathan/cv-builder/internal/layout"
	"github.com/jonathan/cv-builder/internal/types"
)

const (
	minNameSize    = 12
	headerMargin   = 40
	gradientSteps  = 15
	photoImageName = "profile-photo"
)

// slot is where a main section goes in a two-column arrangement.
type slot struct {
	column Column
	accent func(p Palette) canvas.Color
}

func primaryOf(p Palette) canvas.Color   { return p.Primary }
func secondaryOf(p Palette) canvas.Color { return p.Secondary }
func accentOf(p Palette) canvas.Color    { return p.Accent }

func modernStyle() *Style {
	return &Style{
		ID:          Modern,
		Name:        "Moderno",
		Description: "Cabecera con degradado, iconos y dos columnas",
		Palette: Palette{
			Primary:   canvas.RGB(67, 56, 202),
			Secondary: canvas.RGB(99, 102, 241),
			Accent:    canvas.RGB(16, 185, 129),
			Text:      canvas.RGB(31, 41, 55),
			Light:     canvas.RGB(243, 244, 246),
		},
		Sizes:          FontSizes{Name: 24, Title: 14, Section: 12, Body: 10, Small: 9},
		LineHeight:     1.5,
		SectionSpacing: 8,
		BodyOffset:     10,
		Banded:         true,
		Icons:          true,
		IconShift:      -2,
		IconSize:       4,
		IconOffset:     8,
		Rule:           RuleDouble,
		BodyTop:        70,
		Columns:        ColumnGeometry{LeftX: 20, LeftWidth: 80, RightX: 115, RightWidth: 80},
		OptionalColumns: ColumnGeometry{
			LeftX: 20, LeftWidth: 85, RightX: 115, RightWidth: 75,
		},
		Sections: map[string]SectionLook{
			KeyExperience: {Title: "EXPERIENCIA PROFESIONAL", Icon: canvas.IconBriefcase},
			KeyEducation:  {Title: "EDUCACIÓN", Icon: canvas.IconGraduation},
			KeySkills:     {Title: "HABILIDADES", Icon: canvas.IconStar},
			KeyProjects:   {Title: "PROYECTOS", Icon: canvas.IconBriefcase},
			KeyLanguages:  {Title: "IDIOMAS", Icon: canvas.IconGlobe},

			OptionalKey(types.SectionSocialLinks):    {Title: "REDES SOCIALES", Icon: canvas.IconGlobe},
			OptionalKey(types.SectionTechSkills):     {Title: "HABILIDADES TÉCNICAS", Icon: canvas.IconCode},
			OptionalKey(types.SectionProjects):       {Title: "PROYECTOS DESTACADOS", Icon: canvas.IconBriefcase},
			OptionalKey(types.SectionLanguages):      {Title: "IDIOMAS", Icon: canvas.IconGlobe},
			OptionalKey(types.SectionCertifications): {Title: "CERTIFICACIONES", Icon: canvas.IconStar},
		},
		Header: modernHeader,
		Arrange: func(blocks []Block, st *Style) []Instruction {
			return arrangeTwoColumns(blocks, st, map[string]slot{
				KeyExperience: {column: Left},
				KeyEducation:  {column: Left},
				KeySkills:     {column: Right},
				KeyProjects:   {column: Left},
				KeyLanguages:  {column: Right},
			}, false)
		},
		FormatOptional: map[string]OptionalFormatter{
			string(types.SectionSocialLinks):    formatPlatforms,
			string(types.SectionTechSkills):     formatCategories,
			string(types.SectionProjects):       formatNumbered,
			string(types.SectionLanguages):      formatBulleted,
			string(types.SectionCertifications): formatBulleted,
		},
	}
}

func classicStyle() *Style {
	return &Style{
		ID:          Classic,
		Name:        "Clásico",
		Description: "Una columna sobria para sectores tradicionales",
		Palette: Palette{
			Primary:   canvas.RGB(31, 41, 55),
			Secondary: canvas.RGB(55, 65, 81),
			Accent:    canvas.RGB(107, 114, 128),
			Text:      canvas.RGB(17, 24, 39),
			Light:     canvas.RGB(249, 250, 251),
		},
		Sizes:          FontSizes{Name: 22, Title: 12, Section: 11, Body: 9, Small: 8},
		LineHeight:     1.5,
		SectionSpacing: 8,
		BodyOffset:     8,
		Rule:           RuleSingle,
		BodyTop:        63,
		Columns:        ColumnGeometry{LeftX: 20, LeftWidth: 170},
		OptionalColumns: ColumnGeometry{
			LeftX: 20, LeftWidth: 170,
		},
		Sections: map[string]SectionLook{
			KeyExperience: {Title: "EXPERIENCIA PROFESIONAL"},
			KeyEducation:  {Title: "EDUCACIÓN"},
			KeySkills:     {Title: "HABILIDADES"},
			KeyProjects:   {Title: "PROYECTOS"},
			KeyLanguages:  {Title: "IDIOMAS"},

			OptionalKey(types.SectionSocialLinks):    {Title: "REDES SOCIALES"},
			OptionalKey(types.SectionTechSkills):     {Title: "HABILIDADES TÉCNICAS"},
			OptionalKey(types.SectionProjects):       {Title: "PROYECTOS DESTACADOS"},
			OptionalKey(types.SectionLanguages):      {Title: "IDIOMAS"},
			OptionalKey(types.SectionCertifications): {Title: "CERTIFICACIONES"},
		},
		Header:  classicHeader,
		Arrange: arrangeSingleColumn,
		FormatOptional: map[string]OptionalFormatter{
			string(types.SectionSocialLinks):    formatLabelled,
			string(types.SectionTechSkills):     formatLabelled,
			string(types.SectionProjects):       formatLabelled,
			string(types.SectionLanguages):      formatLabelled,
			string(types.SectionCertifications): formatLabelled,
		},
	}
}

func creativeStyle() *Style {
	p := Palette{
		Primary:   canvas.RGB(124, 58, 237),
		Secondary: canvas.RGB(236, 72, 153),
		Accent:    canvas.RGB(245, 158, 11),
		Text:      canvas.RGB(31, 41, 55),
		Light:     canvas.RGB(253, 244, 255),
	}
	return &Style{
		ID:              Creative,
		Name:            "Creativo",
		Description:     "Colores vivos y composición asimétrica",
		Palette:         p,
		Sizes:           FontSizes{Name: 26, Title: 15, Section: 13, Body: 10, Small: 9},
		LineHeight:      1.5,
		SectionSpacing:  10,
		BodyOffset:      8,
		Icons:           true,
		IconSize:        3.5,
		IconOffset:      6,
		Rule:            RuleSideBar,
		BodyTop:         80,
		Columns:         ColumnGeometry{LeftX: 20, LeftWidth: 85, RightX: 115, RightWidth: 75},
		OptionalColumns: ColumnGeometry{LeftX: 20, LeftWidth: 85, RightX: 115, RightWidth: 75},
		SectionColors:   []canvas.Color{p.Primary, p.Secondary, p.Accent},
		Sections: map[string]SectionLook{
			KeyExperience: {Title: "EXPERIENCIA", Icon: canvas.IconBriefcase},
			KeySkills:     {Title: "HABILIDADES", Icon: canvas.IconStar},
			KeyEducation:  {Title: "EDUCACIÓN", Icon: canvas.IconGraduation},
			KeyProjects:   {Title: "PROYECTOS", Icon: canvas.IconCode},
			KeyLanguages:  {Title: "IDIOMAS", Icon: canvas.IconGlobe},

			OptionalKey(types.SectionSocialLinks):    {Title: "REDES SOCIALES", Icon: canvas.IconGlobe},
			OptionalKey(types.SectionTechSkills):     {Title: "TECH SKILLS", Icon: canvas.IconCode},
			OptionalKey(types.SectionProjects):       {Title: "PROYECTOS", Icon: canvas.IconBriefcase},
			OptionalKey(types.SectionLanguages):      {Title: "IDIOMAS", Icon: canvas.IconGlobe},
			OptionalKey(types.SectionCertifications): {Title: "CERTIFICACIONES", Icon: canvas.IconStar},
		},
		Header: creativeHeader,
		Arrange: func(blocks []Block, st *Style) []Instruction {
			return arrangeTwoColumns(blocks, st, map[string]slot{
				KeyExperience: {column: Left, accent: primaryOf},
				KeySkills:     {column: Right, accent: secondaryOf},
				KeyEducation:  {column: Left, accent: accentOf},
				KeyProjects:   {column: Left, accent: primaryOf},
				KeyLanguages:  {column: Right, accent: accentOf},
			}, true)
		},
		FormatOptional: map[string]OptionalFormatter{},
	}
}

// creativeMainOrder is the reading order of the creative layout.
var creativeMainOrder = []string{KeyExperience, KeySkills, KeyEducation, KeyProjects, KeyLanguages}

// arrangeTwoColumns places main blocks in their fixed slots, then lines both
// columns up and alternates the optional blocks starting on the left.
func arrangeTwoColumns(blocks []Block, st *Style, slots map[string]slot, creative bool) []Instruction {
	var main, optional []Block
	for _, b := range blocks {
		if b.Optional != "" {
			optional = append(optional, b)
		} else {
			main = append(main, b)
		}
	}
	if creative {
		main = reorder(main, creativeMainOrder)
	}

	var out []Instruction
	for _, b := range main {
		sl, ok := slots[b.Key]
		if !ok {
			sl = slot{column: Left}
		}
		ins := place(b, sl.column, st.Columns)
		if sl.accent != nil {
			c := sl.accent(st.Palette)
			ins.Accent = &c
		}
		out = append(out, ins)
	}

	if len(optional) == 0 {
		return out
	}
	out = append(out, Instruction{Kind: AlignColumns})
	right := false
	for i, b := range optional {
		col := Left
		if right {
			col = Right
		}
		ins := place(b, col, st.OptionalColumns)
		if len(st.SectionColors) > 0 {
			c := st.SectionColors[i%len(st.SectionColors)]
			ins.Accent = &c
		}
		out = append(out, ins)
		right = !right
	}
	return out
}

func arrangeSingleColumn(blocks []Block, st *Style) []Instruction {
	out := make([]Instruction, 0, len(blocks))
	for _, b := range blocks {
		g := st.Columns
		if b.Optional != "" {
			g = st.OptionalColumns
		}
		out = append(out, place(b, Left, g))
	}
	return out
}

func place(b Block, col Column, g ColumnGeometry) Instruction {
	ins := Instruction{Kind: PlaceSection, Block: b, Column: col, X: g.LeftX, Width: g.LeftWidth}
	if col == Right {
		ins.X, ins.Width = g.RightX, g.RightWidth
	}
	return ins
}

func reorder(blocks []Block, order []string) []Block {
	rank := make(map[string]int, len(order))
	for i, k := range order {
		rank[k] = i
	}
	out := make([]Block, 0, len(blocks))
	for _, k := range order {
		for _, b := range blocks {
			if b.Key == k {
				out = append(out, b)
			}
		}
	}
	for _, b := range blocks {
		if _, ok := rank[b.Key]; !ok {
			out = append(out, b)
		}
	}
	return out
}

// fitFont shrinks font one point at a time until text fits maxWidth or the
// minimum name size is reached.
func fitFont(m layout.Measurer, font layout.Font, text string, maxWidth float64) layout.Font {
	for font.Size > minNameSize && m.StringWidth(font, text) > maxWidth {
		font.Size--
	}
	return font
}

func centered(s canvas.Surface, m layout.Measurer, g canvas.Geometry, y float64, text string, font layout.Font, c canvas.Color) {
	if strings.TrimSpace(text) == "" {
		return
	}
	x := (g.Width - m.StringWidth(font, text)) / 2
	s.Text(x, y, text, font, c)
}

func modernHeader(s canvas.Surface, m layout.Measurer, g canvas.Geometry, h HeaderInfo, st *Style) {
	p := st.Palette
	canvas.DrawGradient(s, 0, 0, g.Width, 55, p.Primary, p.Secondary, gradientSteps)
	canvas.DrawShadow(s, 0, 52, g.Width, 3, 3)

	s.FillCircle(15, 25, 8, p.Accent)
	s.SetAlpha(0.3)
	s.FillCircle(15, 25, 5, canvas.White)
	s.SetAlpha(1)

	s.FillRect(g.Width-25, 15, 20, 3, p.Accent)
	s.FillRect(g.Width-25, 20, 15, 3, p.Accent)
	s.FillRect(g.Width-25, 25, 25, 3, p.Accent)

	name := strings.ToUpper(h.Name)
	centered(s, m, g, 28, name, fitFont(m, st.font(fontName), name, g.Width-headerMargin), canvas.White)
	centered(s, m, g, 40, h.Title, st.font(fontTitle), canvas.White)

	s.Line(70, 45, 140, 45, canvas.White, 1)
	s.Line(80, 47, 130, 47, canvas.White, 2)

	small := st.font(fontSmall)
	small.Style = ""
	centered(s, m, g, 51, h.Contact, small, canvas.White)

	if h.Photo != "" {
		s.Image(h.Photo, 160, 8, 22, 28)
	}
}

func classicHeader(s canvas.Surface, m layout.Measurer, g canvas.Geometry, h HeaderInfo, st *Style) {
	p := st.Palette
	s.FillRect(0, 0, g.Width, 52, p.Light)

	centered(s, m, g, 30, h.Name, fitFont(m, st.font(fontName), h.Name, g.Width-headerMargin), p.Primary)
	centered(s, m, g, 40, h.Title, st.font(fontTitle), p.Secondary)

	small := st.font(fontSmall)
	small.Style = ""
	centered(s, m, g, 45.5, h.Contact, small, p.Text)

	s.Line(g.MarginLeft, 48, g.Width-g.MarginRight, 48, p.Accent, 0.5)

	if h.Photo != "" {
		s.Image(h.Photo, 170, 12, 20, 26)
	}
}

func creativeHeader(s canvas.Surface, m layout.Measurer, g canvas.Geometry, h HeaderInfo, st *Style) {
	p := st.Palette
	s.FillRect(0, 0, g.Width, 60, p.Primary)
	s.FillCircle(g.Width-20, 15, 20, p.Secondary)
	s.FillCircle(25, 45, 15, p.Accent)

	centered(s, m, g, 25, h.Name, fitFont(m, st.font(fontName), h.Name, g.Width-headerMargin), canvas.White)
	centered(s, m, g, 40, h.Title, st.font(fontTitle), canvas.White)

	small := st.font(fontSmall)
	small.Style = ""
	centered(s, m, g, 50, h.Contact, small, canvas.White)

	if h.Photo != "" {
		s.Image(h.Photo, 146, 8, 22, 28)
	}
}
