package canvas

// Shadow opacity ramp: layer i is drawn at shadowBaseAlpha - i*shadowAlphaStep.
const (
	shadowBaseAlpha = 0.1
	shadowAlphaStep = 0.02
)

const iconLineWidth = 0.5

// IconKind names a small glyph drawn from primitive shapes.
type IconKind string

// Known icon kinds. The zero value draws nothing.
const (
	IconNone       IconKind = ""
	IconBriefcase  IconKind = "briefcase"
	IconGraduation IconKind = "graduation"
	IconStar       IconKind = "star"
	IconGlobe      IconKind = "globe"
	IconCode       IconKind = "code"
)

// DrawGradient fills (x,y,w,h) with steps horizontal bands linearly
// interpolated from start to end and returns the band colors in order.
// steps below 2 draws a single band of start.
func DrawGradient(s Surface, x, y, w, h float64, start, end Color, steps int) []Color {
	if steps < 1 {
		steps = 1
	}
	bands := make([]Color, steps)
	bandH := h / float64(steps)
	for i := 0; i < steps; i++ {
		c := start
		if steps > 1 {
			c = Lerp(start, end, float64(i)/float64(steps-1))
		}
		bands[i] = c
		s.FillRect(x, y+float64(i)*bandH, w, bandH, c)
	}
	return bands
}

// DrawShadow stacks blurSteps black rectangles, each offset one unit further
// and more transparent than the last, then restores full opacity.
func DrawShadow(s Surface, x, y, w, h float64, blurSteps int) {
	for i := 0; i < blurSteps; i++ {
		alpha := shadowBaseAlpha - float64(i)*shadowAlphaStep
		if alpha <= 0 {
			break
		}
		s.SetAlpha(alpha)
		s.FillRect(x+float64(i), y+float64(i), w, h, Black)
	}
	s.SetAlpha(1)
}

// DrawIcon draws kind at (x,y) scaled to size and reports whether it drew
// anything. Unknown kinds are ignored.
func DrawIcon(s Surface, kind IconKind, x, y, size float64, c Color) bool {
	switch kind {
	case IconBriefcase:
		s.StrokeRect(x, y, size, size*0.7, c, iconLineWidth)
		s.StrokeRect(x+size*0.2, y-size*0.2, size*0.6, size*0.2, c, iconLineWidth)
	case IconGraduation:
		s.StrokeCircle(x+size/2, y+size/2, size/2, c, iconLineWidth)
		s.Line(x, y+size, x+size, y, c, iconLineWidth)
	case IconStar:
		s.FillCircle(x+size/2, y+size/2, size/3, c)
	case IconGlobe:
		s.StrokeCircle(x+size/2, y+size/2, size/2, c, iconLineWidth)
		s.Line(x, y+size/2, x+size, y+size/2, c, iconLineWidth)
	case IconCode:
		s.StrokeRect(x, y, size, size*0.8, c, iconLineWidth)
		s.Line(x+size*0.2, y+size*0.2, x+size*0.8, y+size*0.6, c, iconLineWidth)
	default:
		return false
	}
	return true
}
