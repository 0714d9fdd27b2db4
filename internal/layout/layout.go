// Package layout provides the pure text measurement and cursor arithmetic used by the CV renderer.
package layout

import (
	"strings"
	"unicode/utf8"
)

// mmPerPoint converts typographic points to millimetres.
const mmPerPoint = 25.4 / 72

// Font describes the active typeface. Size is in points.
type Font struct {
	Family string
	Style  string // "", "B", "I" or "BI"
	Size   float64
}

// Measurer reports the rendered width of text under a font, in page units.
type Measurer interface {
	StringWidth(font Font, text string) float64
}

// WrapText greedily packs whitespace-separated words into lines no wider than
// maxWidth. A word wider than maxWidth is kept whole on its own line. Explicit
// newlines start a new paragraph and blank paragraphs survive as empty lines.
// Empty input yields a single empty line.
func WrapText(m Measurer, font Font, text string, maxWidth float64) ([]string, error) {
	if maxWidth <= 0 {
		return nil, NonPositive("maxWidth", maxWidth)
	}
	if strings.TrimSpace(text) == "" {
		return []string{""}, nil
	}

	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := words[0]
		for _, w := range words[1:] {
			candidate := current + " " + w
			if m.StringWidth(font, candidate) <= maxWidth {
				current = candidate
				continue
			}
			lines = append(lines, current)
			current = w
		}
		lines = append(lines, current)
	}
	return lines, nil
}

// AdvanceCursor returns startY moved down by lineCount lines of fontSize*lineHeight.
// Callers pass fontSize already converted to page units.
func AdvanceCursor(startY float64, lineCount int, fontSize, lineHeight float64) float64 {
	if lineCount <= 0 {
		return startY
	}
	return startY + float64(lineCount)*fontSize*lineHeight
}

// WillOverflow reports whether currentY is past the printable bottom of the page.
func WillOverflow(currentY, pageHeight, marginBottom float64) bool {
	return currentY > pageHeight-marginBottom
}

// PointsToUnits converts a size in points to millimetres.
func PointsToUnits(pt float64) float64 {
	return pt * mmPerPoint
}

// LineAdvance is the vertical distance of one line of font at the given multiplier.
func LineAdvance(font Font, lineHeight float64) float64 {
	return AdvanceCursor(0, 1, PointsToUnits(font.Size), lineHeight)
}

// FixedMeasurer gives every rune the same width: CharWidth millimetres at 10pt,
// scaled linearly with the font size. It is deterministic and font-file free.
type FixedMeasurer struct {
	CharWidth float64
}

// StringWidth implements Measurer.
func (f FixedMeasurer) StringWidth(font Font, text string) float64 {
	size := font.Size
	if size <= 0 {
		size = 10
	}
	return float64(utf8.RuneCountInString(text)) * f.CharWidth * size / 10
}
