package pdfdoc

import (
	"sync"

	"github.com/go-pdf/fpdf"

	"github.com/jonathan/cv-builder/internal/layout"
)

const (
	defaultFamily = "Helvetica"
	defaultSize   = 10
)

// Measurer reports string widths from the core font metrics, in millimetres.
// Text is translated to cp1252 first, the same way Write encodes it.
type Measurer struct {
	mu  sync.Mutex
	pdf *fpdf.Fpdf
	tr  func(string) string
}

var _ layout.Measurer = (*Measurer)(nil)

// NewMeasurer returns a Measurer backed by a scratch document.
func NewMeasurer() *Measurer {
	pdf := fpdf.New("P", "mm", "A4", "")
	return &Measurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// StringWidth implements layout.Measurer.
func (m *Measurer) StringWidth(font layout.Font, text string) float64 {
	family, style, size := fontArgs(font)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFont(family, style, size)
	return m.pdf.GetStringWidth(m.tr(text))
}

func fontArgs(font layout.Font) (string, string, float64) {
	family := font.Family
	if family == "" {
		family = defaultFamily
	}
	size := font.Size
	if size <= 0 {
		size = defaultSize
	}
	return family, font.Style, size
}
