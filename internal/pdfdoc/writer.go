// Package pdfdoc serializes a canvas document to PDF with the core fonts.
package pdfdoc

import (
	"bytes"
	"errors"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/jonathan/cv-builder/internal/canvas"
)

// Option configures Write.
type Option func(*config)

type config struct {
	compress bool
}

// WithCompression toggles stream compression. It is on by default.
func WithCompression(on bool) Option {
	return func(c *config) {
		c.compress = on
	}
}

// Write replays doc into a new PDF and writes it to w. A document without
// pages still produces one blank page.
func Write(w io.Writer, doc *canvas.Document, opts ...Option) error {
	if doc == nil {
		return &WriteError{Op: "Write", Err: errors.New("nil document")}
	}
	cfg := config{compress: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	g := doc.Geometry
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: g.Width, Ht: g.Height},
	})
	pdf.SetCompression(cfg.compress)
	pdf.SetMargins(g.MarginLeft, g.MarginTop, g.MarginRight)
	pdf.SetAutoPageBreak(false, g.MarginBottom)
	setMetadata(pdf, doc.Metadata)

	for _, img := range doc.Images() {
		pdf.RegisterImageOptionsReader(img.Name, fpdf.ImageOptions{ImageType: string(img.Type)}, bytes.NewReader(img.Data))
		if pdf.Err() {
			return &WriteError{Op: "RegisterImage", Err: pdf.Error()}
		}
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pages := doc.Pages()
	if len(pages) == 0 {
		pdf.AddPage()
	}
	for _, page := range pages {
		pdf.AddPage()
		for _, op := range page.Ops {
			replay(pdf, tr, op)
		}
		if pdf.Err() {
			return &WriteError{Op: "Page", Err: pdf.Error()}
		}
	}

	if err := pdf.Output(w); err != nil {
		return &WriteError{Op: "Output", Err: err}
	}
	return nil
}

func setMetadata(pdf *fpdf.Fpdf, m canvas.Metadata) {
	pdf.SetTitle(m.Title, true)
	pdf.SetSubject(m.Subject, true)
	pdf.SetAuthor(m.Author, true)
	pdf.SetCreator(m.Creator, true)
	pdf.SetProducer(m.Producer, true)
	pdf.SetKeywords(m.Keywords, true)
	if !m.CreationDate.IsZero() {
		pdf.SetCreationDate(m.CreationDate)
	}
}

func replay(pdf *fpdf.Fpdf, tr func(string) string, op canvas.Op) {
	switch op.Kind {
	case canvas.OpFillRect:
		fill(pdf, op.Color)
		pdf.Rect(op.X, op.Y, op.W, op.H, "F")
	case canvas.OpStrokeRect:
		stroke(pdf, op.Color, op.LineWidth)
		pdf.Rect(op.X, op.Y, op.W, op.H, "D")
	case canvas.OpFillCircle:
		fill(pdf, op.Color)
		pdf.Circle(op.X, op.Y, op.R, "F")
	case canvas.OpCircle:
		stroke(pdf, op.Color, op.LineWidth)
		pdf.Circle(op.X, op.Y, op.R, "D")
	case canvas.OpLine:
		stroke(pdf, op.Color, op.LineWidth)
		pdf.Line(op.X, op.Y, op.X2, op.Y2)
	case canvas.OpText:
		family, style, size := fontArgs(op.Font)
		pdf.SetFont(family, style, size)
		pdf.SetTextColor(int(op.Color.R), int(op.Color.G), int(op.Color.B))
		pdf.Text(op.X, op.Y, tr(op.Text))
	case canvas.OpAlpha:
		pdf.SetAlpha(op.Alpha, "Normal")
	case canvas.OpImage:
		pdf.ImageOptions(op.Image, op.X, op.Y, op.W, op.H, false, fpdf.ImageOptions{}, 0, "")
	}
}

func fill(pdf *fpdf.Fpdf, c canvas.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func stroke(pdf *fpdf.Fpdf, c canvas.Color, lineWidth float64) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	if lineWidth > 0 {
		pdf.SetLineWidth(lineWidth)
	}
}
