// Package observability provides formatted output for the CLI: layout previews, export summaries and suggestions.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer

	ok   *color.Color
	warn *color.Color
	fail *color.Color
	dim  *color.Color
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{
		out:  out,
		ok:   color.New(color.FgGreen, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
		dim:  color.New(color.FgHiBlack),
	}
}

// truncate shortens s to max runes, ending in "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintLayoutReport outputs where each section landed, page by page and column by column.
// Pages are numbered from 1.
func (p *Printer) PrintLayoutReport(report *rendering.Report) {
	if report == nil {
		return
	}

	byPage := map[int][]rendering.Placement{}
	for _, pl := range report.Placements {
		byPage[pl.Page] = append(byPage[pl.Page], pl)
	}
	pages := make([]int, 0, len(byPage))
	for page := range byPage {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Plantilla: %s\n", report.Template))
	sb.WriteString(fmt.Sprintf("Páginas:   %d\n", report.Pages))

	for _, page := range pages {
		sb.WriteString(fmt.Sprintf("\nPágina %d\n", page+1))
		placements := byPage[page]
		sort.SliceStable(placements, func(i, j int) bool {
			if placements[i].Column != placements[j].Column {
				return placements[i].Column < placements[j].Column
			}
			return placements[i].StartY < placements[j].StartY
		})
		for _, pl := range placements {
			title := pl.Title
			if title == "" {
				title = pl.Key
			}
			sb.WriteString(fmt.Sprintf("  %-6s %-24s y %5.1f → %5.1f  %2d lín.\n",
				pl.Column, truncate(title, 24), pl.StartY, pl.EndY, pl.Lines))
			if pl.Continued > 0 {
				sb.WriteString(fmt.Sprintf("         ↳ continúa hasta pág. %d\n", pl.EndPage+1))
			}
		}
	}

	if len(report.Skipped) > 0 {
		sb.WriteString("\nSecciones vacías omitidas:\n")
		count := min(len(report.Skipped), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", report.Skipped[i]))
		}
		if len(report.Skipped) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... y %d más\n", len(report.Skipped)-maxItemsToShow))
		}
	}

	p.printBox("VISTA PREVIA DEL DISEÑO", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExportResult outputs one line per saved document.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintExportResult(res *export.Result, path string) {
	if res == nil {
		return
	}
	if path == "" {
		path = res.Filename
	}
	p.ok.Fprint(p.out, "✓ ")
	fmt.Fprintf(p.out, "%s ", path)
	p.dim.Fprintf(p.out, "(%s, %d págs., %d KB)\n", res.TemplateID, res.Pages, (len(res.Bytes)+1023)/1024)
	if res.FellBack {
		p.Warn(fmt.Sprintf("Plantilla desconocida, se usó %q", res.TemplateID))
	}
}

// PrintSuggestion outputs suggested skills and experience text.
func (p *Printer) PrintSuggestion(title string, s types.Suggestion) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Puesto: %s\n", title))
	sb.WriteString(fmt.Sprintf("Fuente: %s\n\n", s.Fuente))

	if len(s.Habilidades) > 0 {
		sb.WriteString("Habilidades:\n")
		for _, h := range s.Habilidades {
			sb.WriteString(fmt.Sprintf("  • %s\n", h))
		}
		sb.WriteString("\n")
	}

	if s.Experiencia != "" {
		sb.WriteString("Experiencia:\n")
		for _, line := range wrap(s.Experiencia, boxWidth-6) {
			sb.WriteString("  " + line + "\n")
		}
	}

	p.printBox("SUGERENCIAS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTemplates lists the registered templates.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintTemplates(styles []*rendering.Style, defaultID rendering.TemplateID) {
	for _, st := range styles {
		marker := " "
		if st.ID == defaultID {
			marker = "*"
		}
		p.ok.Fprintf(p.out, "%s %-9s", marker, st.ID)
		fmt.Fprintf(p.out, " %s", st.Name)
		if st.Description != "" {
			p.dim.Fprintf(p.out, "  %s", st.Description)
		}
		fmt.Fprintln(p.out)
	}
}

// PrintValidationErrors outputs field errors, one per line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintValidationErrors(title string, fields []string) {
	p.fail.Fprintf(p.out, "✗ %s\n", title)
	count := min(len(fields), maxItemsToShow)
	for i := 0; i < count; i++ {
		fmt.Fprintf(p.out, "  • %s\n", fields[i])
	}
	if len(fields) > maxItemsToShow {
		fmt.Fprintf(p.out, "  ... y %d más\n", len(fields)-maxItemsToShow)
	}
}

// Success prints a green status line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Success(msg string) {
	p.ok.Fprintf(p.out, "✓ %s\n", msg)
}

// Warn prints a yellow status line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Warn(msg string) {
	p.warn.Fprintf(p.out, "! %s\n", msg)
}

// Error prints a red status line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Error(msg string) {
	p.fail.Fprintf(p.out, "✗ %s\n", msg)
}

// wrap breaks text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	var lines []string
	var cur []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		if len(cur) > 0 && len(cur)+1+len(w) > width {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, w...)
	}
	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
