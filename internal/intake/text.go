// Package intake adapts raw form input into the canonical CV schema used by the exporter.
package intake

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	innerSpaceRe  = regexp.MustCompile(`[ \t]+`)
	blankLinesRe  = regexp.MustCompile(`\n\n\n+`)
	markupHintsRe = regexp.MustCompile(`<[a-zA-Z/!]|&[a-zA-Z#][a-zA-Z0-9]*;`)
)

// StripMarkup removes HTML markup pasted from rich text editors, keeping the visible text.
// Block elements and <br> become line breaks. Plain text is returned cleaned but otherwise untouched.
func StripMarkup(s string) string {
	if !markupHintsRe.MatchString(s) {
		return CleanText(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CleanText(s)
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	return CleanText(doc.Text())
}

// CleanText normalizes line endings, collapses runs of spaces inside each line,
// and keeps at most one blank line between paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = innerSpaceRe.ReplaceAllString(strings.TrimSpace(line), " ")
	}

	result := blankLinesRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

// SplitList splits a comma, semicolon or newline separated list, dropping blanks.
func SplitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
