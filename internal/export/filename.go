package export

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxNameRunes = 20
	fallbackName = "MiCV"
	dateLayout   = "2006-01-02"
)

// Latin-1 Supplement letters through Latin Extended-A.
const (
	latinExtendedFirst = 'À'
	latinExtendedLast  = 'ſ'
)

// foldAccents removes combining marks after canonical decomposition, so
// "García" becomes "Garcia". Letters without a decomposition are kept.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func allowedNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= latinExtendedFirst && r <= latinExtendedLast:
		return r != '×' && r != '÷'
	case r == '_', unicode.IsSpace(r):
		return true
	}
	return false
}

// SanitizeName makes a person's name safe for a filename: accents are folded,
// other disallowed characters dropped, whitespace runs become one underscore
// and the result is cut to 20 characters. Sanitizing twice changes nothing.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range foldAccents(name) {
		if allowedNameRune(r) {
			b.WriteRune(r)
		}
	}
	s := strings.Join(strings.Fields(b.String()), "_")
	if r := []rune(s); len(r) > maxNameRunes {
		s = string(r[:maxNameRunes])
	}
	if s == "" {
		return fallbackName
	}
	return s
}

// Filename returns CV_{name}_{template}_{YYYY-MM-DD}.pdf.
func Filename(name, templateID string, date time.Time) string {
	return fmt.Sprintf("CV_%s_%s_%s.pdf", SanitizeName(name), templateID, date.Format(dateLayout))
}
