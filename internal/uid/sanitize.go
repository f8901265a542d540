// Package uid turns raw vCard field pieces into filesystem-safe contact IDs
// and guarantees they are unique within one run.
package uid

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// germanDigraphs spells umlauts the way German does without them.
var germanDigraphs = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss",
)

// Sanitizer normalizes raw IDs. The zero value uses generic transliteration.
type Sanitizer struct {
	// Digraphs maps German umlauts to two-letter spellings (ä → ae)
	// instead of dropping the diaeresis (ä → a).
	Digraphs bool
}

// Sanitize lower-cases s, transliterates non-ASCII letters to their closest
// ASCII equivalents and collapses every run of characters other than
// [a-z0-9_] into a single '_'. The result is pure ASCII and
// Sanitize(Sanitize(s)) == Sanitize(s).
func (z Sanitizer) Sanitize(s string) string {
	s = strings.ToLower(norm.NFC.String(s))
	if z.Digraphs {
		s = germanDigraphs.Replace(s)
	}
	s = strings.ToLower(transliterate(s))
	return collapseNonWord(s)
}

// Sanitize applies the default Sanitizer.
func Sanitize(s string) string {
	return Sanitizer{}.Sanitize(s)
}

// transliterate drops combining marks, then maps every remaining rune to
// ASCII. Scripts without Latin letters are romanized.
func transliterate(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return unidecode.Unidecode(stripped)
}

func isWord(r rune) bool {
	return r == '_' || ('a' <= r && r <= 'z') || ('0' <= r && r <= '9')
}

func collapseNonWord(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if isWord(r) {
			b.WriteRune(r)
			inRun = false
			continue
		}
		if !inRun {
			b.WriteByte('_')
			inRun = true
		}
	}
	return b.String()
}
