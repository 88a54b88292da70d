// Package slug derives URL-safe identifiers from display names.
package slug

import (
	"strings"
	"unicode"
)

// Make normalizes a display name into a slug: lowercased, with runs of
// whitespace collapsed to single hyphens, every other non-alphanumeric
// rune stripped, and leading/trailing hyphens trimmed.
//
// Two names that normalize to the same slug alias the same storage key
// and remote resource; callers get the existing record back rather than
// an error.
func Make(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			pendingHyphen = true
		}
	}

	return b.String()
}
