package genre

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify turns a genre name into a URL-safe slug.
// "Science Fiction" -> "science-fiction", "Sci-Fi/Fantasy" -> "sci-fi-fantasy".
// Accented characters are decomposed first so "Café Noir" -> "cafe-noir".
func Slugify(s string) string {
	s = norm.NFKD.String(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(unicode.ToLower(r))
		case r > unicode.MaxASCII:
			// Dropped entirely: combining marks left over from NFKD
			// decomposition must not become separators.
		default:
			// Punctuation and whitespace collapse into a single separator.
			pendingHyphen = true
		}
	}

	return b.String()
}
