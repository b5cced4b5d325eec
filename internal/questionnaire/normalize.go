package questionnaire

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Compiled once; NFKC folds unicode spaces into U+0020 so \s covers the rest.
var spaceRE = regexp.MustCompile(`\s+`)

// Normalize canonicalizes raw question text into a stable lookup key:
// NFKC normalization, whitespace runs collapsed to a single space, outer
// whitespace trimmed. Case is preserved: questions differing only in case
// are distinct keys.
func Normalize(raw string) string {
	s := norm.NFKC.String(raw)
	s = spaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
