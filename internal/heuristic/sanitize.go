package heuristic

import (
	"strings"
	"unicode"
)

var wildcardsAndQuotes = strings.NewReplacer(
	"*", "", "%", "", "\"", "", "'", "", "`", "",
	"“", "", "”", "", "‘", "", "’", "",
)

// Sanitize strips wildcard and quote characters, trims edge punctuation and
// whitespace, and lowercases s. An empty result means the token carries nothing.
func Sanitize(s string) string {
	s = wildcardsAndQuotes.Replace(s)
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	return strings.ToLower(s)
}
