package convert

import (
	"unicode"
	"unicode/utf8"
)

// applyCasing uppercases the first rune of replacement when original starts
// with an uppercase rune. The rest of replacement is left as is. An empty
// replacement is returned unchanged.
func applyCasing(original, replacement string) string {
	if replacement == "" {
		return replacement
	}
	first, _ := utf8.DecodeRuneInString(original)
	if !unicode.IsUpper(first) {
		return replacement
	}
	r, size := utf8.DecodeRuneInString(replacement)
	if r == utf8.RuneError && size <= 1 {
		return replacement
	}
	return string(unicode.ToUpper(r)) + replacement[size:]
}
