// Package slug derives lower-case URL-safe identifiers from store names.
package slug

import (
	"strings"
	"unicode"
)

// Make lower-cases the name, strips diacritics for the common Latin-1 range
// and collapses everything that is not a letter or digit into single hyphens.
func Make(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		if repl, ok := translit[r]; ok {
			b.WriteString(repl)
			lastHyphen = false
			continue
		}
		if unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

var translit = map[rune]string{
	'à': "a", 'á': "a", 'â': "a", 'ã': "a", 'ä': "a", 'å': "a",
	'è': "e", 'é': "e", 'ê': "e", 'ë': "e",
	'ì': "i", 'í': "i", 'î': "i", 'ï': "i",
	'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o", 'ö': "o",
	'ù': "u", 'ú': "u", 'û': "u", 'ü': "u",
	'ç': "c", 'ñ': "n", 'ý': "y", 'ß': "ss",
	'æ': "ae", 'ø': "o",
	'&': "and",
}
