// Package titlematch compares human-typed titles against catalog titles.
package titlematch

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Only II-IX after a space: "I Love Lucy" and "X-Files" stay intact.
var romanNumeral = regexp.MustCompile(`(?i) (ii|iii|iv|v|vi|vii|viii|ix)\b`)

var romanValues = map[string]string{
	"ii": "2", "iii": "3", "iv": "4", "v": "5",
	"vi": "6", "vii": "7", "viii": "8", "ix": "9",
}

var accents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds a title to a comparable form: lower case, no accents,
// no punctuation, no leading article, Arabic sequel numbers and single
// spaces.
func Normalize(title string) string {
	s := strings.ToLower(title)
	s = romanNumeral.ReplaceAllStringFunc(s, func(m string) string {
		if n, ok := romanValues[strings.TrimSpace(m)]; ok {
			return " " + n
		}
		return m
	})
	if folded, _, err := transform.String(accents, s); err == nil {
		s = folded
	}

	s = strings.NewReplacer("&", " and ", "-", " ", "'", "", ".", " ").Replace(s)

	parts := strings.Split(s, ":")
	for i, p := range parts {
		parts[i] = stripArticle(strings.TrimSpace(p))
	}
	s = strings.Join(parts, " ")

	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func stripArticle(s string) string {
	for _, art := range []string{"the ", "a ", "an "} {
		if rest, ok := strings.CutPrefix(s, art); ok {
			return rest
		}
	}
	return s
}
