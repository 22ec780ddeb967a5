package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripWhitespace removes every whitespace rune, including the ones between
// words: "type 2 diabetes" becomes "type2diabetes".
func StripWhitespace(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
}

// Lower lowercases value and applies no other normalization, so a decomposed
// accent stays distinct from its precomposed form.
func Lower(value string) string {
	return cases.Lower(language.Und).String(value)
}

// Fold lowercases value after NFC composition so that precomposed and
// combining accents compare equal. Accents are kept.
func Fold(value string) string {
	// cases.Caser keeps state between calls and is not safe to share
	return cases.Lower(language.Und).String(norm.NFC.String(value))
}

// StripAccents removes combining marks: "DISPENSAÇÃO" becomes "DISPENSACAO".
func StripAccents(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}

// NormalizeIdentifier converts a string to a lower snake_case identifier.
// Runs of anything other than ASCII letters and digits collapse to one underscore.
func NormalizeIdentifier(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return ""
	}

	var b strings.Builder
	lastUnderscore := false

	for _, ch := range trimmed {
		isAlphaNum := (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
		if isAlphaNum {
			b.WriteRune(ch)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	return strings.Trim(b.String(), "_")
}

// HeaderKey normalizes a spreadsheet column header for alias lookup:
// "Local de Dispensação" and "LOCAL_DE_DISPENSACAO" both give "local_de_dispensacao".
func HeaderKey(header string) string {
	return NormalizeIdentifier(StripAccents(strings.TrimPrefix(header, "\ufeff")))
}
