// Package stringutil provides text normalization utilities shared by the
// sheet parsing heuristics. Spreadsheet tabs are maintained by hand, so all
// matching is done on lowercased, accent-stripped, trimmed text.
package stringutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, strips diacritics and trims surrounding
// whitespace. "  Enfermería " and "enfermeria" normalize to the same value.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(StripDiacritics(s)))
}

// StripDiacritics removes combining marks: "Educación" becomes "Educacion".
// Returns the input unchanged if the transform fails.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// TitleCase renders a program name for display: "PSICOLOGÍA  " becomes
// "Psicología". Uses Spanish casing rules since source sheets are in Spanish.
func TitleCase(s string) string {
	return cases.Title(language.Spanish).String(strings.TrimSpace(s))
}

// EqualFold reports whether a and b are equal after Normalize.
func EqualFold(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
