// Package ident converts between the naming conventions the template grammar
// cares about: lower-kebab markup names and upper-camel component names.
package ident

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits s into its word parts. Boundaries are dashes, underscores,
// whitespace, a lower-or-digit to upper transition, and the last upper of an
// uppercase run followed by a lower ("HTMLElement" splits as HTML, Element).
// Digits bind to the current word ("h1" is one word).
func Words(s string) []string {
	var words []string
	var cur []rune

	runes := []rune(s)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}

	for i, r := range runes {
		if r == '-' || r == '_' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			switch {
			case (unicode.IsLower(prev) || unicode.IsDigit(prev)) && unicode.IsUpper(r):
				flush()
			case unicode.IsUpper(prev) && unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()

	return words
}

// Kebab returns s in lower-kebab-case: words lowercased, joined with dashes.
func Kebab(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "-")
}

// UpperCamel returns s in upper-camel-case: each word title-cased and
// concatenated. Acronym tails are lowered ("HTML" becomes "Html").
func UpperCamel(s string) string {
	caser := cases.Title(language.Und)
	var out strings.Builder
	for _, w := range Words(s) {
		out.WriteString(caser.String(w))
	}
	return out.String()
}

// IsKebab reports whether s is already in strict lower-kebab-case.
func IsKebab(s string) bool {
	return s == Kebab(s)
}

// IsUpperCamel reports whether s is already in upper-camel-case. Tag names
// passing this test denote components rather than markup tags.
func IsUpperCamel(s string) bool {
	return s == UpperCamel(s)
}
