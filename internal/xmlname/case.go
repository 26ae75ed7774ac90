package xmlname

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// SnakeCase converts an identifier to snake_case.
func SnakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// KebabCase converts an identifier to kebab-case.
func KebabCase(s string) string {
	return strings.ReplaceAll(SnakeCase(s), "_", "-")
}

// CamelCase lowercases the first rune of an identifier.
func CamelCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// GoName converts an XML name into an exported Go identifier.
// Separator characters split words and each word is title-cased.
func GoName(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ':' || r == ' '
	})
	if len(words) == 0 {
		return "X"
	}
	var b strings.Builder
	for _, w := range words {
		b.WriteString(titleCaser.String(w))
	}
	name := b.String()
	if !unicode.IsLetter([]rune(name)[0]) {
		name = "X" + name
	}
	return name
}
