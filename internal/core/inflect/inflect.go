// Package inflect converts entity names between singular and plural form.
package inflect

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jinzhu/inflection"
)

// Inflector converts a word between singular and plural form.
type Inflector interface {
	Singularize(word string) string
	Pluralize(word string) string
}

// English is the default Inflector, backed by the jinzhu/inflection rules.
// Words are inflected in lower case; a leading capital is kept.
type English struct{}

func (English) Singularize(word string) string { return keepCase(word, inflection.Singular) }

func (English) Pluralize(word string) string { return keepCase(word, inflection.Plural) }

func keepCase(word string, fn func(string) string) string {
	if word == "" {
		return word
	}
	out := fn(strings.ToLower(word))
	first, _ := utf8.DecodeRuneInString(word)
	if unicode.IsUpper(first) {
		return Ucfirst(out)
	}
	return out
}

// Ucfirst upper-cases the first letter of s.
func Ucfirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Static is an Inflector with fixed answers, for tests and for names the
// English rules get wrong. Unknown words are returned unchanged.
type Static struct {
	Singular map[string]string
	Plural   map[string]string
}

func (s Static) Singularize(word string) string {
	if v, ok := s.Singular[word]; ok {
		return v
	}
	return word
}

func (s Static) Pluralize(word string) string {
	if v, ok := s.Plural[word]; ok {
		return v
	}
	return word
}
