// Package store holds the per-entity repositories. Each one wraps a single
// jsonstore collection and adds the queries and write rules of its entity.
package store

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dukerupert/homedash/internal/validation"
)

// foldKey returns the case-insensitive comparison key for s.
// cases.Caser values are stateful, so a fresh one is built per call.
func foldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// normalizeCategory trims s and returns it with an uppercase first letter
// and the remainder lowercased.
func normalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(string(r)) + cases.Lower(language.Und).String(s[size:])
}

func validated[T any](_ []T, _ *T, next *T) error {
	return validation.Struct(next)
}
