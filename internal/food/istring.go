/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package food

import (
	"maps"
	"slices"
)

// IString is a translatable name: a short code plus one value per language.
// Language codes are arbitrary strings compared literally.
type IString struct {
	shortCode   string
	names       map[string]string
	defaultLang string
}

// NewIString creates an IString with the given short code and no values.
func NewIString(shortCode string) IString {
	return IString{
		shortCode: shortCode,
		names:     make(map[string]string),
	}
}

// ShortCode returns the short code.
func (s IString) ShortCode() string {
	return s.shortCode
}

// SetValue sets the value for a language, creating it if needed.
func (s *IString) SetValue(lang, value string) {
	if s.names == nil {
		s.names = make(map[string]string)
	}
	s.names[lang] = value
}

// Value returns the value for a language.
func (s IString) Value(lang string) (string, bool) {
	v, ok := s.names[lang]
	return v, ok
}

// Default returns the default language code.
func (s IString) Default() string {
	return s.defaultLang
}

// SetDefault sets the default language code.
func (s *IString) SetDefault(lang string) {
	s.defaultLang = lang
}

// Languages returns the languages with a value, sorted.
func (s IString) Languages() []string {
	return slices.Sorted(maps.Keys(s.names))
}

// Values returns a copy of the language to value map.
func (s IString) Values() map[string]string {
	return maps.Clone(s.names)
}

// String returns the default-language value, falling back to the short code.
func (s IString) String() string {
	if v, ok := s.names[s.defaultLang]; ok && v != "" {
		return v
	}
	return s.shortCode
}

// Clone returns a copy that does not share the underlying map.
func (s IString) Clone() IString {
	out := s
	out.names = maps.Clone(s.names)
	if out.names == nil {
		out.names = make(map[string]string)
	}
	return out
}

// Equal reports whether two IStrings hold the same data.
func (s IString) Equal(o IString) bool {
	return s.shortCode == o.shortCode &&
		s.defaultLang == o.defaultLang &&
		maps.Equal(s.names, o.names)
}
