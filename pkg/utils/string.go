package utils

import "strings"

// StringHelper provides string utility functions.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// TrimWhitespace removes leading and trailing whitespace.
func (s *StringHelper) TrimWhitespace(str string) string {
	return strings.TrimSpace(str)
}

// NormalizeWhitespace replaces multiple whitespace with single space.
func (s *StringHelper) NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateRunes cuts str to at most maxRunes characters.
func (s *StringHelper) TruncateRunes(str string, maxRunes int) string {
	r := []rune(str)
	if len(r) <= maxRunes {
		return str
	}

	return string(r[:maxRunes])
}

// Ellipsize truncates str to maxRunes characters and appends "..." when shortened.
func (s *StringHelper) Ellipsize(str string, maxRunes int) string {
	short := s.TruncateRunes(str, maxRunes)
	if short == str {
		return str
	}

	return short + "..."
}
