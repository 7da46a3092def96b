package model

import "strings"

// NormalizeName prepares an element name for lookup: one layer of matching
// quotes is stripped, surrounding whitespace trimmed, and the result
// lowercased. TMDL element names are compared case-insensitively.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(Unquote(name)))
}

// Unquote strips a single layer of matching single or double quotes.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
