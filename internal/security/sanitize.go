// Package security holds input hygiene helpers shared by the domain services.
package security

import (
	"html"
	"path"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips every tag. bluemonday policies are safe for concurrent use
// once built.
var strict = bluemonday.StrictPolicy()

// PlainText removes any markup from user supplied free text and returns the
// trimmed, unescaped remainder.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Filename reduces an uploaded file name to a safe object-key segment.
func Filename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}
