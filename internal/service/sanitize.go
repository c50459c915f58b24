package service

import (
	"html"
	"regexp"
	"strings"
)

// tagPattern matches HTML tags, including a trailing unterminated one.
var tagPattern = regexp.MustCompile(`<[^>]*>?`)

// sanitize prepares sender-supplied text for storage: trim, drop HTML tags,
// then escape what remains. Stripping alone is known-incomplete against
// malformed markup, so the surviving text is escaped as well and stored in
// its escaped form.
func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(tagPattern.ReplaceAllString(s, "")))
}

// sanitizeEmail normalizes an address for storage. Addresses are validated
// syntactically before this point, so only tag removal and lowercasing apply.
func sanitizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(tagPattern.ReplaceAllString(s, "")))
}
