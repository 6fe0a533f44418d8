// Package htmlsanitize checks that user-supplied text is free of markup.
//
// Announcement messages are plain text. A message that contains HTML tags
// or character references is refused outright; accepted text is stored
// exactly as written, never rewritten.
package htmlsanitize

import (
	"errors"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ErrMarkup is returned by PlainText when the input contains HTML.
var ErrMarkup = errors.New("markup is not allowed")

var strict = bluemonday.StrictPolicy()

// PlainText trims s and folds CRLF line endings to LF. It returns ErrMarkup
// when s contains anything the strict policy would not pass through as
// literal text: tags, comments, or entities such as "&lt;".
func PlainText(s string) (string, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	s = strings.ReplaceAll(s, "\r", "\n")
	if s == "" {
		return "", nil
	}
	// The sanitizer escapes the text it keeps, so for plain input its output
	// is exactly the escaped input.
	if strict.Sanitize(s) != html.EscapeString(s) {
		return "", ErrMarkup
	}
	return s, nil
}
