// Package textutil normalizes caller-submitted page text before it is sent
// to extraction or safety backends.
package textutil

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	stripper = bluemonday.StrictPolicy()
	spaceRe  = regexp.MustCompile(`[ \t]{2,}`)
	blankRe  = regexp.MustCompile(`\n{3,}`)
)

// Clean strips HTML tags and collapses whitespace. Plain text passes
// through unchanged apart from whitespace normalization.
func Clean(text string) string {
	out := stripper.Sanitize(text)
	out = spaceRe.ReplaceAllString(out, " ")
	out = blankRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// Truncate cuts text at max bytes and appends a marker. Used to keep large
// page dumps inside model token limits.
func Truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "\n[... truncated]"
}
