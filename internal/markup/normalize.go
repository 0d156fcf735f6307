// Package markup normalizes description text and detects structural markup cues.
package markup

import (
	"regexp"
	"strings"
)

var manyBlanks = regexp.MustCompile(`\n{3,}`)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize converts CRLF and lone CR to LF, trims surrounding whitespace and
// collapses three or more consecutive line breaks into exactly two.
func Normalize(text string) string {
	text = lineEndings.Replace(text)
	text = strings.TrimSpace(text)
	return manyBlanks.ReplaceAllString(text, "\n\n")
}
