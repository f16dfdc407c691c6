// Package textscan finds keyword mentions in extracted document text and
// builds bounded, sentence-aware context snippets around them.
package textscan

import (
	"strings"
	"unicode"
)

// Normalize prepares raw extracted text for matching: line endings become
// \n, non-breaking and other exotic spaces become regular spaces, runs of
// horizontal whitespace collapse to a single space, and the result is
// trimmed. Newlines are preserved so sentence segmentation can still see
// paragraph breaks. Idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(text))

	prevSpace := false
	prevCR := false
	for _, r := range text {
		switch {
		case r == '\r':
			// CR or CRLF both become a single LF.
			sb.WriteByte('\n')
			prevSpace = false
			prevCR = true
			continue
		case r == '\n':
			if prevCR {
				prevCR = false
				continue // LF of a CRLF pair, already emitted
			}
			sb.WriteByte('\n')
			prevSpace = false
			continue
		case r == ' ', r == ' ', r == ' ':
			r = ' '
		}
		prevCR = false

		if r == ' ' || r == '\t' || unicode.Is(unicode.Zs, r) {
			if !prevSpace {
				sb.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		sb.WriteRune(r)
		prevSpace = false
	}

	return strings.TrimSpace(sb.String())
}

// Collapse flattens all whitespace (including newlines) to single spaces
// and trims. Used for snippet output and keyword canonicalization.
func Collapse(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		sb.WriteRune(r)
		prevSpace = false
	}
	return strings.TrimSpace(sb.String())
}
