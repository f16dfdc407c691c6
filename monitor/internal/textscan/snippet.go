package textscan

import "strings"

// Ellipsis marks snippet truncation at an original-text boundary.
const Ellipsis = "…"

// sentenceSpan is a half-open [start, end) range over the source text.
type sentenceSpan struct {
	start int
	end   int
}

// segmentSentences splits text into sentence-like units. A boundary is
// terminal punctuation (. ! ?) followed by whitespace, or a blank line.
// A period directly after a lone capital letter ("J. Smith") is treated
// as an abbreviation, not a boundary. Heuristic, not grammar.
func segmentSentences(text string) []sentenceSpan {
	var spans []sentenceSpan
	start := 0

	flush := func(end int) {
		for start < end && isSpaceByte(text[start]) {
			start++
		}
		if end > start {
			spans = append(spans, sentenceSpan{start: start, end: end})
		}
		start = end
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		// Blank line: paragraph break.
		if c == '\n' {
			j := i + 1
			for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
				j++
			}
			if j < len(text) && text[j] == '\n' {
				flush(i)
				i = j
				continue
			}
		}

		if c != '.' && c != '!' && c != '?' {
			continue
		}
		// Consume runs like "?!" or "..." as one terminator.
		j := i
		for j+1 < len(text) && (text[j+1] == '.' || text[j+1] == '!' || text[j+1] == '?') {
			j++
		}
		if j+1 < len(text) && !isSpaceByte(text[j+1]) {
			i = j
			continue
		}
		if c == '.' && i == j && isAbbreviation(text, i) {
			continue
		}
		flush(j + 1)
		i = j
	}
	flush(len(text))
	return spans
}

// isAbbreviation reports whether the period at pos terminates a lone
// capital letter, as in middle initials.
func isAbbreviation(text string, pos int) bool {
	if pos < 1 {
		return false
	}
	c := text[pos-1]
	if c < 'A' || c > 'Z' {
		return false
	}
	return pos < 2 || isSpaceByte(text[pos-2])
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

// BuildSnippet returns a whitespace-collapsed context string around the
// match span [start, end), at most targetLength characters plus ellipsis
// markers. It prefers whole sentences and falls back to a character
// window centered on the match. The matched literal is always contained
// in the result. Empty text yields an empty snippet.
func BuildSnippet(text string, start, end, targetLength int) string {
	if text == "" || start >= end || start < 0 || end > len(text) {
		return ""
	}
	if targetLength <= 0 {
		targetLength = 200
	}

	spans := segmentSentences(text)
	if len(spans) == 0 {
		return Collapse(text[start:end])
	}

	// Locate the sentence range covering the match.
	first, last := -1, -1
	for i, s := range spans {
		if first == -1 && start < s.end {
			first = i
		}
		if end <= s.end {
			last = i
			break
		}
	}
	if first == -1 {
		first = len(spans) - 1
	}
	if last == -1 {
		last = len(spans) - 1
	}

	lo, hi := spans[first].start, spans[last].end

	// A short matched sentence gets one neighbor on each side.
	if hi-lo < targetLength/2 {
		if first > 0 {
			lo = spans[first-1].start
		}
		if last < len(spans)-1 {
			hi = spans[last+1].end
		}
	}

	if hi-lo <= targetLength {
		return Collapse(text[lo:hi])
	}

	// Too wide: fixed-width window centered on the match midpoint.
	mid := (start + end) / 2
	lo = mid - targetLength/2
	hi = lo + targetLength
	if lo < 0 {
		lo, hi = 0, targetLength
	}
	if hi > len(text) {
		hi = len(text)
		lo = hi - targetLength
		if lo < 0 {
			lo = 0
		}
	}
	// The window must still cover the whole match.
	if lo > start {
		lo = start
	}
	if hi < end {
		hi = end
	}
	// Avoid slicing through a multibyte rune.
	for lo > 0 && lo < len(text) && isContinuationByte(text[lo]) {
		lo--
	}
	for hi < len(text) && isContinuationByte(text[hi]) {
		hi++
	}

	snippet := Collapse(text[lo:hi])
	var sb strings.Builder
	if lo > 0 {
		sb.WriteString(Ellipsis)
		sb.WriteByte(' ')
	}
	sb.WriteString(snippet)
	if hi < len(text) {
		sb.WriteByte(' ')
		sb.WriteString(Ellipsis)
	}
	return sb.String()
}

func isContinuationByte(c byte) bool {
	return c&0xC0 == 0x80
}
