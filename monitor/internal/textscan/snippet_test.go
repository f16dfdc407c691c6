package textscan

import (
	"strings"
	"testing"
)

func TestBuildSnippet_ContainsMatchedLiteral(t *testing.T) {
	// WHAT: Every snippet contains the exact matched keyword.
	// WHY: The snippet is the human evidence for the match; losing the
	// keyword would make the report unverifiable.
	text := "The district budget passed. The committee discussed preschool expansion at length. Next meeting in May."
	for _, m := range FindMatches(text) {
		snip := BuildSnippet(text, m.Start, m.End, 200)
		if !strings.Contains(snip, m.Keyword) {
			t.Errorf("snippet %q does not contain %q", snip, m.Keyword)
		}
	}
}

func TestBuildSnippet_ShortSentenceWidensToNeighbors(t *testing.T) {
	// WHAT: A matched sentence shorter than half the target pulls in the
	// previous and next sentences.
	text := "First item on the agenda. Preschool was approved. Funding follows in March."
	m := FindMatches(text)[0]
	snip := BuildSnippet(text, m.Start, m.End, 200)
	if !strings.Contains(snip, "First item") {
		t.Errorf("previous sentence missing: %q", snip)
	}
	if !strings.Contains(snip, "Funding follows") {
		t.Errorf("next sentence missing: %q", snip)
	}
}

func TestBuildSnippet_LongSentenceFallsBackToWindow(t *testing.T) {
	// WHAT: A sentence exceeding the target is clipped to a centered
	// character window with ellipsis markers.
	long := strings.Repeat("budget line item review ", 30) // ~720 chars, no terminator
	text := long + "preschool " + long
	m := FindMatches(text)[0]
	snip := BuildSnippet(text, m.Start, m.End, 200)
	if !strings.Contains(snip, "preschool") {
		t.Fatalf("keyword missing from %q", snip)
	}
	if !strings.HasPrefix(snip, Ellipsis) || !strings.HasSuffix(snip, Ellipsis) {
		t.Errorf("expected ellipsis on both ends: %q", snip)
	}
	// Collapsed body must respect the cap (plus markers and joining spaces).
	if len(snip) > 200+2*len(Ellipsis)+2 {
		t.Errorf("snippet too long: %d chars", len(snip))
	}
}

func TestBuildSnippet_NoEllipsisAtTextBoundary(t *testing.T) {
	// WHAT: A window touching the start of the text gets no leading marker.
	text := "preschool " + strings.Repeat("and more budget discussion ", 30)
	m := FindMatches(text)[0]
	snip := BuildSnippet(text, m.Start, m.End, 120)
	if strings.HasPrefix(snip, Ellipsis) {
		t.Errorf("unexpected leading ellipsis: %q", snip)
	}
	if !strings.HasSuffix(snip, Ellipsis) {
		t.Errorf("missing trailing ellipsis: %q", snip)
	}
}

func TestBuildSnippet_AbbreviationDoesNotSplit(t *testing.T) {
	// WHAT: A middle initial's period is not a sentence boundary.
	text := "Motion by J. Smith to expand preschool. Seconded and carried."
	m := FindMatches(text)[0]
	snip := BuildSnippet(text, m.Start, m.End, 200)
	if !strings.Contains(snip, "J. Smith") {
		t.Errorf("abbreviation split the sentence: %q", snip)
	}
}

func TestBuildSnippet_BlankLineIsBoundary(t *testing.T) {
	// WHAT: A blank line separates sentence units even without punctuation.
	text := "AGENDA ITEM 4\n\nPreschool expansion update was presented\n\nAGENDA ITEM 5"
	m := FindMatches(text)[0]
	snip := BuildSnippet(text, m.Start, m.End, 40)
	if !strings.Contains(snip, "Preschool") {
		t.Fatalf("keyword missing: %q", snip)
	}
}

func TestBuildSnippet_OutputIsCollapsed(t *testing.T) {
	// WHAT: The snippet has no newlines or doubled spaces.
	text := "The  committee\nmet.   Preschool   enrollment\nwas   reviewed. Done."
	norm := Normalize(text)
	m := FindMatches(norm)[0]
	snip := BuildSnippet(norm, m.Start, m.End, 200)
	if strings.Contains(snip, "\n") || strings.Contains(snip, "  ") {
		t.Errorf("snippet not collapsed: %q", snip)
	}
}

func TestBuildSnippet_EmptyInput(t *testing.T) {
	// WHAT: Degenerate inputs yield an empty snippet, never a panic.
	if got := BuildSnippet("", 0, 0, 200); got != "" {
		t.Errorf("got %q, want empty", got)
	}
	if got := BuildSnippet("abc", 2, 1, 200); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
