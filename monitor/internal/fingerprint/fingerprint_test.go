package fingerprint

import (
	"strings"
	"testing"
)

func TestMention_Deterministic(t *testing.T) {
	// WHAT: Identical inputs always produce the identical hash.
	// WHY: The seen-set only works if fingerprints survive process restarts.
	a := Mention("https://x.example/m.pdf", "preschool", "a snippet", 160)
	b := Mention("https://x.example/m.pdf", "preschool", "a snippet", 160)
	if a != b {
		t.Errorf("%q != %q", a, b)
	}
	if len(a) != 40 {
		t.Errorf("hash length = %d, want 40 hex chars", len(a))
	}
}

func TestMention_AnyInputChangesHash(t *testing.T) {
	// WHAT: Changing url, keyword, or snippet changes the output.
	base := Mention("u", "k", "s", 160)
	if Mention("u2", "k", "s", 160) == base {
		t.Error("url change did not change hash")
	}
	if Mention("u", "k2", "s", 160) == base {
		t.Error("keyword change did not change hash")
	}
	if Mention("u", "k", "s2", 160) == base {
		t.Error("snippet change did not change hash")
	}
}

func TestMention_TruncationCollision(t *testing.T) {
	// WHAT: Snippets identical through the truncation length collide.
	// WHY: Deliberate: tail jitter from re-extraction must dedupe.
	prefix := strings.Repeat("p", 160)
	a := Mention("u", "k", prefix+"tail one", 160)
	b := Mention("u", "k", prefix+"tail two", 160)
	if a != b {
		t.Error("expected collision for identical 160-char prefixes")
	}
	// A difference inside the prefix must not collide.
	c := Mention("u", "k", "q"+prefix[1:]+"tail one", 160)
	if c == a {
		t.Error("prefix change collided")
	}
}

func TestMention_DistinctURLsNeverCrossDedupe(t *testing.T) {
	// WHAT: The same (keyword, snippet) on two documents yields two hashes.
	a := Mention("https://a.example/doc.pdf", "pre-k", "identical snippet", 160)
	b := Mention("https://b.example/doc.pdf", "pre-k", "identical snippet", 160)
	if a == b {
		t.Error("cross-document collision")
	}
}

func TestMention_DefaultTruncation(t *testing.T) {
	// WHAT: Non-positive truncation falls back to the deployment default.
	a := Mention("u", "k", strings.Repeat("s", 300), 0)
	b := Mention("u", "k", strings.Repeat("s", 300), DefaultSnippetTruncation)
	if a != b {
		t.Errorf("default truncation mismatch")
	}
}
