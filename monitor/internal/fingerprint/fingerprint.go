// Package fingerprint derives stable dedupe keys for keyword mentions.
//
// The digest covers (document URL, matched keyword, snippet prefix). Two
// textually different snippets that agree on the truncated prefix collide
// on purpose: re-extraction jitter past the prefix must not cause a
// mention to be re-reported.
package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
)

// DefaultSnippetTruncation is how much of the snippet participates in the
// hash. Matches the persisted state produced by earlier deployments; do
// not change without migrating state.
const DefaultSnippetTruncation = 160

// Mention hashes (url, keyword, snippet[:truncation]) into a fixed-length
// hex string. Pure: no salt, no timestamp, stable across runs and
// restarts. truncation <= 0 selects DefaultSnippetTruncation.
func Mention(url, keyword, snippet string, truncation int) string {
	if truncation <= 0 {
		truncation = DefaultSnippetTruncation
	}
	if len(snippet) > truncation {
		snippet = snippet[:truncation]
	}
	h := sha1.New()
	h.Write([]byte(url))
	h.Write([]byte(keyword))
	h.Write([]byte(snippet))
	return hex.EncodeToString(h.Sum(nil))
}
