package monitor

import (
	"strings"
	"time"

	"github.com/boardwatch/boardwatch/monitor/internal/fingerprint"
	"github.com/boardwatch/boardwatch/monitor/internal/textscan"
)

// ScanResult is the outcome of scanning one document's text.
type ScanResult struct {
	Mentions []Mention `json:"mentions"`
	Date     time.Time `json:"date,omitzero"`
	HasDate  bool      `json:"has_date"`
}

// ScanText runs the core pipeline over already-extracted text: normalize,
// match keywords, build snippets, fingerprint, and infer the meeting date.
// Pure computation; no I/O and no state access.
func (s *Service) ScanText(title, url, rawText string) ScanResult {
	text := textscan.Normalize(rawText)
	if text == "" {
		return ScanResult{}
	}

	var res ScanResult
	seen := make(map[string]struct{})
	for _, m := range textscan.FindMatches(text) {
		snippet := textscan.BuildSnippet(text, m.Start, m.End, s.cfg.SnippetLength)
		keyword := strings.ToLower(textscan.Collapse(m.Keyword))
		fp := fingerprint.Mention(url, keyword, snippet, s.cfg.FingerprintTruncation)
		// One document can repeat the same sentence verbatim (headers,
		// footers); collapse those to a single mention.
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		res.Mentions = append(res.Mentions, Mention{
			Keyword:     keyword,
			Snippet:     snippet,
			Fingerprint: fp,
		})
	}

	res.Date, res.HasDate = s.selector.Best(title, url, text)
	return res
}
