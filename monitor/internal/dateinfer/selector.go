package dateinfer

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Hint phrases that typically precede a meeting date in board documents.
var hintPhrases = []string{
	"board of education",
	"boe",
	"meeting minutes",
	"regular meeting",
	"special meeting",
	"workshop meeting",
	"agenda",
}

// SelectorConfig tunes candidate scoring. The defaults reproduce the
// behavior the monitor has always had; the constants are empirical, not
// load-bearing.
type SelectorConfig struct {
	// FuturePenalty is added when a candidate is strictly after today.
	FuturePenalty float64
	// TitleBonus and URLBonus are subtracted for the authoritative origins.
	TitleBonus float64
	URLBonus   float64
	// AgeCap limits the age penalty (ageInDays/365) in points.
	AgeCap float64
	// HintRadius is the window size in characters on each side of a hint
	// phrase occurrence.
	HintRadius int
	// Now supplies "today" for scoring. Defaults to time.Now.
	Now func() time.Time
}

func (c *SelectorConfig) defaults() {
	if c.FuturePenalty == 0 {
		c.FuturePenalty = 10.0
	}
	if c.TitleBonus == 0 {
		c.TitleBonus = 1.0
	}
	if c.URLBonus == 0 {
		c.URLBonus = 0.5
	}
	if c.AgeCap == 0 {
		c.AgeCap = 10.0
	}
	if c.HintRadius == 0 {
		c.HintRadius = 200
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Selector picks one best meeting date from title, URL, and body evidence.
type Selector struct {
	cfg SelectorConfig
}

// NewSelector creates a Selector. A zero config gets defaults.
func NewSelector(cfg SelectorConfig) *Selector {
	cfg.defaults()
	return &Selector{cfg: cfg}
}

// Best returns the highest-ranked date among all candidates, or false if
// no parseable date evidence exists. Candidates from the title, URL, and
// hint windows are pooled; the whole body is scanned only when that pool
// is empty.
func (s *Selector) Best(title, url, body string) (time.Time, bool) {
	now := s.cfg.Now()

	var pool []Candidate
	for _, d := range ExtractCandidates(title, now) {
		pool = append(pool, Candidate{Date: d, Origin: OriginTitle})
	}
	for _, d := range ExtractCandidates(url, now) {
		pool = append(pool, Candidate{Date: d, Origin: OriginURL})
	}
	for _, win := range hintWindows(body, s.cfg.HintRadius) {
		for _, d := range ExtractCandidates(win, now) {
			pool = append(pool, Candidate{Date: d, Origin: OriginHint})
		}
	}

	// Last resort: full-body scan, only when nothing else produced a date.
	if len(pool) == 0 {
		for _, d := range ExtractCandidates(body, now) {
			pool = append(pool, Candidate{Date: d, Origin: OriginBody})
		}
	}
	if len(pool) == 0 {
		return time.Time{}, false
	}

	best := pool[0]
	bestScore := s.score(best, now)
	for _, c := range pool[1:] {
		sc := s.score(c, now)
		if sc < bestScore || (sc == bestScore && c.Date.After(best.Date)) {
			best = c
			bestScore = sc
		}
	}
	return best.Date, true
}

// score computes the rank of a candidate; lower is better.
func (s *Selector) score(c Candidate, now time.Time) float64 {
	var score float64
	if c.Date.After(now) {
		score += s.cfg.FuturePenalty
	}
	switch c.Origin {
	case OriginTitle:
		score -= s.cfg.TitleBonus
	case OriginURL:
		score -= s.cfg.URLBonus
	}
	ageDays := now.Sub(c.Date).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	penalty := ageDays / 365
	if penalty > s.cfg.AgeCap {
		penalty = s.cfg.AgeCap
	}
	return score + penalty
}

// hintWindows returns fixed-size slices of body around every occurrence
// of a meeting-context hint phrase.
func hintWindows(body string, radius int) []string {
	if body == "" {
		return nil
	}
	lower := lowerASCII(body)
	var wins []string
	for _, phrase := range hintPhrases {
		from := 0
		for {
			idx := strings.Index(lower[from:], phrase)
			if idx < 0 {
				break
			}
			idx += from
			lo := idx - radius
			if lo < 0 {
				lo = 0
			}
			hi := idx + len(phrase) + radius
			if hi > len(body) {
				hi = len(body)
			}
			for lo > 0 && !utf8.RuneStart(body[lo]) {
				lo--
			}
			for hi < len(body) && !utf8.RuneStart(body[hi]) {
				hi++
			}
			wins = append(wins, body[lo:hi])
			from = idx + len(phrase)
		}
	}
	return wins
}

// lowerASCII lowercases A-Z only, so every index into the result is a
// valid index into the original. Unicode folding can change byte length
// (İ grows from two bytes to three) and would misalign the windows.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
