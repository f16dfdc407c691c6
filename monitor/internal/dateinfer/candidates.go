// Package dateinfer extracts calendar-date candidates from noisy document
// text and selects a single best meeting date from competing signals.
package dateinfer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Origin identifies where a date candidate was found.
type Origin string

const (
	OriginTitle Origin = "title"
	OriginURL   Origin = "url"
	OriginHint  Origin = "hint"
	OriginBody  Origin = "body"
)

// Candidate is one parsed date with its evidence origin.
type Candidate struct {
	Date   time.Time
	Origin Origin
}

var datePatterns = []*regexp.Regexp{
	// October 21, 2024
	regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`),
	// Oct. 21, 2024 / Sept 21 2024
	regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)\.?\s+\d{1,2},?\s+\d{4}\b`),
	// 10/21/2024, 10/21/24
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
	// 2024-10-21
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
}

// 20241021 or 2024_10_21, in file names and URL slugs. Word boundaries
// don't work here (underscore is a word character), so digit fences are
// spelled out.
var compactDateRe = regexp.MustCompile(`(?:^|[^0-9])(\d{4})_?(\d{1,2})_?(\d{1,2})(?:[^0-9]|$)`)

const minPlausibleYear = 2015

// ExtractCandidates scans a text fragment for every recognized date syntax
// and parses each literal, month-first. Individual parse failures are
// skipped; other candidates are still returned. Candidates with a year
// outside [2015, now.Year()+1] are discarded as OCR noise.
func ExtractCandidates(fragment string, now time.Time) []time.Time {
	if fragment == "" {
		return nil
	}
	maxYear := now.Year() + 1

	var out []time.Time
	keep := func(d time.Time) {
		if d.Year() < minPlausibleYear || d.Year() > maxYear {
			return
		}
		out = append(out, d)
	}

	for _, re := range datePatterns {
		for _, lit := range re.FindAllString(fragment, -1) {
			if d, ok := parseLiteral(lit); ok {
				keep(d)
			}
		}
	}

	for _, m := range compactDateRe.FindAllStringSubmatch(fragment, -1) {
		if d, ok := parseCompact(m[1], m[2], m[3]); ok {
			keep(d)
		}
	}
	return out
}

// parseLiteral parses a matched date literal month-first. dateparse is
// permissive; the retry strips punctuation that trips it up in
// abbreviated forms ("Oct. 21, 2024").
func parseLiteral(lit string) (time.Time, bool) {
	if d, err := dateparse.ParseAny(lit); err == nil {
		return d, true
	}
	cleaned := strings.ReplaceAll(lit, ".", "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if d, err := dateparse.ParseAny(cleaned); err == nil {
		return d, true
	}
	return time.Time{}, false
}

// parseCompact decomposes 4-digit year + 1-2 digit month + 1-2 digit day.
// Range check only; no calendar validity beyond month 1-12, day 1-31.
func parseCompact(ys, ms, ds string) (time.Time, bool) {
	year, err := strconv.Atoi(ys)
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(ms)
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(ds)
	if err != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
