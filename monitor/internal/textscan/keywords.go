package textscan

import "regexp"

// Keyword patterns, three groups: core program terms, childcare-adjacent
// terms, and program-context terms. Longer alternatives come first so a
// compound phrase ("universal pre-k") wins over its subterm ("pre-k") at
// the same position. The PEA acronym (NJ Preschool Education Aid) stays
// case-sensitive, otherwise every pea in a lunch menu would match.
var keywordPatterns = []string{
	// core program terms
	`universal\s+pre[-\s]?k(?:indergarten)?`,
	`universal\s+preschool`,
	`early\s+childhood`,
	`pre[-\s]?kindergarten`,
	`preschool`,
	`pre[-\s]?k`,
	`prek`,
	// childcare-adjacent terms
	`child\s?care`,
	`day\s?care`,
	`wrap[-\s]?around`,
	`before[-\s]?care`,
	`after[-\s]?care`,
	`extended\s+day`,
	// program-context terms
	`tuition[-\s]?free`,
	`tuition`,
	`lottery`,
	`enrollment`,
	`(?-i:PEA)`,
}

var keywordRe = regexp.MustCompile(`(?i)\b(?:` + joinAlternation(keywordPatterns) + `)\b`)

func joinAlternation(pats []string) string {
	out := ""
	for i, p := range pats {
		if i > 0 {
			out += "|"
		}
		out += p
	}
	return out
}

// Match is one keyword occurrence in a text.
type Match struct {
	Start   int
	End     int
	Keyword string // matched literal as it appears in the text
}

// FindMatches scans text in one pass and returns all keyword matches,
// non-overlapping, leftmost-first. Pure function.
func FindMatches(text string) []Match {
	if text == "" {
		return nil
	}
	idx := keywordRe.FindAllStringIndex(text, -1)
	if len(idx) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(idx))
	for _, span := range idx {
		matches = append(matches, Match{
			Start:   span[0],
			End:     span[1],
			Keyword: text[span[0]:span[1]],
		})
	}
	return matches
}
