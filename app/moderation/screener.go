package moderation

import (
	"regexp"
	"strings"
)

// normalizePattern strips everything outside lowercase ASCII letters, digits
// and whitespace. Substituted characters become spaces, so punctuation splits
// words but evasion via substitution ("f*ck") is not caught. That is a known
// limitation of literal substring screening.
var normalizePattern = regexp.MustCompile(`[^a-z0-9\s]`)

type ScreenResult struct {
	Flagged bool
	Terms   []string // matched denylist terms, in denylist order, once each
}

// Screener scans free text against a fixed denylist using contiguous
// substring matching. Terms may match inside larger words.
type Screener struct {
	denylist []string
}

func NewScreener(denylist []string) *Screener {
	return &Screener{denylist: denylist}
}

func (s *Screener) Screen(text string) ScreenResult {
	if text == "" {
		return ScreenResult{}
	}

	normalized := normalizePattern.ReplaceAllString(strings.ToLower(text), " ")

	var terms []string
	for _, term := range s.denylist {
		if strings.Contains(normalized, term) {
			terms = append(terms, term)
		}
	}

	return ScreenResult{
		Flagged: len(terms) > 0,
		Terms:   terms,
	}
}
