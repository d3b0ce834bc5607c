package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"sjsage522/dealbite/helpers"
)

// Phrase length window, inclusive, in characters
const (
	MinPhraseLength = 20
	MaxPhraseLength = 220
)

// A run of non-period text holding a dollar amount. The amount may swallow
// one trailing period, so "$4. Plus ..." continues the same phrase.
var phraseRe = regexp.MustCompile(`[^.]*\$\d+(?:\.\d{0,2})?[^.]*`)

// Segment splits page text into distinct candidate phrases in first-seen
// order. Only phrases holding a dollar amount and fitting the length window
// are returned.
func Segment(text string) []string {
	text = helpers.CollapseWhitespace(text)

	var phrases []string
	seen := make(map[string]struct{})
	for _, m := range phraseRe.FindAllString(text, -1) {
		p := strings.TrimSpace(m)
		n := utf8.RuneCountInString(p)
		if n < MinPhraseLength || n > MaxPhraseLength {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		phrases = append(phrases, p)
	}
	return phrases
}
