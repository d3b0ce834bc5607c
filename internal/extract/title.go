package extract

import (
	"regexp"
	"strings"

	"sjsage522/dealbite/helpers"
	"sjsage522/dealbite/internal/model"
)

const (
	titleTrimSet      = " -:;,."
	minQuestionSuffix = 18
)

var (
	callToActionRe = regexp.MustCompile(`(?i)^(?:\s*order\s+now\b[\s!:,.-]*)+`)
	taglineRe      = regexp.MustCompile(`(?i)cover\s+all\s+cravings`)
	markerRe       = regexp.MustCompile(`(?i)\b(?:within|choice\s+of|includes|customers|available|each)\b`)
)

// Override replaces the whole title when Match fires. Overrides are tied to
// one page layout and are attached per source.
type Override struct {
	Name  string
	Match func(text string) bool
	Title string
}

// BiggieBundle collapses the recurring three-tier value menu banner into a
// single canonical title.
var BiggieBundle = Override{
	Name: "biggie-bundle",
	Match: func(text string) bool {
		lower := strings.ToLower(text)
		if strings.Contains(lower, "value price points") {
			return true
		}
		return strings.Contains(text, "$4") && strings.Contains(text, "$6") && strings.Contains(text, "$8")
	},
	Title: "Biggie Deals price points: $4 Biggie Bites, $6 Biggie Bag, $8 Biggie Bundle",
}

// step is one rewrite in the title pipeline. done stops the pipeline.
type step struct {
	name  string
	apply func(s string) (out string, done bool)
}

// Normalizer turns a phrase into a presentable deal title by running a fixed,
// ordered list of rewrites. Later steps see the output of earlier ones.
type Normalizer struct {
	steps []step
}

// NewNormalizer builds the pipeline with the given overrides evaluated after
// the question split and before marker truncation.
func NewNormalizer(overrides ...Override) *Normalizer {
	steps := []step{
		{name: "strip-call-to-action", apply: stripCallToAction},
		{name: "strip-tagline", apply: stripTagline},
		{name: "split-question", apply: splitQuestion},
	}
	for _, o := range overrides {
		steps = append(steps, step{name: o.Name, apply: func(s string) (string, bool) {
			if o.Match != nil && o.Match(s) {
				return o.Title, true
			}
			return s, false
		}})
	}
	steps = append(steps,
		step{name: "truncate-at-marker", apply: truncateAtMarker},
		step{name: "trim", apply: trimTitle},
		step{name: "cap-length", apply: capLength},
	)
	return &Normalizer{steps: steps}
}

// DefaultNormalizer carries the built-in overrides
func DefaultNormalizer() *Normalizer {
	return NewNormalizer(BiggieBundle)
}

// Normalize returns the title for phrase. An empty result is not a deal.
func (n *Normalizer) Normalize(phrase string) string {
	s := phrase
	for _, st := range n.steps {
		var done bool
		if s, done = st.apply(s); done {
			break
		}
	}
	return s
}

// Steps returns the rewrite names in execution order
func (n *Normalizer) Steps() []string {
	names := make([]string, len(n.steps))
	for i, st := range n.steps {
		names[i] = st.name
	}
	return names
}

func stripCallToAction(s string) (string, bool) {
	return callToActionRe.ReplaceAllString(s, ""), false
}

func stripTagline(s string) (string, bool) {
	if !taglineRe.MatchString(s) {
		return s, false
	}
	return helpers.CollapseWhitespace(taglineRe.ReplaceAllString(s, " ")), false
}

func splitQuestion(s string) (string, bool) {
	_, after, found := strings.Cut(s, "?")
	if !found {
		return s, false
	}
	after = strings.TrimSpace(after)
	if len([]rune(after)) >= minQuestionSuffix {
		return after, false
	}
	return s, false
}

func truncateAtMarker(s string) (string, bool) {
	if loc := markerRe.FindStringIndex(s); loc != nil {
		return s[:loc[0]], false
	}
	return s, false
}

func trimTitle(s string) (string, bool) {
	return strings.Trim(strings.TrimSpace(s), titleTrimSet), false
}

func capLength(s string) (string, bool) {
	r := []rune(s)
	if len(r) <= model.MaxTitleLength {
		return s, false
	}
	return strings.TrimRight(string(r[:model.MaxTitleLength]), titleTrimSet), false
}
