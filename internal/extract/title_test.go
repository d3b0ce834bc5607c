package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const bundleTitle = "Biggie Deals price points: $4 Biggie Bites, $6 Biggie Bag, $8 Biggie Bundle"

var normalizeCases = []struct {
	name     string
	phrase   string
	expected string
}{
	{
		name:     "call to action repeated",
		phrase:   "Order Now Order now Get a Dave's Single for $5",
		expected: "Get a Dave's Single for $5",
	},
	{
		name:     "tagline",
		phrase:   "Cover All Cravings with a 4 for $4 meal",
		expected: "with a 4 for $4 meal",
	},
	{
		name:     "question prefix",
		phrase:   "Hungry? Grab a Baconator combo for $9.99",
		expected: "Grab a Baconator combo for $9.99",
	},
	{
		name:     "short question suffix kept",
		phrase:   "Why wait? Fries $2",
		expected: "Why wait? Fries $2",
	},
	{
		name:     "marker truncation",
		phrase:   "Get a 6 pc nuggets for $2 available at participating restaurants",
		expected: "Get a 6 pc nuggets for $2",
	},
	{
		name:     "marker needs word boundary",
		phrase:   "Peach Frosty for $3 each",
		expected: "Peach Frosty for $3",
	},
	{
		name:     "punctuation trimmed",
		phrase:   " - Free fries with $1 purchase: ;",
		expected: "Free fries with $1 purchase",
	},
	{
		name:     "question then marker",
		phrase:   "Want more? Get a Biggie Bag for $5 with your choice of sandwich",
		expected: "Get a Biggie Bag for $5 with your",
	},
	{
		name:     "length cap",
		phrase:   "Get the " + strings.Repeat("big ", 30) + "$5",
		expected: "Get the " + strings.Repeat("big ", 20) + "bi",
	},
	{
		name:     "length cap retrims",
		phrase:   strings.Repeat("x", 89) + " more for $5",
		expected: strings.Repeat("x", 89),
	},
	{
		name:     "marker at start empties title",
		phrase:   "Each meal includes fries for $3 tonight",
		expected: "",
	},
}

func TestNormalize(t *testing.T) {
	n := DefaultNormalizer()
	for _, tc := range normalizeCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, n.Normalize(tc.phrase))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := DefaultNormalizer()
	for _, tc := range normalizeCases {
		once := n.Normalize(tc.phrase)
		assert.Equal(t, once, n.Normalize(once), tc.name)
	}
}

func TestNormalizeBundleOverride(t *testing.T) {
	n := DefaultNormalizer()

	phrases := []string{
		"Pick from $8, $6 or $4 menus now",
		"The $4 Biggie Bites are back, plus $6 and $8 options",
		"Check out our Value Price Points starting at $2 each",
		"Order Now Get the Biggie Bag for $4. Plus, save big with value price points on combos",
	}
	for _, p := range phrases {
		assert.Equal(t, bundleTitle, n.Normalize(p), p)
	}
}

func TestNormalizeWithoutOverrides(t *testing.T) {
	n := NewNormalizer()
	assert.Equal(t, "Pick from $8, $6 or $4 menus now", n.Normalize("Pick from $8, $6 or $4 menus now"))
	assert.Equal(t, []string{
		"strip-call-to-action",
		"strip-tagline",
		"split-question",
		"truncate-at-marker",
		"trim",
		"cap-length",
	}, n.Steps())
}

func TestNormalizeOverridePosition(t *testing.T) {
	n := DefaultNormalizer()
	assert.Equal(t, []string{
		"strip-call-to-action",
		"strip-tagline",
		"split-question",
		"biggie-bundle",
		"truncate-at-marker",
		"trim",
		"cap-length",
	}, n.Steps())

	// the override sees text after the question split, so a prefix holding
	// the trigger amounts no longer matches
	phrase := "Was it $4, $6 or $8? Now grab a Frosty for just $1 today"
	assert.Equal(t, "Now grab a Frosty for just $1 today", n.Normalize(phrase))
}
