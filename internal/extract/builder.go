package extract

import (
	"strings"

	"sjsage522/dealbite/internal/model"
)

// Context is the fixed per-page context attached to every deal of a run
type Context struct {
	Restaurant string
	Market     string
	SourceURL  string
}

// Builder turns page text into candidate deals
type Builder struct {
	normalizer *Normalizer
}

// NewBuilder creates a builder using the given title normalizer.
// A nil normalizer selects DefaultNormalizer.
func NewBuilder(n *Normalizer) *Builder {
	if n == nil {
		n = DefaultNormalizer()
	}
	return &Builder{normalizer: n}
}

// Build extracts the deals of one page. Deals sharing a title and the same
// ordered price tokens are reported once, first occurrence wins.
func (b *Builder) Build(text string, ctx Context) []model.Deal {
	var deals []model.Deal
	seen := make(map[string]struct{})

	for _, phrase := range Segment(text) {
		title := b.normalizer.Normalize(phrase)
		if title == "" {
			continue
		}
		prices := Tokenize(phrase)

		key := runKey(title, prices)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		deals = append(deals, model.Deal{
			Restaurant:    ctx.Restaurant,
			Market:        ctx.Market,
			Title:         title,
			StartingPrice: PickPrice(prices),
			AllPrices:     prices,
			SourceURL:     ctx.SourceURL,
		})
	}
	return deals
}

func runKey(title string, prices []string) string {
	return title + "\x00" + strings.Join(prices, "\x1f")
}
