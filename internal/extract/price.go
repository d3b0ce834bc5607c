package extract

import (
	"regexp"

	"sjsage522/dealbite/internal/model"
)

var priceRe = regexp.MustCompile(model.PriceTokenPattern)

// Tokenize returns every price token in text, left to right, duplicates kept
func Tokenize(text string) []string {
	return priceRe.FindAllString(text, -1)
}

// PickPrice returns the lowest parseable price among tokens, or nil when
// none parse.
func PickPrice(tokens []string) *float64 {
	var lowest *float64
	for _, tok := range tokens {
		v, ok := model.ParsePrice(tok)
		if !ok {
			continue
		}
		if lowest == nil || v < *lowest {
			lowest = model.Float(v)
		}
	}
	return lowest
}
