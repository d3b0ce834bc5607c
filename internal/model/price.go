package model

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// PriceTokenPattern matches one currency token such as $4 or $8.99
const PriceTokenPattern = `\$\d+(?:\.\d{1,2})?`

var priceTokenRe = regexp.MustCompile(`^` + PriceTokenPattern + `$`)

// IsPriceToken reports whether s is exactly one well-formed price token
func IsPriceToken(s string) bool {
	return priceTokenRe.MatchString(s)
}

// ParsePrice converts a price token to its numeric value, ignoring the
// currency symbol.
func ParsePrice(token string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(token), "$"), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
