// Package scoring derives the read-time ranking signals of a deal. Nothing
// computed here is persisted, so formula changes re-rank all history.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"sjsage522/dealbite/internal/model"
)

const (
	// MissingPrice ranks deals without a usable price last
	MissingPrice = 999.0
	// MaxScore is the upper bound of a value score
	MaxScore = 10.0
	// MaxBoost caps the contribution of the savings signal
	MaxBoost = 3.0

	priceScale = 5.0
)

// EstimateSavings returns the spread between the highest and lowest distinct
// prices in tokens, or nil when fewer than two distinct prices parse.
// The spread is a weak proxy for a discount range, not a true saving.
func EstimateSavings(tokens []string) *float64 {
	distinct := make(map[float64]struct{})
	for _, tok := range tokens {
		if v, ok := model.ParsePrice(tok); ok {
			distinct[v] = struct{}{}
		}
	}
	if len(distinct) < 2 {
		return nil
	}

	values := make([]float64, 0, len(distinct))
	for v := range distinct {
		values = append(values, v)
	}
	sort.Float64s(values)

	return model.Float(round2(values[len(values)-1] - values[0]))
}

// ComputeValueScore maps a starting price and optional savings signal to a
// score in [0, 10]. Lower prices score higher; savings add a capped boost.
func ComputeValueScore(startingPrice, estimatedSavings *float64) float64 {
	price := MissingPrice
	if startingPrice != nil && *startingPrice >= 0 {
		price = *startingPrice
	}

	base := MaxScore / (1 + price/priceScale)

	boost := 0.0
	if estimatedSavings != nil {
		boost = math.Min(MaxBoost, *estimatedSavings)
	}

	return round2(clamp(base+boost, 0, MaxScore))
}

// Score attaches the derived fields to a stored deal
func Score(d model.Deal) model.ScoredDeal {
	savings := EstimateSavings(d.AllPrices)
	return model.ScoredDeal{
		Deal:             d,
		ID:               d.ID(),
		EstimatedSavings: savings,
		ValueScore:       ComputeValueScore(d.StartingPrice, savings),
	}
}

// ScoreAll scores deals, keeping their order
func ScoreAll(deals []model.Deal) []model.ScoredDeal {
	scored := make([]model.ScoredDeal, len(deals))
	for i, d := range deals {
		scored[i] = Score(d)
	}
	return scored
}

// Better reports whether a ranks ahead of b: higher score first, then
// higher savings signal, with a missing signal counted as zero.
func Better(a, b model.ScoredDeal) bool {
	if a.ValueScore != b.ValueScore {
		return a.ValueScore > b.ValueScore
	}
	return savingsOrZero(a) > savingsOrZero(b)
}

// Rank sorts deals best first. Equal deals keep their incoming order.
func Rank(deals []model.ScoredDeal) {
	sort.SliceStable(deals, func(i, j int) bool {
		return Better(deals[i], deals[j])
	})
}

// Best returns the top ranked deal, or nil for an empty list. Among equal
// deals the earliest one wins.
func Best(deals []model.ScoredDeal) *model.ScoredDeal {
	if len(deals) == 0 {
		return nil
	}
	best := deals[0]
	for _, d := range deals[1:] {
		if Better(d, best) {
			best = d
		}
	}
	return &best
}

// Reason describes why a deal was picked, from whichever price signals it has
func Reason(d model.ScoredDeal) string {
	var parts []string
	if d.EstimatedSavings != nil {
		parts = append(parts, fmt.Sprintf("estimated savings of $%.2f", *d.EstimatedSavings))
	}
	if d.StartingPrice != nil {
		parts = append(parts, fmt.Sprintf("starting at $%.2f", *d.StartingPrice))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Highest value score (%.2f)", d.ValueScore)
	}
	return fmt.Sprintf("Best value: %s (score %.2f)", strings.Join(parts, ", "), d.ValueScore)
}

func savingsOrZero(d model.ScoredDeal) float64 {
	if d.EstimatedSavings == nil {
		return 0
	}
	return *d.EstimatedSavings
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
