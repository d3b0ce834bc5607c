package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegment(t *testing.T) {
	text := "Try the Dave's Single combo for $7.49 today. Frosty only costs $1 this week at participating stores."
	assert.Equal(t, []string{
		"Try the Dave's Single combo for $7.49 today",
		"Frosty only costs $1 this week at participating stores",
	}, Segment(text))
}

func TestSegmentPeriodAfterAmount(t *testing.T) {
	text := "Order Now Get the Biggie Bag for $4. Plus, save big with value price points on combos."
	assert.Equal(t, []string{
		"Order Now Get the Biggie Bag for $4. Plus, save big with value price points on combos",
	}, Segment(text))
}

func TestSegmentLengthWindow(t *testing.T) {
	long := "Get " + strings.Repeat("extra ", 40) + "for $3"
	text := "Fries $1. " + long + ". A perfectly sized deal for $2 here."

	assert.Equal(t, []string{"A perfectly sized deal for $2 here"}, Segment(text))
}

func TestSegmentDeduplicates(t *testing.T) {
	text := "Get a Biggie Bag for only $5 today.   Get a Biggie Bag for only $5 today.\nNothing else."
	assert.Equal(t, []string{"Get a Biggie Bag for only $5 today"}, Segment(text))
}

func TestSegmentWithoutAmounts(t *testing.T) {
	assert.Empty(t, Segment("Welcome to our deals page. Check back soon."))
	assert.Empty(t, Segment(""))
}
