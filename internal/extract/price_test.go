package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Get $4 or $6.50 meals, $4 again, or $8.999 later")
	assert.Equal(t, []string{"$4", "$6.50", "$4", "$8.99"}, tokens)

	assert.Empty(t, Tokenize("no prices here"))
	assert.Empty(t, Tokenize("$ alone"))
}

func TestPickPrice(t *testing.T) {
	testCases := []struct {
		name     string
		tokens   []string
		expected *float64
	}{
		{name: "minimum", tokens: []string{"$8", "$4", "$6"}, expected: ptr(4)},
		{name: "ties", tokens: []string{"$4.00", "$4", "$9"}, expected: ptr(4)},
		{name: "malformed skipped", tokens: []string{"$abc", "$5.25"}, expected: ptr(5.25)},
		{name: "empty", tokens: nil, expected: nil},
		{name: "all malformed", tokens: []string{"$", "$x"}, expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := PickPrice(tc.tokens)
			if tc.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.expected, *got, 1e-9)
		})
	}
}

func ptr(v float64) *float64 { return &v }
