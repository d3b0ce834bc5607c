package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testContext = Context{
	Restaurant: "wendys",
	Market:     "austin-tx",
	SourceURL:  "https://www.wendys.com/deals",
}

func TestBuildEndToEnd(t *testing.T) {
	text := "Order Now Get the Biggie Bag for $4. Plus, save big with value price points on combos."

	deals := NewBuilder(nil).Build(text, testContext)
	require.Len(t, deals, 1)

	d := deals[0]
	assert.Equal(t, bundleTitle, d.Title)
	assert.Equal(t, []string{"$4"}, d.AllPrices)
	require.NotNil(t, d.StartingPrice)
	assert.Equal(t, 4.0, *d.StartingPrice)
	assert.Equal(t, "wendys", d.Restaurant)
	assert.Equal(t, "austin-tx", d.Market)
	assert.Equal(t, "https://www.wendys.com/deals", d.SourceURL)
	assert.True(t, d.CreatedAt.IsZero())
	assert.NoError(t, d.Validate())
}

func TestBuildRunLocalDedup(t *testing.T) {
	text := "Order Now Get a Frosty for $1 today. Get a Frosty for $1 today."

	deals := NewBuilder(nil).Build(text, testContext)
	require.Len(t, deals, 1)
	assert.Equal(t, "Get a Frosty for $1 today", deals[0].Title)
}

func TestBuildSameTitleDifferentPrices(t *testing.T) {
	text := "Value price points from $2 on everything. Value price points from $3 on sides too."

	deals := NewBuilder(nil).Build(text, testContext)
	require.Len(t, deals, 2)
	assert.Equal(t, deals[0].Title, deals[1].Title)
	assert.Equal(t, []string{"$2"}, deals[0].AllPrices)
	assert.Equal(t, []string{"$3"}, deals[1].AllPrices)
}

func TestBuildKeepsRawTokens(t *testing.T) {
	text := "Grab two Baconators for $8 or one for $4 and a second for $4 today."

	deals := NewBuilder(nil).Build(text, testContext)
	require.Len(t, deals, 1)
	assert.Equal(t, []string{"$8", "$4", "$4"}, deals[0].AllPrices)
	assert.Equal(t, 4.0, *deals[0].StartingPrice)
}

func TestBuildDropsEmptyTitles(t *testing.T) {
	deals := NewBuilder(nil).Build("Each meal includes fries for $3 tonight.", testContext)
	assert.Empty(t, deals)
}
