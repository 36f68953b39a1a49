package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/basket/internal/core/builder"
	"github.com/agenthands/basket/internal/core/graph"
	"github.com/agenthands/basket/internal/core/model"
)

func sampleGraph(t *testing.T) *graph.ItemGraph {
	t.Helper()
	g, err := builder.BuildGraph([]model.Transaction{
		{"bread", "milk", "eggs"},
		{"bread", "butter"},
		{"milk", "butter", "cheese"},
		{"bread", "milk", "butter"},
		{"eggs", "cheese"},
	})
	require.NoError(t, err)
	return g
}

func TestItemsBoughtWith(t *testing.T) {
	g := sampleGraph(t)

	items, err := ItemsBoughtWith(g, "bread", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []model.Association{
		{Item: "milk", Weight: 2},
		{Item: "butter", Weight: 2},
		{Item: "eggs", Weight: 1},
	}, items)
}

func TestItemsBoughtWith_MinFrequency(t *testing.T) {
	g := sampleGraph(t)

	items, err := ItemsBoughtWith(g, "bread", 2, 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	for _, it := range items {
		assert.GreaterOrEqual(t, it.Weight, 2)
	}
}

func TestItemsBoughtWith_Limit(t *testing.T) {
	g := sampleGraph(t)

	items, err := ItemsBoughtWith(g, "milk", 1, 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, "bread", items[0].Item)
}

func TestItemsBoughtWith_Isolated(t *testing.T) {
	g := sampleGraph(t)
	g.AddNode("caviar")

	items, err := ItemsBoughtWith(g, "caviar", 1, 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = ItemsBoughtWith(g, "bread", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemsBoughtWith_NotFound(t *testing.T) {
	_, err := ItemsBoughtWith(sampleGraph(t), "caviar", 1, 0)
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestTopAssociations(t *testing.T) {
	g := sampleGraph(t)

	top, err := TopAssociations(g, "milk", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []model.Association{
		{Item: "bread", Weight: 2},
		{Item: "butter", Weight: 2},
	}, top)

	all, err := TopAssociations(g, "milk", 10, 1)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestTopAssociations_DeeperSearchOnlyDirectNeighbors(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddEdge("a", "b", 3))
	require.NoError(t, g.AddEdge("b", "c", 5))

	top, err := TopAssociations(g, "a", 5, 2)
	require.NoError(t, err)
	assert.Equal(t, []model.Association{{Item: "b", Weight: 3}}, top)
}

func TestTopAssociations_NotFound(t *testing.T) {
	_, err := TopAssociations(sampleGraph(t), "caviar", 5, 1)
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestFrequentPairs(t *testing.T) {
	g := sampleGraph(t)

	pairs := FrequentPairs(g, 1)
	assert.Len(t, pairs, g.EdgeCount())
	for i := 1; i < len(pairs); i++ {
		assert.GreaterOrEqual(t, pairs[i-1].Frequency, pairs[i].Frequency)
	}

	frequent := FrequentPairs(g, 2)
	assert.Equal(t, []model.Bundle{
		{First: "bread", Second: "milk", Frequency: 2},
		{First: "bread", Second: "butter", Frequency: 2},
		{First: "milk", Second: "butter", Frequency: 2},
	}, frequent)
}

func TestFrequentPairs_Empty(t *testing.T) {
	assert.Empty(t, FrequentPairs(graph.New(), 1))

	g := graph.New()
	g.AddNode("bread")
	g.AddNode("milk")
	assert.Empty(t, FrequentPairs(g, 1))
}

func TestTopBundles(t *testing.T) {
	g := sampleGraph(t)

	top := TopBundles(g, 1)
	require.Len(t, top, 1)
	assert.Equal(t, model.Bundle{First: "bread", Second: "milk", Frequency: 2}, top[0])

	assert.Len(t, TopBundles(g, 100), g.EdgeCount())
}

func TestEndToEnd_MilkAssociations(t *testing.T) {
	g, err := builder.BuildGraph([]model.Transaction{
		{"bread", "milk", "eggs"},
		{"bread", "milk", "butter"},
		{"milk", "eggs", "cheese"},
	})
	require.NoError(t, err)

	items, err := ItemsBoughtWith(g, "milk", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []model.Association{
		{Item: "bread", Weight: 2},
		{Item: "eggs", Weight: 2},
		{Item: "butter", Weight: 1},
		{Item: "cheese", Weight: 1},
	}, items)
}

func TestStats(t *testing.T) {
	g := sampleGraph(t)
	g.AddNode("caviar")

	stats := Stats(g, 2)
	assert.Equal(t, 6, stats.Nodes)
	assert.Equal(t, g.EdgeCount(), stats.Edges)
	assert.Equal(t, 1, stats.IsolatedItems)
	assert.Equal(t, g.TotalWeight(), stats.TotalWeight)
	assert.InDelta(t, float64(stats.Edges)/15.0, stats.Density, 1e-9)
	assert.Len(t, stats.TopItems, 2)
	assert.GreaterOrEqual(t, stats.TopItems[0].Weight, stats.TopItems[1].Weight)

	empty := Stats(graph.New(), 5)
	assert.Equal(t, 0, empty.Nodes)
	assert.Zero(t, empty.Density)
	assert.Empty(t, empty.TopItems)
}
