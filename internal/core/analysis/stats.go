package analysis

import (
	"github.com/agenthands/basket/internal/core/graph"
	"github.com/agenthands/basket/internal/core/model"
	"github.com/agenthands/basket/internal/core/sorting"
)

// Stats summarizes the graph. TopItems holds the topN best connected items
// with their degree as the weight.
func Stats(g *graph.ItemGraph, topN int) model.GraphStats {
	stats := model.GraphStats{
		Nodes:       g.NodeCount(),
		Edges:       g.EdgeCount(),
		TotalWeight: g.TotalWeight(),
	}

	if stats.Nodes > 1 {
		possible := stats.Nodes * (stats.Nodes - 1) / 2
		stats.Density = float64(stats.Edges) / float64(possible)
	}

	degrees := make([]model.Association, 0, stats.Nodes)
	for _, item := range g.Nodes() {
		d, err := g.Degree(item)
		if err != nil {
			continue
		}
		if d == 0 {
			stats.IsolatedItems++
		}
		degrees = append(degrees, model.Association{Item: item, Weight: d})
	}

	stats.TopItems = truncate(sorting.SortAssociationsByWeight(degrees), topN)
	return stats
}
