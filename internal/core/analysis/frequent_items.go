// Package analysis answers market basket questions over a built item graph:
// what is bought with an item, the top bundles, and the frequent pairs.
package analysis

import (
	"github.com/pkg/errors"

	"github.com/agenthands/basket/internal/core/graph"
	"github.com/agenthands/basket/internal/core/model"
	"github.com/agenthands/basket/internal/core/search"
	"github.com/agenthands/basket/internal/core/sorting"
)

// ItemsBoughtWith returns the item's neighbors whose co-occurrence weight is
// at least minFrequency, highest weight first. A limit <= 0 returns all.
func ItemsBoughtWith(g *graph.ItemGraph, item string, minFrequency, limit int) ([]model.Association, error) {
	neighbors, err := g.Associations(item)
	if err != nil {
		return nil, err
	}

	filtered := make([]model.Association, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Weight >= minFrequency {
			filtered = append(filtered, n)
		}
	}

	ranked := sorting.SortAssociationsByWeight(filtered)
	return truncate(ranked, limit), nil
}

// TopAssociations ranks the direct neighbors found within maxDepth hops of
// item and returns the top n. Items further than one hop have no edge to
// item and are skipped.
func TopAssociations(g *graph.ItemGraph, item string, n, maxDepth int) ([]model.Association, error) {
	reachable, err := search.BFSOrder(g, item, search.WithMaxDepth(maxDepth))
	if err != nil {
		return nil, errors.Wrap(err, "top associations")
	}

	var assocs []model.Association
	for _, node := range reachable {
		if node == item {
			continue
		}
		if w := g.EdgeWeight(item, node); w > 0 {
			assocs = append(assocs, model.Association{Item: node, Weight: w})
		}
	}

	ranked := sorting.SortAssociationsByWeight(assocs)
	return truncate(ranked, n), nil
}

// FrequentPairs lists every item pair seen together at least minFrequency
// times, most frequent first.
func FrequentPairs(g *graph.ItemGraph, minFrequency int) []model.Bundle {
	edges := g.Edges()

	filtered := make([]model.Bundle, 0, len(edges))
	for _, e := range edges {
		if e.Frequency >= minFrequency {
			filtered = append(filtered, e)
		}
	}

	return sorting.SortPairsByFrequency(filtered)
}

// TopBundles returns the n most frequent item pairs.
func TopBundles(g *graph.ItemGraph, n int) []model.Bundle {
	return truncate(FrequentPairs(g, 1), n)
}

func truncate[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
