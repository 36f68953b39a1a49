// Package community groups items into clusters of products that are bought
// together.
package community

import (
	"fmt"
	"strings"

	"github.com/agenthands/basket/internal/core/graph"
	"github.com/agenthands/basket/internal/core/model"
	"github.com/agenthands/basket/internal/core/search"
	"github.com/agenthands/basket/internal/core/sorting"
)

const DefaultMinSize = 2

type CommunityDetector interface {
	Detect(g *graph.ItemGraph) ([]model.Community, error)
}

// NewDetector selects a detector by name: "components" or "lpa".
func NewDetector(algorithm string, maxIterations, minSize int) (CommunityDetector, error) {
	switch strings.ToLower(algorithm) {
	case "", "lpa":
		d := NewLabelPropagationDetector()
		if maxIterations > 0 {
			d.MaxIterations = maxIterations
		}
		if minSize > 0 {
			d.MinSize = minSize
		}
		return d, nil
	case "components":
		d := NewComponentDetector()
		if minSize > 0 {
			d.MinSize = minSize
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported community algorithm: %s", algorithm)
	}
}

// ComponentDetector treats every connected component as a community.
type ComponentDetector struct {
	MinSize int
}

func NewComponentDetector() *ComponentDetector {
	return &ComponentDetector{MinSize: DefaultMinSize}
}

func (d *ComponentDetector) Detect(g *graph.ItemGraph) ([]model.Community, error) {
	visited := make(map[string]bool)
	var clusters [][]string

	for _, item := range g.Nodes() {
		if visited[item] {
			continue
		}
		component, err := search.BFSOrder(g, item)
		if err != nil {
			return nil, err
		}
		for _, member := range component {
			visited[member] = true
		}
		clusters = append(clusters, component)
	}

	return rank(g, clusters, d.MinSize), nil
}

// rank drops clusters below minSize and orders the rest by size, then by
// internal co-occurrence weight, largest first.
func rank(g *graph.ItemGraph, clusters [][]string, minSize int) []model.Community {
	communities := make([]model.Community, 0, len(clusters))
	for _, items := range clusters {
		if len(items) < minSize {
			continue
		}
		communities = append(communities, model.Community{
			Items:          items,
			InternalWeight: internalWeight(g, items),
		})
	}

	communities = sorting.MergeSort(communities, func(c model.Community) int { return c.InternalWeight }, sorting.Reverse(true))
	communities = sorting.MergeSort(communities, func(c model.Community) int { return len(c.Items) }, sorting.Reverse(true))
	for i := range communities {
		communities[i].ID = i + 1
	}
	return communities
}

func internalWeight(g *graph.ItemGraph, items []string) int {
	total := 0
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			total += g.EdgeWeight(items[i], items[j])
		}
	}
	return total
}
