package community

import (
	"sort"

	"github.com/agenthands/basket/internal/core/graph"
	"github.com/agenthands/basket/internal/core/model"
)

// LabelPropagationDetector implements community detection using Label
// Propagation Algorithm (LPA), weighting neighbor votes by co-occurrence.
type LabelPropagationDetector struct {
	MaxIterations int
	MinSize       int
}

func NewLabelPropagationDetector() *LabelPropagationDetector {
	return &LabelPropagationDetector{
		MaxIterations: 20,
		MinSize:       DefaultMinSize,
	}
}

func (d *LabelPropagationDetector) Detect(g *graph.ItemGraph) ([]model.Community, error) {
	if g.IsEmpty() {
		return nil, nil
	}

	// Each item starts with its own label.
	items := g.Nodes()
	labels := make(map[string]string, len(items))
	for _, item := range items {
		labels[item] = item
	}

	for iter := 0; iter < d.MaxIterations; iter++ {
		changeCount := 0

		for _, u := range items {
			neighbors, err := g.Associations(u)
			if err != nil {
				return nil, err
			}
			if len(neighbors) == 0 {
				continue
			}

			labelCounts := make(map[string]int)
			maxCount := 0
			for _, n := range neighbors {
				label := labels[n.Item]
				labelCounts[label] += n.Weight
				if labelCounts[label] > maxCount {
					maxCount = labelCounts[label]
				}
			}

			var candidates []string
			for label, count := range labelCounts {
				if count == maxCount {
					candidates = append(candidates, label)
				}
			}

			// Lexicographically largest label wins ties, for stability.
			sort.Strings(candidates)
			best := candidates[len(candidates)-1]

			if labels[u] != best {
				labels[u] = best
				changeCount++
			}
		}

		if changeCount == 0 {
			break
		}
	}

	// Group by label, keeping clusters in order of first member.
	index := make(map[string]int)
	var clusters [][]string
	for _, item := range items {
		label := labels[item]
		i, ok := index[label]
		if !ok {
			i = len(clusters)
			index[label] = i
			clusters = append(clusters, nil)
		}
		clusters[i] = append(clusters[i], item)
	}

	return rank(g, clusters, d.MinSize), nil
}
