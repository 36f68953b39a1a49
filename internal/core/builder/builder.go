// Package builder turns transactions into an item co-occurrence graph.
package builder

import (
	"strings"

	"github.com/agenthands/basket/internal/core/graph"
	"github.com/agenthands/basket/internal/core/model"
)

// NormalizeItem trims and lower-cases an item. Blank input yields "".
func NormalizeItem(item string) string {
	return strings.ToLower(strings.TrimSpace(item))
}

// NormalizeTransaction normalizes every item, drops blanks and removes
// duplicates, keeping the first occurrence of each item.
func NormalizeTransaction(tx model.Transaction) []string {
	items := make([]string, 0, len(tx))
	seen := make(map[string]struct{}, len(tx))
	for _, raw := range tx {
		item := NormalizeItem(raw)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		items = append(items, item)
	}
	return items
}

// BuildGraph creates a graph with one node per item and, for every
// transaction, a weight-1 increment on each unordered pair of its distinct
// items. A transaction of k unique items contributes C(k,2) increments, so the
// result does not depend on transaction order.
//
// Runs in O(sum of m^2) for m unique items per transaction.
func BuildGraph(transactions []model.Transaction) (*graph.ItemGraph, error) {
	g := graph.New()
	for _, tx := range transactions {
		if err := AddTransaction(g, tx); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddTransaction folds one transaction into g.
func AddTransaction(g *graph.ItemGraph, tx model.Transaction) error {
	items := NormalizeTransaction(tx)

	// Single-item transactions still register their node.
	for _, item := range items {
		g.AddNode(item)
	}

	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if err := g.AddEdge(items[i], items[j], 1); err != nil {
				return err
			}
		}
	}
	return nil
}
