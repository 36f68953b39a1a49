// Package graph provides the weighted undirected item co-occurrence graph.
//
// Nodes are normalized item names and an edge weight counts the transactions
// in which both items appeared. The adjacency is stored in both directions and
// both levels are insertion-ordered, so every enumeration (nodes, neighbors,
// edges) is deterministic and follows first insertion.
//
// # Thread Safety
//
// ItemGraph is NOT safe for concurrent mutation. It is built by a single
// writer and then shared read-only; see core.Basket.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/agenthands/basket/internal/core/model"
)

type adjacency = orderedmap.OrderedMap[string, int]

// ItemGraph is an undirected, weighted, simple graph over items.
type ItemGraph struct {
	adj   *orderedmap.OrderedMap[string, *adjacency]
	edges int
}

func New() *ItemGraph {
	return &ItemGraph{
		adj: orderedmap.New[string, *adjacency](),
	}
}

// Clone returns a deep copy that keeps every insertion order.
func (g *ItemGraph) Clone() *ItemGraph {
	c := &ItemGraph{
		adj:   orderedmap.New[string, *adjacency](g.adj.Len()),
		edges: g.edges,
	}
	for p := g.adj.Oldest(); p != nil; p = p.Next() {
		neighbors := orderedmap.New[string, int](p.Value.Len())
		for n := p.Value.Oldest(); n != nil; n = n.Next() {
			neighbors.Set(n.Key, n.Value)
		}
		c.adj.Set(p.Key, neighbors)
	}
	return c
}

// AddNode adds an isolated node. It is a no-op if the item already exists.
func (g *ItemGraph) AddNode(item string) {
	if _, ok := g.adj.Get(item); ok {
		return
	}
	g.adj.Set(item, orderedmap.New[string, int]())
}

// AddEdge adds weight to the edge between a and b, creating the nodes and
// the edge as needed. Repeated calls accumulate.
func (g *ItemGraph) AddEdge(a, b string, weight int) error {
	if a == "" || b == "" {
		return errors.Wrap(ErrInvalidArgument, "item names cannot be empty")
	}
	if a == b {
		return errors.Wrapf(ErrInvalidArgument, "self-loop on %q", a)
	}
	if weight <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "weight must be positive, got %d", weight)
	}

	g.AddNode(a)
	g.AddNode(b)

	na, _ := g.adj.Get(a)
	nb, _ := g.adj.Get(b)

	current, exists := na.Get(b)
	if !exists {
		g.edges++
	}
	na.Set(b, current+weight)
	nb.Set(a, current+weight)
	return nil
}

func (g *ItemGraph) HasNode(item string) bool {
	_, ok := g.adj.Get(item)
	return ok
}

func (g *ItemGraph) HasEdge(a, b string) bool {
	na, ok := g.adj.Get(a)
	if !ok {
		return false
	}
	_, ok = na.Get(b)
	return ok
}

// Neighbors returns a copy of the item's neighbor -> weight mapping.
func (g *ItemGraph) Neighbors(item string) (map[string]int, error) {
	na, ok := g.adj.Get(item)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "item %q", item)
	}
	out := make(map[string]int, na.Len())
	for p := na.Oldest(); p != nil; p = p.Next() {
		out[p.Key] = p.Value
	}
	return out, nil
}

// Associations returns the item's neighbors with their weights, in the order
// the edges were first created.
func (g *ItemGraph) Associations(item string) ([]model.Association, error) {
	na, ok := g.adj.Get(item)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "item %q", item)
	}
	out := make([]model.Association, 0, na.Len())
	for p := na.Oldest(); p != nil; p = p.Next() {
		out = append(out, model.Association{Item: p.Key, Weight: p.Value})
	}
	return out, nil
}

// EdgeWeight returns the co-occurrence weight of a and b, or 0 if there is
// no edge between them.
func (g *ItemGraph) EdgeWeight(a, b string) int {
	na, ok := g.adj.Get(a)
	if !ok {
		return 0
	}
	w, _ := na.Get(b)
	return w
}

func (g *ItemGraph) Nodes() []string {
	out := make([]string, 0, g.adj.Len())
	for p := g.adj.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Edges lists every undirected edge exactly once. The pair is reported in the
// orientation it was first encountered.
func (g *ItemGraph) Edges() []model.Bundle {
	out := make([]model.Bundle, 0, g.edges)
	seen := make(map[[2]string]struct{}, g.edges)

	for p := g.adj.Oldest(); p != nil; p = p.Next() {
		for n := p.Value.Oldest(); n != nil; n = n.Next() {
			key := canonical(p.Key, n.Key)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, model.Bundle{First: p.Key, Second: n.Key, Frequency: n.Value})
		}
	}
	return out
}

// RemoveNode deletes the item and every incident edge. No-op if absent.
func (g *ItemGraph) RemoveNode(item string) {
	na, ok := g.adj.Get(item)
	if !ok {
		return
	}
	for p := na.Oldest(); p != nil; p = p.Next() {
		if nb, ok := g.adj.Get(p.Key); ok {
			nb.Delete(item)
		}
		g.edges--
	}
	g.adj.Delete(item)
}

// RemoveEdge deletes the edge in both directions. No-op if absent.
func (g *ItemGraph) RemoveEdge(a, b string) {
	if !g.HasEdge(a, b) {
		return
	}
	na, _ := g.adj.Get(a)
	nb, _ := g.adj.Get(b)
	na.Delete(b)
	nb.Delete(a)
	g.edges--
}

func (g *ItemGraph) NodeCount() int {
	return g.adj.Len()
}

// EdgeCount returns the number of unique undirected edges.
func (g *ItemGraph) EdgeCount() int {
	return g.edges
}

func (g *ItemGraph) Degree(item string) (int, error) {
	na, ok := g.adj.Get(item)
	if !ok {
		return 0, errors.Wrapf(ErrNotFound, "item %q", item)
	}
	return na.Len(), nil
}

func (g *ItemGraph) IsEmpty() bool {
	return g.adj.Len() == 0
}

// TotalWeight sums the weights of all undirected edges.
func (g *ItemGraph) TotalWeight() int {
	total := 0
	for p := g.adj.Oldest(); p != nil; p = p.Next() {
		for n := p.Value.Oldest(); n != nil; n = n.Next() {
			total += n.Value
		}
	}
	return total / 2
}

func (g *ItemGraph) String() string {
	if g.IsEmpty() {
		return "Graph(empty)"
	}

	nodes := g.Nodes()
	sort.Strings(nodes)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Graph with %d nodes and %d edges:", g.NodeCount(), g.EdgeCount())
	for _, item := range nodes {
		neighbors, _ := g.Neighbors(item)
		if len(neighbors) == 0 {
			fmt.Fprintf(&sb, "\n  %s: (isolated)", item)
			continue
		}
		names := make([]string, 0, len(neighbors))
		for n := range neighbors {
			names = append(names, n)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, n := range names {
			parts[i] = fmt.Sprintf("%s(%d)", n, neighbors[n])
		}
		fmt.Fprintf(&sb, "\n  %s: %s", item, strings.Join(parts, ", "))
	}
	return sb.String()
}

func canonical(a, b string) [2]string {
	if b < a {
		return [2]string{b, a}
	}
	return [2]string{a, b}
}
