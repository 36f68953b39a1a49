// Package search implements bounded breadth-first and depth-first traversal
// over an item graph.
package search

import (
	"github.com/pkg/errors"

	"github.com/agenthands/basket/internal/core/graph"
	"github.com/agenthands/basket/internal/core/model"
)

// Unbounded disables the depth limit.
const Unbounded = -1

// Graph is the read-only view the traversals need. *graph.ItemGraph
// satisfies it.
type Graph interface {
	HasNode(item string) bool
	Associations(item string) ([]model.Association, error)
}

type options struct {
	maxDepth int
}

type Option func(*options)

// WithMaxDepth limits exploration to d hops from the start. Nodes at depth d
// are reported but not expanded; d = 0 yields only the start.
func WithMaxDepth(d int) Option {
	return func(o *options) {
		o.maxDepth = d
	}
}

func applyOptions(opts []Option) (options, error) {
	o := options{maxDepth: Unbounded}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxDepth < 0 && o.maxDepth != Unbounded {
		return o, errors.Wrapf(graph.ErrInvalidArgument, "max depth must be >= 0, got %d", o.maxDepth)
	}
	return o, nil
}

func (o options) expand(depth int) bool {
	return o.maxDepth == Unbounded || depth < o.maxDepth
}

// BFS returns the hop-count distance from start to every node reachable
// within the depth bound.
func BFS(g Graph, start string, opts ...Option) (map[string]int, error) {
	_, depths, err := bfs(g, start, opts)
	return depths, err
}

// BFSOrder returns the nodes BFS reaches, in the order they are visited.
func BFSOrder(g Graph, start string, opts ...Option) ([]string, error) {
	order, _, err := bfs(g, start, opts)
	return order, err
}

func bfs(g Graph, start string, opts []Option) ([]string, map[string]int, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, nil, err
	}
	if !g.HasNode(start) {
		return nil, nil, errors.Wrapf(graph.ErrNotFound, "start item %q", start)
	}

	// Depth is recorded on first visit only. Level order guarantees the first
	// visit is along a shortest path.
	depths := map[string]int{start: 0}
	order := []string{start}
	queue := []string{start}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		depth := depths[node]
		if !o.expand(depth) {
			continue
		}

		neighbors, err := g.Associations(node)
		if err != nil {
			return nil, nil, err
		}
		for _, n := range neighbors {
			if _, seen := depths[n.Item]; seen {
				continue
			}
			depths[n.Item] = depth + 1
			order = append(order, n.Item)
			queue = append(queue, n.Item)
		}
	}

	return order, depths, nil
}

type frame struct {
	node  string
	depth int
}

// DFS returns the nodes reachable from start in depth-first visitation order.
// Each node appears once. The order is the preorder of a recursive DFS that
// follows neighbor insertion order.
func DFS(g Graph, start string, opts ...Option) ([]string, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	if !g.HasNode(start) {
		return nil, errors.Wrapf(graph.ErrNotFound, "start item %q", start)
	}

	var order []string
	// Shallowest depth each node has been expanded from.
	reached := make(map[string]int)
	stack := []frame{{node: start, depth: 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		prev, seen := reached[f.node]
		if seen && (o.maxDepth == Unbounded || prev <= f.depth) {
			continue
		}
		if !seen {
			order = append(order, f.node)
		}
		// Under a depth bound a node reached again by a shorter path is
		// expanded again so the reachable set matches BFS.
		reached[f.node] = f.depth

		if !o.expand(f.depth) {
			continue
		}

		neighbors, err := g.Associations(f.node)
		if err != nil {
			return nil, err
		}
		// Pushed in reverse so the first neighbor is explored first.
		for i := len(neighbors) - 1; i >= 0; i-- {
			next := neighbors[i].Item
			if d, ok := reached[next]; ok && (o.maxDepth == Unbounded || d <= f.depth+1) {
				continue
			}
			stack = append(stack, frame{node: next, depth: f.depth + 1})
		}
	}

	return order, nil
}
