package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/basket/internal/core/graph"
)

func buildGraph(t *testing.T, edges ...[2]string) *graph.ItemGraph {
	t.Helper()
	g := graph.New()
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1], 1))
	}
	return g
}

func chain(t *testing.T) *graph.ItemGraph {
	return buildGraph(t, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"})
}

func keys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestBFS_SingleNode(t *testing.T) {
	g := graph.New()
	g.AddNode("bread")

	depths, err := BFS(g, "bread")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"bread": 0}, depths)
}

func TestBFS_Chain(t *testing.T) {
	depths, err := BFS(chain(t), "a")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}, depths)
}

func TestBFS_MaxDepth(t *testing.T) {
	g := chain(t)

	depths, err := BFS(g, "a", WithMaxDepth(1))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 0, "b": 1}, depths)

	depths, err = BFS(g, "a", WithMaxDepth(0))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 0}, depths)

	depths, err = BFS(g, "b", WithMaxDepth(1))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1, "b": 0, "c": 1}, depths)
}

func TestBFS_ShortestDepth(t *testing.T) {
	// a-b-c-d plus a shortcut a-d.
	g := buildGraph(t, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"}, [2]string{"a", "d"})

	depths, err := BFS(g, "a")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 2, "d": 1}, depths)
}

func TestBFS_Cycle(t *testing.T) {
	g := buildGraph(t, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"})

	depths, err := BFS(g, "a")
	require.NoError(t, err)
	assert.Len(t, depths, 3)
	assert.Equal(t, map[string]int{"a": 0, "b": 1, "c": 1}, depths)
}

func TestBFS_Disconnected(t *testing.T) {
	g := buildGraph(t, [2]string{"a", "b"}, [2]string{"x", "y"})
	g.AddNode("lonely")

	depths, err := BFS(g, "a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys(depths))
}

func TestBFS_NotFound(t *testing.T) {
	_, err := BFS(graph.New(), "a")
	assert.ErrorIs(t, err, graph.ErrNotFound)

	_, err = BFSOrder(chain(t), "z")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestBFS_NegativeDepth(t *testing.T) {
	_, err := BFS(chain(t), "a", WithMaxDepth(-2))
	assert.ErrorIs(t, err, graph.ErrInvalidArgument)
}

func TestBFSOrder_LevelByLevel(t *testing.T) {
	// a has children b, c; b has child d; c has child e.
	g := buildGraph(t, [2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "d"}, [2]string{"c", "e"})

	order, err := BFSOrder(g, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, order)
}

func TestDFS_SingleNode(t *testing.T) {
	g := graph.New()
	g.AddNode("bread")

	order, err := DFS(g, "bread")
	require.NoError(t, err)
	assert.Equal(t, []string{"bread"}, order)
}

func TestDFS_VisitsDepthFirst(t *testing.T) {
	g := buildGraph(t, [2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "d"}, [2]string{"c", "e"})

	order, err := DFS(g, "a")
	require.NoError(t, err)
	require.Len(t, order, 5)
	assert.Equal(t, "a", order[0])

	// Whichever child is entered first, its subtree is finished before the
	// other child is visited.
	pos := make(map[string]int)
	for i, n := range order {
		pos[n] = i
	}
	if pos["b"] < pos["c"] {
		assert.Less(t, pos["d"], pos["c"])
	} else {
		assert.Less(t, pos["e"], pos["b"])
	}
}

func TestDFS_MaxDepth(t *testing.T) {
	g := chain(t)

	order, err := DFS(g, "a", WithMaxDepth(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)

	order, err = DFS(g, "a", WithMaxDepth(0))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, order)
}

func TestDFS_MaxDepthMatchesBFSWithShortcut(t *testing.T) {
	// The long way round reaches d at depth 3 first; the shortcut a-d puts it
	// at depth 1, from where e is within reach.
	g := buildGraph(t,
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"},
		[2]string{"a", "d"}, [2]string{"d", "e"},
	)

	for depth := 0; depth <= 4; depth++ {
		t.Run(fmt.Sprintf("depth=%d", depth), func(t *testing.T) {
			depths, err := BFS(g, "a", WithMaxDepth(depth))
			require.NoError(t, err)
			order, err := DFS(g, "a", WithMaxDepth(depth))
			require.NoError(t, err)

			assert.ElementsMatch(t, keys(depths), order)
			assert.Len(t, order, len(depths), "no duplicate visits")
		})
	}
}

func TestDFS_Cycle(t *testing.T) {
	g := buildGraph(t, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"})

	order, err := DFS(g, "a")
	require.NoError(t, err)
	assert.Len(t, order, 3)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, order)
}

func TestDFS_Disconnected(t *testing.T) {
	g := buildGraph(t, [2]string{"a", "b"}, [2]string{"x", "y"})

	order, err := DFS(g, "x")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y"}, order)
}

func TestDFS_NotFound(t *testing.T) {
	_, err := DFS(graph.New(), "a")
	assert.ErrorIs(t, err, graph.ErrNotFound)
}

func TestBFSAndDFS_SameReachableSet(t *testing.T) {
	g := buildGraph(t,
		[2]string{"bread", "milk"}, [2]string{"milk", "eggs"}, [2]string{"eggs", "bread"},
		[2]string{"eggs", "cheese"}, [2]string{"cheese", "wine"}, [2]string{"butter", "bread"},
		[2]string{"soap", "sponge"},
	)

	for _, start := range g.Nodes() {
		depths, err := BFS(g, start)
		require.NoError(t, err)
		order, err := DFS(g, start)
		require.NoError(t, err)
		assert.ElementsMatch(t, keys(depths), order, "start %s", start)
	}
}

func TestLargeGraph(t *testing.T) {
	// A long path would overflow a recursive DFS on small stacks; the explicit
	// stack handles it.
	g := graph.New()
	const n = 20000
	for i := 0; i < n-1; i++ {
		require.NoError(t, g.AddEdge(fmt.Sprintf("item_%d", i), fmt.Sprintf("item_%d", i+1), 1))
	}

	order, err := DFS(g, "item_0")
	require.NoError(t, err)
	assert.Len(t, order, n)
	assert.Equal(t, "item_19999", order[n-1])

	depths, err := BFS(g, "item_0")
	require.NoError(t, err)
	assert.Equal(t, n-1, depths["item_19999"])
}
