//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/agenthands/basket/internal/config"
	"github.com/agenthands/basket/internal/core"
	"github.com/agenthands/basket/internal/core/model"
	"github.com/agenthands/basket/internal/driver"
)

func connect(t *testing.T) *driver.MemgraphDriver {
	t.Helper()
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}

	d, err := driver.NewMemgraphDriver(context.Background(), uri, os.Getenv("MEMGRAPH_USER"), os.Getenv("MEMGRAPH_PASSWORD"), "", zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close(context.Background()) })
	return d
}

func countExported(t *testing.T, d driver.GraphDriver, snapshotID string) (int64, int64) {
	t.Helper()
	res, err := d.ExecuteQuery(context.Background(), driver.CountExportedQuery, map[string]interface{}{"snapshot_id": snapshotID})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	items, _ := res.Records[0].Get("items")
	edges, _ := res.Records[0].Get("edges")
	return items.(int64), edges.(int64)
}

func TestExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := connect(t)

	cfg := config.Default()
	cfg.Memgraph.BatchSize = 2
	b, err := core.NewBasket(d, cfg, zaptest.NewLogger(t), nil)
	require.NoError(t, err)
	require.NoError(t, b.BuildIndices(ctx))

	snap, err := b.Rebuild(ctx, []model.Transaction{
		{"milk", "bread", "eggs"},
		{"milk", "bread", "butter"},
		{"milk", "eggs", "cheese"},
	})
	require.NoError(t, err)

	res, err := b.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Graph.NodeCount(), res.Items)
	assert.Equal(t, snap.Graph.EdgeCount(), res.Pairs)

	items, edges := countExported(t, d, snap.ID)
	assert.EqualValues(t, 5, items)
	assert.EqualValues(t, 7, edges)

	// A second export of a smaller snapshot replaces the first one.
	next, err := b.Rebuild(ctx, []model.Transaction{{"tea", "honey"}})
	require.NoError(t, err)
	_, err = b.Export(ctx)
	require.NoError(t, err)

	items, edges = countExported(t, d, next.ID)
	assert.EqualValues(t, 2, items)
	assert.EqualValues(t, 1, edges)

	items, _ = countExported(t, d, snap.ID)
	assert.Zero(t, items)
}
