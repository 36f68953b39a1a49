package core

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/agenthands/basket/internal/driver"
)

type ExportResult struct {
	SnapshotID string `json:"snapshot_id"`
	Items      int    `json:"items"`
	Pairs      int    `json:"pairs"`
	Batches    int    `json:"batches"`
}

// Export writes the current snapshot to Memgraph as :Item nodes joined by
// CO_PURCHASED edges, then removes whatever an older snapshot left behind.
// Each pair is written once, from First to Second.
func (b *Basket) Export(ctx context.Context) (ExportResult, error) {
	res, err := b.export(ctx)
	if err != nil {
		b.Metrics.Exports.WithLabelValues("error").Inc()
		b.logger.Error("export failed", zap.String("snapshot_id", res.SnapshotID), zap.Error(err))
		return res, err
	}
	b.Metrics.Exports.WithLabelValues("ok").Inc()
	b.logger.Info("snapshot exported",
		zap.String("snapshot_id", res.SnapshotID),
		zap.Int("items", res.Items),
		zap.Int("pairs", res.Pairs),
		zap.Int("batches", res.Batches),
	)
	return res, nil
}

func (b *Basket) export(ctx context.Context) (ExportResult, error) {
	if b.Driver == nil {
		return ExportResult{}, ErrNoDriver
	}
	snap, err := b.Current()
	if err != nil {
		return ExportResult{}, err
	}

	res := ExportResult{SnapshotID: snap.ID}
	g := snap.Graph

	items := make([]any, 0, g.NodeCount())
	for _, item := range g.Nodes() {
		degree, err := g.Degree(item)
		if err != nil {
			return res, err
		}
		items = append(items, map[string]any{"name": item, "degree": degree})
	}

	edges := g.Edges()
	pairs := make([]any, 0, len(edges))
	for _, e := range edges {
		pairs = append(pairs, map[string]any{"first": e.First, "second": e.Second, "weight": e.Frequency})
	}

	params := map[string]any{
		"snapshot_id": snap.ID,
		"exported_at": b.now().Format(time.RFC3339),
	}

	n, err := b.writeBatches(ctx, driver.MergeItemsQuery, items, params)
	res.Batches += n
	if err != nil {
		return res, errors.Wrap(err, "export items")
	}
	res.Items = len(items)

	n, err = b.writeBatches(ctx, driver.MergeCoPurchasedQuery, pairs, params)
	res.Batches += n
	if err != nil {
		return res, errors.Wrap(err, "export pairs")
	}
	res.Pairs = len(pairs)

	stale := map[string]any{"snapshot_id": snap.ID}
	for _, query := range []string{driver.DeleteStaleEdgesQuery, driver.DeleteStaleItemsQuery} {
		if _, err := b.Driver.ExecuteQuery(ctx, query, stale); err != nil {
			return res, errors.Wrap(err, "delete stale data")
		}
	}
	return res, nil
}

// writeBatches runs query once per chunk of rows, passed as $rows next to
// the shared params.
func (b *Basket) writeBatches(ctx context.Context, query string, rows []any, shared map[string]any) (int, error) {
	size := b.Config.Memgraph.BatchSize
	if size <= 0 {
		size = len(rows)
	}

	batches := 0
	for start := 0; start < len(rows); start += size {
		if err := ctx.Err(); err != nil {
			return batches, err
		}
		end := min(start+size, len(rows))

		params := make(map[string]any, len(shared)+1)
		for k, v := range shared {
			params[k] = v
		}
		params["rows"] = rows[start:end]

		if _, err := b.Driver.ExecuteQuery(ctx, query, params); err != nil {
			return batches, err
		}
		batches++
		b.logger.Debug("batch written", zap.Int("rows", end-start), zap.Int("batch", batches))
	}
	return batches, nil
}
