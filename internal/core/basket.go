// Package core owns the current item graph snapshot and exposes the market
// basket queries over it.
//
// # Thread Safety
//
// Basket is safe for concurrent use. Readers work on an immutable snapshot
// loaded atomically; Rebuild builds a fresh graph and swaps it in. Rebuilds
// are serialized.
package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/agenthands/basket/internal/config"
	"github.com/agenthands/basket/internal/core/analysis"
	"github.com/agenthands/basket/internal/core/builder"
	"github.com/agenthands/basket/internal/core/community"
	"github.com/agenthands/basket/internal/core/graph"
	"github.com/agenthands/basket/internal/core/model"
	"github.com/agenthands/basket/internal/core/search"
	"github.com/agenthands/basket/internal/driver"
	"github.com/agenthands/basket/internal/loader"
)

var (
	// ErrNoSnapshot is returned by queries issued before the first build.
	ErrNoSnapshot = errors.New("no graph has been built yet")

	// ErrNoDriver is returned by Export when no Memgraph driver is configured.
	ErrNoDriver = errors.New("no graph driver configured")
)

// Snapshot is an immutable graph together with where it came from.
type Snapshot struct {
	ID           string
	BuiltAt      time.Time
	Transactions int
	Graph        *graph.ItemGraph
}

// Info summarizes the snapshot with the topN best connected items.
func (s *Snapshot) Info(topN int) model.SnapshotInfo {
	return model.SnapshotInfo{
		ID:           s.ID,
		BuiltAt:      s.BuiltAt,
		Transactions: s.Transactions,
		Stats:        analysis.Stats(s.Graph, topN),
	}
}

type Basket struct {
	Driver  driver.GraphDriver // nil disables Export
	Config  *config.Config
	Metrics *Metrics

	logger  *zap.Logger
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
	now     func() time.Time
}

// NewBasket wires a basket service. The driver may be nil when Memgraph is
// not configured; a nil config uses the defaults.
func NewBasket(d driver.GraphDriver, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*Basket, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	metrics, err := NewMetrics(reg)
	if err != nil {
		return nil, errors.Wrap(err, "register metrics")
	}

	return &Basket{
		Driver:  d,
		Config:  cfg,
		Metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Rebuild builds a new graph from the full transaction list and makes it the
// current snapshot.
func (b *Basket) Rebuild(ctx context.Context, transactions []model.Transaction) (*Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	g, err := builder.BuildGraph(transactions)
	if err != nil {
		return nil, errors.Wrap(err, "build graph")
	}
	return b.install(g, len(transactions), start), nil
}

// Append folds new transactions into a copy of the current graph and swaps
// the copy in. Without a snapshot it behaves like Rebuild.
func (b *Basket) Append(ctx context.Context, transactions []model.Transaction) (*Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	g := graph.New()
	previous := 0
	if snap := b.current.Load(); snap != nil {
		previous = snap.Transactions
		g = snap.Graph.Clone()
	}

	for _, tx := range transactions {
		if err := builder.AddTransaction(g, tx); err != nil {
			return nil, errors.Wrap(err, "append transaction")
		}
	}
	return b.install(g, previous+len(transactions), start), nil
}

// install must be called with mu held.
func (b *Basket) install(g *graph.ItemGraph, transactions int, start time.Time) *Snapshot {
	snap := &Snapshot{
		ID:           uuid.New().String(),
		BuiltAt:      b.now(),
		Transactions: transactions,
		Graph:        g,
	}
	b.current.Store(snap)

	elapsed := time.Since(start)
	b.Metrics.Builds.Inc()
	b.Metrics.BuildDuration.Observe(elapsed.Seconds())
	b.Metrics.Nodes.Set(float64(g.NodeCount()))
	b.Metrics.Edges.Set(float64(g.EdgeCount()))
	b.Metrics.Transactions.Set(float64(transactions))

	b.logger.Info("graph rebuilt",
		zap.String("snapshot_id", snap.ID),
		zap.Int("transactions", transactions),
		zap.Int("items", g.NodeCount()),
		zap.Int("pairs", g.EdgeCount()),
		zap.Duration("elapsed", elapsed),
	)
	return snap
}

// Load reads the configured data files and rebuilds from them.
func (b *Basket) Load(ctx context.Context, paths []string) (*Snapshot, error) {
	opts := loader.OptionsFromConfig(b.Config.Data)
	transactions, err := loader.LoadFiles(ctx, paths, opts, b.Config.Concurrency.Loaders)
	if err != nil {
		return nil, err
	}
	b.logger.Info("transactions loaded", zap.Strings("paths", paths), zap.Int("count", len(transactions)))
	return b.Rebuild(ctx, transactions)
}

// Current returns the snapshot queries run against.
func (b *Basket) Current() (*Snapshot, error) {
	snap := b.current.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

func (b *Basket) observe(query string, err error) {
	b.Metrics.Queries.WithLabelValues(query, resultLabel(err)).Inc()
	if err != nil && !errors.Is(err, graph.ErrNotFound) {
		b.logger.Debug("query failed", zap.String("query", query), zap.Error(err))
	}
}

// Stats summarizes the current snapshot.
func (b *Basket) Stats() (model.SnapshotInfo, error) {
	snap, err := b.Current()
	b.observe("stats", err)
	if err != nil {
		return model.SnapshotInfo{}, err
	}
	return snap.Info(b.Config.Query.Limit), nil
}

// Items lists every item of the current snapshot in insertion order.
func (b *Basket) Items() ([]string, error) {
	snap, err := b.Current()
	b.observe("items", err)
	if err != nil {
		return nil, err
	}
	return snap.Graph.Nodes(), nil
}

// Neighbors returns the item's direct neighbors in insertion order.
func (b *Basket) Neighbors(item string) ([]model.Association, error) {
	snap, err := b.Current()
	var assocs []model.Association
	if err == nil {
		assocs, err = snap.Graph.Associations(builder.NormalizeItem(item))
	}
	b.observe("neighbors", err)
	return assocs, err
}

// ItemsBoughtWith returns the items bought with item at least minFrequency
// times, highest weight first. limit <= 0 returns all of them.
func (b *Basket) ItemsBoughtWith(item string, minFrequency, limit int) ([]model.Association, error) {
	snap, err := b.Current()
	var assocs []model.Association
	if err == nil {
		assocs, err = analysis.ItemsBoughtWith(snap.Graph, builder.NormalizeItem(item), minFrequency, limit)
	}
	b.observe("bought_with", err)
	return assocs, err
}

// TopAssociations ranks the strongest n associations of item among the
// nodes found within maxDepth hops.
func (b *Basket) TopAssociations(item string, n, maxDepth int) ([]model.Association, error) {
	snap, err := b.Current()
	var assocs []model.Association
	if err == nil {
		assocs, err = analysis.TopAssociations(snap.Graph, builder.NormalizeItem(item), n, maxDepth)
	}
	b.observe("associations", err)
	return assocs, err
}

// FrequentPairs lists every pair seen together at least minFrequency times.
func (b *Basket) FrequentPairs(minFrequency int) ([]model.Bundle, error) {
	snap, err := b.Current()
	b.observe("pairs", err)
	if err != nil {
		return nil, err
	}
	return analysis.FrequentPairs(snap.Graph, minFrequency), nil
}

// TopBundles returns the n most frequent pairs.
func (b *Basket) TopBundles(n int) ([]model.Bundle, error) {
	snap, err := b.Current()
	b.observe("bundles", err)
	if err != nil {
		return nil, err
	}
	return analysis.TopBundles(snap.Graph, n), nil
}

// BFS returns the hop distance of every item within maxDepth of item. Use
// search.Unbounded for no limit.
func (b *Basket) BFS(item string, maxDepth int) (map[string]int, error) {
	snap, err := b.Current()
	var depths map[string]int
	if err == nil {
		depths, err = search.BFS(snap.Graph, builder.NormalizeItem(item), search.WithMaxDepth(maxDepth))
	}
	b.observe("bfs", err)
	return depths, err
}

// DFS returns the items within maxDepth of item in depth-first visit order.
func (b *Basket) DFS(item string, maxDepth int) ([]string, error) {
	snap, err := b.Current()
	var order []string
	if err == nil {
		order, err = search.DFS(snap.Graph, builder.NormalizeItem(item), search.WithMaxDepth(maxDepth))
	}
	b.observe("dfs", err)
	return order, err
}

// Communities groups the current items with the named algorithm. An empty
// algorithm uses the configured one.
func (b *Basket) Communities(algorithm string) ([]model.Community, error) {
	snap, err := b.Current()
	var communities []model.Community
	if err == nil {
		if algorithm == "" {
			algorithm = b.Config.Community.Algorithm
		}
		var detector community.CommunityDetector
		detector, err = community.NewDetector(algorithm, b.Config.Community.MaxIterations, b.Config.Community.MinSize)
		if err != nil {
			err = errors.Wrap(graph.ErrInvalidArgument, err.Error())
		} else {
			communities, err = detector.Detect(snap.Graph)
		}
	}
	b.observe("communities", err)
	return communities, err
}

func (b *Basket) BuildIndices(ctx context.Context) error {
	if b.Driver == nil {
		return ErrNoDriver
	}
	return b.Driver.BuildIndices(ctx)
}
