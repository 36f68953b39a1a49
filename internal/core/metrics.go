package core

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agenthands/basket/internal/core/graph"
)

const metricsNamespace = "basket"

// Metrics holds the Prometheus collectors of the basket service.
type Metrics struct {
	Builds        prometheus.Counter
	BuildDuration prometheus.Histogram
	Nodes         prometheus.Gauge
	Edges         prometheus.Gauge
	Transactions  prometheus.Gauge
	Queries       *prometheus.CounterVec
	Exports       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Builds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "graph_builds_total",
			Help:      "Total number of graph rebuilds",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "graph_build_duration_seconds",
			Help:      "Duration of graph rebuilds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "graph_nodes",
			Help:      "Items in the current graph",
		}),
		Edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "graph_edges",
			Help:      "Item pairs in the current graph",
		}),
		Transactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "graph_transactions",
			Help:      "Transactions the current graph was built from",
		}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "queries_total",
			Help:      "Queries served, by query and result",
		}, []string{"query", "result"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "exports_total",
			Help:      "Graph exports to Memgraph, by result",
		}, []string{"result"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{m.Builds, m.BuildDuration, m.Nodes, m.Edges, m.Transactions, m.Queries, m.Exports} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, graph.ErrNotFound):
		return "not_found"
	case errors.Is(err, graph.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, ErrNoSnapshot):
		return "no_snapshot"
	default:
		return "error"
	}
}
