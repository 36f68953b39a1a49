// Package app wires configuration, logging, metrics, the optional Memgraph
// driver and the basket service for the binaries.
package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/agenthands/basket/internal/config"
	"github.com/agenthands/basket/internal/core"
	"github.com/agenthands/basket/internal/driver"
	"github.com/agenthands/basket/internal/logging"
)

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Driver   driver.GraphDriver // nil when Memgraph is not configured
	Basket   *core.Basket
}

// New resolves the config at path and builds every component. A Memgraph
// driver is only opened when a URI is configured.
func New(ctx context.Context, path string) (*App, error) {
	cfg, err := config.Resolve(path)
	if err != nil {
		return nil, err
	}
	return FromConfig(ctx, cfg)
}

func FromConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := &App{Config: cfg, Logger: logger, Registry: reg}

	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, cfg.Memgraph.Database, logger)
		if err != nil {
			return nil, errors.Wrapf(err, "connect to memgraph at %s", cfg.Memgraph.URI)
		}
		a.Driver = d
	} else {
		logger.Info("memgraph not configured, export disabled")
	}

	b, err := core.NewBasket(a.Driver, cfg, logger, reg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Basket = b
	return a, nil
}

// LoadData builds the first snapshot from the configured data paths. It is
// a no-op when none are configured.
func (a *App) LoadData(ctx context.Context) error {
	if len(a.Config.Data.Paths) == 0 {
		a.Logger.Info("no data paths configured, starting with an empty service")
		return nil
	}
	_, err := a.Basket.Load(ctx, a.Config.Data.Paths)
	return err
}

func (a *App) Close(ctx context.Context) {
	if a.Driver != nil {
		if err := a.Driver.Close(ctx); err != nil {
			a.Logger.Warn("failed to close memgraph driver", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}
