package main

import (
	"context"

	"github.com/shepherd-rt/servicecore/internal/config"
	"github.com/shepherd-rt/servicecore/internal/metrics"
	"github.com/shepherd-rt/servicecore/internal/pkg/logger"
	"github.com/shepherd-rt/servicecore/internal/runtime"
	"github.com/shepherd-rt/servicecore/internal/worker"
)

// demo holds the registry, coordinator, and metrics collector the CLI
// subcommands act on. Each invocation of the binary builds a fresh one —
// there is no process-wide singleton (spec.md §9's redesign note).
type demo struct {
	registry    *runtime.Registry
	coordinator *runtime.ShutdownCoordinator
	collector   *metrics.Collector
	cfg         *config.Config
}

// buildDemo registers three representative services at different
// priorities — mirroring spec.md §8's S4 scenario — so `status` and
// `shutdown` have something real to report on.
func buildDemo() (*demo, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}

	registry, err := runtime.NewRegistry(worker.Config{
		CoreSize:  cfg.Static.MaxSize,
		MaxSize:   cfg.Static.MaxSize,
		KeepAlive: cfg.Static.KeepAlive,
	})
	if err != nil {
		return nil, err
	}

	services := []struct {
		name     string
		priority int
	}{
		{"ingress", 10},
		{"cache", 5},
		{"audit", 1},
	}

	for _, s := range services {
		pool, err := worker.New(s.name, worker.Config{
			CoreSize:  cfg.Worker.CoreSize,
			MaxSize:   cfg.Worker.MaxSize,
			KeepAlive: cfg.Worker.KeepAlive,
		})
		if err != nil {
			return nil, err
		}
		svc, err := runtime.NewService(s.name, s.priority, pool, nil)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(context.Background(), svc); err != nil {
			return nil, err
		}
	}

	loggingPool, err := worker.New("logging", worker.Config{CoreSize: 1, MaxSize: 2, KeepAlive: cfg.Worker.KeepAlive})
	if err != nil {
		return nil, err
	}
	loggingSvc, err := runtime.NewService("logging", 0, loggingPool, nil)
	if err != nil {
		return nil, err
	}
	registry.SetLoggingService(loggingSvc)

	return &demo{
		registry:    registry,
		coordinator: runtime.NewShutdownCoordinator(registry, cfg.Shutdown.PollInterval),
		collector:   metrics.NewCollector(),
		cfg:         cfg,
	}, nil
}
