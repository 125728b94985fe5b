package runtime

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/shepherd-rt/servicecore/internal/pkg/logger"
)

// ShutdownCoordinator runs the multi-stage shutdown protocol of spec.md
// §4.5 against a Registry.
type ShutdownCoordinator struct {
	registry     *Registry
	pollInterval time.Duration

	// onPhase is an optional recording hook used by tests (spec.md §8,
	// invariant 5 / S4) to observe traversal order.
	onPhase func(service string, stage string)
}

// NewShutdownCoordinator constructs a coordinator that polls pollInterval
// between isTerminated() checks on each service's primary pool.
func NewShutdownCoordinator(r *Registry, pollInterval time.Duration) *ShutdownCoordinator {
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	return &ShutdownCoordinator{registry: r, pollInterval: pollInterval}
}

// OnPhase installs a recording hook invoked before each shutdown phase
// runs, for tests that need to observe ordering.
func (c *ShutdownCoordinator) OnPhase(fn func(service string, stage string)) {
	c.onPhase = fn
}

// SystemShutdown walks every registered service in descending-priority
// order, then the logging service last, running START -> aux-drain -> END
// -> pool-terminate for each. It returns the total count of errors raised
// by shutdown hooks — the process exit contract of spec.md §6.
func (c *ShutdownCoordinator) SystemShutdown(ctx context.Context) int {
	services := c.registry.Services()
	sort.SliceStable(services, func(i, j int) bool {
		return services[i].Priority() > services[j].Priority()
	})

	exceptions := 0
	for _, svc := range services {
		exceptions += c.shutdownOne(ctx, svc)
	}

	if logging := c.registry.loggingServiceSnapshot(); logging != nil {
		exceptions += c.shutdownOne(ctx, logging)
	}

	return exceptions
}

func (c *ShutdownCoordinator) shutdownOne(ctx context.Context, svc *Service) int {
	exceptions := 0
	svc.beginShutdown()

	c.notify(svc.Name(), "START")
	if err := svc.invokeShutdown(ctx, StageStart); err != nil {
		logShutdownError(svc.Name(), "START", err)
		exceptions++
	}

	for _, pool := range svc.auxPoolsSnapshot() {
		c.notify(svc.Name(), "AUX:"+pool.Name())
		if err := svc.invokeShutdownAuxPool(ctx, pool); err != nil {
			logShutdownError(svc.Name(), "AUX:"+pool.Name(), err)
			exceptions++
		}
		pool.Shutdown()
	}

	c.notify(svc.Name(), "END")
	if err := svc.invokeShutdown(ctx, StageEnd); err != nil {
		logShutdownError(svc.Name(), "END", err)
		exceptions++
	}

	svc.primary.Shutdown()
	for !svc.primary.IsTerminated() {
		time.Sleep(c.pollInterval)
	}

	return exceptions
}

func (c *ShutdownCoordinator) notify(service, stage string) {
	if c.onPhase != nil {
		c.onPhase(service, stage)
	}
	logger.Component(service).Debug("shutdown phase", zap.String("stage", stage))
}
