// Package runtime implements the Service Runtime Core of spec.md §2: the
// service registry, the session-propagating fork/run gateway, and the
// multi-stage shutdown coordinator.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/shepherd-rt/servicecore/internal/pkg/apperrors"
	"github.com/shepherd-rt/servicecore/internal/pkg/logger"
	"github.com/shepherd-rt/servicecore/internal/session"
	"github.com/shepherd-rt/servicecore/internal/worker"
)

// Stage identifies a shutdown phase (spec.md §4.5).
type Stage int

const (
	StageStart Stage = iota
	StageEnd
)

func (s Stage) String() string {
	if s == StageStart {
		return "START"
	}
	return "END"
}

// Consumer is an opaque handle registered with a Service; its meaning is
// entirely up to the concrete service (spec.md §4.3) — an HTTP context, an
// ingress port binding, or anything else the caller wants tracked.
type Consumer any

// LifecycleHooks is the capability set a Service implementation supplies,
// in place of the abstract-class init()/shutdown() pattern spec.md §9
// flags for replacement: a Service is handed its hooks at construction
// time rather than subclassing a base type.
type LifecycleHooks interface {
	// Init runs immediately after registration.
	Init(ctx context.Context) error
	// Shutdown runs once per stage, called only by the ShutdownCoordinator.
	Shutdown(ctx context.Context, stage Stage) error
	// ShutdownAuxPool runs once per registered auxiliary pool, between the
	// START and END stages, before the pool itself is released.
	ShutdownAuxPool(ctx context.Context, pool *worker.Pool) error
}

// NoopHooks is a LifecycleHooks implementation that does nothing for every
// hook; embed it to override only the hooks a service cares about.
type NoopHooks struct{}

func (NoopHooks) Init(context.Context) error                          { return nil }
func (NoopHooks) Shutdown(context.Context, Stage) error               { return nil }
func (NoopHooks) ShutdownAuxPool(context.Context, *worker.Pool) error { return nil }

// Service is a named, priority-ranked, long-lived component owning one
// primary WorkerPool and zero or more auxiliary pools (spec.md §3).
type Service struct {
	name     string
	priority int
	primary  *worker.Pool
	hooks    LifecycleHooks

	mu         sync.Mutex
	auxPools   map[string]*worker.Pool
	consumers  map[Consumer]struct{}
	terminated bool
}

// NewService constructs a Service. name must be non-empty; primary must be
// non-nil. hooks may be nil, in which case NoopHooks is used.
func NewService(name string, priority int, primary *worker.Pool, hooks LifecycleHooks) (*Service, error) {
	if name == "" {
		return nil, apperrors.NewBadArgument("service name")
	}
	if primary == nil {
		return nil, apperrors.NewBadArgument("service primary pool")
	}
	if hooks == nil {
		hooks = NoopHooks{}
	}
	return &Service{
		name:      name,
		priority:  priority,
		primary:   primary,
		hooks:     hooks,
		auxPools:  make(map[string]*worker.Pool),
		consumers: make(map[Consumer]struct{}),
	}, nil
}

// Name returns the service's unique name.
func (s *Service) Name() string { return s.name }

// Priority returns the service's immutable shutdown priority.
func (s *Service) Priority() int { return s.priority }

// PrimaryPool returns the service's primary worker pool.
func (s *Service) PrimaryPool() *worker.Pool { return s.primary }

// RegisterConsumer attaches an implementation-defined consumer handle.
func (s *Service) RegisterConsumer(c Consumer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consumers[c] = struct{}{}
}

// UnregisterConsumer detaches a previously registered consumer handle.
func (s *Service) UnregisterConsumer(c Consumer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.consumers, c)
}

func (s *Service) isTerminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminated
}

func (s *Service) beginShutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminated = true
}

func (s *Service) registerAuxPool(p *worker.Pool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auxPools[p.Name()] = p
}

func (s *Service) auxPoolsSnapshot() []*worker.Pool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*worker.Pool, 0, len(s.auxPools))
	for _, p := range s.auxPools {
		out = append(out, p)
	}
	return out
}

// Fork is the fire-and-forget submission form (spec.md §4.3): it is the
// only sanctioned way to run work under this service. ctx must already be
// a worker context — calling Fork from an arbitrary goroutine is a
// programmer error; use Registry.Run for off-thread submission instead
// (spec.md §9, S6).
func (s *Service) Fork(ctx context.Context, task worker.Task, pool ...*worker.Pool) error {
	target, err := s.resolveTarget(ctx, pool...)
	if err != nil {
		return err
	}

	wrapper := newTaskWrapper(ctx)
	err = target.Execute(ctx, wrapper.Session, func(workerCtx context.Context) {
		propagate(workerCtx, wrapper)
		task(workerCtx)
	})
	return s.wrapSubmitError(err)
}

// ForkValue is the value-returning submission form. Go methods cannot
// carry their own type parameters, so this is a package-level function
// taking the Service explicitly rather than a method.
func ForkValue[T any](ctx context.Context, s *Service, task func(context.Context) (T, error), pool ...*worker.Pool) (*Future[T], error) {
	target, err := s.resolveTarget(ctx, pool...)
	if err != nil {
		return nil, err
	}

	wrapper := newTaskWrapper(ctx)
	fut := newFuture[T]()
	err = target.Execute(ctx, wrapper.Session, func(workerCtx context.Context) {
		propagate(workerCtx, wrapper)
		v, taskErr := task(workerCtx)
		fut.complete(v, taskErr)
	})
	if err != nil {
		return nil, s.wrapSubmitError(err)
	}
	return fut, nil
}

// wrapSubmitError maps pool.Execute's sentinel errors onto the spec.md §7
// error taxonomy: a saturated pool (non-blocking ants.Submit, spec.md §5 —
// fork never blocks) is resource-exhausted; a closed pool racing a
// just-started shutdown is shutdown-in-progress. Any other error passes
// through unchanged.
func (s *Service) wrapSubmitError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, worker.ErrPoolSaturated):
		return apperrors.NewResourceExhausted(fmt.Sprintf("service %q: worker pool saturated", s.name))
	case errors.Is(err, worker.ErrPoolClosed):
		return apperrors.NewShutdownInProgress(s.name)
	default:
		return err
	}
}

func (s *Service) resolveTarget(ctx context.Context, pool ...*worker.Pool) (*worker.Pool, error) {
	if !worker.IsWorkerContext(ctx) {
		return nil, apperrors.NewProgrammerError(
			fmt.Sprintf("service %q: fork called outside a worker thread; use Registry.Run for off-thread submission", s.name))
	}
	if s.isTerminated() {
		return nil, apperrors.NewShutdownInProgress(s.name)
	}

	target := s.primary
	if len(pool) > 0 && pool[0] != nil && pool[0] != s.primary {
		target = pool[0]
		s.registerAuxPool(target)
	}
	return target, nil
}

// propagate merges the captured properties into the target worker's bound
// session before the user task runs (spec.md §4.1). Per spec.md §9 this
// merge is not undone on exit — propagated properties persist on the
// session instance once merged.
func propagate(workerCtx context.Context, wrapper *TaskWrapper) {
	session.Current(workerCtx).PutAll(wrapper.Properties)
}

func (s *Service) invokeInit(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewProgrammerError(fmt.Sprintf("service %q: init panicked: %v", s.name, r))
		}
	}()
	return s.hooks.Init(ctx)
}

func (s *Service) invokeShutdown(ctx context.Context, stage Stage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewProgrammerError(fmt.Sprintf("service %q: shutdown(%s) panicked: %v", s.name, stage, r))
		}
	}()
	return s.hooks.Shutdown(ctx, stage)
}

func (s *Service) invokeShutdownAuxPool(ctx context.Context, pool *worker.Pool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewProgrammerError(fmt.Sprintf("service %q: shutdownAuxPool(%s) panicked: %v", s.name, pool.Name(), r))
		}
	}()
	return s.hooks.ShutdownAuxPool(ctx, pool)
}

func logShutdownError(service string, stage string, err error) {
	logger.Component(service).Warn("service shutdown hook returned an error",
		zap.String("stage", stage),
		zap.Error(err),
	)
}
