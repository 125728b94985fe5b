package runtime

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/shepherd-rt/servicecore/internal/pkg/apperrors"
	"github.com/shepherd-rt/servicecore/internal/pkg/logger"
	"github.com/shepherd-rt/servicecore/internal/session"
	"github.com/shepherd-rt/servicecore/internal/worker"
)

// Registry is the process-wide (or, per spec.md §9's redesign note, the
// explicitly-constructed) mapping from name to Service. Tests construct a
// fresh Registry per case rather than reaching for a package-level
// singleton.
type Registry struct {
	mu             sync.Mutex
	services       map[string]*Service
	order          []string // registration sequence, used as the shutdown tiebreak
	loggingService *Service
	staticPool     *worker.Pool
}

// NewRegistry constructs a Registry whose static pool (backing Run) uses
// staticCfg.
func NewRegistry(staticCfg worker.Config) (*Registry, error) {
	pool, err := worker.New("registry-static", staticCfg)
	if err != nil {
		return nil, err
	}
	return &Registry{
		services:   make(map[string]*Service),
		staticPool: pool,
	}, nil
}

// Register adds a Service under its name, failing with name-conflict if
// the name is already taken (spec.md §4.4, invariant 1 of §8). Once the
// name is claimed, it runs the service's init() lifecycle hook right
// after construction (spec.md §4.3); a failing hook is a construction-time
// error, so it unregisters the service and propagates the error to the
// caller (spec.md §7) rather than leaving a half-initialized service live.
func (r *Registry) Register(ctx context.Context, s *Service) error {
	if s == nil {
		return apperrors.NewBadArgument("service")
	}

	if err := r.claim(s); err != nil {
		return err
	}

	if err := s.invokeInit(ctx); err != nil {
		r.unclaim(s.name)
		return err
	}

	logger.Component(s.name).Info("service registered", zap.Int("priority", s.priority))
	return nil
}

func (r *Registry) claim(s *Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.services[s.name]; exists {
		return apperrors.NewNameConflict(s.name)
	}
	r.services[s.name] = s
	r.order = append(r.order, s.name)
	return nil
}

func (r *Registry) unclaim(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.services, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// SetLoggingService registers the logging service in its own slot. It
// bypasses Register entirely because ordinary registration would try to
// log the registration through a logging service that isn't wired up yet
// (spec.md §4.4) — a bootstrap cycle.
func (r *Registry) SetLoggingService(s *Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loggingService = s
}

// Services returns all registered services in registration order. The
// caller owns the returned slice.
func (r *Registry) Services() []*Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Service, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.services[name])
	}
	return out
}

func (r *Registry) loggingServiceSnapshot() *Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loggingService
}

// Lookup returns the service registered under name, if any.
func (r *Registry) Lookup(name string) (*Service, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[name]
	return s, ok
}

// Run is the external ingress gateway (spec.md §4.1, §4.4): fire-and-forget
// dispatch onto the registry's static pool for callers — typically ingress
// adapters — that have no Service of their own. Unlike Service.Fork, Run
// may be called from any goroutine; the supplied session is used verbatim,
// with the guest session substituted when sess is nil.
func (r *Registry) Run(ctx context.Context, sess *session.Context, task worker.Task) error {
	return r.staticPool.Execute(ctx, sess, task)
}

// StaticPoolStats reports the static pool's occupancy.
func (r *Registry) StaticPoolStats() worker.Stats {
	return r.staticPool.Stats()
}
