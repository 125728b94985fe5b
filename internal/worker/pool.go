// Package worker provides goroutine pool management for the service runtime.
//
// All task execution goes through a Pool. Naked goroutines bypass session
// propagation and the worker-context invariant, so nothing outside this
// package and internal/runtime should spawn one to run user work.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/shepherd-rt/servicecore/internal/pkg/logger"
	"github.com/shepherd-rt/servicecore/internal/session"
)

// ErrPoolClosed is returned when submitting to a closed pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// ErrPoolSaturated is returned when a pool rejects work because it has no
// spare capacity (resource-exhausted).
var ErrPoolSaturated = errors.New("worker pool is saturated")

// Task is a context-aware unit of work run on a worker thread. The context
// passed to it always carries the worker marker (see IsWorkerContext) and
// the propagated session (see session.Current).
type Task func(ctx context.Context)

// Config contains pool sizing tunables (spec.md §4.2).
//
// ants has no notion of a retained "core" floor distinct from its max
// capacity — goroutines are created lazily up to MaxSize and idle ones
// expire after KeepAlive; none are pre-warmed or kept parked at a floor.
// CoreSize is not passed to ants; it is kept for API fidelity and reported
// through Stats. MaxSize and KeepAlive map directly onto ants options.
type Config struct {
	CoreSize  int
	MaxSize   int
	KeepAlive time.Duration
}

// DefaultConfig returns conservative pool sizing.
func DefaultConfig() Config {
	return Config{
		CoreSize:  4,
		MaxSize:   64,
		KeepAlive: 30 * time.Second,
	}
}

// Pool is a dynamically-sized goroutine pool backed by ants.Pool. Each Pool
// belongs to exactly one owner (a Service's primary pool, or one of its
// registered auxiliary pools).
type Pool struct {
	name string
	cfg  Config
	ants *ants.Pool
}

// New creates a named Pool. name is used as the base of the debug name
// tagged onto every task it runs.
func New(name string, cfg Config) (*Pool, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultConfig().MaxSize
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = DefaultConfig().KeepAlive
	}

	p, err := ants.NewPool(cfg.MaxSize,
		ants.WithNonblocking(true),
		ants.WithExpiryDuration(cfg.KeepAlive),
		ants.WithPanicHandler(func(r interface{}) {
			logger.Component(name).Error("worker panic recovered",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}),
	)
	if err != nil {
		return nil, err
	}

	return &Pool{name: name, cfg: cfg, ants: p}, nil
}

// Name returns the pool's debug name.
func (p *Pool) Name() string { return p.name }

// Execute submits task for fire-and-forget execution, binding sess (or the
// guest session if nil) into the context the task observes. ctx governs
// cancellation of the task once it starts running; it is NOT the context
// the task receives — the task always gets a freshly worker-bound context
// derived from ctx.
func (p *Pool) Execute(ctx context.Context, sess *session.Context, task Task) error {
	if task == nil {
		return errors.New("worker: nil task")
	}
	if sess == nil {
		sess = session.Guest()
	}

	debugName := p.name + "-" + uuid.NewString()[:8]
	workerCtx := bind(ctx, sess, debugName)

	err := p.ants.Submit(func() {
		task(workerCtx)
	})
	if errors.Is(err, ants.ErrPoolClosed) {
		return ErrPoolClosed
	}
	if errors.Is(err, ants.ErrPoolOverload) {
		return ErrPoolSaturated
	}
	return err
}

// IsTerminated reports whether the pool has been shut down and drained.
func (p *Pool) IsTerminated() bool {
	return p.ants.IsClosed() && p.ants.Running() == 0
}

// Shutdown refuses new work and releases the pool without waiting. Callers
// that need to wait for drain poll IsTerminated (spec.md §4.5 step 1.4).
func (p *Pool) Shutdown() {
	p.ants.Release()
}

// Stats reports current pool occupancy for metrics/debugging.
type Stats struct {
	Name    string
	Core    int
	Max     int
	Running int
	Free    int
}

// Stats returns a snapshot of the pool's occupancy.
func (p *Pool) Stats() Stats {
	return Stats{
		Name:    p.name,
		Core:    p.cfg.CoreSize,
		Max:     p.cfg.MaxSize,
		Running: p.ants.Running(),
		Free:    p.ants.Free(),
	}
}

type ctxKey int

const (
	keyWorker ctxKey = iota
	keyDebugName
)

// bind returns a context that satisfies IsWorkerContext and carries sess.
// Every call produces a fresh derived context; nothing is mutated in
// place, so there is no slot to clear on task exit — the bound context
// simply goes out of scope when the task returns.
func bind(ctx context.Context, sess *session.Context, debugName string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = session.WithSession(ctx, sess)
	ctx = context.WithValue(ctx, keyWorker, true)
	ctx = context.WithValue(ctx, keyDebugName, debugName)
	return ctx
}

// IsWorkerContext reports whether ctx was produced by a Pool executing a
// task. Submitting work that relies on session propagation from any other
// context is a programmer error (spec.md §3 WorkerThread invariant).
func IsWorkerContext(ctx context.Context) bool {
	v, _ := ctx.Value(keyWorker).(bool)
	return v
}

// DebugName returns the stable per-task debug name tagged by the pool that
// is executing ctx, or "" if ctx is not a worker context.
func DebugName(ctx context.Context) string {
	v, _ := ctx.Value(keyDebugName).(string)
	return v
}

