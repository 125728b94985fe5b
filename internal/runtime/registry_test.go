package runtime

import (
	"context"
	"testing"

	"github.com/shepherd-rt/servicecore/internal/pkg/apperrors"
	"github.com/shepherd-rt/servicecore/internal/pkg/logger"
	"github.com/shepherd-rt/servicecore/internal/session"
	"github.com/shepherd-rt/servicecore/internal/worker"
)

func init() {
	_ = logger.Init("error", "json")
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(worker.Config{CoreSize: 2, MaxSize: 4})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func newTestService(t *testing.T, name string, priority int) *Service {
	t.Helper()
	pool, err := worker.New(name, worker.Config{CoreSize: 1, MaxSize: 2})
	if err != nil {
		t.Fatalf("worker.New: %v", err)
	}
	svc, err := NewService(name, priority, pool, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

// invariant 1 (spec.md §8): registering two services under the same name
// fails with name-conflict.
func TestRegistry_NameConflict(t *testing.T) {
	r := newTestRegistry(t)
	a := newTestService(t, "dup", 1)
	b := newTestService(t, "dup", 2)

	if err := r.Register(context.Background(), a); err != nil {
		t.Fatalf("Register a: %v", err)
	}
	err := r.Register(context.Background(), b)
	if !apperrors.Is(err, apperrors.NameConflict) {
		t.Fatalf("expected name-conflict, got %v", err)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := newTestRegistry(t)
	svc := newTestService(t, "lookup-me", 1)
	if err := r.Register(context.Background(), svc); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, ok := r.Lookup("lookup-me")
	if !ok || got != svc {
		t.Fatalf("Lookup did not return the registered service")
	}

	if _, ok := r.Lookup("absent"); ok {
		t.Fatalf("Lookup found a service that was never registered")
	}
}

// S6 (spec.md §8): Registry.Run succeeds off-thread with a supplied session.
func TestRegistry_Run_OffThread(t *testing.T) {
	r := newTestRegistry(t)
	sess := session.New("off-thread-caller")

	done := make(chan string, 1)
	err := r.Run(context.Background(), sess, func(ctx context.Context) {
		done <- session.Current(ctx).ID()
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := <-done; got != "off-thread-caller" {
		t.Fatalf("session ID = %q, want off-thread-caller", got)
	}
}

type initHooks struct {
	NoopHooks
	onInit func() error
}

func (h initHooks) Init(context.Context) error {
	if h.onInit != nil {
		return h.onInit()
	}
	return nil
}

// Register runs a service's init() hook right after claiming its name
// (spec.md §4.3: "init() right after construction").
func TestRegistry_Register_RunsInit(t *testing.T) {
	r := newTestRegistry(t)
	pool, err := worker.New("init-pool", worker.Config{CoreSize: 1, MaxSize: 1})
	if err != nil {
		t.Fatalf("worker.New: %v", err)
	}

	var ran bool
	svc, err := NewService("init-svc", 1, pool, initHooks{onInit: func() error {
		ran = true
		return nil
	}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := r.Register(context.Background(), svc); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !ran {
		t.Fatal("expected Register to invoke the service's init() hook")
	}
}

// Construction-time errors are fatal and propagate to the caller (spec.md
// §7); a failing init() hook must not leave the name claimed.
func TestRegistry_Register_InitFailure_ReleasesName(t *testing.T) {
	r := newTestRegistry(t)
	pool, err := worker.New("init-fail-pool", worker.Config{CoreSize: 1, MaxSize: 1})
	if err != nil {
		t.Fatalf("worker.New: %v", err)
	}

	boom := apperrors.NewBadArgument("missing dependency")
	svc, err := NewService("init-fail-svc", 1, pool, initHooks{onInit: func() error {
		return boom
	}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := r.Register(context.Background(), svc); err == nil {
		t.Fatal("expected Register to propagate the init() failure")
	}

	if _, ok := r.Lookup("init-fail-svc"); ok {
		t.Fatal("a service whose init() failed must not remain registered")
	}
}

func TestRegistry_StaticPoolStats(t *testing.T) {
	r := newTestRegistry(t)
	stats := r.StaticPoolStats()
	if stats.Name != "registry-static" {
		t.Fatalf("stats.Name = %q, want registry-static", stats.Name)
	}
}
