// Package session implements the SessionContext described in spec.md §3:
// an identity plus a mutable property bag that propagates across task
// hops without threading an explicit parameter through handler code.
package session

import (
	"context"
	"sync"
)

// Context is a caller identity with a string-keyed property bag. It is
// reference-shared between a parent task and any task forked from it —
// property mutations made by the holder are visible to whoever else holds
// the same *Context. The bag is not safe for concurrent writers; callers
// serialize access via their task boundaries (spec.md §3).
type Context struct {
	id string

	mu         sync.Mutex
	properties map[string]any
}

// New creates a session identified by id with an empty property bag.
func New(id string) *Context {
	return &Context{id: id, properties: make(map[string]any)}
}

var guest = &Context{id: "guest", properties: make(map[string]any)}

// Guest returns the distinguished guest session substituted whenever no
// caller session exists.
func Guest() *Context {
	return guest
}

// ID returns the session's identity.
func (c *Context) ID() string {
	return c.id
}

// PutAll merges props into the session's property bag.
func (c *Context) PutAll(props map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range props {
		c.properties[k] = v
	}
}

// Properties returns the live property bag. Mutating the returned map
// mutates the session directly; it is not a defensive copy (spec.md §3).
func (c *Context) Properties() map[string]any {
	return c.properties
}

// snapshot takes a point-in-time copy of the property bag, used by
// TaskWrapper to capture properties at fork time (spec.md §4.1).
func (c *Context) snapshot() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make(map[string]any, len(c.properties))
	for k, v := range c.properties {
		cp[k] = v
	}
	return cp
}

// Snapshot is the exported form of snapshot, used by the runtime package
// when capturing a TaskWrapper.
func Snapshot(c *Context) map[string]any {
	if c == nil {
		return nil
	}
	return c.snapshot()
}

type ctxKey int

const keySession ctxKey = 0

// Current returns the session bound to ctx, or the guest session if ctx
// carries none (spec.md §4.1 current()).
func Current(ctx context.Context) *Context {
	if ctx == nil {
		return Guest()
	}
	if v, ok := ctx.Value(keySession).(*Context); ok && v != nil {
		return v
	}
	return Guest()
}

// WithSession returns a context carrying sess, substituting the guest
// session if sess is nil.
func WithSession(ctx context.Context, sess *Context) context.Context {
	if sess == nil {
		sess = Guest()
	}
	return context.WithValue(ctx, keySession, sess)
}
