// Package ingress holds the thin external collaborators spec.md §1 names
// as explicitly out of scope for the core: a minimal Context routing
// matcher and a folder-publishing handler. Both are implemented only
// through the narrow interfaces the Service Runtime Core and HTTP
// Package Framing subsystems expose — Service.RegisterConsumer and
// httppkg.Request/Response — so the core has a realistic caller to
// exercise it in tests, not a feature-complete router or file server.
package ingress

import "strings"

// Context is a minimal request-routing matcher: a path prefix a
// FolderHandler (or any other consumer) is bound to. It is deliberately
// not a regex engine — spec.md §1 excludes that as a Non-goal.
type Context struct {
	pattern string
}

// NewContext constructs a Context bound to pattern, a path prefix such
// as "/static/".
func NewContext(pattern string) *Context {
	return &Context{pattern: pattern}
}

// Matches reports whether target falls under this Context's pattern.
func (c *Context) Matches(target string) bool {
	return strings.HasPrefix(target, c.pattern)
}

// Pattern returns the bound path prefix.
func (c *Context) Pattern() string { return c.pattern }
