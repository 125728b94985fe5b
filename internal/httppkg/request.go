package httppkg

import (
	"fmt"
	"strings"

	"github.com/shepherd-rt/servicecore/internal/pkg/apperrors"
)

// Request is an inbound HTTP message: method, target, and version parsed
// from the start line, per spec.md §3/§4.6.
type Request struct {
	pkg *Package

	Method  string
	Target  string
}

// NewRequest constructs an empty Request ready to receive AddData calls.
// protocol is the literal token ("HTTP" or "HTTPS") this request's
// transport layer will report.
func NewRequest(protocol, logTag string) *Request {
	r := &Request{}
	r.pkg = newPackage(protocol, r, logTag)
	return r
}

// AddData feeds bytes into the underlying parser.
func (r *Request) AddData(data []byte) error { return r.pkg.AddData(data) }

// IsComplete reports whether the request has been fully parsed.
func (r *Request) IsComplete() bool { return r.pkg.IsComplete() }

// Body returns the parsed body.
func (r *Request) Body() []byte { return r.pkg.Body() }

// Header returns the header named name, case-insensitively.
func (r *Request) Header(name string) (Header, bool) { return r.pkg.Header(name) }

// Headers returns every parsed header.
func (r *Request) Headers() []Header { return r.pkg.Headers() }

// Version returns the HTTP version reported by the start line.
func (r *Request) Version() string { return r.pkg.Version() }

// Protocol returns "HTTP" or "HTTPS".
func (r *Request) Protocol() string { return r.pkg.Protocol() }

// ProcessFirstLine implements MessageHooks by splitting a request start
// line of the form "METHOD TARGET VERSION".
func (r *Request) ProcessFirstLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return apperrors.NewParseError(fmt.Sprintf("malformed request line: %q", line))
	}
	r.Method = fields[0]
	r.Target = fields[1]
	r.pkg.version = fields[2]
	return nil
}

// ProcessBody implements MessageHooks as a pass-through: this package
// performs no transfer-encoding handling (chunked, gzip) — that is a
// hook point for a caller-supplied Request wrapping different semantics.
func (r *Request) ProcessBody(body []byte) []byte { return body }
