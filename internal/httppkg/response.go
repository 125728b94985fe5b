package httppkg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shepherd-rt/servicecore/internal/pkg/apperrors"
)

// Response is an outbound or received HTTP message: version, status
// code, and reason phrase parsed from the start line.
type Response struct {
	pkg *Package

	StatusCode int
	Reason     string
}

// NewResponse constructs an empty Response ready to receive AddData calls.
func NewResponse(protocol, logTag string) *Response {
	r := &Response{}
	r.pkg = newPackage(protocol, r, logTag)
	return r
}

func (r *Response) AddData(data []byte) error         { return r.pkg.AddData(data) }
func (r *Response) IsComplete() bool                  { return r.pkg.IsComplete() }
func (r *Response) Body() []byte                      { return r.pkg.Body() }
func (r *Response) Header(name string) (Header, bool) { return r.pkg.Header(name) }
func (r *Response) Headers() []Header                 { return r.pkg.Headers() }
func (r *Response) Version() string                   { return r.pkg.Version() }
func (r *Response) Protocol() string                  { return r.pkg.Protocol() }

// ProcessFirstLine implements MessageHooks by splitting a response start
// line of the form "VERSION STATUS REASON".
func (r *Response) ProcessFirstLine(line string) error {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 2 {
		return apperrors.NewParseError(fmt.Sprintf("malformed status line: %q", line))
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return apperrors.NewParseError(fmt.Sprintf("malformed status code: %q", line))
	}
	r.pkg.version = fields[0]
	r.StatusCode = code
	if len(fields) == 3 {
		r.Reason = fields[2]
	}
	return nil
}

// ProcessBody implements MessageHooks as a pass-through.
func (r *Response) ProcessBody(body []byte) []byte { return body }
