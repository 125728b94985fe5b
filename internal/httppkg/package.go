package httppkg

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/shepherd-rt/servicecore/internal/pkg/apperrors"
	"github.com/shepherd-rt/servicecore/internal/pkg/logger"
)

type state int

const (
	stateHeaders state = iota
	stateBody
	stateComplete
)

const crlf = "\r\n"

// MessageHooks is the capability set a concrete message type (Request,
// Response) supplies — in place of the abstract-class processFirstLine /
// processBody pattern spec.md §9 flags for replacement via composition.
type MessageHooks interface {
	// ProcessFirstLine receives the start line once the blank line that
	// terminates headers has been seen.
	ProcessFirstLine(line string) error
	// ProcessBody receives the raw accumulated body and returns the bytes
	// to store — the hook point for transfer-encoding handling this
	// package itself does not perform.
	ProcessBody(body []byte) []byte
}

// Package is the incremental HTTP/1.1 message parser of spec.md §4.6: a
// three-state machine (HEADERS -> BODY -> COMPLETE) driven entirely by
// AddData. One Package per connection; AddData is not reentrant, so
// access is serialized by mu.
type Package struct {
	mu sync.Mutex

	protocol string
	version  string
	headers  *headerMap
	body     []byte

	state state
	accum []byte // unconsumed bytes: partial line in HEADERS, raw body in BODY
	lines []string

	hooks  MessageHooks
	logTag string
}

// newPackage constructs a Package in the initial HEADERS state. protocol
// is the literal token ("HTTP" or "HTTPS") this message's subtype emits.
func newPackage(protocol string, hooks MessageHooks, logTag string) *Package {
	return &Package{
		protocol: protocol,
		version:  "HTTP/1.1",
		headers:  newHeaderMap(),
		hooks:    hooks,
		logTag:   logTag,
	}
}

// AddData feeds an arbitrarily-sized byte fragment into the parser.
// Chunks may split anywhere — mid-header, mid-CRLF, mid-body — the
// accumulator is the only durable state across calls. A no-op once the
// package is complete.
func (p *Package) AddData(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateComplete {
		logger.Component(p.logTag).Debug("addData after completion, ignoring",
			zap.Int("bytes", len(data)))
		return nil
	}

	p.accum = append(p.accum, data...)

	if p.state == stateHeaders {
		if err := p.scanHeaders(); err != nil {
			return err
		}
	}
	if p.state == stateBody {
		p.evaluateBody()
	}
	return nil
}

// scanHeaders repeatedly pulls CRLF-terminated lines out of the
// accumulator. Because it searches the *whole* accumulated buffer on
// every call rather than only the bytes of the latest chunk, a CRLF that
// straddles two addData calls (including a lone trailing \r left by the
// previous chunk) is still found once its \n arrives — the fix for the
// missed-boundary bug noted in spec.md §9.
func (p *Package) scanHeaders() error {
	for {
		idx := bytes.Index(p.accum, []byte(crlf))
		if idx < 0 {
			return nil
		}
		line := string(p.accum[:idx])
		rest := p.accum[idx+len(crlf):]

		if line == "" {
			body := make([]byte, len(rest))
			copy(body, rest)
			if err := p.finishHeaders(); err != nil {
				return err
			}
			p.accum = body
			p.state = stateBody
			p.evaluateBody()
			return nil
		}

		p.lines = append(p.lines, line)
		p.accum = rest
	}
}

func (p *Package) finishHeaders() error {
	if len(p.lines) == 0 {
		return apperrors.NewParseError("http message has no start line")
	}

	for _, line := range p.lines[1:] {
		name, value, ok := splitHeaderLine(line)
		if !ok {
			return apperrors.NewParseError(fmt.Sprintf("malformed header line: %q", line))
		}
		p.headers.set(name, value)
	}

	if p.hooks != nil {
		if err := p.hooks.ProcessFirstLine(p.lines[0]); err != nil {
			return err
		}
	}
	return nil
}

func splitHeaderLine(line string) (name, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

// evaluateBody flips the package to COMPLETE once the accumulated body
// satisfies the declared Content-Length (or immediately, if absent).
func (p *Package) evaluateBody() {
	if !p.bodyDone() {
		return
	}

	body := p.accum
	if p.hooks != nil {
		body = p.hooks.ProcessBody(body)
	}
	p.body = body
	p.accum = nil
	p.state = stateComplete
}

func (p *Package) bodyDone() bool {
	h, ok := p.headers.get("Content-Length")
	if !ok {
		return true
	}
	n, err := strconv.Atoi(strings.TrimSpace(h.Value))
	if err != nil {
		return true
	}
	return len(p.accum) >= n
}

// IsComplete reports whether headers have been parsed and the declared
// body length has been satisfied.
func (p *Package) IsComplete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == stateComplete
}

// Body returns the parsed body. Only meaningful once IsComplete is true.
func (p *Package) Body() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.body
}

// Header returns the header named name, case-insensitively. Only
// meaningful once IsComplete is true — headers are extractable only
// after completion per spec.md §3.
func (p *Package) Header(name string) (Header, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.headers.get(name)
}

// Headers returns every parsed header.
func (p *Package) Headers() []Header {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.headers.all()
}

// Protocol returns the literal "HTTP" or "HTTPS" token this message's
// subtype emits.
func (p *Package) Protocol() string { return p.protocol }

// Version returns the HTTP version, defaulting to "HTTP/1.1".
func (p *Package) Version() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}
