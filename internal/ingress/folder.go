package ingress

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shepherd-rt/servicecore/internal/httppkg"
	"github.com/shepherd-rt/servicecore/internal/pkg/apperrors"
)

// FolderHandler serves files under base in response to requests whose
// target matches ctx. It is registered with a Service as a Consumer; the
// Service itself has no opinion on what a consumer does.
type FolderHandler struct {
	base string
	ctx  *Context
}

// NewFolderHandler constructs a FolderHandler rooted at base. base must
// be non-empty (bad-argument per spec.md §7).
func NewFolderHandler(base string, ctx *Context) (*FolderHandler, error) {
	if base == "" {
		return nil, apperrors.NewBadArgument("base folder")
	}
	if ctx == nil {
		return nil, apperrors.NewBadArgument("context")
	}
	return &FolderHandler{base: base, ctx: ctx}, nil
}

// Serve resolves req.Target against the handler's base folder and
// returns a parsed Response built from a literal status line, headers,
// and body fed through httppkg's own AddData — the same path a real
// connection's bytes would take.
//
// The served path is computed as the target's path relative to base
// (filepath.Rel(base, full)), not the reverse — spec.md §9 flags the
// original's baseFolder-relative-to-path computation in its
// directory-listing branch as inverted; this rewrite computes it the
// other way round and rejects any resolution that escapes base.
func (h *FolderHandler) Serve(req *httppkg.Request) (*httppkg.Response, error) {
	if !h.ctx.Matches(req.Target) {
		return nil, apperrors.NewBadArgument("target does not match context")
	}

	relative := strings.TrimPrefix(req.Target, h.ctx.Pattern())
	full := filepath.Join(h.base, relative)

	rel, err := filepath.Rel(h.base, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, apperrors.NewBadArgument("target escapes base folder")
	}

	status, reason, body, err := h.read(full)
	if err != nil {
		return nil, err
	}

	resp := httppkg.NewResponse("HTTP", "ingress")
	head := fmt.Sprintf("HTTP/1.1 %d %s\r\nContent-Length: %d\r\n\r\n", status, reason, len(body))
	if err := resp.AddData([]byte(head)); err != nil {
		return nil, err
	}
	if len(body) > 0 {
		if err := resp.AddData(body); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (h *FolderHandler) read(full string) (status int, reason string, body []byte, err error) {
	data, readErr := os.ReadFile(full)
	if readErr == nil {
		return 200, "OK", data, nil
	}
	if os.IsNotExist(readErr) {
		return 404, "Not Found", nil, nil
	}
	return 0, "", nil, apperrors.NewIOFailure(readErr)
}
