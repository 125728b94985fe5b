package httppkg

import (
	"testing"

	"github.com/shepherd-rt/servicecore/internal/pkg/logger"
)

func init() {
	_ = logger.Init("error", "json")
}

// S1 (spec.md §8): split header arrival, one byte at a time.
func TestRequest_SplitHeaderArrival_OneByteAtATime(t *testing.T) {
	raw := []byte("GET /x HTTP/1.1\r\nHost: a\r\nContent-Length: 0\r\n\r\n")
	req := NewRequest("HTTP", "test")

	for _, b := range raw {
		if err := req.AddData([]byte{b}); err != nil {
			t.Fatalf("AddData: %v", err)
		}
	}

	if !req.IsComplete() {
		t.Fatal("expected request to be complete")
	}
	if req.Method != "GET" {
		t.Fatalf("Method = %q, want GET", req.Method)
	}
	if req.Target != "/x" {
		t.Fatalf("Target = %q, want /x", req.Target)
	}
	host, ok := req.Header("Host")
	if !ok || host.Value != "a" {
		t.Fatalf("Host header = %+v, ok=%v", host, ok)
	}
}

// S2 (spec.md §8): body straddles a chunk boundary.
func TestRequest_BodyStraddlesChunkBoundary(t *testing.T) {
	req := NewRequest("HTTP", "test")

	if err := req.AddData([]byte("POST /y HTTP/1.1\r\nContent-Length: 5\r\n\r\nhel")); err != nil {
		t.Fatalf("AddData first chunk: %v", err)
	}
	if req.IsComplete() {
		t.Fatal("expected request to be incomplete before full body arrives")
	}
	if err := req.AddData([]byte("lo")); err != nil {
		t.Fatalf("AddData second chunk: %v", err)
	}

	if !req.IsComplete() {
		t.Fatal("expected request to be complete")
	}
	if string(req.Body()) != "hello" {
		t.Fatalf("Body = %q, want hello", req.Body())
	}
}

// S3 (spec.md §8): body overshoots the declared Content-Length in one
// chunk; further AddData calls after completion are ignored.
func TestRequest_OvershootBody_AndNoOpAfterComplete(t *testing.T) {
	req := NewRequest("HTTP", "test")

	err := req.AddData([]byte("POST /z HTTP/1.1\r\nContent-Length: 3\r\n\r\nhello"))
	if err != nil {
		t.Fatalf("AddData: %v", err)
	}
	if !req.IsComplete() {
		t.Fatal("expected request to be complete")
	}
	if len(req.Body()) < 3 {
		t.Fatalf("Body length = %d, want >= 3", len(req.Body()))
	}

	bodyBefore := string(req.Body())
	headersBefore := len(req.Headers())

	if err := req.AddData([]byte("more garbage")); err != nil {
		t.Fatalf("AddData after completion should not error: %v", err)
	}

	// invariant 6: addData after completion is a no-op.
	if string(req.Body()) != bodyBefore {
		t.Fatalf("Body changed after completion: %q -> %q", bodyBefore, req.Body())
	}
	if len(req.Headers()) != headersBefore {
		t.Fatalf("Headers changed after completion: %d -> %d", headersBefore, len(req.Headers()))
	}
}

// invariant 3 (spec.md §8): regardless of how the byte stream is split,
// a valid message with declared Content-Length L completes with
// body.length == L.
func TestRequest_ArbitrarySplitting_AlwaysCompletes(t *testing.T) {
	raw := []byte("POST /split HTTP/1.1\r\nHost: x\r\nContent-Length: 11\r\n\r\nhello world")
	splits := [][]int{
		{1, 1, 1, 1},
		{5, 20, 100},
		{len(raw)},
		{10, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	}

	for _, plan := range splits {
		req := NewRequest("HTTP", "test")
		offset := 0
		for _, n := range plan {
			if offset >= len(raw) {
				break
			}
			end := offset + n
			if end > len(raw) {
				end = len(raw)
			}
			if err := req.AddData(raw[offset:end]); err != nil {
				t.Fatalf("AddData: %v", err)
			}
			offset = end
		}
		if offset < len(raw) {
			if err := req.AddData(raw[offset:]); err != nil {
				t.Fatalf("AddData remainder: %v", err)
			}
		}

		if !req.IsComplete() {
			t.Fatalf("plan %v: expected complete", plan)
		}
		if len(req.Body()) != 11 {
			t.Fatalf("plan %v: Body length = %d, want 11", plan, len(req.Body()))
		}
	}
}

// Regression test for the spec.md §9 bug: a CRLF whose \r is the very
// last byte of one chunk and whose \n arrives in the next chunk must
// still be recognized as a header boundary.
func TestRequest_CRLFSplitAcrossChunks(t *testing.T) {
	req := NewRequest("HTTP", "test")

	chunk1 := []byte("GET /boundary HTTP/1.1\r\nHost: a\r")
	chunk2 := []byte("\nContent-Length: 0\r\n\r\n")

	if err := req.AddData(chunk1); err != nil {
		t.Fatalf("AddData chunk1: %v", err)
	}
	if err := req.AddData(chunk2); err != nil {
		t.Fatalf("AddData chunk2: %v", err)
	}

	if !req.IsComplete() {
		t.Fatal("expected request to be complete")
	}
	host, ok := req.Header("Host")
	if !ok || host.Value != "a" {
		t.Fatalf("Host header = %+v, ok=%v", host, ok)
	}
}

func TestRequest_NoContentLength_CompletesImmediately(t *testing.T) {
	req := NewRequest("HTTP", "test")
	if err := req.AddData([]byte("GET / HTTP/1.1\r\nHost: a\r\n\r\n")); err != nil {
		t.Fatalf("AddData: %v", err)
	}
	if !req.IsComplete() {
		t.Fatal("expected request with no Content-Length to complete immediately")
	}
}

func TestRequest_MalformedHeaderLine_ReturnsParseError(t *testing.T) {
	req := NewRequest("HTTP", "test")
	err := req.AddData([]byte("GET / HTTP/1.1\r\nthis is not a header\r\n\r\n"))
	if err == nil {
		t.Fatal("expected a parse error for a malformed header line")
	}
}

func TestResponse_ParsesStatusLine(t *testing.T) {
	resp := NewResponse("HTTPS", "test")
	err := resp.AddData([]byte("HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"))
	if err != nil {
		t.Fatalf("AddData: %v", err)
	}
	if !resp.IsComplete() {
		t.Fatal("expected response to be complete")
	}
	if resp.StatusCode != 404 {
		t.Fatalf("StatusCode = %d, want 404", resp.StatusCode)
	}
	if resp.Reason != "Not Found" {
		t.Fatalf("Reason = %q, want %q", resp.Reason, "Not Found")
	}
	if resp.Protocol() != "HTTPS" {
		t.Fatalf("Protocol() = %q, want HTTPS", resp.Protocol())
	}
}

func TestHeader_Values_SplitsOnCommaAndSemicolon(t *testing.T) {
	h := Header{Name: "Accept", Value: "text/html, application/json; q=0.9"}
	got := h.Values()
	want := []string{"text/html", "application/json", "q=0.9"}
	if len(got) != len(want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values() = %v, want %v", got, want)
		}
	}
}

func TestHeader_CaseInsensitiveLookup(t *testing.T) {
	req := NewRequest("HTTP", "test")
	if err := req.AddData([]byte("GET / HTTP/1.1\r\nCONTENT-TYPE: text/plain\r\n\r\n")); err != nil {
		t.Fatalf("AddData: %v", err)
	}
	if _, ok := req.Header("content-type"); !ok {
		t.Fatal("expected case-insensitive header lookup to find Content-Type")
	}
}
