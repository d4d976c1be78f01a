package jsonrpc

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/joeydtaylor/steeze-rpc/pkg/dispatch"
	"github.com/joeydtaylor/steeze-rpc/pkg/envelope"
	"github.com/joeydtaylor/steeze-rpc/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-rpc/pkg/registry"
)

func newTestServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	reg := registry.New()
	reg.MustRegister("echo", func(a []string) ([]string, error) { return a, nil })
	reg.MustRegister("touch", func() (string, error) { *calls++; return "Done", nil })
	reg.MustRegister("boom", func() (any, error) { return nil, errors.New("boom") })
	reg.Freeze()

	srv, err := NewServer(NewBridge(auth.New("samplekey"), dispatch.New(reg, dispatch.Options{})))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, url string, args envelope.InvokeArgs) envelope.InvokeReply {
	t.Helper()
	body, err := json2.EncodeClientRequest(Method, &args)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var reply envelope.InvokeReply
	if err := json2.DecodeClientResponse(resp.Body, &reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return reply
}

func TestInvokeSuccess(t *testing.T) {
	var calls int
	ts := newTestServer(t, &calls)
	rep := call(t, ts.URL, envelope.InvokeArgs{Name: "echo", Args: []string{"a,b", "c"}, Key: "samplekey"})
	if !rep.OK {
		t.Fatalf("expected ok, got %+v", rep)
	}
	vals, ok := rep.Value.([]any)
	if !ok || len(vals) != 2 || vals[0] != "a,b" || vals[1] != "c" {
		t.Fatalf("args did not survive intact: %#v", rep.Value)
	}
}

func TestInvokeFailureIsResult(t *testing.T) {
	var calls int
	ts := newTestServer(t, &calls)
	rep := call(t, ts.URL, envelope.InvokeArgs{Name: "boom", Key: "samplekey"})
	if rep.OK || rep.Value != "Error: boom" {
		t.Fatalf("got %+v", rep)
	}
}

func TestInvokeWrongKey(t *testing.T) {
	var calls int
	ts := newTestServer(t, &calls)
	rep := call(t, ts.URL, envelope.InvokeArgs{Name: "touch", Key: "nope"})
	if rep.OK || rep.Value != envelope.KeyErrorValue {
		t.Fatalf("got %+v", rep)
	}
	if calls != 0 {
		t.Fatalf("function ran %d times without authorization", calls)
	}
}

func TestRejectsGET(t *testing.T) {
	var calls int
	ts := newTestServer(t, &calls)
	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", resp.StatusCode)
	}
}
