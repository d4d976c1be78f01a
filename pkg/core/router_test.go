package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/rpc/v2/json2"
	"github.com/joeydtaylor/steeze-rpc/pkg/dispatch"
	"github.com/joeydtaylor/steeze-rpc/pkg/envelope"
	manifest "github.com/joeydtaylor/steeze-rpc/pkg/manifest"
	"github.com/joeydtaylor/steeze-rpc/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-rpc/pkg/registry"
	httpx "github.com/joeydtaylor/steeze-rpc/pkg/transport/httpx"
	"github.com/joeydtaylor/steeze-rpc/pkg/transport/jsonrpc"
)

const testKey = "samplekey"

type fixture struct {
	ts     *httptest.Server
	writes atomic.Int32
}

func newFixture(t *testing.T, mutate func(*manifest.Config)) *fixture {
	t.Helper()
	f := &fixture{}

	reg := registry.New()
	reg.MustRegister("echo", func(a []string) ([]string, error) { return a, nil })
	reg.MustRegister("putValues", func(a []string) (string, error) {
		f.writes.Add(1)
		return "Done", nil
	})
	reg.MustRegister("boom", func() (any, error) { return nil, errors.New("boom") })
	reg.MustRegister("slow", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "late", nil
	})
	reg.Freeze()

	cfg := manifest.Default()
	cfg.Auth.Key = testKey
	if mutate != nil {
		mutate(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	h, err := BuildRouter(cfg, BuildDeps{
		Auth:       auth.New(cfg.Auth.Key),
		Metrics:    http.NotFoundHandler(),
		Router:     httpx.NewChi(),
		Dispatcher: dispatch.New(reg, dispatch.Options{}),
	})
	if err != nil {
		t.Fatalf("BuildRouter: %v", err)
	}
	f.ts = httptest.NewServer(h)
	t.Cleanup(f.ts.Close)
	return f
}

func (f *fixture) get(t *testing.T, path string, q url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(f.ts.URL + path + "?" + q.Encode())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func invokeQuery(key, name, args string) url.Values {
	q := url.Values{}
	q.Set("key", key)
	q.Set("name", name)
	if args != "" {
		q.Set("args", args)
	}
	return q
}

func TestWrongKeyNeverInvokes(t *testing.T) {
	f := newFixture(t, nil)
	for _, key := range []string{"", "wrong", testKey + " "} {
		resp, body := f.get(t, "/exec", invokeQuery(key, "putValues", `["a"]`))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d", resp.StatusCode)
		}
		if body != `{"value":"Key error."}` {
			t.Fatalf("body %s", body)
		}
		if got := resp.Header.Get(envelope.HeaderStatus); got != "unauthorized" {
			t.Fatalf("status tag %q", got)
		}
	}
	if n := f.writes.Load(); n != 0 {
		t.Fatalf("side effect ran %d times", n)
	}
}

func TestInvokeOutcomes(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		name, fn, args string
		body, tag      string
	}{
		{"echo", "echo", `["a","b","c"]`, `{"value":["a","b","c"]}`, "ok"},
		{"delimiter survives", "echo", `["a,b","c"]`, `{"value":["a,b","c"]}`, "ok"},
		{"side effect", "putValues", `["x"]`, `{"value":"Done"}`, "ok"},
		{"boom", "boom", "", `{"value":"Error: boom"}`, "error"},
		{"unknown", "getFileNamesFromFolderName", `["x"]`, `{"value":"Error: getFileNamesFromFolderName is not a registered function"}`, "error"},
		{"missing name", "", "", `{"value":"Error: function name is required"}`, "error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := f.get(t, "/exec", invokeQuery(testKey, tc.fn, tc.args))
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status %d", resp.StatusCode)
			}
			if body != tc.body {
				t.Fatalf("body %s want %s", body, tc.body)
			}
			if got := resp.Header.Get(envelope.HeaderStatus); got != tc.tag {
				t.Fatalf("tag %q want %q", got, tc.tag)
			}
		})
	}
}

func TestMalformedArgsIsFailureEnvelope(t *testing.T) {
	f := newFixture(t, nil)
	resp, body := f.get(t, "/exec", invokeQuery(testKey, "echo", `["a"`))
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(body, `{"value":"Error: args: `) {
		t.Fatalf("status %d body %s", resp.StatusCode, body)
	}
	if strings.Contains(body, "args: args:") {
		t.Fatalf("args prefix repeated: %s", body)
	}
}

func TestLegacyArgs(t *testing.T) {
	f := newFixture(t, func(c *manifest.Config) { c.Args.Legacy = true })
	_, body := f.get(t, "/exec", invokeQuery(testKey, "echo", "a,b,c"))
	if body != `{"value":["a","b","c"]}` {
		t.Fatalf("body %s", body)
	}
	// the known lossy case: one argument containing the delimiter splits
	_, body = f.get(t, "/exec", invokeQuery(testKey, "echo", "a,b"))
	if body != `{"value":["a","b"]}` {
		t.Fatalf("body %s", body)
	}
	_, body = f.get(t, "/exec", invokeQuery(testKey, "echo", "single"))
	if body != `{"value":["single"]}` {
		t.Fatalf("body %s", body)
	}
	// `args=` is one empty argument in the legacy form
	_, body = f.get(t, "/exec", invokeQuery(testKey, "echo", ""))
	if body != `{"value":[""]}` {
		t.Fatalf("body %s", body)
	}
}

func TestDispatchTimeout(t *testing.T) {
	f := newFixture(t, func(c *manifest.Config) { c.Dispatch.TimeoutMS = 20 })
	_, body := f.get(t, "/exec", invokeQuery(testKey, "slow", ""))
	if body != `{"value":"Error: context deadline exceeded"}` {
		t.Fatalf("body %s", body)
	}
}

func TestCustomPath(t *testing.T) {
	f := newFixture(t, func(c *manifest.Config) { c.Server.Path = "bridge" })
	_, body := f.get(t, "/bridge", invokeQuery(testKey, "echo", `["x"]`))
	if body != `{"value":["x"]}` {
		t.Fatalf("body %s", body)
	}
}

func TestInvokeIsGETOnly(t *testing.T) {
	f := newFixture(t, nil)
	resp, err := http.Post(f.ts.URL+"/exec?"+invokeQuery(testKey, "echo", "").Encode(), "text/plain", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestFunctionsListing(t *testing.T) {
	f := newFixture(t, nil)
	_, body := f.get(t, "/functions", url.Values{"key": {testKey}})
	want := `{"functions":["boom","echo","putValues","slow"],"args":"json"}`
	if body != want {
		t.Fatalf("body %s want %s", body, want)
	}
	_, body = f.get(t, "/functions", url.Values{})
	if body != `{"value":"Key error."}` {
		t.Fatalf("unauthorized listing: %s", body)
	}
}

func TestPing(t *testing.T) {
	f := newFixture(t, nil)
	resp, _ := f.get(t, "/ping", url.Values{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestJSONRPCMounted(t *testing.T) {
	f := newFixture(t, nil)
	req, _ := json2.EncodeClientRequest(jsonrpc.Method, &envelope.InvokeArgs{Name: "boom", Key: testKey})
	resp, err := http.Post(f.ts.URL+"/rpc", "application/json", bytes.NewReader(req))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var rep envelope.InvokeReply
	if err := json2.DecodeClientResponse(resp.Body, &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.OK || rep.Value != "Error: boom" {
		t.Fatalf("reply %+v", rep)
	}
}

func TestJSONRPCDisabled(t *testing.T) {
	f := newFixture(t, func(c *manifest.Config) { c.Server.JSONRPCPath = "" })
	resp, err := http.Post(f.ts.URL+"/rpc", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
}
