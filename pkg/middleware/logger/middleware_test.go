package logger

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joeydtaylor/steeze-rpc/pkg/envelope"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAccessLogNeverRecordsSecret(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetAccessLogger(zap.New(core))

	h := (&Middleware{}).Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		envelope.Write(w, envelope.Success("Done"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exec?key=samplekey&name=echo&args=%5B%22secret-arg%22%5D", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("want 1 access line, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["uri"] != "/exec" {
		t.Fatalf("uri = %v", ctx["uri"])
	}
	if ctx["q.name"] != "echo" {
		t.Fatalf("q.name = %v", ctx["q.name"])
	}
	if ctx["rpcStatus"] != "ok" {
		t.Fatalf("rpcStatus = %v", ctx["rpcStatus"])
	}
	if ctx["status"] != int64(http.StatusOK) {
		t.Fatalf("status = %v (%T)", ctx["status"], ctx["status"])
	}
	for k, v := range ctx {
		s, _ := v.(string)
		if strings.Contains(s, "samplekey") || strings.Contains(s, "secret-arg") {
			t.Fatalf("field %s leaked %q", k, s)
		}
	}
}

func TestAddQueryLogParamsRefusesSecret(t *testing.T) {
	AddQueryLogParams("key", "args", " ")
	queryLogMu.RLock()
	_, k := queryLogParams["key"]
	_, a := queryLogParams["args"]
	queryLogMu.RUnlock()
	if k || a {
		t.Fatalf("redacted params were allowlisted")
	}
}
