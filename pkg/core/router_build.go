package core

import (
	"fmt"
	"net/http"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-rpc/pkg/codec"
	manifest "github.com/joeydtaylor/steeze-rpc/pkg/manifest"
	hmetrics "github.com/joeydtaylor/steeze-rpc/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-rpc/pkg/observability"
	"github.com/joeydtaylor/steeze-rpc/pkg/transport/jsonrpc"
)

// BuildRouter mounts the invoke endpoint, the JSON-RPC endpoint (if enabled),
// /functions, /metrics and /ping on d.Router.
func BuildRouter(cfg manifest.Config, d BuildDeps) (http.Handler, error) {
	if d.Router == nil || d.Dispatcher == nil {
		return nil, fmt.Errorf("core: router and dispatcher are required")
	}
	args := d.Args
	if args == nil {
		args = codec.ArgsFor(cfg.Args.Legacy)
	}

	r := d.Router
	r.Use(chimd.RequestID, chimd.Recoverer, chimd.Heartbeat("/ping"))
	r.Use(observability.HTTPMiddleware)
	if d.LogMW != nil {
		r.Use(d.LogMW.Middleware())
	}
	r.Use(hmetrics.Collect())

	if d.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", d.Metrics)
	}

	timeout := cfg.DispatchTimeout()

	var invoke http.HandlerFunc = invokeHandler(d.Dispatcher, args)
	if timeout > 0 {
		invoke = withTimeout(invoke, timeout)
	}
	r.Get(cfg.Server.Path, withGuard(invoke, d.Auth))

	r.Get("/functions", withGuard(functionsHandler(d.Dispatcher.Registry(), args), d.Auth))

	if cfg.Server.JSONRPCPath != "" {
		srv, err := jsonrpc.NewServer(jsonrpc.NewBridge(d.Auth, d.Dispatcher))
		if err != nil {
			return nil, fmt.Errorf("core: json-rpc: %w", err)
		}
		var h http.HandlerFunc = srv.ServeHTTP
		if timeout > 0 {
			h = withTimeout(h, timeout)
		}
		r.Post(cfg.Server.JSONRPCPath, h)
	}
	return r.Mux(), nil
}
