package core

import (
	"net/http"

	"github.com/joeydtaylor/steeze-rpc/pkg/codec"
	"github.com/joeydtaylor/steeze-rpc/pkg/dispatch"
	"github.com/joeydtaylor/steeze-rpc/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-rpc/pkg/middleware/logger"
	httpx "github.com/joeydtaylor/steeze-rpc/pkg/transport/httpx"
)

type BuildDeps struct {
	Auth       *auth.Middleware
	LogMW      *logger.Middleware
	Metrics    http.Handler
	Router     httpx.Router
	Dispatcher *dispatch.Dispatcher
	// Args defaults to the codec selected by cfg.Args.Legacy.
	Args codec.Args
}
