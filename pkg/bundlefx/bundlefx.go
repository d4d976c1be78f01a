// bundlefx/bundlefx.go
package bundlefx

import (
	"github.com/joeydtaylor/steeze-rpc/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-rpc/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-rpc/pkg/middleware/metrics"
	"go.uber.org/fx"
)

// Module bundles the authorizer, loggers and the /metrics handler.
// auth needs a manifest.Config in the graph.
var Module = fx.Options(
	auth.Module,
	logger.Module,
	metrics.Module,
)
