// Package jsonrpc exposes the dispatcher as a JSON-RPC 2.0 service.
package jsonrpc

import (
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/joeydtaylor/steeze-rpc/pkg/dispatch"
	"github.com/joeydtaylor/steeze-rpc/pkg/envelope"
	"github.com/joeydtaylor/steeze-rpc/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-rpc/pkg/middleware/metrics"
)

// Method is the fully qualified JSON-RPC method.
const Method = envelope.RPCMethod

type Bridge struct {
	auth       *auth.Middleware
	dispatcher *dispatch.Dispatcher
}

func NewBridge(a *auth.Middleware, d *dispatch.Dispatcher) *Bridge {
	return &Bridge{auth: a, dispatcher: d}
}

// Invoke mirrors the GET endpoint. Every application outcome, authorization
// failures included, is a JSON-RPC result; only malformed requests become
// JSON-RPC errors.
func (b *Bridge) Invoke(r *http.Request, args *envelope.InvokeArgs, reply *envelope.InvokeReply) error {
	if !b.auth.Authorize(args.Key) {
		metrics.AuthorizationFailed()
		*reply = envelope.Unauthorized().Reply()
		return nil
	}
	res, _ := envelope.Marshal(b.dispatcher.Dispatch(r.Context(), args.Name, args.Args))
	*reply = res.Reply()
	return nil
}

// NewServer registers b on a gorilla/rpc server speaking json2.
func NewServer(b *Bridge) (*rpc.Server, error) {
	s := rpc.NewServer()
	s.RegisterCodec(json2.NewCodec(), "application/json")
	if err := s.RegisterService(b, envelope.RPCService); err != nil {
		return nil, err
	}
	return s, nil
}
