// core/handlers.go
package core

import (
	"net/http"

	"github.com/joeydtaylor/steeze-rpc/pkg/codec"
	"github.com/joeydtaylor/steeze-rpc/pkg/dispatch"
	"github.com/joeydtaylor/steeze-rpc/pkg/envelope"
	"github.com/joeydtaylor/steeze-rpc/pkg/registry"
)

// Query parameters of the invoke endpoint; the secret is auth.KeyParam.
const (
	NameParam = "name"
	ArgsParam = "args"
)

// invokeHandler answers every authorized request with 200 and an envelope.
func invokeHandler(d *dispatch.Dispatcher, args codec.Args) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		envelope.Write(w, d.DispatchRaw(r.Context(), q.Get(NameParam), q.Get(ArgsParam), args))
	}
}

type functionsReply struct {
	Functions []string `json:"functions"`
	Args      string   `json:"args"`
}

func functionsHandler(reg *registry.Registry, args codec.Args) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, functionsReply{Functions: reg.Names(), Args: args.Name()}, http.StatusOK)
	}
}
