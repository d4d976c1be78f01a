package core

import (
	"net/http"

	"github.com/joeydtaylor/steeze-rpc/pkg/envelope"
	"github.com/joeydtaylor/steeze-rpc/pkg/middleware/auth"
)

// withGuard runs next only for requests carrying the shared secret.
// Without an authorizer every request is refused.
func withGuard(next http.HandlerFunc, a *auth.Middleware) http.HandlerFunc {
	if a == nil {
		return func(w http.ResponseWriter, _ *http.Request) {
			envelope.Write(w, envelope.Unauthorized())
		}
	}
	return a.Middleware()(next).ServeHTTP
}
