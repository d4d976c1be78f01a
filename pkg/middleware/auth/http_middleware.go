package auth

import (
	"context"
	"net/http"

	"github.com/joeydtaylor/steeze-rpc/pkg/envelope"
	"github.com/joeydtaylor/steeze-rpc/pkg/middleware/metrics"
)

// Middleware checks the `key` query parameter before anything downstream runs.
// A mismatch is answered with the fixed "Key error." envelope and status 200.
func (m *Middleware) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.Authorize(r.URL.Query().Get(KeyParam)) {
				metrics.AuthorizationFailed()
				envelope.Write(w, envelope.Unauthorized())
				return
			}
			ctx := context.WithValue(r.Context(), authorizedCtxKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
