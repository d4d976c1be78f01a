package auth

import "context"

// IsAuthorized reports whether ctx passed through Middleware.
func (m *Middleware) IsAuthorized(ctx context.Context) bool {
	ok, _ := ctx.Value(authorizedCtxKey).(bool)
	return ok
}
