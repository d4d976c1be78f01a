package auth

import "crypto/sha256"

// KeyParam is the query parameter carrying the shared secret.
const KeyParam = "key"

type contextKey struct{ name string }

var authorizedCtxKey = &contextKey{"authorized"}

// Middleware is the request authorizer. It holds only a digest of the
// configured secret; comparisons run over digests of equal length.
type Middleware struct {
	digest     [sha256.Size]byte
	configured bool
}
