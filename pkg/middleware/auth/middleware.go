package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"
)

// New builds an authorizer for key. An empty key authorizes nothing.
func New(key string) *Middleware {
	m := &Middleware{}
	if strings.TrimSpace(key) != "" {
		m.digest = sha256.Sum256([]byte(key))
		m.configured = true
	}
	return m
}

// Authorize reports whether supplied equals the configured secret, in constant time.
func (m *Middleware) Authorize(supplied string) bool {
	if m == nil || !m.configured {
		return false
	}
	d := sha256.Sum256([]byte(supplied))
	return subtle.ConstantTimeCompare(d[:], m.digest[:]) == 1
}
