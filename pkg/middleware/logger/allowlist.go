package logger

import (
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	queryLogMu     sync.RWMutex
	queryLogParams = map[string]struct{}{
		"name": {},
	}
	// never logged, even if allowlisted
	queryRedacted = map[string]struct{}{
		"key":  {},
		"args": {},
	}
)

// AddQueryLogParams extends the set of query parameters copied into the access log.
func AddQueryLogParams(params ...string) {
	queryLogMu.Lock()
	for _, p := range params {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, deny := queryRedacted[p]; deny {
			continue
		}
		queryLogParams[p] = struct{}{}
	}
	queryLogMu.Unlock()
}

func queryFields(r *http.Request) []zap.Field {
	if r.URL.RawQuery == "" {
		return nil
	}
	q := r.URL.Query()
	queryLogMu.RLock()
	defer queryLogMu.RUnlock()
	var out []zap.Field
	for p := range queryLogParams {
		if v := q.Get(p); v != "" {
			out = append(out, zap.String("q."+p, v))
		}
	}
	return out
}
