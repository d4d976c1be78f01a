package logger

import (
	"net/http"
	"time"

	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/joeydtaylor/steeze-rpc/pkg/envelope"
	"go.uber.org/zap"
)

type Middleware struct{}

// Middleware writes one access line per request. Only the path and
// allowlisted query parameters are recorded; the secret never is.
func (m *Middleware) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := accessLogger()
			ww := chimd.NewWrapResponseWriter(w, r.ProtoMajor)

			scheme := "http"
			if r.TLS != nil {
				scheme = "https"
			}

			start := time.Now()
			defer func() {
				fields := []zap.Field{
					zap.String("dateTime", start.UTC().Format(time.RFC1123)),
					zap.String("requestId", chimd.GetReqID(r.Context())),
					zap.String("httpScheme", scheme),
					zap.String("httpProto", r.Proto),
					zap.String("httpMethod", r.Method),
					zap.String("remoteAddr", r.RemoteAddr),
					zap.String("uri", r.URL.Path),
					zap.Duration("lat", time.Since(start)),
					zap.Int("responseSize", ww.BytesWritten()),
					zap.Int("status", ww.Status()),
				}
				if tag := ww.Header().Get(envelope.HeaderStatus); tag != "" {
					fields = append(fields, zap.String("rpcStatus", tag))
				}
				fields = append(fields, queryFields(r)...)
				l.Info("", fields...)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
