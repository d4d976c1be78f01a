package observability

import (
	"context"
	"net/http"

	chimd "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var (
	AttrFunction  = attribute.Key("rpc.function")
	AttrArgCount  = attribute.Key("rpc.args")
	AttrRequestID = attribute.Key("rpc.request_id")
	AttrOutcome   = attribute.Key("rpc.outcome")
)

// StartSpan starts an internal span under ctx.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func SetSpanError(span trace.Span, msg string) {
	span.SetStatus(codes.Error, msg)
}

func SetSpanOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// HTTPMiddleware opens a server span per request. The span name and
// attributes use the path only; the query string holds the shared secret.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := Tracer().Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
				AttrRequestID.String(chimd.GetReqID(r.Context())),
			),
		)
		defer span.End()

		ww := chimd.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		span.SetAttributes(
			attribute.Int("http.response.status_code", ww.Status()),
			attribute.Int("http.response.body.size", ww.BytesWritten()),
		)
		if ww.Status() >= 400 {
			span.SetStatus(codes.Error, http.StatusText(ww.Status()))
		}
	})
}
