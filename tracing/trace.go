// Package tracing opens an OpenTelemetry span per HTTP request and makes
// its trace id the request trace id.
package tracing

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/ctxutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader carries the trace id back to the client.
const TraceIDHeader = "X-Trace-ID"

type options struct {
	provider trace.TracerProvider
}

// Option configures Middleware.
type Option func(*options)

// WithTracerProvider uses tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.provider = tp }
}

// Middleware starts a server span named after the matched route, continuing
// an incoming traceparent. Without an installed tracer provider the span is
// a no-op and the trace id falls back to X-Trace-ID or a generated one.
func Middleware(service string, opts ...Option) gin.HandlerFunc {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	var tracer trace.Tracer
	if o.provider != nil {
		tracer = o.provider.Tracer(service)
	} else {
		tracer = otel.Tracer(service)
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, fmt.Sprintf("%s %s", c.Request.Method, route),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
			))
		defer span.End()

		if sc := span.SpanContext(); sc.HasTraceID() {
			ctx = ctxutil.SetTraceID(ctx, sc.TraceID().String())
		} else if id := c.GetHeader(TraceIDHeader); id != "" {
			ctx = ctxutil.SetTraceID(ctx, id)
		}
		ctx, traceID := ctxutil.EnsureTraceID(ctx)
		ctxutil.BindGin(c, ctx)
		c.Header(TraceIDHeader, traceID)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
		}
		if len(c.Errors) > 0 {
			span.RecordError(c.Errors.Last())
		}
	}
}
