package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/config"
	"github.com/taskhive/taskhive/ctxutil"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMiddlewareSetsTraceID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware("test"))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.GetTraceID(c.Request.Context()))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Body.Len() == 0 || w.Header().Get(TraceIDHeader) != w.Body.String() {
		t.Errorf("trace id header %q, body %q", w.Header().Get(TraceIDHeader), w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(TraceIDHeader, "abc123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc123" {
		t.Errorf("incoming trace id not kept: %q", w.Body.String())
	}
}

func TestMiddlewareUsesSpanTraceID(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp, err := NewProvider(context.Background(), &config.Tracing{SamplingRate: 1}, exp, Resource{Service: "test"})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware("test", WithTracerProvider(tp)))
	r.GET("/boards/:id", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodGet, "/boards/b1", nil)
	req.Header.Set(TraceIDHeader, "ignored")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatal(err)
	}
	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	span := spans[0]
	if got := w.Header().Get(TraceIDHeader); got != span.SpanContext.TraceID().String() {
		t.Errorf("header %q, span trace id %s", got, span.SpanContext.TraceID())
	}
	if span.Name != "GET /boards/:id" || span.Status.Code != codes.Error {
		t.Errorf("span = %s %v", span.Name, span.Status)
	}
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), &config.Tracing{Enabled: false}, Resource{Service: "test"})
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Error(err)
	}
}
