package tracing

import (
	"context"
	"fmt"

	"github.com/taskhive/taskhive/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Resource describes the process the spans come from.
type Resource struct {
	Service     string
	Version     string
	Environment string
}

// NewProvider builds a sampling tracer provider that batches spans to exp.
func NewProvider(ctx context.Context, cfg *config.Tracing, exp sdktrace.SpanExporter, r Resource) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", r.Service),
		attribute.String("service.version", r.Version),
		attribute.String("deployment.environment", r.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	rate := 1.0
	var batch []sdktrace.BatchSpanProcessorOption
	if cfg != nil {
		rate = cfg.SamplingRate
		if cfg.BatchTimeout > 0 {
			batch = append(batch, sdktrace.WithBatchTimeout(cfg.BatchTimeout))
		}
		if cfg.ExportTimeout > 0 {
			batch = append(batch, sdktrace.WithExportTimeout(cfg.ExportTimeout))
		}
		if cfg.MaxExportBatchSize > 0 {
			batch = append(batch, sdktrace.WithMaxExportBatchSize(cfg.MaxExportBatchSize))
		}
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
		sdktrace.WithBatcher(exp, batch...),
		sdktrace.WithResource(res),
	), nil
}

// Setup installs an OTLP/gRPC exporting provider and the W3C propagators
// as the process globals. The returned function flushes and shuts the
// provider down; it is a no-op when tracing is disabled.
func Setup(ctx context.Context, cfg *config.Tracing, r Resource) (func(context.Context) error, error) {
	if cfg == nil || !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	tp, err := NewProvider(ctx, cfg, exp, r)
	if err != nil {
		_ = exp.Shutdown(ctx)
		return nil, err
	}
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}
