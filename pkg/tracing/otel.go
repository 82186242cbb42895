package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps OpenTelemetry tracer
type Tracer struct {
	tracer trace.Tracer
	tp     *sdktrace.TracerProvider
}

// Config holds tracing configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	JaegerEndpoint string
	Environment    string
}

// NewTracer creates a new OpenTelemetry tracer. An empty Jaeger endpoint
// yields a no-op tracer so callers never have to branch.
func NewTracer(config Config) (*Tracer, error) {
	if config.JaegerEndpoint == "" {
		return NewNoopTracer(), nil
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(config.JaegerEndpoint)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Jaeger exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracer{
		tracer: otel.Tracer(config.ServiceName),
		tp:     tp,
	}, nil
}

// NewNoopTracer creates a tracer that records nothing
func NewNoopTracer() *Tracer {
	return &Tracer{
		tracer: trace.NewNoopTracerProvider().Tracer("abicheck"),
	}
}

// StartSpan starts a new span
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// StartScenarioSpan starts a span for one scenario run
func (t *Tracer) StartScenarioSpan(ctx context.Context, scenario, module string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("abicheck.scenario", scenario),
		attribute.String("abicheck.module", module),
	}
	return t.tracer.Start(ctx, "abicheck.scenario", trace.WithAttributes(attrs...))
}

// Shutdown flushes any pending spans
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.tp == nil {
		return nil
	}
	return t.tp.Shutdown(ctx)
}
