package tracing

import (
	"context"
	"fmt"
	"time"

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
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// Config holds tracing configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	JaegerEndpoint string
	Environment    string
}

// NewTracer creates a new OpenTelemetry tracer
func NewTracer(config Config) (*Tracer, error) {
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
		tracer:   otel.Tracer(config.ServiceName),
		provider: tp,
	}, nil
}

// StartSpan starts a new span
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// StartGenerationSpan starts a span covering one generation run.
func (t *Tracer) StartGenerationSpan(ctx context.Context, driver, runID string, maxIterations int) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("testgen.driver", driver),
		attribute.String("testgen.run_id", runID),
		attribute.Int("testgen.max_iterations", maxIterations),
	}

	return t.tracer.Start(ctx, "testgen.run", trace.WithAttributes(attrs...))
}

// StartSaveSpan starts a span for a corpus persistence call.
func (t *Tracer) StartSaveSpan(ctx context.Context, method, dir string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("corpus.method", method),
		attribute.String("corpus.dir", dir),
	}

	return t.tracer.Start(ctx, "corpus.save", trace.WithAttributes(attrs...))
}

// RecordSpanError records an error in a span
func RecordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(1, err.Error()) // 1 = codes.Error
}

// RecordSpanDuration records duration in a span
func RecordSpanDuration(span trace.Span, duration time.Duration) {
	span.SetAttributes(attribute.Float64("duration_ms", float64(duration.Nanoseconds())/1e6))
}

// RecordSpanCounts records bucket sizes in a span.
func RecordSpanCounts(span trace.Span, passing, failing, undefined int) {
	span.SetAttributes(
		attribute.Int("testgen.passing", passing),
		attribute.Int("testgen.failing", failing),
		attribute.Int("testgen.undefined", undefined),
	)
}

// Shutdown flushes and stops the tracer provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}
