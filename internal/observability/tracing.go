package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// InitTracing wires an OTLP-gRPC exporter into a TracerProvider, installed
// globally so each pipeline stage (precompute, build, solve, materialize) can
// open its own span without threading a provider through every call site.
// An empty collectorEndpoint disables export but still installs a provider,
// so GetTracer never returns a nil tracer.
func InitTracing(ctx context.Context, logger *zap.Logger, serviceName, collectorEndpoint string, sampleRate float64) (func(context.Context) error, error) {
	if collectorEndpoint == "" {
		logger.Info("tracing disabled: no collector endpoint configured")
		otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample())))
		return func(context.Context) error { return nil }, nil
	}

	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(collectorEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("init tracing exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion("1.0.0"),
			attribute.String("component", "gridplanner"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(pickSampler(sampleRate)),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing initialized",
		zap.String("endpoint", collectorEndpoint),
		zap.Float64("sample_rate", sampleRate),
	)

	return tp.Shutdown, nil
}

func pickSampler(rate float64) sdktrace.Sampler {
	switch {
	case rate <= 0:
		return sdktrace.NeverSample()
	case rate >= 1:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// GetTracer returns the named tracer for a pipeline stage (e.g. "precompute",
// "constraint_builder", "cpsat_solver", "materializer").
func GetTracer(componentName string) trace.Tracer {
	return otel.Tracer(componentName)
}
