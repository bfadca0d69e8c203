// Package observability bootstraps distributed tracing and request metrics:
// span-level timing and routing decisions via OpenTelemetry, and counters
// via Prometheus.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "hybrid-retrieval-orchestrator"

// InitTracing configures the global tracer provider. An empty otlpEndpoint
// selects the stdout exporter, suited to local development; a non-empty one
// exports spans via OTLP/gRPC.
func InitTracing(ctx context.Context, otlpEndpoint string) (shutdown func(context.Context) error, err error) {
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	if otlpEndpoint == "" {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("build stdout exporter: %w", err)
		}
	} else {
		client := otlptracegrpc.NewClient(otlptracegrpc.WithEndpoint(otlpEndpoint), otlptracegrpc.WithInsecure())
		exporter, err = otlptrace.New(ctx, client)
		if err != nil {
			return nil, fmt.Errorf("build otlp exporter: %w", err)
		}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

// Tracer returns the package-wide tracer for span creation at each
// orchestrator stage.
func Tracer() trace.Tracer {
	return otel.Tracer(serviceName)
}
