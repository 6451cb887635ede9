package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "symindex"

// Tracer is resolved against the global provider, so spans become real once
// InitTracing has installed an exporter and are no-ops otherwise.
var Tracer trace.Tracer = otel.Tracer(tracerName)

// InitTracing exports spans over OTLP/gRPC to endpoint. An empty endpoint
// leaves the no-op provider in place.
func InitTracing(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}
	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)
	Tracer = provider.Tracer(tracerName)
	return provider.Shutdown, nil
}
