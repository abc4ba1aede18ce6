// Package tracing exports OpenTelemetry spans of audit and sync runs to an
// OTLP collector. Without an endpoint every span is a no-op.
package tracing

import (
	"context"
	"fmt"

	"github.com/jakoblorz/go-mvnaudit/internal/graph"
	"github.com/jakoblorz/go-mvnaudit/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName names the mvnaudit tracer.
	TracerName = "github.com/jakoblorz/go-mvnaudit"

	serviceName = "mvnaudit"
)

// Config selects the collector.
type Config struct {
	// Endpoint is the OTLP gRPC endpoint (e.g. "localhost:4317"). Empty disables tracing.
	Endpoint string

	// SampleRate is the fraction of runs traced, 0 to 1.
	SampleRate float64

	ServiceVersion string
}

// Provider owns the SDK tracer provider of a run.
type Provider struct {
	provider *sdktrace.TracerProvider
}

// Init installs the global tracer provider. With an empty endpoint it
// returns a Provider whose Shutdown does nothing.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Endpoint == "" {
		return &Provider{}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Provider{provider: provider}, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider != nil {
		return p.provider.Shutdown(ctx)
	}
	return nil
}

// Start starts an internal span on the global tracer.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// RecordGraph annotates span with the size of a built graph.
func RecordGraph(span trace.Span, g *graph.Graph) {
	edges := 0
	for _, p := range g.Projects.Projects() {
		edges += len(p.Dependencies)
	}
	span.SetAttributes(
		attribute.Int("mvnaudit.projects", g.Projects.Len()),
		attribute.Int("mvnaudit.edges", edges),
		attribute.Int("mvnaudit.external", len(g.External)),
		attribute.Int("mvnaudit.issues", len(g.Issues)),
	)
}

type tracedOracle struct {
	next graph.VersionOracle
}

// InstrumentOracle wraps o so every lookup is a client span.
func InstrumentOracle(o graph.VersionOracle) graph.VersionOracle {
	return &tracedOracle{next: o}
}

func (t *tracedOracle) Latest(ctx context.Context, c models.Coordinate) (string, bool, error) {
	ctx, span := otel.Tracer(TracerName).Start(ctx, "oracle.latest",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("maven.artifact", c.ArtifactKey()),
			attribute.String("maven.version", c.Version),
		),
	)

	latest, found, err := t.next.Latest(ctx, c)
	span.SetAttributes(attribute.Bool("maven.found", found))
	if found {
		span.SetAttributes(attribute.String("maven.latest", latest))
	}
	End(span, err)

	return latest, found, err
}
