package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// EndpointURL of the OTLP/HTTP collector. Empty disables export.
	EndpointURL  string
	Headers      map[string]string
	SamplerRatio float64
	// Extra span processors, mainly for tests.
	Processors []trace.SpanProcessor
}

// Resource describes the service for every exported signal.
func Resource(serviceName, serviceVersion, environment string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
		semconv.DeploymentEnvironment(environment),
		semconv.TelemetrySDKLanguageGo,
	)
}

// InitTracer installs a global TracerProvider and W3C propagators. The
// returned func flushes and stops the provider.
func InitTracer(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.ServiceName == "" {
		return nil, fmt.Errorf("service name is required")
	}

	opts := []trace.TracerProviderOption{
		trace.WithResource(Resource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(cfg.SamplerRatio))),
	}

	if cfg.EndpointURL != "" {
		exporterOpts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.EndpointURL)}
		if len(cfg.Headers) > 0 {
			exporterOpts = append(exporterOpts, otlptracehttp.WithHeaders(cfg.Headers))
		}
		exporter, err := otlptracehttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		opts = append(opts, trace.WithBatcher(exporter))
	}
	for _, p := range cfg.Processors {
		opts = append(opts, trace.WithSpanProcessor(p))
	}

	tp := trace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}
