package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

type MeterConfig struct {
	// EndpointURL of the OTLP/HTTP collector. Empty disables export.
	EndpointURL    string
	Headers        map[string]string
	ExportInterval time.Duration
	Resource       *resource.Resource
	// Readers are added alongside the OTLP reader, mainly for tests.
	Readers []sdkmetric.Reader
}

// InitMeter installs a global MeterProvider. The returned func flushes and
// stops the provider.
func InitMeter(ctx context.Context, cfg MeterConfig) (func(context.Context) error, error) {
	if cfg.ExportInterval <= 0 {
		cfg.ExportInterval = 30 * time.Second
	}
	res := cfg.Resource
	if res == nil {
		res = resource.Default()
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if cfg.EndpointURL != "" {
		exporterOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(cfg.EndpointURL)}
		if len(cfg.Headers) > 0 {
			exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(cfg.Headers))
		}
		exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.ExportInterval)),
		))
	}
	for _, r := range cfg.Readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}
