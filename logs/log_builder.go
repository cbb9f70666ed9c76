package logs

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Header map[string]string

type OtelLoggerBuilder struct {
	logExporterOpts    []otlploghttp.Option
	endpointSet        bool
	serviceName        string
	resource           *resource.Resource
	level              zapcore.Level
	useConsoleExporter bool
	exporter           sdklog.Exporter
	console            zapcore.WriteSyncer
}

func NewOtelLoggerBuilder() *OtelLoggerBuilder {
	return &OtelLoggerBuilder{
		level:   zapcore.InfoLevel,
		console: zapcore.Lock(os.Stdout),
	}
}

// WithEndpointUrl ships logs over OTLP/HTTP. An empty url is ignored.
func (b *OtelLoggerBuilder) WithEndpointUrl(endpointUrl string) *OtelLoggerBuilder {
	if endpointUrl == "" {
		return b
	}
	b.endpointSet = true
	b.logExporterOpts = append(b.logExporterOpts, otlploghttp.WithEndpointURL(endpointUrl))
	return b
}

func (b *OtelLoggerBuilder) WithHeaders(headers Header) *OtelLoggerBuilder {
	if len(headers) == 0 {
		return b
	}
	headerMap := make(map[string]string, len(headers))
	for key, value := range headers {
		headerMap[key] = value
	}
	b.logExporterOpts = append(b.logExporterOpts, otlploghttp.WithHeaders(headerMap))
	return b
}

func (b *OtelLoggerBuilder) WithAuthHeader(token string) *OtelLoggerBuilder {
	if token == "" {
		return b
	}
	return b.WithHeaders(Header{
		"Authorization": "ApiKey " + token,
	})
}

func (b *OtelLoggerBuilder) WithServiceName(serviceName string) *OtelLoggerBuilder {
	b.serviceName = serviceName
	return b
}

func (b *OtelLoggerBuilder) WithResource(res *resource.Resource) *OtelLoggerBuilder {
	b.resource = res
	return b
}

// WithLevel sets the minimum level, e.g. "debug" or "warn". Unknown levels
// fall back to info.
func (b *OtelLoggerBuilder) WithLevel(level string) *OtelLoggerBuilder {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	b.level = lvl
	return b
}

func (b *OtelLoggerBuilder) WithConsoleExporter() *OtelLoggerBuilder {
	b.useConsoleExporter = true
	return b
}

// WithExporter replaces the OTLP exporter and exports every record synchronously.
func (b *OtelLoggerBuilder) WithExporter(exporter sdklog.Exporter) *OtelLoggerBuilder {
	b.exporter = exporter
	return b
}

func (b *OtelLoggerBuilder) WithConsoleWriter(w zapcore.WriteSyncer) *OtelLoggerBuilder {
	b.console = w
	return b
}

// Build wires zap to the OTel log pipeline and registers the provider
// globally. The returned func flushes and stops the provider.
func (b *OtelLoggerBuilder) Build(ctx context.Context) (OtelLogging, func(context.Context) error, error) {
	if b.serviceName == "" {
		return nil, nil, fmt.Errorf("service name is required")
	}
	res := b.resource
	if res == nil {
		res = resource.Default()
	}

	providerOpts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	switch {
	case b.exporter != nil:
		providerOpts = append(providerOpts, sdklog.WithProcessor(sdklog.NewSimpleProcessor(b.exporter)))
	case b.endpointSet:
		exporter, err := otlploghttp.New(ctx, b.logExporterOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)))
	case b.useConsoleExporter:
		exporter, err := stdoutlog.New(stdoutlog.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)))
	}

	provider := sdklog.NewLoggerProvider(providerOpts...)
	global.SetLoggerProvider(provider)

	level := zap.NewAtomicLevelAt(b.level)
	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, b.console, level),
		&leveledCore{Core: otelzap.NewCore(b.serviceName, otelzap.WithLoggerProvider(provider)), level: level},
	)
	zapLogger := zap.New(core)

	shutdown := func(ctx context.Context) error {
		_ = zapLogger.Sync()
		return provider.Shutdown(ctx)
	}
	return NewOtelLogging(zapLogger), shutdown, nil
}

// leveledCore applies the configured level to the otelzap core, which
// otherwise forwards every entry.
type leveledCore struct {
	zapcore.Core
	level zapcore.LevelEnabler
}

func (c *leveledCore) Enabled(lvl zapcore.Level) bool {
	return c.level.Enabled(lvl) && c.Core.Enabled(lvl)
}

func (c *leveledCore) With(fields []zapcore.Field) zapcore.Core {
	return &leveledCore{Core: c.Core.With(fields), level: c.level}
}

func (c *leveledCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.level.Enabled(ent.Level) {
		return ce
	}
	return c.Core.Check(ent, ce)
}
