package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"primecheck/config"
	"primecheck/handlers"
	"primecheck/logs"
	"primecheck/metrics"
	"primecheck/middleware"
	"primecheck/primes"
	"primecheck/tracer"

	"go.opentelemetry.io/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := tracer.Resource(cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)

	logBuilder := logs.NewOtelLoggerBuilder().
		WithEndpointUrl(cfg.Otel.Endpoint).
		WithAuthHeader(cfg.Otel.APIKey).
		WithServiceName(cfg.ServiceName).
		WithResource(res).
		WithLevel(cfg.LogLevel)
	if cfg.Otel.ConsoleLogs {
		logBuilder = logBuilder.WithConsoleExporter()
	}
	l, shutdownLogs, err := logBuilder.Build(ctx)
	if err != nil {
		panic(err)
	}

	shutdownTracer, err := tracer.InitTracer(ctx, tracer.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.Environment,
		EndpointURL:    cfg.Otel.Endpoint,
		Headers:        cfg.Otel.Headers(),
		SamplerRatio:   cfg.Otel.SamplerRatio,
	})
	if err != nil {
		l.Fatal(nil, "failed to init tracer: ", err)
	}

	shutdownMeter, err := metrics.InitMeter(ctx, metrics.MeterConfig{
		EndpointURL:    cfg.Otel.Endpoint,
		Headers:        cfg.Otel.Headers(),
		ExportInterval: cfg.Otel.ExportInterval,
		Resource:       res,
	})
	if err != nil {
		l.Fatal(nil, "failed to init meter: ", err)
	}

	checker := primes.NewChecker(primes.NewStats())
	m, err := metrics.New(checker, otel.Meter(cfg.ServiceName))
	if err != nil {
		l.Fatal(nil, "failed to register metrics: ", err)
	}

	mux := http.NewServeMux()
	handlers.Register(mux, l, checker, m, m.Handler())

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      middleware.TraceMiddleware(cfg.ServiceName, l)(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		l.Infof(nil, "Starting server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal(nil, "server failed: ", err)
		}
	}()

	<-ctx.Done()
	l.Info(nil, "Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	err = errors.Join(
		srv.Shutdown(shutdownCtx),
		shutdownMeter(shutdownCtx),
		shutdownTracer(shutdownCtx),
	)
	if err != nil {
		l.Error(nil, "shutdown: ", err)
	}
	flushLogs(shutdownCtx, shutdownLogs, os.Stderr)
}

// flushLogs stops the log pipeline. Its failure is written to w since the
// logger itself is gone.
func flushLogs(ctx context.Context, shutdown func(context.Context) error, w io.Writer) {
	if err := shutdown(ctx); err != nil {
		fmt.Fprintf(w, "failed to flush logs: %v\n", err)
	}
}
