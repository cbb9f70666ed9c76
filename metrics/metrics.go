// Package metrics exposes the primality counters as Prometheus and
// OpenTelemetry instruments.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Source provides the live counter values read at collection time.
type Source interface {
	HighestPrimeSoFar() int64
	ChecksPerformed() uint64
}

type Metrics struct {
	registry  *prometheus.Registry
	promTimer *prometheus.HistogramVec
	otelTimer metric.Float64Histogram
}

// New registers all instruments against a private Prometheus registry and
// the given meter.
func New(src Source, meter metric.Meter) (*Metrics, error) {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		promTimer: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "checks_timer_seconds",
				Help:    "A measure of how long it takes to perform the primality test.",
				Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12),
			},
			[]string{"verdict"},
		),
	}

	err := registerAll(reg,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "highest_prime_number_so_far",
			Help: "Highest prime number so far.",
		}, func() float64 { return float64(src.HighestPrimeSoFar()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "performed_checks_total",
			Help: "How many primality checks have been performed.",
		}, func() float64 { return float64(src.ChecksPerformed()) }),
		m.promTimer,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err != nil {
		return nil, err
	}

	highest, err := meter.Int64ObservableGauge("highestPrimeNumberSoFar",
		metric.WithDescription("Highest prime number so far."))
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge: %w", err)
	}
	checks, err := meter.Int64ObservableCounter("performedChecks",
		metric.WithDescription("How many primality checks have been performed."))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(highest, src.HighestPrimeSoFar())
		o.ObserveInt64(checks, int64(src.ChecksPerformed()))
		return nil
	}, highest, checks)
	if err != nil {
		return nil, fmt.Errorf("failed to register callback: %w", err)
	}

	m.otelTimer, err = meter.Float64Histogram("checksTimer",
		metric.WithDescription("A measure of how long it takes to perform the primality test."),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram: %w", err)
	}
	return m, nil
}

func registerAll(reg *prometheus.Registry, cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return nil
}

// ObserveCheck records how long one check took.
func (m *Metrics) ObserveCheck(ctx context.Context, verdict string, d time.Duration) {
	m.promTimer.WithLabelValues(verdict).Observe(d.Seconds())
	m.otelTimer.Record(ctx, float64(d)/float64(time.Millisecond),
		metric.WithAttributes(attribute.String("verdict", verdict)))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus text exposition.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
