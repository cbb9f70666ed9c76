package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all service configuration, read from the environment.
type Config struct {
	ServiceName    string `env:"SERVICE_NAME" envDefault:"primecheck"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"dev"`
	Environment    string `env:"DEPLOYMENT_ENVIRONMENT" envDefault:"local"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Otel OtelConfig
}

// OtelConfig configures trace, log and metric export. An empty Endpoint keeps
// all signals local.
type OtelConfig struct {
	Endpoint       string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	APIKey         string        `env:"OTEL_EXPORTER_OTLP_API_KEY"`
	ConsoleLogs    bool          `env:"OTEL_LOGS_CONSOLE" envDefault:"false"`
	SamplerRatio   float64       `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1.0"`
	ExportInterval time.Duration `env:"METRICS_EXPORT_INTERVAL" envDefault:"30s"`
}

// Headers returns the OTLP request headers for the configured API key.
func (o OtelConfig) Headers() map[string]string {
	if o.APIKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "ApiKey " + o.APIKey}
}

func Load() (*Config, error) {
	return LoadFrom(env.ToMap(os.Environ()))
}

// LoadFrom reads the configuration from environ instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("SERVICE_NAME must not be empty")
	}
	if c.Otel.SamplerRatio < 0 || c.Otel.SamplerRatio > 1 {
		return fmt.Errorf("OTEL_TRACES_SAMPLER_RATIO must be within [0,1], got %v", c.Otel.SamplerRatio)
	}
	if c.Otel.ExportInterval <= 0 {
		return fmt.Errorf("METRICS_EXPORT_INTERVAL must be positive, got %s", c.Otel.ExportInterval)
	}
	return nil
}
