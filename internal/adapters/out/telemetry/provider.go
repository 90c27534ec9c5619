// Package telemetry wires OpenTelemetry for ferry: an OTLP/HTTP trace
// pipeline for dispatch spans and a meter provider for the dispatch and
// queue instruments.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const defaultExportInterval = 30 * time.Second

// Config is the telemetry section of the configuration.
type Config struct {
	Enabled         bool              `mapstructure:"enabled"`
	Endpoint        string            `mapstructure:"endpoint"`   // e.g. "http://localhost:4318"
	AuthToken       string            `mapstructure:"auth_token"` // base64 "user:pass"
	Headers         map[string]string `mapstructure:"headers"`
	Traces          bool              `mapstructure:"traces"`
	Metrics         bool              `mapstructure:"metrics"`
	TraceSampleRate float64           `mapstructure:"trace_sample_rate"`
	ExportInterval  time.Duration     `mapstructure:"export_interval"`
}

// Provider carries the SDK providers that were started. Either field is nil
// when that signal is off.
type Provider struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
}

// collector is the parsed OTLP endpoint shared by both exporters.
type collector struct {
	host     string
	basePath string
	insecure bool
	headers  map[string]string
}

func (c collector) urlPath(signal string) string {
	if c.basePath == "" {
		return ""
	}
	return c.basePath + "/v1/" + signal
}

// NewProvider starts the configured exporters and installs them as the
// global providers. With telemetry disabled it returns an empty Provider and
// a shutdown that does nothing.
func NewProvider(ctx context.Context, cfg Config, serviceName, version string) (*Provider, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	if !cfg.Enabled || cfg.Endpoint == "" {
		return &Provider{}, noop, nil
	}

	col, err := parseCollector(cfg)
	if err != nil {
		return nil, noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
		resource.WithHost(),
	)
	if err != nil {
		return nil, noop, fmt.Errorf("create resource: %w", err)
	}

	p := &Provider{}
	var stops []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(stops) - 1; i >= 0; i-- {
			errs = append(errs, stops[i](ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.Traces {
		exp, err := otlptracehttp.New(ctx, traceOptions(col)...)
		if err != nil {
			return nil, noop, fmt.Errorf("create trace exporter: %w", err)
		}
		p.TracerProvider = trace.NewTracerProvider(
			trace.WithBatcher(exp),
			trace.WithResource(res),
			trace.WithSampler(trace.ParentBased(sampler(cfg.TraceSampleRate))),
		)
		otel.SetTracerProvider(p.TracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		stops = append(stops, p.TracerProvider.Shutdown)
	}

	if cfg.Metrics {
		exp, err := otlpmetrichttp.New(ctx, metricOptions(col)...)
		if err != nil {
			_ = shutdown(ctx)
			return nil, noop, fmt.Errorf("create metric exporter: %w", err)
		}
		interval := cfg.ExportInterval
		if interval <= 0 {
			interval = defaultExportInterval
		}
		p.MeterProvider = metric.NewMeterProvider(
			metric.WithReader(metric.NewPeriodicReader(exp, metric.WithInterval(interval))),
			metric.WithResource(res),
		)
		otel.SetMeterProvider(p.MeterProvider)
		stops = append(stops, p.MeterProvider.Shutdown)
	}

	return p, shutdown, nil
}

// sampler maps a rate to a sampler: 0 never, 1 or more always, a ratio
// in between.
func sampler(rate float64) trace.Sampler {
	switch {
	case rate <= 0:
		return trace.NeverSample()
	case rate >= 1:
		return trace.AlwaysSample()
	default:
		return trace.TraceIDRatioBased(rate)
	}
}

func parseCollector(cfg Config) (collector, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return collector{}, fmt.Errorf("parse telemetry endpoint: %w", err)
	}
	if u.Host == "" {
		return collector{}, fmt.Errorf("telemetry endpoint %q has no host", cfg.Endpoint)
	}

	headers := make(map[string]string, len(cfg.Headers)+1)
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	if cfg.AuthToken != "" {
		headers["Authorization"] = "Basic " + cfg.AuthToken
	}

	return collector{
		host:     u.Host,
		basePath: strings.TrimSuffix(u.Path, "/"),
		insecure: u.Scheme == "http",
		headers:  headers,
	}, nil
}

func traceOptions(c collector) []otlptracehttp.Option {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(c.host),
		otlptracehttp.WithHeaders(c.headers),
	}
	if path := c.urlPath("traces"); path != "" {
		opts = append(opts, otlptracehttp.WithURLPath(path))
	}
	if c.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

func metricOptions(c collector) []otlpmetrichttp.Option {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(c.host),
		otlpmetrichttp.WithHeaders(c.headers),
	}
	if path := c.urlPath("metrics"); path != "" {
		opts = append(opts, otlpmetrichttp.WithURLPath(path))
	}
	if c.insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return opts
}
