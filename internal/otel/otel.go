// Package otel wires panefit's traces and metrics to an OTLP HTTP
// collector. Without an endpoint everything stays a no-op: spans and
// counters can be recorded unconditionally and simply go nowhere.
package otel

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	serviceName    = "panefit"
	exportInterval = 15 * time.Second
)

// Options configures telemetry export. An empty Endpoint disables
// export entirely.
type Options struct {
	// Endpoint is the OTLP base URL, e.g.
	// "http://localhost:3000/api/public/otel". The standard signal
	// suffixes (/v1/traces, /v1/metrics) are appended to its path.
	Endpoint string

	// Headers carries extra request headers as comma-separated
	// key=value pairs, the OTEL_EXPORTER_OTLP_HEADERS format.
	// Langfuse auth goes here.
	Headers string

	// Version is reported as service.version. Empty means "dev".
	Version string
}

// Telemetry is the installed tracer and the panefit metric set.
type Telemetry struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider

	Tracer  trace.Tracer
	Metrics *Metrics
}

// Init installs trace and meter providers per opts and returns the
// panefit telemetry handle. With no endpoint the providers are left
// unset and the returned Tracer and Metrics no-op.
func Init(ctx context.Context, opts Options) (*Telemetry, error) {
	t := &Telemetry{}

	if opts.Endpoint != "" {
		version := opts.Version
		if version == "" {
			version = "dev"
		}
		res, err := resource.New(ctx,
			resource.WithAttributes(
				semconv.ServiceName(serviceName),
				semconv.ServiceVersion(version),
			),
			resource.WithHost(),
		)
		if err != nil {
			return nil, fmt.Errorf("otel resource: %w", err)
		}

		target, err := splitEndpoint(opts.Endpoint)
		if err != nil {
			return nil, err
		}
		headers := parseHeaders(opts.Headers)

		t.tp, err = newTraceProvider(ctx, res, target, headers)
		if err != nil {
			return nil, err
		}
		t.mp, err = newMeterProvider(ctx, res, target, headers)
		if err != nil {
			return nil, err
		}
		otel.SetTracerProvider(t.tp)
		otel.SetMeterProvider(t.mp)
	}

	t.Tracer = otel.Tracer(serviceName)

	metrics, err := NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("otel metrics: %w", err)
	}
	t.Metrics = metrics
	return t, nil
}

// Shutdown flushes pending spans and metrics. Safe on a no-op handle.
func (t *Telemetry) Shutdown(ctx context.Context) {
	if t.tp != nil {
		_ = t.tp.Shutdown(ctx)
	}
	if t.mp != nil {
		_ = t.mp.Shutdown(ctx)
	}
}

// endpointTarget is a parsed OTLP base URL.
type endpointTarget struct {
	host     string // host:port
	basePath string // path without trailing slash
	insecure bool   // http scheme
}

func splitEndpoint(raw string) (endpointTarget, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return endpointTarget{}, fmt.Errorf("otel: invalid endpoint URL %q: %w", raw, err)
	}
	if u.Host == "" {
		return endpointTarget{}, fmt.Errorf("otel: endpoint URL %q has no host", raw)
	}
	return endpointTarget{
		host:     u.Host,
		basePath: strings.TrimRight(u.Path, "/"),
		insecure: u.Scheme == "http",
	}, nil
}

func newTraceProvider(ctx context.Context, res *resource.Resource, target endpointTarget, headers map[string]string) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(target.host),
		otlptracehttp.WithURLPath(target.basePath + "/v1/traces"),
	}
	if target.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(headers))
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otel trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

func newMeterProvider(ctx context.Context, res *resource.Resource, target endpointTarget, headers map[string]string) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(target.host),
		otlpmetrichttp.WithURLPath(target.basePath + "/v1/metrics"),
	}
	if target.insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(headers))
	}
	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otel metric exporter: %w", err)
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp,
			sdkmetric.WithInterval(exportInterval))),
		sdkmetric.WithResource(res),
	), nil
}

// parseHeaders splits the comma-separated key=value header format.
// Malformed pairs are dropped.
func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if idx := strings.IndexByte(pair, '='); idx > 0 {
			key := strings.TrimSpace(pair[:idx])
			val := strings.TrimSpace(pair[idx+1:])
			if key != "" {
				headers[key] = val
			}
		}
	}
	return headers
}
