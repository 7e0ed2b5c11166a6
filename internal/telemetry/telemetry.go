// Package telemetry sets up OpenTelemetry tracing for the API.
package telemetry

import (
	"context"
	"errors"
	"log"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otlptracehttp "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	// OTLPEndpoint is the collector URL, e.g. http://127.0.0.1:4318.
	// Tracing stays on the global no-op provider when it is empty.
	OTLPEndpoint string
}

// Init installs a global tracer provider exporting over OTLP/HTTP and
// returns its shutdown function, which flushes pending spans.
func Init(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.ServiceName == "" {
		return nil, errors.New("service name required")
	}
	if cfg.OTLPEndpoint == "" {
		log.Println("OTEL: No collector endpoint configured, tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	opts, err := exporterOptions(cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	tp, err := newTracerProvider(exporter, cfg)
	if err != nil {
		_ = exporter.Shutdown(ctx)
		return nil, err
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetTracerProvider(tp)
	log.Printf("OTEL: Exporting traces to %s", cfg.OTLPEndpoint)

	return tp.Shutdown, nil
}

func exporterOptions(endpoint string) ([]otlptracehttp.Option, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	host := u.Host
	if host == "" {
		// host:port without a scheme
		host = endpoint
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(host)}
	if u.Scheme != "https" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts, nil
}

func newTracerProvider(exporter sdktrace.SpanExporter, cfg Config) (*sdktrace.TracerProvider, error) {
	res, err := sdkresource.New(context.Background(), sdkresource.WithAttributes(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	))
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	), nil
}
