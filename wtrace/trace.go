// OpenTelemetry tracing setup
package wtrace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

const name = "soltype"

type Config struct {
	Enabled bool

	// Collector address. Empty uses OTEL_EXPORTER_OTLP_ENDPOINT
	// as read by the exporter.
	Endpoint string

	// "grpc" (default) or "http"
	Protocol string

	ServiceName    string
	ServiceVersion string

	// Fraction of traces sampled. Negative means unset (1.0).
	SampleRate float64

	Insecure bool
}

// Tracer is a no-op until Init is called with an enabled Config.
var Tracer trace.Tracer = otel.Tracer(name)

// Reads OTEL_ENABLED, OTEL_EXPORTER_OTLP_ENDPOINT,
// OTEL_EXPORTER_OTLP_PROTOCOL, OTEL_SERVICE_NAME,
// OTEL_TRACE_SAMPLE_RATE and OTEL_EXPORTER_OTLP_INSECURE.
func ConfigFromEnv() Config {
	c := Config{
		Enabled:     os.Getenv("OTEL_ENABLED") == "true",
		Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Protocol:    os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"),
		ServiceName: os.Getenv("OTEL_SERVICE_NAME"),
		Insecure:    os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
		SampleRate:  -1,
	}
	if s := os.Getenv("OTEL_TRACE_SAMPLE_RATE"); s != "" {
		r, err := strconv.ParseFloat(s, 64)
		if err == nil && r >= 0 && r <= 1 {
			c.SampleRate = r
		}
	}
	return c
}

func (c *Config) fix() error {
	if c.ServiceName == "" {
		c.ServiceName = name
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "unknown"
	}
	switch c.Protocol {
	case "", "grpc":
		c.Protocol = "grpc"
	case "http", "http/protobuf":
		c.Protocol = "http"
	default:
		return fmt.Errorf("unsupported protocol: %s (use 'grpc' or 'http')", c.Protocol)
	}
	if c.SampleRate < 0 {
		c.SampleRate = 1
	}
	return nil
}

func exporter(ctx context.Context, c Config) (sdktrace.SpanExporter, error) {
	if c.Protocol == "http" {
		var opts []otlptracehttp.Option
		if c.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(c.Endpoint))
		}
		if c.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	}
	var opts []otlptracegrpc.Option
	if c.Endpoint != "" {
		opts = append(opts, otlptracegrpc.WithEndpoint(c.Endpoint))
	}
	if c.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	return otlptracegrpc.New(ctx, opts...)
}

// Installs the global tracer provider and sets Tracer.
// The returned func flushes and stops the exporter.
func Init(ctx context.Context, c Config) (func(context.Context) error, error) {
	if !c.Enabled {
		Tracer = otel.Tracer(name)
		return func(context.Context) error { return nil }, nil
	}
	if err := c.fix(); err != nil {
		return nil, err
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(c.ServiceName),
			semconv.ServiceVersion(c.ServiceVersion),
			attribute.String("service.namespace", name),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}
	exp, err := exporter(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("creating exporter: %w", err)
	}
	sampler := sdktrace.AlwaysSample()
	if c.SampleRate < 1 {
		sampler = sdktrace.TraceIDRatioBased(c.SampleRate)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	Tracer = tp.Tracer(c.ServiceName)
	slog.InfoContext(ctx, "tracing-initialized",
		"endpoint", c.Endpoint,
		"protocol", c.Protocol,
		"sample_rate", c.SampleRate,
	)
	return func(ctx context.Context) error {
		slog.InfoContext(ctx, "tracing-shutdown")
		return tp.Shutdown(ctx)
	}, nil
}

// Adds attributes to the span carried by ctx, if any.
func Annotate(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}
