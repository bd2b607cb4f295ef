package wtrace

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"kr.dev/diff"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http/protobuf")
	t.Setenv("OTEL_TRACE_SAMPLE_RATE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "")
	c := ConfigFromEnv()
	diff.Test(t, t.Errorf, c.Enabled, true)
	diff.Test(t, t.Errorf, c.SampleRate, 0.0)
	diff.Test(t, t.Errorf, c.fix(), nil)
	diff.Test(t, t.Errorf, c.Protocol, "http")
	diff.Test(t, t.Errorf, c.ServiceName, "soltype")
	diff.Test(t, t.Errorf, c.SampleRate, 0.0)
}

func TestConfigFromEnv_BadRate(t *testing.T) {
	t.Setenv("OTEL_TRACE_SAMPLE_RATE", "2")
	c := ConfigFromEnv()
	diff.Test(t, t.Errorf, c.fix(), nil)
	diff.Test(t, t.Errorf, c.SampleRate, 1.0)
}

func TestInit(t *testing.T) {
	ctx := context.Background()
	shutdown, err := Init(ctx, Config{})
	diff.Test(t, t.Fatalf, err, nil)
	diff.Test(t, t.Errorf, shutdown(ctx), nil)

	_, err = Init(ctx, Config{Enabled: true, Protocol: "udp"})
	if err == nil {
		t.Error("want error for unsupported protocol")
	}
}

func TestAnnotate(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	ctx, span := tp.Tracer("test").Start(context.Background(), "x")
	Annotate(ctx, attribute.Int("decls", 2))
	Annotate(ctx, attribute.Int("decls", 3))
	span.End()
	Annotate(context.Background(), attribute.Int("decls", 4))

	spans := sr.Ended()
	diff.Test(t, t.Fatalf, len(spans), 1)
	diff.Test(t, t.Errorf, spans[0].Attributes(), []attribute.KeyValue{attribute.Int("decls", 3)})
}
