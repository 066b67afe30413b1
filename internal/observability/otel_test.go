package observability

import (
	"context"
	"testing"
)

func TestOtelDisabledByDefault(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	if shutdown := InitOTel(context.Background(), nil, OtelConfig{}); shutdown != nil {
		t.Fatalf("expected no tracer provider when OTEL_ENABLED is unset")
	}
	_, span := Tracer().Start(context.Background(), "noop")
	span.End()
}

func TestOtelHeadersAndRatio(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc, bad ,x-team=swapi")
	h := otelHeaders()
	if len(h) != 2 || h["x-api-key"] != "abc" || h["x-team"] != "swapi" {
		t.Fatalf("otelHeaders: got=%v", h)
	}
	t.Setenv("OTEL_SAMPLER_RATIO", "2")
	if r := otelSampleRatio(); r != 1 {
		t.Fatalf("ratio clamp: want=1 got=%v", r)
	}
	t.Setenv("OTEL_SAMPLER_RATIO", "0.25")
	if r := otelSampleRatio(); r != 0.25 {
		t.Fatalf("ratio: want=0.25 got=%v", r)
	}
}
