package telemetry

import (
	"context"
	"testing"
)

func TestInitTracerDisabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), nil, "test", "0.0.0", "")
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	shutdown(context.Background())

	_, span := GetTracer("test").Start(context.Background(), "noop")
	defer span.End()
	if span.SpanContext().IsValid() {
		t.Fatalf("no-op provider should not produce sampled spans")
	}
}
