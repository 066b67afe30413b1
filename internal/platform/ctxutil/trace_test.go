package ctxutil

import (
	"context"
	"testing"
)

func TestLogFieldsAndDetach(t *testing.T) {
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t1", RequestID: "r1"})
	fields := LogFields(ctx)
	if len(fields) != 4 || fields[1] != "t1" || fields[3] != "r1" {
		t.Fatalf("LogFields: got=%v", fields)
	}

	reqCtx, cancel := context.WithCancel(ctx)
	cancel()
	detached := Detach(reqCtx, context.Background())
	if detached.Err() != nil {
		t.Fatalf("detached context should not inherit cancellation: %v", detached.Err())
	}
	if td := GetTraceData(detached); td == nil || td.RequestID != "r1" {
		t.Fatalf("detached trace data: got=%v", td)
	}
	if LogFields(context.Background()) != nil {
		t.Fatalf("expected no fields without trace data")
	}
}
