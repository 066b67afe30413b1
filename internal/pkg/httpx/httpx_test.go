package httpx

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestStatusError(t *testing.T) {
	err := NewStatusError("https://swapi.info/api/people", 503, []byte(strings.Repeat("x", 600)))
	var se *StatusError
	if !errors.As(error(err), &se) || se.StatusCode != 503 {
		t.Fatalf("StatusError: got=%v", se)
	}
	if len(err.Body) != 515 {
		t.Fatalf("body truncation: want=515 got=%d", len(err.Body))
	}
	if IsSuccess(404) || !IsSuccess(204) {
		t.Fatalf("IsSuccess mismatch")
	}
}

func TestSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := Sleep(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Fatalf("Sleep: want=Canceled got=%v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("Sleep did not return on cancel")
	}
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
}
