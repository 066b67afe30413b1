package httpx

import (
	"context"
	"fmt"
	"time"
)

// StatusError is a non-2xx response. Body is truncated to keep log lines bounded.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func NewStatusError(url string, code int, body []byte) *StatusError {
	const max = 512
	b := string(body)
	if len(b) > max {
		b = b[:max] + "..."
	}
	return &StatusError{URL: url, StatusCode: code, Body: b}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

func IsSuccess(code int) bool { return code >= 200 && code <= 299 }

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
