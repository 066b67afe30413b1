package swapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/swapi-mirror/internal/config"
	types "github.com/yungbote/swapi-mirror/internal/domain"
	"github.com/yungbote/swapi-mirror/internal/observability"
	"github.com/yungbote/swapi-mirror/internal/pkg/httpx"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

const (
	DefaultBaseURL = "https://swapi.info/api"

	EndpointPeople    = "people"
	EndpointFilms     = "films"
	EndpointStarships = "starships"

	maxResponseBytes = 32 << 20
)

// ErrRemoteFetch marks a fetch that failed on every attempt.
var ErrRemoteFetch = errors.New("failed to fetch data from SWAPI")

type FetchError struct {
	Endpoint string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch data from SWAPI (%s) after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrRemoteFetch }

type fetchOptions struct {
	retries  int
	delay    time.Duration
	failFast bool
}

type FetchOption func(*fetchOptions)

// WithRetries sets the total number of attempts. Values below 1 are treated as 1.
func WithRetries(n int) FetchOption { return func(o *fetchOptions) { o.retries = n } }

// WithDelay sets the fixed pause between attempts.
func WithDelay(d time.Duration) FetchOption { return func(o *fetchOptions) { o.delay = d } }

// WithFailFast controls exhaustion: true returns a *FetchError, false an empty result.
func WithFailFast(v bool) FetchOption { return func(o *fetchOptions) { o.failFast = v } }

type Client interface {
	Fetch(ctx context.Context, endpoint string, opts ...FetchOption) ([]types.Record, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
	defaults   fetchOptions
	maxBody    int64
	sleep      func(context.Context, time.Duration) error
}

func NewClient(log *logger.Logger, cfg config.SwapiConfig) Client {
	if log == nil {
		log = logger.Nop()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := cfg.Retries
	if retries < 1 {
		retries = 3
	}
	delay := cfg.RetryDelay
	if delay < 0 {
		delay = 0
	}
	return &client{
		log:        log.With("client", "SwapiClient"),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		defaults:   fetchOptions{retries: retries, delay: delay, failFast: true},
		maxBody:    maxResponseBytes,
		sleep:      httpx.Sleep,
	}
}

// Fetch retrieves one collection. Every failure (transport, non-2xx, undecodable body)
// consumes an attempt; attempts are separated by a fixed delay and there is no pause
// after the last one.
func (c *client) Fetch(ctx context.Context, endpoint string, opts ...FetchOption) ([]types.Record, error) {
	o := c.defaults
	for _, opt := range opts {
		opt(&o)
	}
	if o.retries < 1 {
		o.retries = 1
	}
	endpoint = strings.Trim(strings.TrimSpace(endpoint), "/")
	url := c.baseURL + "/" + endpoint

	var lastErr error
	for attempt := 1; attempt <= o.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		records, err := c.fetchOnce(ctx, url)
		if err == nil {
			observability.Current().ObserveFetchAttempt(endpoint, "ok", time.Since(start))
			c.log.Debug("Fetched from SWAPI", "endpoint", endpoint, "records", len(records), "attempt", attempt)
			return records, nil
		}
		observability.Current().ObserveFetchAttempt(endpoint, "error", time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		c.log.Warn("Attempt failed",
			"endpoint", endpoint,
			"attempt", attempt,
			"retries", o.retries,
			"error", err.Error(),
		)
		if attempt < o.retries {
			if err := c.sleep(ctx, o.delay); err != nil {
				return nil, err
			}
		}
	}

	c.log.Error("Failed to fetch data from SWAPI", "endpoint", endpoint, "attempts", o.retries, "error", lastErr)
	if o.failFast {
		return nil, &FetchError{Endpoint: endpoint, Attempts: o.retries, Err: lastErr}
	}
	return []types.Record{}, nil
}

func (c *client) fetchOnce(ctx context.Context, url string) ([]types.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if int64(len(raw)) > c.maxBody {
		return nil, fmt.Errorf("GET %s: response body exceeds %d bytes", url, c.maxBody)
	}
	if !httpx.IsSuccess(resp.StatusCode) {
		return nil, httpx.NewStatusError(url, resp.StatusCode, raw)
	}
	return Normalize(raw)
}
