package swapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/swapi-mirror/internal/config"
)

func newTestClient(t *testing.T, baseURL string) (*client, *[]time.Duration) {
	t.Helper()
	c := NewClient(nil, config.SwapiConfig{BaseURL: baseURL, Retries: 3, RetryDelay: 2 * time.Second}).(*client)
	var slept []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return c, &slept
}

func TestFetchNormalisesArrayAndObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/people":
			_, _ = w.Write([]byte(`[{"name":"Luke Skywalker","gender":"male"},{"name":"Leia Organa"}]`))
		case "/api/films":
			_, _ = w.Write([]byte(`{"b":{"title":"The Empire Strikes Back"},"a":{"title":"A New Hope"},"count":2}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	c, _ := newTestClient(t, srv.URL+"/api/")

	people, err := c.Fetch(context.Background(), EndpointPeople)
	if err != nil {
		t.Fatalf("Fetch people: %v", err)
	}
	if len(people) != 2 || people[0].String("name") != "Luke Skywalker" || people[1].String("name") != "Leia Organa" {
		t.Fatalf("people: got=%v", people)
	}

	films, err := c.Fetch(context.Background(), EndpointFilms)
	if err != nil {
		t.Fatalf("Fetch films: %v", err)
	}
	if len(films) != 2 || films[0].String("title") != "The Empire Strikes Back" || films[1].String("title") != "A New Hope" {
		t.Fatalf("films must keep object order and drop keys: got=%v", films)
	}
}

func TestFetchRetriesExactlyAndFailsFast(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c, slept := newTestClient(t, srv.URL)

	out, err := c.Fetch(context.Background(), EndpointStarships, WithRetries(3), WithDelay(time.Second))
	if !errors.Is(err, ErrRemoteFetch) {
		t.Fatalf("want ErrRemoteFetch got=%v", err)
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Attempts != 3 || fe.Endpoint != EndpointStarships {
		t.Fatalf("FetchError: got=%+v", fe)
	}
	if out != nil {
		t.Fatalf("fail fast must not return records: got=%v", out)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Fatalf("attempts: want=3 got=%d", got)
	}
	if len(*slept) != 2 || (*slept)[0] != time.Second || (*slept)[1] != time.Second {
		t.Fatalf("fixed delay between attempts only: got=%v", *slept)
	}
}

func TestFetchWithoutFailFastReturnsEmpty(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()
	c, slept := newTestClient(t, srv.URL)

	out, err := c.Fetch(context.Background(), EndpointPeople, WithRetries(2), WithFailFast(false))
	if err != nil {
		t.Fatalf("want nil error got=%v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("want empty non-nil slice got=%v", out)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("attempts: want=2 got=%d", got)
	}
	if len(*slept) != 1 || (*slept)[0] != 2*time.Second {
		t.Fatalf("default delay: got=%v", *slept)
	}
}

func TestFetchRecoversOnLaterAttempt(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"name":"X-wing"}]`))
	}))
	defer srv.Close()
	c, _ := newTestClient(t, srv.URL)

	out, err := c.Fetch(context.Background(), EndpointStarships)
	if err != nil || len(out) != 1 {
		t.Fatalf("Fetch: got=%v err=%v", out, err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Fatalf("attempts: want=2 got=%d", got)
	}
}

func TestFetchStopsOnCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := NewClient(nil, config.SwapiConfig{BaseURL: srv.URL, Retries: 3, RetryDelay: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Fetch(ctx, EndpointFilms)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want DeadlineExceeded got=%v", err)
	}
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"Luke Skywalker"},{"name":"Leia Organa"}]`))
	}))
	defer srv.Close()
	c, _ := newTestClient(t, srv.URL)
	c.maxBody = 16

	_, err := c.Fetch(context.Background(), EndpointPeople, WithRetries(2))
	if !errors.Is(err, ErrRemoteFetch) {
		t.Fatalf("oversized body: want=ErrRemoteFetch got=%v", err)
	}

	c.maxBody = maxResponseBytes
	people, err := c.Fetch(context.Background(), EndpointPeople)
	if err != nil || len(people) != 2 {
		t.Fatalf("body under the cap: got=%v err=%v", people, err)
	}
}
