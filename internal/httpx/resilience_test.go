package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(client *http.Client) ClientConfig {
	return ClientConfig{
		Client: client,
		Backoff: BackoffConfig{
			MaxRetries:      2,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
		},
	}
}

func TestDoWithResilienceRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	resp, err := DoWithResilience(context.Background(), testConfig(srv.Client()), NewBreaker("test-retry"),
		func() (*http.Request, error) {
			return http.NewRequest(http.MethodGet, srv.URL, nil)
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestDoWithResilienceGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := DoWithResilience(context.Background(), testConfig(srv.Client()), NewBreaker("test-giveup"),
		func() (*http.Request, error) {
			return http.NewRequest(http.MethodGet, srv.URL, nil)
		})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	// Initial attempt plus MaxRetries.
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestDoWithResilienceNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := DoWithResilience(context.Background(), testConfig(srv.Client()), NewBreaker("test-4xx"),
		func() (*http.Request, error) {
			return http.NewRequest(http.MethodGet, srv.URL, nil)
		})
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if calls.Load() != 1 {
		t.Fatalf("client errors must not be retried; got %d attempts", calls.Load())
	}
}

func TestDoWithResilienceHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DoWithResilience(ctx, testConfig(srv.Client()), NewBreaker("test-ctx"),
		func() (*http.Request, error) {
			return http.NewRequest(http.MethodGet, srv.URL, nil)
		})
	if err == nil {
		t.Fatal("expected context error")
	}
}
