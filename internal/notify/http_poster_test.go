package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fastTiming() timingConfig {
	return timingConfig{
		timeout:           time.Second,
		rateInterval:      time.Millisecond,
		rateBurst:         10,
		backoffMaxElapsed: 500 * time.Millisecond,
		backoffMax:        20 * time.Millisecond,
		backoffInitial:    5 * time.Millisecond,
	}
}

func TestHTTPPoster_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	poster := newHTTPPoster(zerolog.Nop(), "webhook", server.URL, "application/json", fastTiming())

	if err := poster.postWithRetry(context.Background(), []byte(`{}`)); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected three attempts, got %d", got)
	}
}

func TestHTTPPoster_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	poster := newHTTPPoster(zerolog.Nop(), "webhook", server.URL, "application/json", fastTiming())

	if err := poster.postWithRetry(context.Background(), []byte(`{}`)); err == nil {
		t.Fatalf("expected error for 400 response")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestHTTPPoster_HonorsRetryAfter(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	poster := newHTTPPoster(zerolog.Nop(), "webhook", server.URL, "application/json", fastTiming())

	start := time.Now()
	if err := poster.postWithRetry(context.Background(), []byte(`{}`)); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Fatalf("expected Retry-After to be honored, finished in %v", elapsed)
	}
}

func TestParseRetryAfter(t *testing.T) {
	cases := []struct {
		value string
		want  time.Duration
		ok    bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"-1", 0, false},
		{"2", 2 * time.Second, true},
		{"nonsense", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			got, ok := parseRetryAfter(tc.value)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("parseRetryAfter(%q) = (%v, %v), want (%v, %v)", tc.value, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestHTTPPoster_CancelDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	timing := fastTiming()
	timing.backoffInitial = 10 * time.Second
	timing.backoffMax = 10 * time.Second
	timing.backoffMaxElapsed = time.Minute
	poster := newHTTPPoster(zerolog.Nop(), "webhook", server.URL, "application/json", timing)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := poster.postWithRetry(ctx, []byte(`{}`)); err == nil {
		t.Fatalf("expected error after cancellation")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("cancellation took %v", elapsed)
	}
}
