package control

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newController(endpoint string, maxRetries int) *HTTPController {
	c := NewHTTPController(endpoint, time.Second, maxRetries, nil)
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestHTTPController_DisableSuccess(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/v1/services/aiplatform.example.com:disable" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newController(srv.URL, 3)
	if err := c.Disable(context.Background(), "aiplatform.example.com"); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestHTTPController_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newController(srv.URL, 3)
	if err := c.Enable(context.Background(), "svc"); err != nil {
		t.Fatalf("Enable failed after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestHTTPController_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newController(srv.URL, 2)
	err := c.Disable(context.Background(), "svc")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	var ce *ControlError
	if !errors.As(err, &ce) || ce.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected ControlError with status 500, got %v", err)
	}
	// 1 initial + 2 retries.
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestHTTPController_NonRetryableClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"permission denied", http.StatusForbidden, func(err error) bool {
			var e *PermissionError
			return errors.As(err, &e)
		}},
		{"unauthorized", http.StatusUnauthorized, func(err error) bool {
			var e *PermissionError
			return errors.As(err, &e)
		}},
		{"not found", http.StatusNotFound, func(err error) bool {
			var e *NotFoundError
			return errors.As(err, &e)
		}},
		{"bad request", http.StatusBadRequest, func(err error) bool {
			var e *BadRequestError
			return errors.As(err, &e)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int64
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				http.Error(w, tt.name, tt.status)
			}))
			defer srv.Close()

			c := newController(srv.URL, 3)
			err := c.Disable(context.Background(), "svc")
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error type: %v", err)
			}
			if !IsNonRetryable(err) {
				t.Errorf("expected %v to be non-retryable", err)
			}
			if calls.Load() != 1 {
				t.Errorf("expected no retries, got %d calls", calls.Load())
			}
		})
	}
}

func TestHTTPController_Status(t *testing.T) {
	tests := []struct {
		body string
		want APIState
	}{
		{`{"state":"ENABLED"}`, StateEnabled},
		{`{"state":"DISABLED"}`, StateDisabled},
		{`{"state":"PENDING"}`, StateUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/services/svc" {
					http.NotFound(w, r)
					return
				}
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := newController(srv.URL, 0)
			state, err := c.Status(context.Background(), "svc")
			if err != nil {
				t.Fatalf("Status failed: %v", err)
			}
			if state != tt.want {
				t.Errorf("expected %s, got %s", tt.want, state)
			}
		})
	}
}

func TestHTTPController_ContextCancelStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPController(srv.URL, time.Second, 5, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Disable(ctx, "svc"); err == nil {
		t.Fatal("expected error with cancelled context")
	}
}
