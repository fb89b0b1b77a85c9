package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newBillingServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/v1/services/SVC-VECTOR/skus" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"skus": [
				{
					"sku_id": "SKU-READ-001",
					"description": "Read operations",
					"tiers": [
						{"start_amount": 0, "unit_price": 0.4, "base_unit_conversion": 1000},
						{"start_amount": 1000000, "unit_price": 0.2, "base_unit_conversion": 1000}
					]
				}
			]
		}`))
	}))
}

func TestBillingResolver_Resolve(t *testing.T) {
	var requests atomic.Int64
	srv := newBillingServer(t, &requests)
	defer srv.Close()

	r := NewBillingResolver(srv.URL, "USD", time.Second, nil)

	price, err := r.Resolve(context.Background(), Item{Service: "SVC-VECTOR", SKU: "SKU-READ-001", Tier: 0})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	// 0.4 per 1000 base units.
	if price.UnitPrice != 0.0004 {
		t.Errorf("expected unit price 0.0004, got %v", price.UnitPrice)
	}
	if price.Source != "billing" {
		t.Errorf("expected billing source, got %q", price.Source)
	}
}

func TestBillingResolver_TierSelection(t *testing.T) {
	var requests atomic.Int64
	srv := newBillingServer(t, &requests)
	defer srv.Close()

	r := NewBillingResolver(srv.URL, "USD", time.Second, nil)

	price, err := r.Resolve(context.Background(), Item{Service: "SVC-VECTOR", SKU: "SKU-READ-001", Tier: 1})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if price.UnitPrice != 0.0002 {
		t.Errorf("expected tier 1 unit price 0.0002, got %v", price.UnitPrice)
	}

	if _, err := r.Resolve(context.Background(), Item{Service: "SVC-VECTOR", SKU: "SKU-READ-001", Tier: 5}); !errors.Is(err, ErrPriceUnavailable) {
		t.Errorf("expected ErrPriceUnavailable for out-of-range tier, got %v", err)
	}
}

func TestBillingResolver_CachesPerCycle(t *testing.T) {
	var requests atomic.Int64
	srv := newBillingServer(t, &requests)
	defer srv.Close()

	r := NewBillingResolver(srv.URL, "USD", time.Second, nil)
	item := Item{Service: "SVC-VECTOR", SKU: "SKU-READ-001"}

	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(context.Background(), item); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("expected 1 catalog fetch within a cycle, got %d", got)
	}

	r.BeginCycle()
	if _, err := r.Resolve(context.Background(), item); err != nil {
		t.Fatalf("Resolve failed after BeginCycle: %v", err)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("expected refetch after BeginCycle, got %d requests", got)
	}
}

func TestBillingResolver_UnknownSKU(t *testing.T) {
	var requests atomic.Int64
	srv := newBillingServer(t, &requests)
	defer srv.Close()

	r := NewBillingResolver(srv.URL, "USD", time.Second, nil)

	_, err := r.Resolve(context.Background(), Item{Service: "SVC-VECTOR", SKU: "SKU-NOPE"})
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Errorf("expected ErrPriceUnavailable, got %v", err)
	}
}

func TestBillingResolver_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewBillingResolver(srv.URL, "USD", time.Second, nil)

	if _, err := r.Resolve(context.Background(), Item{Service: "SVC-VECTOR", SKU: "SKU-READ-001"}); err == nil {
		t.Fatal("expected error for upstream failure")
	}
}

func TestBillingResolver_MissingServiceGroup(t *testing.T) {
	r := NewBillingResolver("http://unused.example.com", "USD", time.Second, nil)

	_, err := r.Resolve(context.Background(), Item{SKU: "SKU-READ-001"})
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Errorf("expected ErrPriceUnavailable without a service group, got %v", err)
	}
}
