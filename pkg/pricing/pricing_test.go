package pricing

import (
	"context"
	"errors"
	"testing"
)

type stubResolver struct {
	price  Price
	err    error
	calls  int
	cycles int
}

func (s *stubResolver) Resolve(_ context.Context, _ Item) (Price, error) {
	s.calls++
	if s.err != nil {
		return Price{}, s.err
	}
	return s.price, nil
}

func (s *stubResolver) BeginCycle() { s.cycles++ }

func TestFallbackResolver_PrimaryWins(t *testing.T) {
	primary := &stubResolver{price: Price{UnitPrice: 0.5, Source: "billing"}}
	fallback := &stubResolver{price: Price{UnitPrice: 0.9, Source: "catalog"}}
	r := NewFallbackResolver(primary, fallback)

	price, err := r.Resolve(context.Background(), Item{SKU: "SKU-1"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if price.Source != "billing" || price.UnitPrice != 0.5 {
		t.Errorf("expected primary price, got %+v", price)
	}
	if fallback.calls != 0 {
		t.Error("fallback should not be consulted when primary succeeds")
	}
}

func TestFallbackResolver_FallsBack(t *testing.T) {
	primary := &stubResolver{err: errors.New("catalog API down")}
	fallback := &stubResolver{price: Price{UnitPrice: 0.9, Source: "catalog"}}
	r := NewFallbackResolver(primary, fallback)

	price, err := r.Resolve(context.Background(), Item{SKU: "SKU-1"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if price.Source != "catalog" {
		t.Errorf("expected fallback price, got %+v", price)
	}
}

func TestFallbackResolver_BothFail(t *testing.T) {
	primary := &stubResolver{err: errors.New("catalog API down")}
	fallback := &stubResolver{err: errors.New("sku missing")}
	r := NewFallbackResolver(primary, fallback)

	_, err := r.Resolve(context.Background(), Item{SKU: "SKU-1"})
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Errorf("expected ErrPriceUnavailable, got %v", err)
	}
}

func TestFallbackResolver_PropagatesBeginCycle(t *testing.T) {
	primary := &stubResolver{}
	fallback := &stubResolver{}
	r := NewFallbackResolver(primary, fallback)

	r.BeginCycle()
	if primary.cycles != 1 || fallback.cycles != 1 {
		t.Errorf("expected BeginCycle on both legs, got %d/%d", primary.cycles, fallback.cycles)
	}
}

func TestWithDefault_NeverFails(t *testing.T) {
	inner := &stubResolver{err: errors.New("everything down")}
	r := WithDefault(inner, 0.01, "USD")

	price, err := r.Resolve(context.Background(), Item{SKU: "SKU-1"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if price.UnitPrice != 0.01 || price.Source != "default" {
		t.Errorf("expected default price, got %+v", price)
	}
}

func TestWithDefault_PassesThroughSuccess(t *testing.T) {
	inner := &stubResolver{price: Price{UnitPrice: 0.4, Source: "billing"}}
	r := WithDefault(inner, 0.01, "USD")

	price, err := r.Resolve(context.Background(), Item{SKU: "SKU-1"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if price.Source != "billing" {
		t.Errorf("expected inner price, got %+v", price)
	}
}
