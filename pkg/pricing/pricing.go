package pricing

import (
	"context"
	"errors"
	"fmt"
)

// Item identifies a priced quantity.
type Item struct {
	// Service is the upstream catalog grouping the SKU belongs to.
	// The billing resolver fetches SKU lists per service.
	Service string

	// SKU is the price identifier.
	SKU string

	// Tier selects the tier of tiered pricing (0-based). Flat prices
	// ignore it.
	Tier int
}

// Price is a resolved unit price.
type Price struct {
	// UnitPrice is the price per single unit of usage.
	UnitPrice float64

	// Currency is the currency code the price is expressed in.
	Currency string

	// Source names the resolver that produced the price
	// ("billing", "catalog", "default").
	Source string
}

// ErrPriceUnavailable is returned when no resolver in a chain could produce
// a price for an item. A failed lookup is never a silent zero.
var ErrPriceUnavailable = errors.New("price unavailable")

// Resolver resolves unit prices for billable items.
type Resolver interface {
	Resolve(ctx context.Context, item Item) (Price, error)
}

// CycleStarter is implemented by resolvers that hold per-cycle caches.
// The governor calls BeginCycle at the start of every check cycle.
type CycleStarter interface {
	BeginCycle()
}

// FallbackResolver tries a primary resolver and falls back to a secondary
// on any failure. Both failing yields ErrPriceUnavailable.
type FallbackResolver struct {
	primary  Resolver
	fallback Resolver
}

// NewFallbackResolver creates a primary/fallback resolver chain.
func NewFallbackResolver(primary, fallback Resolver) *FallbackResolver {
	return &FallbackResolver{primary: primary, fallback: fallback}
}

// Resolve tries the primary resolver first and the fallback second.
func (r *FallbackResolver) Resolve(ctx context.Context, item Item) (Price, error) {
	price, primaryErr := r.primary.Resolve(ctx, item)
	if primaryErr == nil {
		return price, nil
	}

	price, fallbackErr := r.fallback.Resolve(ctx, item)
	if fallbackErr == nil {
		return price, nil
	}

	return Price{}, fmt.Errorf("%w for sku %q: primary: %v; fallback: %v",
		ErrPriceUnavailable, item.SKU, primaryErr, fallbackErr)
}

// BeginCycle propagates cycle starts to both legs of the chain.
func (r *FallbackResolver) BeginCycle() {
	if cs, ok := r.primary.(CycleStarter); ok {
		cs.BeginCycle()
	}
	if cs, ok := r.fallback.(CycleStarter); ok {
		cs.BeginCycle()
	}
}

// WithDefault wraps a resolver so that resolution never fails: when the
// wrapped resolver cannot produce a price, the documented last-resort unit
// price is returned instead. The default must be non-zero so unknown items
// still accrue spend; it deliberately over- rather than under-estimates.
func WithDefault(r Resolver, unitPrice float64, currency string) Resolver {
	return &defaultResolver{inner: r, price: Price{
		UnitPrice: unitPrice,
		Currency:  currency,
		Source:    "default",
	}}
}

type defaultResolver struct {
	inner Resolver
	price Price
}

func (r *defaultResolver) Resolve(ctx context.Context, item Item) (Price, error) {
	price, err := r.inner.Resolve(ctx, item)
	if err != nil {
		return r.price, nil
	}
	return price, nil
}

func (r *defaultResolver) BeginCycle() {
	if cs, ok := r.inner.(CycleStarter); ok {
		cs.BeginCycle()
	}
}
