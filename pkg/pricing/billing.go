package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// billingSKU is one SKU entry in the billing catalog API response.
type billingSKU struct {
	SKUID       string        `json:"sku_id"`
	Description string        `json:"description"`
	Tiers       []billingTier `json:"tiers"`
}

// billingTier is one tier of a tiered rate. The nominal unit price applies
// per base unit; BaseUnitConversion converts it to a price per single
// metric unit (e.g. a per-million rate carries a conversion of 1e6).
type billingTier struct {
	StartAmount        float64 `json:"start_amount"`
	UnitPrice          float64 `json:"unit_price"`
	BaseUnitConversion float64 `json:"base_unit_conversion"`
}

type billingResponse struct {
	SKUs []billingSKU `json:"skus"`
}

// BillingResolver resolves prices from a remote billing catalog API.
//
// SKU lists are fetched per service group and cached for the duration of a
// single governor cycle: one catalog request serves every metric in the
// group, and BeginCycle discards the cache so the next cycle observes price
// changes.
type BillingResolver struct {
	endpoint string
	currency string
	client   *http.Client
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string][]billingSKU
}

// NewBillingResolver creates a billing catalog client. Timeout bounds each
// catalog request; zero means 15 seconds.
func NewBillingResolver(endpoint, currency string, timeout time.Duration, logger *slog.Logger) *BillingResolver {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if currency == "" {
		currency = "USD"
	}
	if logger == nil {
		logger = slog.Default().With("component", "pricing.billing")
	}
	return &BillingResolver{
		endpoint: endpoint,
		currency: currency,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
		cache:    make(map[string][]billingSKU),
	}
}

// BeginCycle discards all cached SKU lists.
func (r *BillingResolver) BeginCycle() {
	r.mu.Lock()
	r.cache = make(map[string][]billingSKU)
	r.mu.Unlock()
}

// Resolve returns the unit price for the item, fetching the service's SKU
// list on first use within the current cycle.
func (r *BillingResolver) Resolve(ctx context.Context, item Item) (Price, error) {
	if item.Service == "" {
		return Price{}, fmt.Errorf("%w: sku %q has no catalog service group", ErrPriceUnavailable, item.SKU)
	}

	skus, err := r.serviceSKUs(ctx, item.Service)
	if err != nil {
		return Price{}, err
	}

	for _, sku := range skus {
		if sku.SKUID != item.SKU {
			continue
		}
		if item.Tier < 0 || item.Tier >= len(sku.Tiers) {
			return Price{}, fmt.Errorf("%w: sku %q has %d tiers, tier %d requested",
				ErrPriceUnavailable, item.SKU, len(sku.Tiers), item.Tier)
		}
		tier := sku.Tiers[item.Tier]
		unitPrice := tier.UnitPrice
		if tier.BaseUnitConversion > 0 {
			unitPrice = tier.UnitPrice / tier.BaseUnitConversion
		}
		return Price{UnitPrice: unitPrice, Currency: r.currency, Source: "billing"}, nil
	}

	return Price{}, fmt.Errorf("%w: sku %q not found in service %q", ErrPriceUnavailable, item.SKU, item.Service)
}

// serviceSKUs returns the SKU list for a service group, from cache when the
// group was already fetched this cycle.
func (r *BillingResolver) serviceSKUs(ctx context.Context, service string) ([]billingSKU, error) {
	r.mu.Lock()
	if skus, ok := r.cache[service]; ok {
		r.mu.Unlock()
		return skus, nil
	}
	r.mu.Unlock()

	skus, err := r.fetchServiceSKUs(ctx, service)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[service] = skus
	r.mu.Unlock()

	r.logger.Debug("billing catalog fetched", "service", service, "skus", len(skus))
	return skus, nil
}

func (r *BillingResolver) fetchServiceSKUs(ctx context.Context, service string) ([]billingSKU, error) {
	u := fmt.Sprintf("%s/v1/services/%s/skus?currency=%s",
		r.endpoint, url.PathEscape(service), url.QueryEscape(r.currency))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create billing catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("billing catalog request for service %q failed: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("billing catalog returned status %d for service %q: %s",
			resp.StatusCode, service, string(body))
	}

	var parsed billingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode billing catalog response for service %q: %w", service, err)
	}

	return parsed.SKUs, nil
}
