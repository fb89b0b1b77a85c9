// Package pricing resolves unit prices for billable usage.
//
// # Overview
//
// The governor multiplies raw usage by a resolved unit price to compute
// spend. Prices come from a chain of resolvers:
//
//   - BillingResolver: live billing catalog API, SKU lists cached per
//     service group for one cycle
//   - CatalogResolver: static YAML catalog on disk, reloaded on change
//   - WithDefault: documented non-zero last-resort price
//
// A resolver that cannot produce a price returns ErrPriceUnavailable. The
// failure is typed so callers can distinguish "price unknown" from "price
// is zero": a lookup miss must degrade loudly, not silently zero out spend.
//
// # Usage
//
//	catalog, err := pricing.NewCatalogResolver("prices.yaml", nil)
//	billing := pricing.NewBillingResolver(endpoint, "USD", 15*time.Second, nil)
//	resolver := pricing.NewFallbackResolver(billing, catalog)
package pricing
