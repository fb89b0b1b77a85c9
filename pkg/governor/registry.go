package governor

import (
	"fmt"

	"cloudspend-hq/warden/pkg/config"
	"cloudspend-hq/warden/pkg/pricing"
	"cloudspend-hq/warden/pkg/usage"
)

// Metric is one billable quantity of a monitored service.
type Metric struct {
	// Label names the metric in logs, summaries, and alerts.
	Label string

	// Usage identifies the quantity at the monitoring API.
	Usage usage.Metric

	// Price identifies the unit price at the pricing chain.
	Price pricing.Item
}

// Service is one budget-enforcement unit.
type Service struct {
	// Key is the stable identifier used in state, alerts, and the API.
	Key string

	// ResourceID is the identifier passed to the control API.
	ResourceID string

	// MonthlyBudget is the budget in account currency.
	MonthlyBudget float64

	// Metrics is the ordered list of billable quantities.
	Metrics []Metric
}

// Registry is the immutable set of monitored services, built from
// configuration at startup.
type Registry struct {
	services   []Service
	byKey      map[string]*Service
	byResource map[string]*Service
}

// NewRegistry builds the registry from validated configuration.
func NewRegistry(cfgs []config.ServiceConfig) *Registry {
	r := &Registry{
		services:   make([]Service, 0, len(cfgs)),
		byKey:      make(map[string]*Service, len(cfgs)),
		byResource: make(map[string]*Service, len(cfgs)),
	}

	for _, cfg := range cfgs {
		svc := Service{
			Key:           cfg.Key,
			ResourceID:    cfg.ResourceID,
			MonthlyBudget: cfg.MonthlyBudget,
			Metrics:       make([]Metric, 0, len(cfg.Metrics)),
		}
		for _, m := range cfg.Metrics {
			label := m.Label
			if label == "" {
				label = m.UsageMetric
			}
			svc.Metrics = append(svc.Metrics, Metric{
				Label: label,
				Usage: usage.Metric{Name: m.UsageMetric, Filter: m.UsageFilter},
				Price: pricing.Item{Service: m.PriceService, SKU: m.PriceSKU, Tier: m.PriceTier},
			})
		}
		r.services = append(r.services, svc)
		r.byKey[svc.Key] = &r.services[len(r.services)-1]
		r.byResource[svc.ResourceID] = &r.services[len(r.services)-1]
	}

	return r
}

// Services returns every registered service in configuration order.
func (r *Registry) Services() []Service {
	return r.services
}

// ByKey looks a service up by its stable key.
func (r *Registry) ByKey(key string) (*Service, error) {
	svc, ok := r.byKey[key]
	if !ok {
		return nil, fmt.Errorf("unknown service %q", key)
	}
	return svc, nil
}

// ByResourceID looks a service up by its control API identifier.
func (r *Registry) ByResourceID(resourceID string) (*Service, bool) {
	svc, ok := r.byResource[resourceID]
	return svc, ok
}
