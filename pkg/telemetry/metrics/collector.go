package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every Prometheus metric Warden exposes. It registers all
// collectors against a single registry so the /metrics endpoint serves only
// Warden's own series plus the standard Go runtime collectors.
type Collector struct {
	registry *prometheus.Registry

	cyclesTotal   *prometheus.CounterVec
	cycleDuration prometheus.Histogram

	effectiveCost   *prometheus.GaugeVec
	usagePercentage *prometheus.GaugeVec

	enforcementActions *prometheus.CounterVec
	alertsTotal        *prometheus.CounterVec

	dataQualityWarnings *prometheus.CounterVec
	persistenceFailures prometheus.Counter
}

// NewCollector creates a metrics collector registered against the given
// registry. If registry is nil a new one is created. The namespace prefixes
// every metric name (normally "warden").
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "warden"
	}

	c := &Collector{
		registry: registry,

		cyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total check cycles run, labelled by outcome.",
		}, []string{"outcome"}),

		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a full check cycle across all services.",
			// Cycles are dominated by upstream API calls, so buckets run
			// from sub-second to minutes.
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),

		effectiveCost: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_effective_cost",
			Help:      "Effective cost of a service in account currency for the current billing cycle.",
		}, []string{"service"}),

		usagePercentage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_budget_usage_pct",
			Help:      "Effective cost as a percentage of the service's monthly budget.",
		}, []string{"service"}),

		enforcementActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enforcement_actions_total",
			Help:      "Enforcement actions taken, labelled by action (disable, enable, reset, rollover, simulate_disable).",
		}, []string{"action", "service"}),

		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts dispatched, labelled by level, channel, and delivery result.",
		}, []string{"level", "channel", "result"}),

		dataQualityWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_quality_warnings_total",
			Help:      "Metric or price lookups that failed and contributed a degraded value to a cycle.",
		}, []string{"service", "kind"}),

		persistenceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_persistence_failures_total",
			Help:      "State writes that failed and were carried in memory only.",
		}),
	}

	registry.MustRegister(
		c.cyclesTotal,
		c.cycleDuration,
		c.effectiveCost,
		c.usagePercentage,
		c.enforcementActions,
		c.alertsTotal,
		c.dataQualityWarnings,
		c.persistenceFailures,
	)

	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordCycle records a completed check cycle.
// Outcome is "ok" or "degraded" (cycle completed with data-quality warnings
// or a failed enforcement action).
func (c *Collector) RecordCycle(outcome string, duration time.Duration) {
	c.cyclesTotal.WithLabelValues(outcome).Inc()
	c.cycleDuration.Observe(duration.Seconds())
}

// RecordServiceCost records the effective cost and budget usage percentage
// computed for a service in the latest cycle.
func (c *Collector) RecordServiceCost(service string, cost, usagePct float64) {
	c.effectiveCost.WithLabelValues(service).Set(cost)
	c.usagePercentage.WithLabelValues(service).Set(usagePct)
}

// RecordEnforcementAction records an enforcement action taken for a service.
func (c *Collector) RecordEnforcementAction(action, service string) {
	c.enforcementActions.WithLabelValues(action, service).Inc()
}

// RecordAlert records an alert dispatch attempt on one channel.
// Result is "sent" or "failed".
func (c *Collector) RecordAlert(level, channel, result string) {
	c.alertsTotal.WithLabelValues(level, channel, result).Inc()
}

// RecordDataQualityWarning records a failed usage or price lookup that
// degraded a cycle's cost computation. Kind is "usage" or "price".
func (c *Collector) RecordDataQualityWarning(service, kind string) {
	c.dataQualityWarnings.WithLabelValues(service, kind).Inc()
}

// RecordPersistenceFailure records a failed state write.
func (c *Collector) RecordPersistenceFailure() {
	c.persistenceFailures.Inc()
}
