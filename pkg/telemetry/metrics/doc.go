// Package metrics provides Prometheus metrics for the Warden governor.
//
// All metrics share the "warden" namespace and are registered against a
// dedicated registry to keep the exposition surface deliberate:
//
//   - warden_cycles_total / warden_cycle_duration_seconds
//   - warden_service_effective_cost / warden_service_budget_usage_pct
//   - warden_enforcement_actions_total
//   - warden_alerts_total
//   - warden_data_quality_warnings_total
//   - warden_state_persistence_failures_total
package metrics
