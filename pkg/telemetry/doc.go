// Package telemetry provides observability for Warden.
//
// # Components
//
//   - logging: structured logging built on log/slog
//   - metrics: Prometheus metrics for cycles, costs, and enforcement actions
//   - health: liveness and readiness endpoints
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	collector := metrics.NewCollector("warden", nil)
//	checker := health.New(0)
package telemetry
