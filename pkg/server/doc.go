// Package server exposes the governor over HTTP.
//
// # Endpoints
//
//   - POST /check                 run one check cycle now
//   - POST /reset/{service}       reset a service's cost baseline
//   - POST /enable_service/{api}  manually re-enable a service
//   - GET  /status                all service statuses
//   - GET  /status/{service}      one service status
//   - GET  /health, /health/ready liveness and readiness probes
//   - GET  /metrics               Prometheus exposition (when enabled)
//
// POST /check always answers 200 when the cycle ran: partial failures
// (degraded data, a failed disable) are embedded in the summary body, not
// mapped onto transport errors.
package server
