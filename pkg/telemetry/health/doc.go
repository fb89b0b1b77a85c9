// Package health provides liveness and readiness probes for Warden.
//
// Liveness is a trivial process-up check. Readiness runs registered
// component checks (state store reachability, price catalog availability)
// concurrently with a per-check timeout and responds 503 when any fail.
package health
