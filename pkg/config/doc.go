// Package config provides configuration loading and validation for Warden.
//
// # Overview
//
// Configuration is loaded from a YAML file, filled with defaults, optionally
// overridden by WARDEN_* environment variables, and validated before any
// enforcement cycle can run. Validation failures are fatal at startup:
// a governor with a broken service registry must never run.
//
// # Usage
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Sections
//
//   - server: HTTP listen address and timeouts
//   - governor: thresholds, schedule, and the monitored service registry
//   - pricing: billing catalog endpoint and static catalog fallback
//   - usage: monitoring API endpoint
//   - control: service enable/disable API endpoint and retry policy
//   - state: persistence backend (file, object store, or SQLite)
//   - notify: email and event alert channels
//   - telemetry: logging and metrics
package config
