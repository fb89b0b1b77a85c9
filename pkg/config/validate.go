package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for errors and inconsistencies.
// It returns an error describing the first problem found. Validation
// failures are fatal at startup: an enforcement daemon with a broken
// identity must never run a cycle.
func Validate(cfg *Config) error {
	if err := validateGovernor(&cfg.Governor); err != nil {
		return err
	}
	if err := validatePricing(&cfg.Pricing); err != nil {
		return err
	}
	if err := validateState(&cfg.State); err != nil {
		return err
	}
	if cfg.Usage.Endpoint == "" {
		return fmt.Errorf("usage.endpoint is required")
	}
	if cfg.Control.Endpoint == "" {
		return fmt.Errorf("control.endpoint is required")
	}
	if cfg.Control.MaxRetries < 0 {
		return fmt.Errorf("control.max_retries must not be negative")
	}
	return nil
}

func validateGovernor(g *GovernorConfig) error {
	if g.WarningThresholdPct <= 0 {
		return fmt.Errorf("governor.warning_threshold_pct must be greater than zero")
	}
	if g.CriticalThresholdPct <= 0 {
		return fmt.Errorf("governor.critical_threshold_pct must be greater than zero")
	}
	if g.WarningThresholdPct > g.CriticalThresholdPct {
		return fmt.Errorf("governor.warning_threshold_pct (%.1f) must not exceed critical_threshold_pct (%.1f)",
			g.WarningThresholdPct, g.CriticalThresholdPct)
	}
	if g.AuditLimit <= 0 {
		return fmt.Errorf("governor.audit_limit must be greater than zero")
	}
	if g.Schedule != "" {
		if _, err := cron.ParseStandard(g.Schedule); err != nil {
			return fmt.Errorf("governor.schedule %q is not a valid cron expression: %w", g.Schedule, err)
		}
	}

	if len(g.Services) == 0 {
		return fmt.Errorf("governor.services must contain at least one monitored service")
	}
	seen := make(map[string]bool, len(g.Services))
	for i, svc := range g.Services {
		if svc.Key == "" {
			return fmt.Errorf("governor.services[%d].key is required", i)
		}
		if seen[svc.Key] {
			return fmt.Errorf("governor.services[%d]: duplicate service key %q", i, svc.Key)
		}
		seen[svc.Key] = true
		if svc.ResourceID == "" {
			return fmt.Errorf("governor.services[%d] (%s): resource_id is required", i, svc.Key)
		}
		if svc.MonthlyBudget <= 0 {
			return fmt.Errorf("governor.services[%d] (%s): monthly_budget must be greater than zero", i, svc.Key)
		}
		if len(svc.Metrics) == 0 {
			return fmt.Errorf("governor.services[%d] (%s): at least one metric is required", i, svc.Key)
		}
		for j, m := range svc.Metrics {
			if m.UsageMetric == "" {
				return fmt.Errorf("governor.services[%d] (%s): metrics[%d].usage_metric is required", i, svc.Key, j)
			}
			if m.PriceSKU == "" {
				return fmt.Errorf("governor.services[%d] (%s): metrics[%d].price_sku is required", i, svc.Key, j)
			}
			if m.PriceTier < 0 {
				return fmt.Errorf("governor.services[%d] (%s): metrics[%d].price_tier must not be negative", i, svc.Key, j)
			}
		}
	}
	return nil
}

func validatePricing(p *PricingConfig) error {
	switch p.Source {
	case "billing":
		if p.Endpoint == "" {
			return fmt.Errorf("pricing.endpoint is required when pricing.source is %q", p.Source)
		}
	case "catalog":
		// Static catalog only; no endpoint required.
	default:
		return fmt.Errorf("pricing.source must be one of \"billing\", \"catalog\"; got %q", p.Source)
	}
	if p.DefaultUnitPrice <= 0 {
		return fmt.Errorf("pricing.default_unit_price must be greater than zero (a zero last-resort price would make unknown items free)")
	}
	return nil
}

func validateState(s *StateConfig) error {
	switch s.Backend {
	case "file", "sqlite":
		// Paths have defaults.
	case "object":
		if s.Object.Endpoint == "" {
			return fmt.Errorf("state.object.endpoint is required when state.backend is \"object\"")
		}
		if s.Object.Bucket == "" {
			return fmt.Errorf("state.object.bucket is required when state.backend is \"object\"")
		}
	default:
		return fmt.Errorf("state.backend must be one of \"file\", \"object\", \"sqlite\"; got %q", s.Backend)
	}
	if strings.ContainsAny(s.Key, "/\\") {
		return fmt.Errorf("state.key must be a plain document name, got %q", s.Key)
	}
	return nil
}
