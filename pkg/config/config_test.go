package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
governor:
  services:
    - key: vector_db
      resource_id: vectordb.example.com
      monthly_budget: 100
      metrics:
        - label: "Read operations"
          usage_metric: vectordb/read_count
          price_sku: SKU-READ-001
          price_service: SVC-VECTOR
usage:
  endpoint: https://monitoring.example.com
control:
  endpoint: https://serviceusage.example.com
pricing:
  endpoint: https://billing.example.com
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected default listen address %q, got %q", DefaultListenAddress, cfg.Server.ListenAddress)
	}
	if cfg.Governor.WarningThresholdPct != DefaultWarningThresholdPct {
		t.Errorf("expected warning threshold %.1f, got %.1f", DefaultWarningThresholdPct, cfg.Governor.WarningThresholdPct)
	}
	if cfg.Governor.CriticalThresholdPct != DefaultCriticalThresholdPct {
		t.Errorf("expected critical threshold %.1f, got %.1f", DefaultCriticalThresholdPct, cfg.Governor.CriticalThresholdPct)
	}
	if cfg.Governor.AuditLimit != DefaultAuditLimit {
		t.Errorf("expected audit limit %d, got %d", DefaultAuditLimit, cfg.Governor.AuditLimit)
	}
	if cfg.Pricing.DefaultUnitPrice != DefaultUnitPrice {
		t.Errorf("expected default unit price %v, got %v", DefaultUnitPrice, cfg.Pricing.DefaultUnitPrice)
	}
	if cfg.State.Backend != "file" {
		t.Errorf("expected file state backend by default, got %q", cfg.State.Backend)
	}
	if cfg.Usage.Timeout != DefaultUsageTimeout {
		t.Errorf("expected usage timeout %v, got %v", DefaultUsageTimeout, cfg.Usage.Timeout)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate_Failures(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig(writeConfig(t, minimalYAML))
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no services", func(c *Config) { c.Governor.Services = nil }},
		{"missing service key", func(c *Config) { c.Governor.Services[0].Key = "" }},
		{"missing resource id", func(c *Config) { c.Governor.Services[0].ResourceID = "" }},
		{"zero budget", func(c *Config) { c.Governor.Services[0].MonthlyBudget = 0 }},
		{"no metrics", func(c *Config) { c.Governor.Services[0].Metrics = nil }},
		{"missing usage metric", func(c *Config) { c.Governor.Services[0].Metrics[0].UsageMetric = "" }},
		{"missing price sku", func(c *Config) { c.Governor.Services[0].Metrics[0].PriceSKU = "" }},
		{"warning above critical", func(c *Config) {
			c.Governor.WarningThresholdPct = 110
			c.Governor.CriticalThresholdPct = 100
		}},
		{"zero default price", func(c *Config) { c.Pricing.DefaultUnitPrice = -1 }},
		{"bad pricing source", func(c *Config) { c.Pricing.Source = "oracle" }},
		{"bad state backend", func(c *Config) { c.State.Backend = "etcd" }},
		{"object backend without bucket", func(c *Config) {
			c.State.Backend = "object"
			c.State.Object.Endpoint = "minio.example.com:9000"
			c.State.Object.Bucket = ""
		}},
		{"bad cron schedule", func(c *Config) { c.Governor.Schedule = "not a cron expr" }},
		{"duplicate service key", func(c *Config) {
			c.Governor.Services = append(c.Governor.Services, c.Governor.Services[0])
		}},
		{"missing usage endpoint", func(c *Config) { c.Usage.Endpoint = "" }},
		{"missing control endpoint", func(c *Config) { c.Control.Endpoint = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	t.Setenv("WARDEN_SERVER_LISTEN_ADDRESS", "0.0.0.0:9999")
	t.Setenv("WARDEN_GOVERNOR_WARNING_THRESHOLD_PCT", "75")
	t.Setenv("WARDEN_GOVERNOR_SIMULATE", "true")
	t.Setenv("WARDEN_NOTIFY_EMAIL_RECIPIENTS", "ops@example.com, finance@example.com")
	t.Setenv("WARDEN_SERVER_READ_TIMEOUT", "45s")

	cfg, err := LoadConfigWithEnvOverrides(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9999" {
		t.Errorf("listen address override not applied, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Governor.WarningThresholdPct != 75 {
		t.Errorf("warning threshold override not applied, got %.1f", cfg.Governor.WarningThresholdPct)
	}
	if !cfg.Governor.Simulate {
		t.Error("simulate override not applied")
	}
	if len(cfg.Notify.Email.Recipients) != 2 || cfg.Notify.Email.Recipients[1] != "finance@example.com" {
		t.Errorf("recipient override not applied, got %v", cfg.Notify.Email.Recipients)
	}
	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("read timeout override not applied, got %v", cfg.Server.ReadTimeout)
	}
}
