package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that behaviour.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention WARDEN_SECTION_FIELD (e.g., WARDEN_SERVER_LISTEN_ADDRESS) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies WARDEN_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("WARDEN_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	overrideDuration("WARDEN_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	overrideDuration("WARDEN_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	overrideDuration("WARDEN_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Governor overrides
	overrideFloat("WARDEN_GOVERNOR_WARNING_THRESHOLD_PCT", &cfg.Governor.WarningThresholdPct)
	overrideFloat("WARDEN_GOVERNOR_CRITICAL_THRESHOLD_PCT", &cfg.Governor.CriticalThresholdPct)
	overrideBool("WARDEN_GOVERNOR_SIMULATE", &cfg.Governor.Simulate)
	if val := os.Getenv("WARDEN_GOVERNOR_SCHEDULE"); val != "" {
		cfg.Governor.Schedule = val
	}
	overrideInt("WARDEN_GOVERNOR_AUDIT_LIMIT", &cfg.Governor.AuditLimit)

	// Pricing overrides
	if val := os.Getenv("WARDEN_PRICING_SOURCE"); val != "" {
		cfg.Pricing.Source = val
	}
	if val := os.Getenv("WARDEN_PRICING_ENDPOINT"); val != "" {
		cfg.Pricing.Endpoint = val
	}
	if val := os.Getenv("WARDEN_PRICING_CATALOG_PATH"); val != "" {
		cfg.Pricing.CatalogPath = val
	}
	overrideFloat("WARDEN_PRICING_DEFAULT_UNIT_PRICE", &cfg.Pricing.DefaultUnitPrice)

	// Usage / control overrides
	if val := os.Getenv("WARDEN_USAGE_ENDPOINT"); val != "" {
		cfg.Usage.Endpoint = val
	}
	if val := os.Getenv("WARDEN_CONTROL_ENDPOINT"); val != "" {
		cfg.Control.Endpoint = val
	}
	overrideInt("WARDEN_CONTROL_MAX_RETRIES", &cfg.Control.MaxRetries)

	// State overrides
	if val := os.Getenv("WARDEN_STATE_BACKEND"); val != "" {
		cfg.State.Backend = val
	}
	if val := os.Getenv("WARDEN_STATE_FILE_DIR"); val != "" {
		cfg.State.File.Dir = val
	}
	if val := os.Getenv("WARDEN_STATE_SQLITE_PATH"); val != "" {
		cfg.State.SQLite.Path = val
	}
	if val := os.Getenv("WARDEN_STATE_OBJECT_ENDPOINT"); val != "" {
		cfg.State.Object.Endpoint = val
	}
	if val := os.Getenv("WARDEN_STATE_OBJECT_BUCKET"); val != "" {
		cfg.State.Object.Bucket = val
	}
	if val := os.Getenv("WARDEN_STATE_OBJECT_ACCESS_KEY"); val != "" {
		cfg.State.Object.AccessKey = val
	}
	if val := os.Getenv("WARDEN_STATE_OBJECT_SECRET_KEY"); val != "" {
		cfg.State.Object.SecretKey = val
	}

	// Notify overrides
	if val := os.Getenv("WARDEN_NOTIFY_EMAIL_HOST"); val != "" {
		cfg.Notify.Email.Host = val
	}
	overrideInt("WARDEN_NOTIFY_EMAIL_PORT", &cfg.Notify.Email.Port)
	if val := os.Getenv("WARDEN_NOTIFY_EMAIL_FROM"); val != "" {
		cfg.Notify.Email.From = val
	}
	if val := os.Getenv("WARDEN_NOTIFY_EMAIL_PASSWORD"); val != "" {
		cfg.Notify.Email.Password = val
	}
	if val := os.Getenv("WARDEN_NOTIFY_EMAIL_RECIPIENTS"); val != "" {
		var recipients []string
		for _, r := range strings.Split(val, ",") {
			if r = strings.TrimSpace(r); r != "" {
				recipients = append(recipients, r)
			}
		}
		cfg.Notify.Email.Recipients = recipients
	}
	if val := os.Getenv("WARDEN_NOTIFY_EVENT_BROKERS"); val != "" {
		cfg.Notify.Event.Brokers = strings.Split(val, ",")
	}
	if val := os.Getenv("WARDEN_NOTIFY_EVENT_TOPIC"); val != "" {
		cfg.Notify.Event.Topic = val
	}

	// Telemetry overrides
	if val := os.Getenv("WARDEN_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("WARDEN_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("WARDEN_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = &b
		}
	}
}

func overrideDuration(name string, target *time.Duration) {
	if val := os.Getenv(name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*target = d
		}
	}
}

func overrideFloat(name string, target *float64) {
	if val := os.Getenv(name); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*target = f
		}
	}
}

func overrideInt(name string, target *int) {
	if val := os.Getenv(name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*target = i
		}
	}
}

func overrideBool(name string, target *bool) {
	if val := os.Getenv(name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*target = b
		}
	}
}
