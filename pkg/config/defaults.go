package config

import "time"

// Default values applied by ApplyDefaults when a field is unset.
const (
	DefaultListenAddress   = "127.0.0.1:8787"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultWarningThresholdPct  = 80.0
	DefaultCriticalThresholdPct = 100.0
	DefaultAuditLimit           = 200

	DefaultPricingSource    = "billing"
	DefaultPricingTimeout   = 15 * time.Second
	DefaultCatalogPath      = "./prices.yaml"
	DefaultUnitPrice        = 0.01
	DefaultCurrency         = "USD"
	DefaultUsageTimeout     = 15 * time.Second
	DefaultControlTimeout   = 30 * time.Second
	DefaultControlRetries   = 3
	DefaultStateBackend     = "file"
	DefaultStateKey         = "warden-state.json"
	DefaultStateFileDir     = "./data"
	DefaultSQLitePath       = "./data/warden.db"
	DefaultSMTPPort         = 465
	DefaultEventTopic       = "warden-alerts"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsPath      = "/metrics"
)

// ApplyDefaults fills in default values for any unset configuration fields.
// It is called by LoadConfig after parsing and before validation.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Governor defaults
	if cfg.Governor.WarningThresholdPct == 0 {
		cfg.Governor.WarningThresholdPct = DefaultWarningThresholdPct
	}
	if cfg.Governor.CriticalThresholdPct == 0 {
		cfg.Governor.CriticalThresholdPct = DefaultCriticalThresholdPct
	}
	if cfg.Governor.AuditLimit == 0 {
		cfg.Governor.AuditLimit = DefaultAuditLimit
	}

	// Pricing defaults
	if cfg.Pricing.Source == "" {
		cfg.Pricing.Source = DefaultPricingSource
	}
	if cfg.Pricing.Timeout == 0 {
		cfg.Pricing.Timeout = DefaultPricingTimeout
	}
	if cfg.Pricing.CatalogPath == "" {
		cfg.Pricing.CatalogPath = DefaultCatalogPath
	}
	if cfg.Pricing.WatchCatalog == nil {
		t := true
		cfg.Pricing.WatchCatalog = &t
	}
	if cfg.Pricing.DefaultUnitPrice == 0 {
		cfg.Pricing.DefaultUnitPrice = DefaultUnitPrice
	}
	if cfg.Pricing.Currency == "" {
		cfg.Pricing.Currency = DefaultCurrency
	}

	// Usage defaults
	if cfg.Usage.Timeout == 0 {
		cfg.Usage.Timeout = DefaultUsageTimeout
	}

	// Control defaults
	if cfg.Control.Timeout == 0 {
		cfg.Control.Timeout = DefaultControlTimeout
	}
	if cfg.Control.MaxRetries == 0 {
		cfg.Control.MaxRetries = DefaultControlRetries
	}

	// State defaults
	if cfg.State.Backend == "" {
		cfg.State.Backend = DefaultStateBackend
	}
	if cfg.State.Key == "" {
		cfg.State.Key = DefaultStateKey
	}
	if cfg.State.File.Dir == "" {
		cfg.State.File.Dir = DefaultStateFileDir
	}
	if cfg.State.SQLite.Path == "" {
		cfg.State.SQLite.Path = DefaultSQLitePath
	}
	if cfg.State.Object.UseSSL == nil {
		t := true
		cfg.State.Object.UseSSL = &t
	}

	// Notify defaults
	if cfg.Notify.Email.Port == 0 {
		cfg.Notify.Email.Port = DefaultSMTPPort
	}
	if cfg.Notify.Event.Topic == "" {
		cfg.Notify.Event.Topic = DefaultEventTopic
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Enabled == nil {
		t := true
		cfg.Telemetry.Metrics.Enabled = &t
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
