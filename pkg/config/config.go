package config

import "time"

// Config is the root configuration structure for Warden.
// It contains all configuration sections for the HTTP server, the budget
// governor, pricing and usage sources, service control, state persistence,
// notifications, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Governor contains the budget enforcement configuration: thresholds,
	// scheduling, and the registry of monitored services.
	Governor GovernorConfig `yaml:"governor"`

	// Pricing contains configuration for unit price resolution, including
	// the upstream billing catalog and the static catalog fallback.
	Pricing PricingConfig `yaml:"pricing"`

	// Usage contains configuration for the usage (monitoring) source.
	Usage UsageConfig `yaml:"usage"`

	// Control contains configuration for the service enable/disable API.
	Control ControlConfig `yaml:"control"`

	// State contains configuration for persistent governor state.
	State StateConfig `yaml:"state"`

	// Notify contains configuration for alert delivery channels.
	Notify NotifyConfig `yaml:"notify"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8787").
	// Default: "127.0.0.1:8787"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Default: 60s (a full check cycle runs inside a request).
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GovernorConfig contains the budget enforcement configuration.
type GovernorConfig struct {
	// WarningThresholdPct is the budget usage percentage at which a WARNING
	// alert is sent. Default: 80
	WarningThresholdPct float64 `yaml:"warning_threshold_pct"`

	// CriticalThresholdPct is the budget usage percentage at which the
	// service is disabled and a CRITICAL alert is sent. Default: 100
	CriticalThresholdPct float64 `yaml:"critical_threshold_pct"`

	// Simulate enables simulate-only (dry-run) mode: decisions are computed
	// and logged but no service is ever disabled. Default: false
	Simulate bool `yaml:"simulate"`

	// Schedule is a cron expression for periodic check cycles
	// (e.g., "*/10 * * * *" for every 10 minutes). Empty disables the
	// internal scheduler; cycles then run only via POST /check.
	Schedule string `yaml:"schedule"`

	// AllowOverlappingCycles permits two check cycles to run concurrently.
	// When false (the default) cycles are serialized behind a process-level
	// lock. Idempotent decisions make overlap safe for state either way;
	// the lock avoids duplicate concurrent work.
	AllowOverlappingCycles bool `yaml:"allow_overlapping_cycles"`

	// AuditLimit bounds the persisted audit log to the most recent N
	// entries. Default: 200
	AuditLimit int `yaml:"audit_limit"`

	// Services is the registry of monitored services. Loaded once at
	// startup and immutable at runtime. At least one entry is required.
	Services []ServiceConfig `yaml:"services"`
}

// ServiceConfig defines one budget-enforcement unit.
type ServiceConfig struct {
	// Key is the stable identifier used in state, alerts, and the API
	// (e.g., "vertex_ai"). Required.
	Key string `yaml:"key"`

	// ResourceID is the externally addressable identifier passed to the
	// service control API to enable or disable access
	// (e.g., "aiplatform.googleapis.com"). Required.
	ResourceID string `yaml:"resource_id"`

	// MonthlyBudget is the monthly budget amount in account currency.
	// Must be greater than zero.
	MonthlyBudget float64 `yaml:"monthly_budget"`

	// Metrics is the ordered list of billable quantities that contribute
	// to this service's cost. At least one entry is required.
	Metrics []MetricConfig `yaml:"metrics"`
}

// MetricConfig defines one billable quantity within a service.
type MetricConfig struct {
	// Label is a human-readable name used in logs and summaries.
	Label string `yaml:"label"`

	// UsageMetric is the metric identifier passed to the usage source.
	// Required.
	UsageMetric string `yaml:"usage_metric"`

	// UsageFilter is an optional filter qualifier appended to the usage
	// query.
	UsageFilter string `yaml:"usage_filter"`

	// PriceService is the upstream billing catalog grouping the price SKU
	// belongs to. Catalog data is fetched once per grouping per cycle.
	PriceService string `yaml:"price_service"`

	// PriceSKU is the SKU identifier for price lookup. Required.
	PriceSKU string `yaml:"price_sku"`

	// PriceTier selects the tier of tiered pricing to use (0-based).
	PriceTier int `yaml:"price_tier"`
}

// PricingConfig contains configuration for unit price resolution.
type PricingConfig struct {
	// Source selects the primary price source.
	// Options: "billing" (live catalog API with static fallback),
	// "catalog" (static catalog only).
	// Default: "billing"
	Source string `yaml:"source"`

	// Endpoint is the base URL of the billing catalog API.
	// Required when Source is "billing".
	Endpoint string `yaml:"endpoint"`

	// Timeout is the maximum duration for a single catalog request.
	// Default: 15s
	Timeout time.Duration `yaml:"timeout"`

	// CatalogPath is the path to the static price catalog YAML file.
	// Default: "./prices.yaml"
	CatalogPath string `yaml:"catalog_path"`

	// WatchCatalog reloads the static catalog when the file changes.
	// Default: true
	WatchCatalog *bool `yaml:"watch_catalog"`

	// DefaultUnitPrice is the documented last-resort unit price applied
	// when every price source fails, chosen to over- rather than
	// under-estimate cost so unknown items still accrue spend.
	// Must be greater than zero. Default: 0.01
	DefaultUnitPrice float64 `yaml:"default_unit_price"`

	// Currency is the currency code used for catalog lookups.
	// Default: "USD"
	Currency string `yaml:"currency"`
}

// UsageConfig contains configuration for the usage (monitoring) source.
type UsageConfig struct {
	// Endpoint is the base URL of the monitoring API. Required.
	Endpoint string `yaml:"endpoint"`

	// Timeout is the maximum duration for a single usage query.
	// Default: 15s
	Timeout time.Duration `yaml:"timeout"`
}

// ControlConfig contains configuration for the service control API.
type ControlConfig struct {
	// Endpoint is the base URL of the service control API. Required.
	Endpoint string `yaml:"endpoint"`

	// Timeout is the maximum duration for a single control call.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the maximum number of retry attempts for retryable
	// control call failures. Default: 3
	MaxRetries int `yaml:"max_retries"`
}

// StateConfig contains configuration for persistent governor state.
type StateConfig struct {
	// Backend selects the state persistence backend.
	// Options: "file" (local JSON file), "object" (S3-compatible object
	// store), "sqlite" (local SQLite database).
	// Default: "file"
	Backend string `yaml:"backend"`

	// Key is the document name the state blob is stored under.
	// Default: "warden-state.json"
	Key string `yaml:"key"`

	// File configures the file backend.
	File FileStateConfig `yaml:"file"`

	// Object configures the object store backend.
	Object ObjectStateConfig `yaml:"object"`

	// SQLite configures the SQLite backend.
	SQLite SQLiteStateConfig `yaml:"sqlite"`
}

// FileStateConfig configures the local file state backend.
type FileStateConfig struct {
	// Dir is the directory the state document is written to.
	// Default: "./data"
	Dir string `yaml:"dir"`
}

// ObjectStateConfig configures the S3-compatible object store backend.
type ObjectStateConfig struct {
	// Endpoint is the object store endpoint (host:port).
	Endpoint string `yaml:"endpoint"`

	// Bucket is the bucket the state document is stored in.
	Bucket string `yaml:"bucket"`

	// AccessKey and SecretKey authenticate against the object store.
	// Typically supplied via WARDEN_STATE_OBJECT_ACCESS_KEY and
	// WARDEN_STATE_OBJECT_SECRET_KEY.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// UseSSL enables TLS for object store connections. Default: true
	UseSSL *bool `yaml:"use_ssl"`

	// Prefix is prepended to the state document key.
	Prefix string `yaml:"prefix"`
}

// SQLiteStateConfig configures the SQLite state backend.
type SQLiteStateConfig struct {
	// Path is the SQLite database file path. Default: "./data/warden.db"
	Path string `yaml:"path"`
}

// NotifyConfig contains configuration for alert delivery channels.
// A channel left unconfigured is a silent no-op.
type NotifyConfig struct {
	// Email configures the direct-message channel.
	Email EmailConfig `yaml:"email"`

	// Event configures the structured event publish channel.
	Event EventConfig `yaml:"event"`
}

// EmailConfig configures SMTP alert delivery. The channel is enabled when
// Host, From, and at least one recipient are set.
type EmailConfig struct {
	// Host is the SMTP server hostname.
	Host string `yaml:"host"`

	// Port is the SMTP server port. Default: 465
	Port int `yaml:"port"`

	// From is the sender address, also used as the SMTP username.
	From string `yaml:"from"`

	// Password is the SMTP password or app password.
	// Typically supplied via WARDEN_NOTIFY_EMAIL_PASSWORD.
	Password string `yaml:"password"`

	// Recipients is the list of alert recipient addresses.
	Recipients []string `yaml:"recipients"`
}

// EventConfig configures Kafka alert publishing. The channel is enabled
// when at least one broker and a topic are set.
type EventConfig struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string `yaml:"brokers"`

	// Topic is the topic budget alerts are published to.
	// Default: "warden-alerts"
	Topic string `yaml:"topic"`
}

// TelemetryConfig contains configuration for logging and metrics.
type TelemetryConfig struct {
	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures Prometheus metrics exposure.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging output.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text", "console").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures Prometheus metrics exposure.
type MetricsConfig struct {
	// Enabled controls whether the /metrics endpoint is registered.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the metrics endpoint path. Default: "/metrics"
	Path string `yaml:"path"`
}
