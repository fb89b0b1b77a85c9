package notify

import (
	"context"
	"time"
)

// Level is the severity of a budget alert.
type Level string

const (
	// LevelWarning fires when spend crosses the warning threshold.
	LevelWarning Level = "WARNING"
	// LevelCritical fires after the service has been disabled (or would
	// have been, in simulate mode).
	LevelCritical Level = "CRITICAL"
)

// Alert is one budget notification.
type Alert struct {
	// Level is the severity.
	Level Level `json:"level"`

	// ServiceKey is the governor's stable service identifier.
	ServiceKey string `json:"service_key"`

	// ResourceID is the externally addressable service identifier.
	ResourceID string `json:"resource_id"`

	// Budget is the monthly budget in account currency.
	Budget float64 `json:"budget"`

	// EffectiveCost is the baseline-adjusted spend this billing month.
	EffectiveCost float64 `json:"effective_cost"`

	// UsagePct is EffectiveCost as a percentage of Budget.
	UsagePct float64 `json:"usage_pct"`

	// Action describes what the governor did ("service disabled",
	// "would disable (simulate mode)", "warning only").
	Action string `json:"action"`

	// Timestamp is when the alert was raised.
	Timestamp time.Time `json:"timestamp"`
}

// Channel delivers alerts over one transport. Channels fail independently:
// one transport being down never suppresses delivery on the others.
type Channel interface {
	// Name identifies the channel in logs and metrics.
	Name() string

	// Send delivers the alert.
	Send(ctx context.Context, alert Alert) error
}
