package governor

import "time"

// ServiceStatus is the terminal outcome of a check cycle for one service.
type ServiceStatus string

const (
	// StatusOK means spend is below the warning threshold.
	StatusOK ServiceStatus = "OK"
	// StatusWarned means spend crossed the warning threshold.
	StatusWarned ServiceStatus = "WARNED"
	// StatusDisabled means the service is disabled (this cycle or a
	// previous one).
	StatusDisabled ServiceStatus = "DISABLED"
	// StatusDataQuality means some usage or price lookups failed and the
	// computed cost understates real spend.
	StatusDataQuality ServiceStatus = "DATA_QUALITY_WARNING"
)

// ServiceResult is the per-service outcome of one check cycle.
type ServiceResult struct {
	Key        string        `json:"key"`
	ResourceID string        `json:"resource_id"`
	Status     ServiceStatus `json:"status"`

	Budget        float64 `json:"budget"`
	RawCost       float64 `json:"raw_cost"`
	EffectiveCost float64 `json:"effective_cost"`
	UsagePct      float64 `json:"usage_pct"`

	// DataQualityWarnings lists metric lookups that failed and
	// contributed zero to the cost.
	DataQualityWarnings []string `json:"data_quality_warnings,omitempty"`

	// DisabledThisCycle is true when this cycle's decision disabled the
	// service (false for services already disabled earlier).
	DisabledThisCycle bool `json:"disabled_this_cycle,omitempty"`

	// Simulated is true when simulate mode suppressed a disable.
	Simulated bool `json:"simulated,omitempty"`

	// AlertDispatched is true when an alert was sent this cycle.
	AlertDispatched bool `json:"alert_dispatched,omitempty"`

	// DisableError carries the failure when a disable call did not
	// succeed. The service stays enabled and no CRITICAL alert is sent.
	DisableError string `json:"disable_error,omitempty"`
}

// Summary is the outcome of one full check cycle.
type Summary struct {
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	BillingMonth string        `json:"billing_month"`

	// RolledOver is true when this cycle performed the billing-month
	// rollover; ReEnabled lists services turned back on by it (or by a
	// retry of an earlier rollover's failed re-enable).
	RolledOver bool     `json:"rolled_over,omitempty"`
	ReEnabled  []string `json:"re_enabled,omitempty"`

	// ReEnableErrors lists rollover re-enables the control API rejected
	// this cycle, as "service: error". The services stay pending and are
	// retried next cycle.
	ReEnableErrors []string `json:"re_enable_errors,omitempty"`

	Services []ServiceResult `json:"services"`
}

// Degraded reports whether the cycle saw data-quality warnings or a failed
// rollover re-enable.
func (s *Summary) Degraded() bool {
	if len(s.ReEnableErrors) > 0 {
		return true
	}
	for _, svc := range s.Services {
		if len(svc.DataQualityWarnings) > 0 {
			return true
		}
	}
	return false
}

// ResetResult reports what a baseline reset accomplished. Every step is
// attempted even when an earlier one fails; the flags say which succeeded.
type ResetResult struct {
	ServiceKey string `json:"service_key"`

	// Baseline is the saved baseline value.
	Baseline float64 `json:"baseline"`

	// BaselineSource says how the baseline was determined: "live" from a
	// fresh re-query, "last_known" from the stored cost, or "zero".
	BaselineSource string `json:"baseline_source"`

	// AlertsCleared is true when the dedup flags were dropped.
	AlertsCleared bool `json:"alerts_cleared"`

	// APIEnabled is true when the control API confirmed the re-enable.
	APIEnabled bool `json:"api_enabled"`

	// EnableError carries the re-enable failure, if any.
	EnableError string `json:"enable_error,omitempty"`
}

// StatusView is the live status of one service, combining persistent state
// with the control API's view.
type StatusView struct {
	Key           string  `json:"key"`
	ResourceID    string  `json:"resource_id"`
	Budget        float64 `json:"budget"`
	EffectiveCost float64 `json:"effective_cost"`
	UsagePct      float64 `json:"usage_pct"`
	Baseline      float64 `json:"baseline"`

	// APIState is the control API's view ("ENABLED", "DISABLED",
	// "UNKNOWN" when the status call fails).
	APIState string `json:"api_state"`

	// AlertsSent lists alert levels already dispatched this month.
	AlertsSent []string `json:"alerts_sent,omitempty"`

	// Disabled is the governor's own record of having disabled the
	// service.
	Disabled bool `json:"disabled"`
}
