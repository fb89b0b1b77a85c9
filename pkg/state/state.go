package state

import (
	"time"

	"github.com/google/uuid"
)

// Action is the kind of an audit log entry.
type Action string

const (
	// ActionReset records a baseline reset for a service.
	ActionReset Action = "RESET"
	// ActionDisable records a confirmed service disable.
	ActionDisable Action = "DISABLE"
	// ActionEnable records a service re-enable.
	ActionEnable Action = "ENABLE"
	// ActionRollover records a billing-month rollover.
	ActionRollover Action = "ROLLOVER"
)

// ServiceState is the governor's persistent per-service bookkeeping.
type ServiceState struct {
	// Baseline is subtracted from raw cost when computing effective cost.
	// Set by a reset so spend before the reset no longer counts against
	// the budget.
	Baseline float64 `json:"baseline"`

	// LastKnownCost is the raw cost observed by the most recent cycle.
	// A reset falls back to it when the live re-query fails.
	LastKnownCost float64 `json:"last_known_cost"`

	// AlertsSent records which alert levels have been dispatched this
	// billing month. It only grows within a month; rollover or reset
	// clears it.
	AlertsSent map[string]bool `json:"alerts_sent,omitempty"`

	// Disabled is true after a confirmed disable by the governor, until
	// re-enabled by reset, manual enable, or rollover.
	Disabled bool `json:"disabled,omitempty"`

	// PendingEnable is true when a rollover cleared the disabled flag but
	// the control API has not confirmed the re-enable yet. Cleared by any
	// confirmed enable.
	PendingEnable bool `json:"pending_enable,omitempty"`
}

// AuditEntry is one record in the bounded audit trail.
type AuditEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	ServiceKey string    `json:"service_key"`
	Action     Action    `json:"action"`
	Details    string    `json:"details,omitempty"`
}

// newAuditEntry stamps an entry with a fresh ID and the current time.
func newAuditEntry(serviceKey string, action Action, details string, now time.Time) AuditEntry {
	return AuditEntry{
		ID:         uuid.NewString(),
		Timestamp:  now.UTC(),
		ServiceKey: serviceKey,
		Action:     action,
		Details:    details,
	}
}

// document is the serialized form of the whole state store.
type document struct {
	// BillingMonth marks the month ("2006-01", UTC) the state belongs to.
	// A mismatch with the current month triggers rollover.
	BillingMonth string `json:"billing_month"`

	Services map[string]*ServiceState `json:"services"`

	Audit []AuditEntry `json:"audit,omitempty"`
}

// monthKey formats t's UTC calendar month as the rollover marker.
func monthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
