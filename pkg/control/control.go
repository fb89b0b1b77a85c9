package control

import "context"

// APIState is the externally observed state of a controlled service.
type APIState string

const (
	// StateEnabled means the service accepts traffic.
	StateEnabled APIState = "ENABLED"
	// StateDisabled means the service is shut off.
	StateDisabled APIState = "DISABLED"
	// StateUnknown means the state could not be determined.
	StateUnknown APIState = "UNKNOWN"
)

// Controller enables and disables external services. Disable and Enable are
// idempotent at the provider: disabling an already disabled service
// succeeds.
type Controller interface {
	// Disable shuts off the service identified by resourceID.
	Disable(ctx context.Context, resourceID string) error

	// Enable turns the service identified by resourceID back on.
	Enable(ctx context.Context, resourceID string) error

	// Status reports the current state of the service.
	Status(ctx context.Context, resourceID string) (APIState, error)
}
