package control

import (
	"errors"
	"fmt"
)

// PermissionError represents a permission-denied response from the control
// API (HTTP 401 or 403). It is never retried: the caller's credentials will
// not improve between attempts.
type PermissionError struct {
	// ResourceID is the resource the call targeted
	ResourceID string

	// Message is the error detail from the control API
	Message string
}

// Error implements the error interface.
func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied for resource %q: %s", e.ResourceID, e.Message)
}

// NotFoundError represents an unknown resource (HTTP 404). It is never
// retried.
type NotFoundError struct {
	// ResourceID is the resource the call targeted
	ResourceID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource %q not found", e.ResourceID)
}

// BadRequestError represents a malformed request (HTTP 400). It is never
// retried: the same request would fail the same way.
type BadRequestError struct {
	// ResourceID is the resource the call targeted
	ResourceID string

	// Message is the error detail from the control API
	Message string
}

// Error implements the error interface.
func (e *BadRequestError) Error() string {
	return fmt.Sprintf("bad request for resource %q: %s", e.ResourceID, e.Message)
}

// ControlError represents any other control API failure (5xx, transport
// errors). These are retryable.
type ControlError struct {
	// ResourceID is the resource the call targeted
	ResourceID string

	// StatusCode is the HTTP status code (0 for transport errors)
	StatusCode int

	// Message is the error detail
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *ControlError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("control call for resource %q failed (status %d): %s",
			e.ResourceID, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("control call for resource %q failed: %s", e.ResourceID, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ControlError) Unwrap() error {
	return e.Cause
}

// IsNonRetryable reports whether err is a terminal control API failure that
// retrying cannot fix.
func IsNonRetryable(err error) bool {
	var (
		permission *PermissionError
		notFound   *NotFoundError
		badRequest *BadRequestError
	)
	return errors.As(err, &permission) || errors.As(err, &notFound) || errors.As(err, &badRequest)
}
