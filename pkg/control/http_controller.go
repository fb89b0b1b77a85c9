package control

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"
)

// HTTPController drives a service-control REST API.
//
// Calls are retried with exponential backoff up to maxRetries attempts.
// Permission, not-found, and bad-request responses abort immediately: the
// same call cannot succeed on retry and a tight retry loop against a
// permission error only burns quota.
type HTTPController struct {
	endpoint   string
	client     *http.Client
	maxRetries int
	logger     *slog.Logger

	// sleep is swappable in tests to avoid real backoff waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewHTTPController creates a controller for the service-control API at
// endpoint. Timeout bounds each individual HTTP call; maxRetries bounds
// retry attempts for retryable failures.
func NewHTTPController(endpoint string, timeout time.Duration, maxRetries int, logger *slog.Logger) *HTTPController {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		logger = slog.Default().With("component", "control")
	}
	return &HTTPController{
		endpoint:   endpoint,
		client:     &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		logger:     logger,
		sleep:      sleepContext,
	}
}

// Disable shuts off the service. Idempotent at the provider.
func (c *HTTPController) Disable(ctx context.Context, resourceID string) error {
	return c.post(ctx, resourceID, "disable")
}

// Enable turns the service back on. Idempotent at the provider.
func (c *HTTPController) Enable(ctx context.Context, resourceID string) error {
	return c.post(ctx, resourceID, "enable")
}

type statusResponse struct {
	State string `json:"state"`
}

// Status reports the service's current state.
func (c *HTTPController) Status(ctx context.Context, resourceID string) (APIState, error) {
	u := fmt.Sprintf("%s/v1/services/%s", c.endpoint, url.PathEscape(resourceID))

	var state APIState
	err := c.withRetries(ctx, resourceID, "status", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return &ControlError{ResourceID: resourceID, Message: "failed to create request", Cause: err}
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return &ControlError{ResourceID: resourceID, Message: "request failed", Cause: err}
		}
		defer resp.Body.Close()

		if err := classifyStatus(resp, resourceID); err != nil {
			return err
		}

		var parsed statusResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return &ControlError{ResourceID: resourceID, Message: "failed to decode status response", Cause: err}
		}
		switch parsed.State {
		case string(StateEnabled):
			state = StateEnabled
		case string(StateDisabled):
			state = StateDisabled
		default:
			state = StateUnknown
		}
		return nil
	})
	if err != nil {
		return StateUnknown, err
	}
	return state, nil
}

// post issues a verb call (enable/disable) with retry.
func (c *HTTPController) post(ctx context.Context, resourceID, verb string) error {
	u := fmt.Sprintf("%s/v1/services/%s:%s", c.endpoint, url.PathEscape(resourceID), verb)

	return c.withRetries(ctx, resourceID, verb, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
		if err != nil {
			return &ControlError{ResourceID: resourceID, Message: "failed to create request", Cause: err}
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return &ControlError{ResourceID: resourceID, Message: "request failed", Cause: err}
		}
		defer resp.Body.Close()

		return classifyStatus(resp, resourceID)
	})
}

// withRetries runs call up to maxRetries+1 times with exponential backoff,
// aborting immediately on non-retryable errors and context cancellation.
func (c *HTTPController) withRetries(ctx context.Context, resourceID, op string, call func() error) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			c.logger.Debug("retrying control call",
				"resource", resourceID,
				"op", op,
				"attempt", attempt,
				"backoff", backoff,
			)
			if err := c.sleep(ctx, backoff); err != nil {
				return err
			}
		}

		lastErr = call()
		if lastErr == nil {
			return nil
		}
		if IsNonRetryable(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}

		c.logger.Warn("control call failed, will retry",
			"resource", resourceID,
			"op", op,
			"attempt", attempt,
			"error", lastErr,
		)
	}
	return lastErr
}

// classifyStatus maps an HTTP response to the control error taxonomy.
// A 2xx response returns nil.
func classifyStatus(resp *http.Response, resourceID string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	message := string(body)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &PermissionError{ResourceID: resourceID, Message: message}
	case http.StatusNotFound:
		return &NotFoundError{ResourceID: resourceID}
	case http.StatusBadRequest:
		return &BadRequestError{ResourceID: resourceID, Message: message}
	default:
		return &ControlError{ResourceID: resourceID, StatusCode: resp.StatusCode, Message: message}
	}
}

// sleepContext waits for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
