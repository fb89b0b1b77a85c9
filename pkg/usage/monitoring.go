package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// MonitoringClient queries aggregate usage from a monitoring API over HTTP.
type MonitoringClient struct {
	endpoint string
	client   *http.Client
}

// NewMonitoringClient creates a monitoring API client. Timeout bounds each
// query; zero means 15 seconds.
func NewMonitoringClient(endpoint string, timeout time.Duration) *MonitoringClient {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &MonitoringClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type aggregateResponse struct {
	Total int64 `json:"total"`
}

// Query returns the aggregate value of the metric over the window.
func (c *MonitoringClient) Query(ctx context.Context, metric Metric, window Window) (int64, error) {
	params := url.Values{}
	params.Set("metric", metric.Name)
	if metric.Filter != "" {
		params.Set("filter", metric.Filter)
	}
	params.Set("start", window.Start.Format(time.RFC3339))
	params.Set("end", window.End.Format(time.RFC3339))

	u := fmt.Sprintf("%s/v1/usage:aggregate?%s", c.endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create usage query: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("usage query for metric %q failed: %w", metric.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("usage query for metric %q returned status %d: %s",
			metric.Name, resp.StatusCode, string(body))
	}

	var parsed aggregateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode usage response for metric %q: %w", metric.Name, err)
	}

	return parsed.Total, nil
}
