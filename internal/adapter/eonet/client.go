package eonet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wildfire-tracker/internal/domain"
	"github.com/couchcryptid/wildfire-tracker/internal/observability"
)

// DefaultBaseURL is the public EONET v3 API root.
const DefaultBaseURL = "https://eonet.gsfc.nasa.gov/api/v3"

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 4096

// Client implements domain.EventSource using the EONET v3 API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	category   string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an EONET client for one event category.
func NewClient(baseURL, category string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  strings.TrimRight(baseURL, "/"),
		category: category,
		logger:   logger,
		metrics:  metrics,
	}
}

// ListEvents fetches /events filtered by status, category and limit.
func (c *Client) ListEvents(ctx context.Context, q domain.ListQuery) ([]domain.Event, error) {
	params := url.Values{
		"status":   {string(q.Status)},
		"category": {c.category},
		"limit":    {strconv.Itoa(q.Limit)},
	}

	var resp listResponse
	if err := c.getJSON(ctx, c.baseURL+"/events?"+params.Encode(), "list", &resp); err != nil {
		return nil, err
	}
	if resp.Events == nil {
		return nil, fmt.Errorf("list response has no events field: %w", domain.ErrUnexpectedResponse)
	}

	c.logger.Debug("listed events", "count", len(resp.Events), "status", q.Status)
	return resp.Events, nil
}

// EventGeometries fetches /events/{id}/geojson and normalizes the payload.
func (c *Client) EventGeometries(ctx context.Context, id string) ([]domain.Geometry, error) {
	u := fmt.Sprintf("%s/events/%s/geojson", c.baseURL, url.PathEscape(id))

	var resp detailResponse
	if err := c.getJSON(ctx, u, "detail", &resp); err != nil {
		return nil, err
	}
	return resp.normalize(), nil
}

func (c *Client) getJSON(ctx context.Context, fullURL, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.APIDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		outcome := "error"
		if resp.StatusCode == http.StatusTooManyRequests {
			outcome = "rate_limited"
		}
		c.metrics.APIRequests.WithLabelValues(endpoint, outcome).Inc()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.StatusError{
			StatusCode: resp.StatusCode,
			RetryAfter: resp.Header.Get("Retry-After"),
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("decode %s response: %w: %w", endpoint, domain.ErrUnexpectedResponse, err)
	}
	c.metrics.APIRequests.WithLabelValues(endpoint, "success").Inc()
	return nil
}
