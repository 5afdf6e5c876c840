// Package inspection calls the Search Console URL Inspection API.
package inspection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dtnitsch/gsc-inspect/models"
)

const (
	DefaultBaseURL = "https://searchconsole.googleapis.com"
	inspectPath    = "/v1/urlInspection/index:inspect"

	// MaxResponseBytes caps how much of a response body is read.
	MaxResponseBytes = 4 << 20

	// DefaultQueriesPerMinute is the per-property URL Inspection quota.
	DefaultQueriesPerMinute = 600
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Status     string // API status, e.g. RESOURCE_EXHAUSTED
	Message    string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("inspection API returned %d", e.StatusCode)
	if e.Status != "" {
		msg += " " + e.Status
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Client is a URL Inspection client. The http.Client is expected to attach
// credentials (see auth.Flow.Client).
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
}

func NewClient(httpClient *http.Client) *Client {
	return &Client{http: httpClient, baseURL: DefaultBaseURL}
}

// WithBaseURL points the client at another host, for tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// WithQuota keeps requests under qpm queries per minute. Zero or less removes
// the limit.
func (c *Client) WithQuota(qpm int) *Client {
	if qpm <= 0 {
		c.limiter = nil
		return c
	}
	c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(qpm)), 1)
	return c
}

// Inspect inspects pageURL as seen by the property siteURL.
func (c *Client) Inspect(ctx context.Context, siteURL, pageURL string) (*models.InspectResponse, error) {
	body, err := json.Marshal(models.InspectRequest{InspectionURL: pageURL, SiteURL: siteURL})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for quota: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+inspectPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inspection request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read inspection response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			apiErr.Status = eb.Error.Status
			apiErr.Message = eb.Error.Message
		}
		return nil, apiErr
	}

	var out models.InspectResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode inspection response: %w", err)
	}
	return &out, nil
}
