// Package googlebooks provides a read-only client for the Google Books
// volumes API, used to back-fill book display fields.
package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Google Books API root.
const DefaultBaseURL = "https://www.googleapis.com/books/v1"

// Sentinel errors for volume lookups.
var (
	ErrNotFound    = errors.New("googlebooks: volume not found")
	ErrRateLimited = errors.New("googlebooks: rate limited by server")
	ErrServer      = errors.New("googlebooks: server error")
)

// Client looks volumes up by their Google identifier.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a client. An empty baseURL selects DefaultBaseURL and an
// empty apiKey uses the anonymous quota.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// 1 request per second with a small burst keeps well under the daily quota.
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:      logger,
	}
}

func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}

// GetVolume fetches the volume with googleID.
func (c *Client) GetVolume(ctx context.Context, googleID string) (*Volume, error) {
	if googleID == "" {
		return nil, ErrNotFound
	}
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	volumeURL := c.baseURL + "/volumes/" + url.PathEscape(googleID)
	if c.apiKey != "" {
		volumeURL += "?" + url.Values{"key": {c.apiKey}}.Encode()
	}

	c.logger.Debug("fetching google books volume", "google_id", googleID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, volumeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("volume request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("volume lookup failed: status %d", resp.StatusCode)
	}

	var raw volumeResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if raw.ID == "" {
		return nil, ErrNotFound
	}

	return raw.toVolume(), nil
}
