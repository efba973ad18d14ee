// Package steam is a minimal client for the storefront's public
// appdetails API and its search listing pages.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/steamdex/steamdex/internal/metrics"
)

const defaultUserAgent = "Mozilla/5.0"

// Client talks to the storefront. The base URLs are configurable so
// tests can point it at a local server.
type Client struct {
	httpClient *http.Client
	detailURL  string
	searchURL  string
	userAgent  string
}

// NewClient creates a storefront client for the given endpoint URLs.
func NewClient(detailURL, searchURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		detailURL:  detailURL,
		searchURL:  searchURL,
		userAgent:  defaultUserAgent,
	}
}

// AppDetails fetches the details payload for one app in one region.
// A (nil, nil) return means the storefront answered but has no data for
// that app/region combination; callers skip the region and move on.
func (c *Client) AppDetails(ctx context.Context, appID int64, regionCode string) (*AppDetails, error) {
	q := url.Values{}
	q.Set("appids", strconv.FormatInt(appID, 10))
	q.Set("cc", regionCode)
	q.Set("l", "english")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.detailURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build appdetails request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.StorefrontRequests.WithLabelValues("appdetails", "error").Inc()
		return nil, fmt.Errorf("appdetails request for app %d: %w", appID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.StorefrontRequests.WithLabelValues("appdetails", "error").Inc()
		return nil, fmt.Errorf("appdetails for app %d: unexpected status %s", appID, resp.Status)
	}

	var envelope map[string]detailEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		metrics.StorefrontRequests.WithLabelValues("appdetails", "error").Inc()
		return nil, fmt.Errorf("decode appdetails for app %d: %w", appID, err)
	}

	entry, ok := envelope[strconv.FormatInt(appID, 10)]
	if !ok || !entry.Success {
		metrics.StorefrontRequests.WithLabelValues("appdetails", "miss").Inc()
		return nil, nil
	}

	var details AppDetails
	if err := json.Unmarshal(entry.Data, &details); err != nil {
		return nil, fmt.Errorf("decode appdetails data for app %d: %w", appID, err)
	}

	metrics.StorefrontRequests.WithLabelValues("appdetails", "ok").Inc()
	return &details, nil
}
