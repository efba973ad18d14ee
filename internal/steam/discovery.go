package steam

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/steamdex/steamdex/internal/logging"
	"github.com/steamdex/steamdex/internal/metrics"
)

// Search result rows carry the app id in a data attribute.
var appIDPattern = regexp.MustCompile(`data-ds-appid="(\d+)"`)

// DiscoverAppIDs walks the storefront search listing pages and collects
// distinct app ids, stopping at maxPages or at the first page with no
// results. pageDelay is the politeness pause between page fetches.
func (c *Client) DiscoverAppIDs(ctx context.Context, maxPages int, pageDelay time.Duration) ([]int64, error) {
	var appIDs []int64
	seen := make(map[int64]bool)

	for page := 1; page <= maxPages; page++ {
		ids, err := c.fetchSearchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			logging.Debug("empty search page, stopping discovery", "page", page)
			break
		}

		added := 0
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			appIDs = append(appIDs, id)
			added++
		}
		logging.Info("discovered app ids", "page", page, "new", added, "total", len(appIDs))

		if page < maxPages && pageDelay > 0 {
			select {
			case <-ctx.Done():
				return appIDs, ctx.Err()
			case <-time.After(pageDelay):
			}
		}
	}

	return appIDs, nil
}

func (c *Client) fetchSearchPage(ctx context.Context, page int) ([]int64, error) {
	url := fmt.Sprintf("%s&page=%d", c.searchURL, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.StorefrontRequests.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("search page %d: %w", page, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.StorefrontRequests.WithLabelValues("search", "error").Inc()
		return nil, fmt.Errorf("search page %d: unexpected status %s", page, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search page %d: %w", page, err)
	}
	metrics.StorefrontRequests.WithLabelValues("search", "ok").Inc()

	var ids []int64
	for _, match := range appIDPattern.FindAllSubmatch(body, -1) {
		id, err := strconv.ParseInt(string(match[1]), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
