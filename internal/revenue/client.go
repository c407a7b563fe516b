// Package revenue provides clients for the external revenue aggregator,
// the collaborator that sums completed registration, tuition and service
// transactions for a date range.
package revenue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"outlay/internal/core"
)

// Client fetches period revenue over HTTP. The aggregator is expected to
// answer GET {base}/revenue?from=YYYY-MM-DD&to=YYYY-MM-DD with
// {"total_cents": n}.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) RevenueForPeriod(ctx context.Context, from, to core.Date) (core.Money, error) {
	u := fmt.Sprintf("%s/revenue?from=%s&to=%s",
		c.baseURL, url.QueryEscape(from.ISO()), url.QueryEscape(to.ISO()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return core.Money{}, fmt.Errorf("build revenue request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return core.Money{}, fmt.Errorf("fetch revenue: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.Money{}, fmt.Errorf("revenue aggregator returned %s", resp.Status)
	}

	var body struct {
		TotalCents int64 `json:"total_cents"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return core.Money{}, fmt.Errorf("decode revenue response: %w", err)
	}
	if body.TotalCents < 0 {
		return core.Money{}, fmt.Errorf("revenue aggregator returned negative total %d", body.TotalCents)
	}
	return core.Money{Cents: body.TotalCents}, nil
}

// Static returns a fixed figure for every period. Useful for local
// development when no aggregator is reachable.
type Static struct {
	Total core.Money
}

func (s Static) RevenueForPeriod(context.Context, core.Date, core.Date) (core.Money, error) {
	return s.Total, nil
}
