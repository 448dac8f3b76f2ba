package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetEvents fetches a page of events.
func (c *Client) GetEvents(ctx context.Context, opts GetEventsOptions) (*EventsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.SeriesTicker != "" {
		query.Set("series_ticker", opts.SeriesTicker)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	var resp EventsResponse
	if err := c.get(ctx, "/events", query, &resp); err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}

	return &resp, nil
}
