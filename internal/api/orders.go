package api

import (
	"context"
	"fmt"
)

// CreateOrder submits a single order. It is never retried here.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*APIOrder, error) {
	var resp CreateOrderResponse
	if err := c.post(ctx, "/portfolio/orders", req, &resp); err != nil {
		return nil, fmt.Errorf("create order %s: %w", req.Ticker, err)
	}
	return &resp.Order, nil
}
