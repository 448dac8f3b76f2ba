package api

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"

	"github.com/rickgao/kalshi-quoter/internal/model"
)

// ErrCursorLoop is returned when the venue hands back the cursor it was just given.
var ErrCursorLoop = errors.New("pagination cursor did not advance")

// GetMarkets fetches a page of markets.
func (c *Client) GetMarkets(ctx context.Context, opts GetMarketsOptions) (*MarketsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}
	if opts.EventTicker != "" {
		query.Set("event_ticker", opts.EventTicker)
	}
	if opts.SeriesTicker != "" {
		query.Set("series_ticker", opts.SeriesTicker)
	}
	if len(opts.Tickers) > 0 {
		query.Set("tickers", strings.Join(opts.Tickers, ","))
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	var resp MarketsResponse
	if err := c.get(ctx, "/markets", query, &resp); err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	return &resp, nil
}

// MarketPages walks the cursor for one listing and yields each non-empty page.
//
// Each pull issues exactly one request. Empty pages are not yielded but their
// cursor is still followed. The walk ends when the cursor comes back empty, or
// at the first error, which is yielded once and aborts the walk. Every call
// starts a fresh walk from opts.Cursor.
func (c *Client) MarketPages(ctx context.Context, opts GetMarketsOptions) iter.Seq2[[]model.Market, error] {
	return func(yield func([]model.Market, error) bool) {
		for {
			resp, err := c.GetMarkets(ctx, opts)
			if err != nil {
				yield(nil, err)
				return
			}

			if len(resp.Markets) > 0 {
				batch := make([]model.Market, 0, len(resp.Markets))
				for i := range resp.Markets {
					m := resp.Markets[i].ToModel()
					m.SeriesTicker = opts.SeriesTicker
					batch = append(batch, m)
				}
				if !yield(batch, nil) {
					return
				}
			}

			if resp.Cursor == "" {
				return
			}
			if resp.Cursor == opts.Cursor {
				yield(nil, fmt.Errorf("get markets %s: %w", opts.SeriesTicker, ErrCursorLoop))
				return
			}
			opts.Cursor = resp.Cursor
		}
	}
}

// GetMarket fetches a single market by ticker.
func (c *Client) GetMarket(ctx context.Context, ticker string) (*APIMarket, error) {
	var resp SingleMarketResponse
	if err := c.get(ctx, "/markets/"+url.PathEscape(ticker), nil, &resp); err != nil {
		return nil, fmt.Errorf("get market %s: %w", ticker, err)
	}
	return &resp.Market, nil
}

// GetOrderbook fetches the orderbook for a market.
func (c *Client) GetOrderbook(ctx context.Context, ticker string, depth int) (*OrderbookResponse, error) {
	query := url.Values{}
	if depth > 0 {
		query.Set("depth", strconv.Itoa(depth))
	}

	var resp OrderbookResponse
	if err := c.get(ctx, "/markets/"+url.PathEscape(ticker)+"/orderbook", query, &resp); err != nil {
		return nil, fmt.Errorf("get orderbook %s: %w", ticker, err)
	}

	return &resp, nil
}
