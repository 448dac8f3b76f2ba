package api

// ExchangeStatusResponse from GET /exchange/status
type ExchangeStatusResponse struct {
	ExchangeActive      bool   `json:"exchange_active"`
	TradingActive       bool   `json:"trading_active"`
	EstimatedResumeTime string `json:"exchange_estimated_resume_time,omitempty"`
}

// MarketsResponse from GET /markets
type MarketsResponse struct {
	Markets []APIMarket `json:"markets"`
	Cursor  string      `json:"cursor"`
}

// APIMarket represents a market from the Kalshi API.
type APIMarket struct {
	Ticker      string `json:"ticker"`
	EventTicker string `json:"event_ticker"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Status      string `json:"status"`
	MarketType  string `json:"market_type"`

	// Prices in cents; nil when the side has no quote.
	YesBid *int `json:"yes_bid"`
	YesAsk *int `json:"yes_ask"`
	NoBid  *int `json:"no_bid"`
	NoAsk  *int `json:"no_ask"`

	// Prices as strings (sub-penny)
	YesBidDollars string `json:"yes_bid_dollars"`
	YesAskDollars string `json:"yes_ask_dollars"`
	NoBidDollars  string `json:"no_bid_dollars"`
	NoAskDollars  string `json:"no_ask_dollars"`

	Volume       int64 `json:"volume"`
	OpenInterest int64 `json:"open_interest"`

	// Timestamps (ISO 8601)
	CloseTime              string `json:"close_time"`
	ExpirationTime         string `json:"expiration_time"`
	ExpectedExpirationTime string `json:"expected_expiration_time"`
}

// SingleMarketResponse from GET /markets/{ticker}
type SingleMarketResponse struct {
	Market APIMarket `json:"market"`
}

// EventsResponse from GET /events
type EventsResponse struct {
	Events []APIEvent `json:"events"`
	Cursor string     `json:"cursor"`
}

// APIEvent represents an event from the Kalshi API.
type APIEvent struct {
	EventTicker  string `json:"event_ticker"`
	SeriesTicker string `json:"series_ticker"`
	Title        string `json:"title"`
	Subtitle     string `json:"sub_title"`
	Category     string `json:"category"`
}

// SeriesResponse from GET /series/{series_ticker}
type SeriesResponse struct {
	Series APISeries `json:"series"`
}

// APISeries represents a series from the Kalshi API.
type APISeries struct {
	Ticker    string   `json:"ticker"`
	Title     string   `json:"title"`
	Category  string   `json:"category"`
	Frequency string   `json:"frequency"`
	Tags      []string `json:"tags"`
}

// OrderbookResponse from GET /markets/{ticker}/orderbook
type OrderbookResponse struct {
	Orderbook APIOrderbook `json:"orderbook"`
}

// APIOrderbook holds resting bids per side as [price_cents, quantity] pairs.
type APIOrderbook struct {
	Yes [][]int `json:"yes"`
	No  [][]int `json:"no"`
}

// CreateOrderRequest is the body of POST /portfolio/orders.
// Optional fields are pointers so absent values are omitted, not sent as null.
type CreateOrderRequest struct {
	ClientOrderID string `json:"client_order_id"`
	Ticker        string `json:"ticker"`
	Action        string `json:"action"`
	Side          string `json:"side"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
	YesPrice      *int   `json:"yes_price,omitempty"`
	NoPrice       *int   `json:"no_price,omitempty"`
	ExpirationTS  *int64 `json:"expiration_ts,omitempty"`
}

// CreateOrderResponse from POST /portfolio/orders
type CreateOrderResponse struct {
	Order APIOrder `json:"order"`
}

// APIOrder is the venue's acknowledgment of an order.
type APIOrder struct {
	OrderID       string `json:"order_id"`
	ClientOrderID string `json:"client_order_id"`
	Ticker        string `json:"ticker"`
	Status        string `json:"status"`
	Action        string `json:"action"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	YesPrice      int    `json:"yes_price"`
	NoPrice       int    `json:"no_price"`
	ExpirationTS  int64  `json:"expiration_ts"`
}

// GetMarketsOptions configures a GetMarkets request.
type GetMarketsOptions struct {
	Limit        int
	Cursor       string
	EventTicker  string
	SeriesTicker string
	Tickers      []string
	Status       string
}

// GetEventsOptions configures a GetEvents request.
type GetEventsOptions struct {
	Limit        int
	Cursor       string
	SeriesTicker string
	Status       string
}
