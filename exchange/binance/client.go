// Package binance implements the unified session interface against
// Binance's spot REST API: native sorted-query HMAC-SHA256 signing
// (§4.5 scheme 0), weight-based rate limiting off response headers, and
// Binance's {"code", "msg"} error envelope (internal/validators.Binance).
package binance

import (
	"context"
	"strconv"

	"github.com/solheim-labs/exaction"
	"github.com/solheim-labs/exaction/internal/callbacks"
	"github.com/solheim-labs/exaction/internal/ratelimit"
	"github.com/solheim-labs/exaction/internal/secretheaders"
	"github.com/solheim-labs/exaction/internal/signing"
	syncutil "github.com/solheim-labs/exaction/internal/sync"
	"github.com/solheim-labs/exaction/pkg/domain"
	apierrors "github.com/solheim-labs/exaction/pkg/errors"
)

const defaultBaseURL = "https://api.binance.com"

// weightRules is Binance's published per-endpoint weight table for the
// calls this client makes.
var weightRules = []callbacks.WeightRule{
	{Path: "/api/v3/account", Weight: 10},
	{Path: "/api/v3/ticker/24hr", Weight: 2},
	{Path: "/api/v3/order", Weight: 1},
	{Path: "/api/v3/time", Weight: 1},
}

// Client is Binance's typed API surface, returned from Session.API().
// Holds no connection state of its own beyond the Sender it was built
// with: every call goes back through the owning session's Send.
type Client struct {
	sender    exaction.Sender
	apiKey    string
	apiSecret string
	baseURL   string
	builder   exaction.Builder
	limiter   *ratelimit.WeightedLimiter
}

// NewSession opens a Binance session signed with apiKey/apiSecret. A
// WeightLimiter callback enforcing Binance's per-minute weight budget is
// registered ahead of any caller-supplied callbacks, so it admits or
// blocks a request before response validation runs.
func NewSession(apiKey, apiSecret string, cfg exaction.SessionConfig, cbs ...exaction.Callback) (*exaction.Session[*Client], error) {
	limiter := ratelimit.NewWeightedLimiter(ratelimit.DefaultMaxWeight)
	weightCB := callbacks.NewWeightLimiter("binance", limiter, 1, weightRules, "X-Mbx-Used-Weight-1m", "X-MBX-USED-WEIGHT-1M")
	allCBs := append([]exaction.Callback{weightCB}, cbs...)

	return exaction.NewSession("binance", cfg, allCBs, nil, apiKey, apiSecret, func(sender exaction.Sender, apiKey, apiSecret string) *Client {
		return &Client{
			sender:    sender,
			apiKey:    apiKey,
			apiSecret: apiSecret,
			baseURL:   defaultBaseURL,
			builder:   exaction.NewBuilder(),
			limiter:   limiter,
		}
	})
}

// RateLimitStats reports the weight limiter's current state.
func (c *Client) RateLimitStats() ratelimit.LimiterStats {
	return c.limiter.Stats()
}

// sign appends timestamp and recvWindow to params and returns the full
// set with a trailing signature field, per Binance's sorted-query
// signing scheme (signing.BuildMessageSortedQuery).
func (c *Client) sign(params []signing.Param) []signing.Param {
	ts := strconv.FormatInt(syncutil.TimestampNonce(), 10)
	signed := append(append([]signing.Param{}, params...),
		signing.Param{Key: "timestamp", Value: ts},
		signing.Param{Key: "recvWindow", Value: signing.BinanceDefaultRecvWindow},
	)
	message := signing.BuildMessageSortedQuery(signed)
	sig := signing.HMACSHA256Hex(c.apiSecret, message)
	return append(signed, signing.Param{Key: "signature", Value: sig})
}

func (c *Client) authHeaders() *secretheaders.Headers {
	h := secretheaders.New()
	h.Set(signing.BinanceHeaderAPIKey, c.apiKey)
	return h
}

func toKV(params []signing.Param) []exaction.KV {
	kv := make([]exaction.KV, len(params))
	for i, p := range params {
		kv[i] = exaction.KV{Key: p.Key, Value: p.Value}
	}
	return kv
}

type balanceEntry struct {
	Asset  string         `json:"asset"`
	Free   domain.Decimal `json:"free"`
	Locked domain.Decimal `json:"locked"`
}

type accountSnapshot struct {
	Balances []balanceEntry `json:"balances"`
}

// GetBalances fetches account balances via the signed GET /api/v3/account
// endpoint.
func (c *Client) GetBalances(ctx context.Context) ([]domain.Balance, error) {
	params := c.sign(nil)
	req := c.builder.Get(c.baseURL, "", "/api/v3/account", toKV(params), c.authHeaders())
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[accountSnapshot](exaction.RawPayload{Raw: resp.ResponseBodyText}, nil)
	snapshot, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("binance", "get_balances", "decode account response", err)
	}

	balances := make([]domain.Balance, len(snapshot.Balances))
	for i, b := range snapshot.Balances {
		balances[i] = domain.Balance{Exchange: "binance", Asset: b.Asset, Free: b.Free, Locked: b.Locked}
	}
	return balances, nil
}

type tickerResponse struct {
	Symbol             string         `json:"symbol"`
	BidPrice           domain.Decimal `json:"bidPrice"`
	BidQty             domain.Decimal `json:"bidQty"`
	AskPrice           domain.Decimal `json:"askPrice"`
	AskQty             domain.Decimal `json:"askQty"`
	LastPrice          domain.Decimal `json:"lastPrice"`
	HighPrice          domain.Decimal `json:"highPrice"`
	LowPrice           domain.Decimal `json:"lowPrice"`
	Volume             domain.Decimal `json:"volume"`
	QuoteVolume        domain.Decimal `json:"quoteVolume"`
	PriceChange        domain.Decimal `json:"priceChange"`
	PriceChangePercent domain.Decimal `json:"priceChangePercent"`
	OpenPrice          domain.Decimal `json:"openPrice"`
}

// GetTicker fetches the 24hr ticker for a canonical "BASE/QUOTE" symbol
// (unsigned, public endpoint).
func (c *Client) GetTicker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	_, quote, err := domain.ParseSymbol(symbol)
	if err != nil {
		return nil, err
	}
	wireSymbol, err := domain.FormatSymbolForExchange("binance", symbol)
	if err != nil {
		return nil, err
	}

	params := []exaction.KV{{Key: "symbol", Value: wireSymbol}}
	req := c.builder.Get(c.baseURL, "", "/api/v3/ticker/24hr", params, nil)
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[tickerResponse](exaction.RawPayload{Raw: resp.ResponseBodyText}, nil)
	t, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("binance", "get_ticker", "decode ticker response", err)
	}

	normalized, err := domain.ParseSymbolFromExchange("binance", t.Symbol, quote)
	if err != nil {
		return nil, err
	}

	return &domain.Ticker{
		Exchange: "binance", Symbol: normalized,
		BidPrice: t.BidPrice, BidQuantity: t.BidQty,
		AskPrice: t.AskPrice, AskQuantity: t.AskQty,
		LastPrice: t.LastPrice, HighPrice: t.HighPrice, LowPrice: t.LowPrice,
		Volume: t.Volume, QuoteVolume: t.QuoteVolume,
		PriceChange: t.PriceChange, PriceChangePercent: t.PriceChangePercent,
		OpenPrice: t.OpenPrice,
	}, nil
}

type orderResponse struct {
	OrderID             int64          `json:"orderId"`
	Symbol              string         `json:"symbol"`
	Status              string         `json:"status"`
	Side                string         `json:"side"`
	Type                string         `json:"type"`
	Price               domain.Decimal `json:"price"`
	OrigQty             domain.Decimal `json:"origQty"`
	ExecutedQty         domain.Decimal `json:"executedQty"`
	CummulativeQuoteQty domain.Decimal `json:"cummulativeQuoteQty"`
}

// PlaceOrder submits a signed new-order request.
func (c *Client) PlaceOrder(ctx context.Context, req *domain.OrderRequest) (*domain.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	_, quote, err := domain.ParseSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	wireSymbol, err := domain.FormatSymbolForExchange("binance", req.Symbol)
	if err != nil {
		return nil, err
	}

	params := []signing.Param{
		{Key: "symbol", Value: wireSymbol},
		{Key: "side", Value: string(req.Side)},
		{Key: "type", Value: string(req.Type)},
		{Key: "quantity", Value: req.Quantity.String()},
	}
	if req.Type == domain.OrderTypeLimit {
		params = append(params, signing.Param{Key: "price", Value: req.Price.String()}, signing.Param{Key: "timeInForce", Value: "GTC"})
	}

	signed := c.sign(params)
	httpReq := c.builder.Post(c.baseURL, "", "/api/v3/order", toKV(signed), c.authHeaders())
	resp, err := c.sender.Send(ctx, httpReq)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[orderResponse](exaction.RawPayload{Raw: resp.ResponseBodyText}, nil)
	o, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("binance", "place_order", "decode order response", err)
	}

	normalized, err := domain.ParseSymbolFromExchange("binance", o.Symbol, quote)
	if err != nil {
		return nil, err
	}

	return &domain.Order{
		Exchange: "binance", Symbol: normalized, ID: strconv.FormatInt(o.OrderID, 10),
		Side: domain.OrderSide(o.Side), Type: domain.OrderType(o.Type), Status: domain.OrderStatus(o.Status),
		Price: o.Price, Quantity: o.OrigQty, FilledQuantity: o.ExecutedQty, QuoteQuantity: o.CummulativeQuoteQty,
	}, nil
}

type serverTimeResponse struct {
	ServerTime int64 `json:"serverTime"`
}

// ServerTime fetches Binance's server clock in Unix milliseconds (public,
// unsigned GET /api/v3/time). It satisfies the sync.TimeProvider
// signature, letting callers wire it directly into a ClockSync
// configuration for the clock-drift check described in §4.10.
func (c *Client) ServerTime(ctx context.Context) (int64, error) {
	req := c.builder.Get(c.baseURL, "", "/api/v3/time", nil, nil)
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return 0, err
	}

	msg := exaction.NewMessage[serverTimeResponse](exaction.RawPayload{Raw: resp.ResponseBodyText}, nil)
	t, err := msg.ToDomainModel()
	if err != nil {
		return 0, apierrors.NewExchangeError("binance", "server_time", "decode server time response", err)
	}
	return t.ServerTime, nil
}
