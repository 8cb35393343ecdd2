// Package bitbank implements the unified session interface against
// bitbank's REST API: window-bounded HMAC-SHA256 signing (§4.5 scheme 2)
// and bitbank's {"success", "data":{"code"}} error envelope
// (internal/validators.Bitbank).
package bitbank

import (
	"context"
	"strconv"

	"github.com/solheim-labs/exaction"
	"github.com/solheim-labs/exaction/internal/secretheaders"
	"github.com/solheim-labs/exaction/internal/signing"
	syncutil "github.com/solheim-labs/exaction/internal/sync"
	"github.com/solheim-labs/exaction/pkg/domain"
	apierrors "github.com/solheim-labs/exaction/pkg/errors"
)

const (
	privateBaseURL = "https://api.bitbank.cc"
	publicBaseURL  = "https://public.bitbank.cc"
)

// Client is bitbank's typed API surface, returned from Session.API().
// bitbank splits private (signed) and public (unsigned) traffic across
// two hosts; both go through the same Sender.
type Client struct {
	sender    exaction.Sender
	apiKey    string
	apiSecret string
	builder   exaction.Builder
}

// NewSession opens a bitbank session signed with apiKey/apiSecret.
func NewSession(apiKey, apiSecret string, cfg exaction.SessionConfig, cbs ...exaction.Callback) (*exaction.Session[*Client], error) {
	return exaction.NewSession("bitbank", cfg, cbs, nil, apiKey, apiSecret, buildClient)
}

func buildClient(sender exaction.Sender, apiKey, apiSecret string) *Client {
	return &Client{sender: sender, apiKey: apiKey, apiSecret: apiSecret, builder: exaction.NewBuilder()}
}

// signedHeaders builds the ACCESS-* header set for a GET request against
// path, signing requestTime+timeWindow+path+compact_json(query).
func (c *Client) signedHeaders(path string, query []signing.Param) *secretheaders.Headers {
	requestTime := strconv.FormatInt(syncutil.TimestampNonce(), 10)
	message := signing.BuildMessageWindowBounded(requestTime, signing.BitbankDefaultTimeWindowMs, path, true, query, nil)
	sig := signing.HMACSHA256Hex(c.apiSecret, message)

	h := secretheaders.New()
	h.Set(signing.BitbankHeaderAPIKey, c.apiKey)
	h.Set(signing.BitbankHeaderRequestTime, requestTime)
	h.Set(signing.BitbankHeaderTimeWindow, signing.BitbankDefaultTimeWindowMs)
	h.Set(signing.BitbankHeaderSignature, sig)
	return h
}

// signedPostHeaders builds the ACCESS-* header set for a POST request,
// signing requestTime+timeWindow+path+compact_json(body).
func (c *Client) signedPostHeaders(path string, body []signing.Param) *secretheaders.Headers {
	requestTime := strconv.FormatInt(syncutil.TimestampNonce(), 10)
	message := signing.BuildMessageWindowBounded(requestTime, signing.BitbankDefaultTimeWindowMs, path, false, nil, body)
	sig := signing.HMACSHA256Hex(c.apiSecret, message)

	h := secretheaders.New()
	h.Set(signing.BitbankHeaderAPIKey, c.apiKey)
	h.Set(signing.BitbankHeaderRequestTime, requestTime)
	h.Set(signing.BitbankHeaderTimeWindow, signing.BitbankDefaultTimeWindowMs)
	h.Set(signing.BitbankHeaderSignature, sig)
	return h
}

type assetEntry struct {
	Asset        string         `json:"asset"`
	FreeAmount   domain.Decimal `json:"free_amount"`
	LockedAmount domain.Decimal `json:"locked_amount"`
}

type assetsSnapshot struct {
	Assets []assetEntry `json:"assets"`
}

// GetBalances fetches account assets via the signed GET /v1/user/assets
// endpoint.
func (c *Client) GetBalances(ctx context.Context) ([]domain.Balance, error) {
	const path = "/v1/user/assets"
	headers := c.signedHeaders(path, nil)
	req := c.builder.Get(privateBaseURL, "", path, nil, headers)
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[assetsSnapshot](exaction.FieldPayload{Raw: resp.ResponseBodyText, Field: "data"}, nil)
	snapshot, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("bitbank", "get_balances", "decode assets response", err)
	}

	balances := make([]domain.Balance, len(snapshot.Assets))
	for i, a := range snapshot.Assets {
		balances[i] = domain.Balance{Exchange: "bitbank", Asset: a.Asset, Free: a.FreeAmount, Locked: a.LockedAmount}
	}
	return balances, nil
}

type tickerSnapshot struct {
	Sell domain.Decimal `json:"sell"`
	Buy  domain.Decimal `json:"buy"`
	High domain.Decimal `json:"high"`
	Low  domain.Decimal `json:"low"`
	Last domain.Decimal `json:"last"`
	Vol  domain.Decimal `json:"vol"`
}

// GetTicker fetches the public ticker for a canonical "BASE/QUOTE" symbol
// from bitbank's unauthenticated public host.
func (c *Client) GetTicker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	pair, err := domain.FormatSymbolForExchange("bitbank", symbol)
	if err != nil {
		return nil, err
	}

	req := c.builder.Get(publicBaseURL, "", "/"+pair+"/ticker", nil, nil)
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[tickerSnapshot](exaction.FieldPayload{Raw: resp.ResponseBodyText, Field: "data"}, nil)
	t, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("bitbank", "get_ticker", "decode ticker response", err)
	}

	return &domain.Ticker{
		Exchange: "bitbank", Symbol: symbol,
		BidPrice: t.Buy, AskPrice: t.Sell, LastPrice: t.Last,
		HighPrice: t.High, LowPrice: t.Low, Volume: t.Vol,
	}, nil
}

type orderSnapshot struct {
	OrderID         int64          `json:"order_id"`
	Pair            string         `json:"pair"`
	Side            string         `json:"side"`
	Type            string         `json:"type"`
	Status          string         `json:"status"`
	Price           domain.Decimal `json:"price"`
	StartAmount     domain.Decimal `json:"start_amount"`
	RemainingAmount domain.Decimal `json:"remaining_amount"`
	ExecutedAmount  domain.Decimal `json:"executed_amount"`
}

// PlaceOrder submits a signed new-order request to POST /v1/user/spot/order.
func (c *Client) PlaceOrder(ctx context.Context, order *domain.OrderRequest) (*domain.Order, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	pair, err := domain.FormatSymbolForExchange("bitbank", order.Symbol)
	if err != nil {
		return nil, err
	}

	const path = "/v1/user/spot/order"
	body := []signing.Param{
		{Key: "pair", Value: pair},
		{Key: "amount", Value: order.Quantity.String()},
		{Key: "side", Value: sideString(order.Side)},
		{Key: "type", Value: typeString(order.Type)},
	}
	if order.Type == domain.OrderTypeLimit {
		body = append(body, signing.Param{Key: "price", Value: order.Price.String()})
	}

	headers := c.signedPostHeaders(path, body)
	kv := make([]exaction.KV, len(body))
	for i, p := range body {
		kv[i] = exaction.KV{Key: p.Key, Value: p.Value}
	}
	req := c.builder.Post(privateBaseURL, "", path, kv, headers)
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[orderSnapshot](exaction.FieldPayload{Raw: resp.ResponseBodyText, Field: "data"}, nil)
	o, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("bitbank", "place_order", "decode order response", err)
	}

	normalized, err := domain.ParseSymbolFromExchange("bitbank", o.Pair, "")
	if err != nil {
		return nil, err
	}

	return &domain.Order{
		Exchange: "bitbank", Symbol: normalized, ID: strconv.FormatInt(o.OrderID, 10),
		Side: domain.OrderSide(upper(o.Side)), Type: domain.OrderType(upper(o.Type)), Status: domain.OrderStatus(upper(o.Status)),
		Price: o.Price, Quantity: o.StartAmount, FilledQuantity: o.ExecutedAmount,
	}, nil
}

func sideString(s domain.OrderSide) string {
	if s == domain.OrderSideBuy {
		return "buy"
	}
	return "sell"
}

func typeString(t domain.OrderType) string {
	if t == domain.OrderTypeLimit {
		return "limit"
	}
	return "market"
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
