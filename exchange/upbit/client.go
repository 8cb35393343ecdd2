// Package upbit implements the unified session interface against
// Upbit's REST API: JWT-based authentication (§4.5's supplemented fifth
// scheme — Upbit signs a bearer token, not a header HMAC) and Upbit's
// {"error":{"name","message"}} envelope (internal/validators.Upbit).
package upbit

import (
	"context"

	"github.com/solheim-labs/exaction"
	"github.com/solheim-labs/exaction/internal/secretheaders"
	"github.com/solheim-labs/exaction/internal/signing"
	syncutil "github.com/solheim-labs/exaction/internal/sync"
	"github.com/solheim-labs/exaction/pkg/domain"
	apierrors "github.com/solheim-labs/exaction/pkg/errors"
)

const defaultBaseURL = "https://api.upbit.com"

// Client is Upbit's typed API surface, returned from Session.API().
type Client struct {
	sender    exaction.Sender
	apiKey    string
	apiSecret string
	baseURL   string
	builder   exaction.Builder
	nonce     *syncutil.NonceGenerator
}

// NewSession opens an Upbit session signed with apiKey/apiSecret.
func NewSession(apiKey, apiSecret string, cfg exaction.SessionConfig, cbs ...exaction.Callback) (*exaction.Session[*Client], error) {
	return exaction.NewSession("upbit", cfg, cbs, nil, apiKey, apiSecret, buildClient)
}

func buildClient(sender exaction.Sender, apiKey, apiSecret string) *Client {
	return &Client{
		sender: sender, apiKey: apiKey, apiSecret: apiSecret,
		baseURL: defaultBaseURL, builder: exaction.NewBuilder(),
		nonce: syncutil.NewNonceGenerator(),
	}
}

// authHeaders builds the Authorization: Bearer <jwt> header set for a
// request carrying query params (nil for a query-less request).
func (c *Client) authHeaders(query []signing.Param) (*secretheaders.Headers, error) {
	jwt, err := signing.BuildUpbitJWT(c.apiKey, c.apiSecret, c.nonce.Generate(), query)
	if err != nil {
		return nil, apierrors.NewSignatureError("upbit", "build_jwt", err.Error())
	}
	h := secretheaders.New()
	h.Set(signing.UpbitHeaderAuthorization, "Bearer "+jwt)
	return h, nil
}

type accountEntry struct {
	Currency string         `json:"currency"`
	Balance  domain.Decimal `json:"balance"`
	Locked   domain.Decimal `json:"locked"`
}

// GetBalances fetches account balances via the signed GET /v1/accounts
// endpoint.
func (c *Client) GetBalances(ctx context.Context) ([]domain.Balance, error) {
	headers, err := c.authHeaders(nil)
	if err != nil {
		return nil, err
	}
	req := c.builder.Get(c.baseURL, "", "/v1/accounts", nil, headers)
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[[]accountEntry](exaction.RawPayload{Raw: resp.ResponseBodyText}, nil)
	entries, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("upbit", "get_balances", "decode accounts response", err)
	}

	balances := make([]domain.Balance, len(entries))
	for i, e := range entries {
		balances[i] = domain.Balance{Exchange: "upbit", Asset: e.Currency, Free: e.Balance, Locked: e.Locked}
	}
	return balances, nil
}

type tickerEntry struct {
	Market            string         `json:"market"`
	TradePrice        domain.Decimal `json:"trade_price"`
	HighPrice         domain.Decimal `json:"high_price"`
	LowPrice          domain.Decimal `json:"low_price"`
	OpeningPrice      domain.Decimal `json:"opening_price"`
	AccTradeVolume    domain.Decimal `json:"acc_trade_volume_24h"`
	SignedChangePrice domain.Decimal `json:"signed_change_price"`
	SignedChangeRate  domain.Decimal `json:"signed_change_rate"`
}

// GetTicker fetches the public ticker for a canonical "BASE/QUOTE" symbol
// (e.g. "BTC/KRW"), unsigned. Upbit's wire format reverses and hyphenates
// the pair ("KRW-BTC").
func (c *Client) GetTicker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	market, err := domain.FormatSymbolForExchange("upbit", symbol)
	if err != nil {
		return nil, err
	}

	params := []exaction.KV{{Key: "markets", Value: market}}
	req := c.builder.Get(c.baseURL, "", "/v1/ticker", params, nil)
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[[]tickerEntry](exaction.RawPayload{Raw: resp.ResponseBodyText}, nil)
	entries, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("upbit", "get_ticker", "decode ticker response", err)
	}
	if len(entries) == 0 {
		return nil, apierrors.NewNotFoundError("ticker", market)
	}
	t := entries[0]

	normalized, err := domain.ParseSymbolFromExchange("upbit", t.Market, "")
	if err != nil {
		return nil, err
	}

	return &domain.Ticker{
		Exchange: "upbit", Symbol: normalized,
		LastPrice: t.TradePrice, HighPrice: t.HighPrice, LowPrice: t.LowPrice, OpenPrice: t.OpeningPrice,
		Volume: t.AccTradeVolume, PriceChange: t.SignedChangePrice, PriceChangePercent: t.SignedChangeRate,
	}, nil
}

type orderResponse struct {
	UUID           string         `json:"uuid"`
	Market         string         `json:"market"`
	Side           string         `json:"side"`
	OrdType        string         `json:"ord_type"`
	Price          domain.Decimal `json:"price"`
	State          string         `json:"state"`
	Volume         domain.Decimal `json:"volume"`
	ExecutedVolume domain.Decimal `json:"executed_volume"`
}

// PlaceOrder submits a signed new-order request to POST /v1/orders.
// Upbit's JWT for a POST with a body signs over the body's own
// query_hash (the body serialized as if it were a query string), same
// as authHeaders' query-hash path.
func (c *Client) PlaceOrder(ctx context.Context, order *domain.OrderRequest) (*domain.Order, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	market, err := domain.FormatSymbolForExchange("upbit", order.Symbol)
	if err != nil {
		return nil, err
	}

	bodyParams := []signing.Param{
		{Key: "market", Value: market},
		{Key: "side", Value: sideString(order.Side)},
		{Key: "ord_type", Value: ordTypeString(order.Type)},
		{Key: "volume", Value: order.Quantity.String()},
	}
	if order.Type == domain.OrderTypeLimit {
		bodyParams = append(bodyParams, signing.Param{Key: "price", Value: order.Price.String()})
	}

	headers, err := c.authHeaders(bodyParams)
	if err != nil {
		return nil, err
	}
	kv := make([]exaction.KV, len(bodyParams))
	for i, p := range bodyParams {
		kv[i] = exaction.KV{Key: p.Key, Value: p.Value}
	}
	req := c.builder.Post(c.baseURL, "", "/v1/orders", kv, headers)
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[orderResponse](exaction.RawPayload{Raw: resp.ResponseBodyText}, nil)
	o, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("upbit", "place_order", "decode order response", err)
	}

	normalized, err := domain.ParseSymbolFromExchange("upbit", o.Market, "")
	if err != nil {
		return nil, err
	}

	return &domain.Order{
		Exchange: "upbit", Symbol: normalized, ID: o.UUID,
		Side: order.Side, Type: order.Type, Status: mapState(o.State),
		Price: o.Price, Quantity: o.Volume, FilledQuantity: o.ExecutedVolume,
	}, nil
}

func sideString(s domain.OrderSide) string {
	if s == domain.OrderSideBuy {
		return "bid"
	}
	return "ask"
}

func ordTypeString(t domain.OrderType) string {
	if t == domain.OrderTypeLimit {
		return "limit"
	}
	return "market"
}

func mapState(state string) domain.OrderStatus {
	switch state {
	case "done":
		return domain.OrderStatusFilled
	case "cancel":
		return domain.OrderStatusCanceled
	default:
		return domain.OrderStatusNew
	}
}
