// Package bitflyer implements the unified session interface against
// bitFlyer's REST API: timestamped method+path+body HMAC-SHA256 signing
// (§4.5 scheme 1) and bitFlyer's {"status", "error_message"} error
// envelope (internal/validators.BitFlyer).
package bitflyer

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

const defaultBaseURL = "https://api.bitflyer.com"

// Client is bitFlyer's typed API surface, returned from Session.API().
type Client struct {
	sender    exaction.Sender
	apiKey    string
	apiSecret string
	baseURL   string
	builder   exaction.Builder
}

// NewSession opens a bitFlyer session signed with apiKey/apiSecret.
func NewSession(apiKey, apiSecret string, cfg exaction.SessionConfig, cbs ...exaction.Callback) (*exaction.Session[*Client], error) {
	return exaction.NewSession("bitflyer", cfg, cbs, nil, apiKey, apiSecret, buildClient)
}

func buildClient(sender exaction.Sender, apiKey, apiSecret string) *Client {
	return &Client{sender: sender, apiKey: apiKey, apiSecret: apiSecret, baseURL: defaultBaseURL, builder: exaction.NewBuilder()}
}

func (c *Client) signedHeaders(method, path string, query, body []signing.Param) *secretheaders.Headers {
	timestamp := strconv.FormatInt(syncutil.TimestampNonce(), 10)
	message := signing.BuildMessageTimestampedPathBody(timestamp, method, path, query, body)
	sig := signing.HMACSHA256Hex(c.apiSecret, message)

	h := secretheaders.New()
	h.Set(signing.BitflyerHeaderAPIKey, c.apiKey)
	h.Set(signing.BitflyerHeaderTimestamp, timestamp)
	h.Set(signing.BitflyerHeaderSignature, sig)
	return h
}

type balanceEntry struct {
	CurrencyCode string         `json:"currency_code"`
	Amount       domain.Decimal `json:"amount"`
	Available    domain.Decimal `json:"available"`
}

// GetBalances fetches account balances via the signed GET
// /v1/me/getbalance endpoint.
func (c *Client) GetBalances(ctx context.Context) ([]domain.Balance, error) {
	const path = "/v1/me/getbalance"
	headers := c.signedHeaders("GET", path, nil, nil)
	req := c.builder.Get(c.baseURL, "", path, nil, headers)
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[[]balanceEntry](exaction.RawPayload{Raw: resp.ResponseBodyText}, nil)
	entries, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("bitflyer", "get_balances", "decode balance response", err)
	}

	balances := make([]domain.Balance, len(entries))
	for i, e := range entries {
		locked := domain.Sub(e.Amount, e.Available)
		balances[i] = domain.Balance{Exchange: "bitflyer", Asset: e.CurrencyCode, Free: e.Available, Locked: locked}
	}
	return balances, nil
}

type tickerSnapshot struct {
	ProductCode     string         `json:"product_code"`
	BestBid         domain.Decimal `json:"best_bid"`
	BestBidSize     domain.Decimal `json:"best_bid_size"`
	BestAsk         domain.Decimal `json:"best_ask"`
	BestAskSize     domain.Decimal `json:"best_ask_size"`
	Ltp             domain.Decimal `json:"ltp"`
	Volume          domain.Decimal `json:"volume"`
	VolumeByProduct domain.Decimal `json:"volume_by_product"`
}

// GetTicker fetches the public ticker for a canonical "BASE/QUOTE" symbol.
func (c *Client) GetTicker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	productCode, err := domain.FormatSymbolForExchange("bitflyer", symbol)
	if err != nil {
		return nil, err
	}

	params := []exaction.KV{{Key: "product_code", Value: productCode}}
	req := c.builder.Get(c.baseURL, "", "/v1/ticker", params, nil)
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[tickerSnapshot](exaction.RawPayload{Raw: resp.ResponseBodyText}, nil)
	t, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("bitflyer", "get_ticker", "decode ticker response", err)
	}

	normalized, err := domain.ParseSymbolFromExchange("bitflyer", t.ProductCode, "")
	if err != nil {
		return nil, err
	}

	return &domain.Ticker{
		Exchange: "bitflyer", Symbol: normalized,
		BidPrice: t.BestBid, BidQuantity: t.BestBidSize,
		AskPrice: t.BestAsk, AskQuantity: t.BestAskSize,
		LastPrice: t.Ltp, Volume: t.VolumeByProduct,
	}, nil
}

type orderAckSnapshot struct {
	ChildOrderAcceptanceID string `json:"child_order_acceptance_id"`
}

// PlaceOrder submits a signed child order via POST
// /v1/me/sendchildorder. bitFlyer's ack carries only an acceptance ID,
// not the full order state (that requires a follow-up getchildorders
// call), so the returned Order reflects only what the ack provides.
func (c *Client) PlaceOrder(ctx context.Context, order *domain.OrderRequest) (*domain.Order, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	productCode, err := domain.FormatSymbolForExchange("bitflyer", order.Symbol)
	if err != nil {
		return nil, err
	}

	const path = "/v1/me/sendchildorder"
	body := []signing.Param{
		{Key: "product_code", Value: productCode},
		{Key: "child_order_type", Value: typeString(order.Type)},
		{Key: "side", Value: string(order.Side)},
		{Key: "size", Value: order.Quantity.String()},
	}
	if order.Type == domain.OrderTypeLimit {
		body = append(body, signing.Param{Key: "price", Value: order.Price.String()})
	}

	headers := c.signedHeaders("POST", path, nil, body)
	kv := make([]exaction.KV, len(body))
	for i, p := range body {
		kv[i] = exaction.KV{Key: p.Key, Value: p.Value}
	}
	req := c.builder.Post(c.baseURL, "", path, kv, headers)
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[orderAckSnapshot](exaction.RawPayload{Raw: resp.ResponseBodyText}, nil)
	ack, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("bitflyer", "place_order", "decode order ack", err)
	}

	return &domain.Order{
		Exchange: "bitflyer", Symbol: order.Symbol, ID: ack.ChildOrderAcceptanceID,
		Side: order.Side, Type: order.Type, Status: domain.OrderStatusNew,
		Price: order.Price, Quantity: order.Quantity,
	}, nil
}

func typeString(t domain.OrderType) string {
	if t == domain.OrderTypeLimit {
		return "LIMIT"
	}
	return "MARKET"
}
