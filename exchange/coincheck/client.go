// Package coincheck implements the unified session interface against
// Coincheck's REST API: URL-scoped HMAC-SHA256 signing (§4.5 scheme 3)
// and Coincheck's {"success", "error"} error envelope
// (internal/validators.Coincheck).
package coincheck

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

const defaultBaseURL = "https://coincheck.com"

// Client is Coincheck's typed API surface, returned from Session.API().
type Client struct {
	sender    exaction.Sender
	apiKey    string
	apiSecret string
	baseURL   string
	builder   exaction.Builder
	nonce     *syncutil.NonceGenerator
}

// NewSession opens a Coincheck session signed with apiKey/apiSecret.
func NewSession(apiKey, apiSecret string, cfg exaction.SessionConfig, cbs ...exaction.Callback) (*exaction.Session[*Client], error) {
	return exaction.NewSession("coincheck", cfg, cbs, nil, apiKey, apiSecret, buildClient)
}

func buildClient(sender exaction.Sender, apiKey, apiSecret string) *Client {
	return &Client{
		sender: sender, apiKey: apiKey, apiSecret: apiSecret,
		baseURL: defaultBaseURL, builder: exaction.NewBuilder(),
		nonce: syncutil.NewNonceGenerator(),
	}
}

// signedHeaders signs nonce+fullURL+bodyJSON, per Coincheck's
// URL-scoped scheme. bodyJSON is "" for GET requests.
func (c *Client) signedHeaders(fullURL, bodyJSON string) *secretheaders.Headers {
	nonce := strconv.FormatInt(c.nonce.GenerateInt64(), 10)
	message := signing.BuildMessageURLScoped(nonce, fullURL, bodyJSON)
	sig := signing.HMACSHA256Hex(c.apiSecret, message)

	h := secretheaders.New()
	h.Set(signing.CoincheckHeaderAPIKey, c.apiKey)
	h.Set(signing.CoincheckHeaderNonce, nonce)
	h.Set(signing.CoincheckHeaderSignature, sig)
	return h
}

type balanceSnapshot map[string]string

// GetBalances fetches account balances via the signed GET
// /api/accounts/balance endpoint. Coincheck's balance response is a flat
// object keyed by currency code plus a "_reserved" suffix per currency
// for locked amounts, rather than an array of entries.
func (c *Client) GetBalances(ctx context.Context) ([]domain.Balance, error) {
	const path = "/api/accounts/balance"
	req := c.builder.Get(c.baseURL, "", path, nil, nil)
	headers := c.signedHeaders(req.APIEndpoint(), "")
	req = c.builder.Get(c.baseURL, "", path, nil, headers)

	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[balanceSnapshot](exaction.RawPayload{Raw: resp.ResponseBodyText}, nil)
	snapshot, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("coincheck", "get_balances", "decode balance response", err)
	}

	var balances []domain.Balance
	for asset, amount := range snapshot {
		if asset == "success" || hasSuffix(asset, "_reserved") || hasSuffix(asset, "_lending_leveraged") {
			continue
		}
		free, err := domain.NewDecimal(amount)
		if err != nil {
			continue
		}
		locked := domain.Zero()
		if reserved, ok := snapshot[asset+"_reserved"]; ok {
			if d, err := domain.NewDecimal(reserved); err == nil {
				locked = d
			}
		}
		balances = append(balances, domain.Balance{Exchange: "coincheck", Asset: asset, Free: free, Locked: locked})
	}
	return balances, nil
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

type tickerSnapshot struct {
	Last   domain.Decimal `json:"last"`
	Bid    domain.Decimal `json:"bid"`
	Ask    domain.Decimal `json:"ask"`
	High   domain.Decimal `json:"high"`
	Low    domain.Decimal `json:"low"`
	Volume domain.Decimal `json:"volume"`
}

// GetTicker fetches the public ticker (Coincheck exposes only a single,
// pair-less BTC/JPY ticker endpoint).
func (c *Client) GetTicker(ctx context.Context) (*domain.Ticker, error) {
	req := c.builder.Get(c.baseURL, "", "/api/ticker", nil, nil)
	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[tickerSnapshot](exaction.RawPayload{Raw: resp.ResponseBodyText}, nil)
	t, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("coincheck", "get_ticker", "decode ticker response", err)
	}

	return &domain.Ticker{
		Exchange: "coincheck", Symbol: "BTC/JPY",
		BidPrice: t.Bid, AskPrice: t.Ask, LastPrice: t.Last,
		HighPrice: t.High, LowPrice: t.Low, Volume: t.Volume,
	}, nil
}

type orderResponse struct {
	ID        int64          `json:"id"`
	Rate      domain.Decimal `json:"rate"`
	Amount    domain.Decimal `json:"amount"`
	OrderType string         `json:"order_type"`
	Pair      string         `json:"pair"`
}

// PlaceOrder submits a signed new-order request to POST
// /api/exchange/orders.
func (c *Client) PlaceOrder(ctx context.Context, order *domain.OrderRequest) (*domain.Order, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	pair, err := domain.FormatSymbolForExchange("coincheck", order.Symbol)
	if err != nil {
		return nil, err
	}

	body := []exaction.KV{
		{Key: "pair", Value: pair},
		{Key: "order_type", Value: orderTypeString(order)},
		{Key: "amount", Value: order.Quantity.String()},
	}
	if order.Type == domain.OrderTypeLimit {
		body = append(body, exaction.KV{Key: "rate", Value: order.Price.String()})
	}

	const path = "/api/exchange/orders"
	req := c.builder.Post(c.baseURL, "", path, body, nil)
	bodyJSON := req.BodyJSON()
	headers := c.signedHeaders(req.APIEndpoint(), bodyJSON)
	req = c.builder.Post(c.baseURL, "", path, body, headers)

	resp, err := c.sender.Send(ctx, req)
	if err != nil {
		return nil, err
	}

	msg := exaction.NewMessage[orderResponse](exaction.RawPayload{Raw: resp.ResponseBodyText}, nil)
	o, err := msg.ToDomainModel()
	if err != nil {
		return nil, apierrors.NewExchangeError("coincheck", "place_order", "decode order response", err)
	}

	normalized, err := domain.ParseSymbolFromExchange("coincheck", o.Pair, "")
	if err != nil {
		return nil, err
	}

	return &domain.Order{
		Exchange: "coincheck", Symbol: normalized, ID: strconv.FormatInt(o.ID, 10),
		Side: order.Side, Type: order.Type, Status: domain.OrderStatusNew,
		Price: o.Rate, Quantity: o.Amount,
	}, nil
}

func orderTypeString(order *domain.OrderRequest) string {
	side := "buy"
	if order.Side == domain.OrderSideSell {
		side = "sell"
	}
	if order.Type == domain.OrderTypeMarket {
		return "market_" + side
	}
	return side
}
