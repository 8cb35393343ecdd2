package domain

import (
	"fmt"
	"strings"
)

// Canonical symbols are "BASE/QUOTE" (e.g. "BTC/JPY"). Every exchange's
// client is expected to convert to and from its own wire format at the
// API boundary, so callers write one symbol and domain.Order/Ticker/
// Balance results always come back normalized the same way.

// FormatSymbolForExchange converts a canonical "BASE/QUOTE" symbol into
// the wire format exchangeName expects on the request line:
//
//	binance:           BTCUSDT   (concatenated, no separator)
//	bitbank:           btc_jpy   (lowercase, underscore, base_quote)
//	bitflyer, gmocoin: BTC_JPY   (uppercase, underscore, base_quote)
//	upbit:             KRW-BTC   (uppercase, hyphen, quote-base — reversed)
//	coincheck:         btc_jpy   (only BTC/JPY is tradable)
func FormatSymbolForExchange(exchangeName, symbol string) (string, error) {
	base, quote, err := ParseSymbol(symbol)
	if err != nil {
		return "", err
	}

	switch exchangeName {
	case "binance":
		return base + quote, nil
	case "bitbank", "coincheck":
		return strings.ToLower(base) + "_" + strings.ToLower(quote), nil
	case "bitflyer", "gmocoin":
		return strings.ToUpper(base) + "_" + strings.ToUpper(quote), nil
	case "upbit":
		return strings.ToUpper(quote) + "-" + strings.ToUpper(base), nil
	default:
		return "", fmt.Errorf("domain: unknown exchange %q for symbol formatting", exchangeName)
	}
}

// ParseSymbolFromExchange converts wireSymbol, in exchangeName's own wire
// format, back into canonical "BASE/QUOTE" form. quoteHint supplies the
// quote asset for exchanges whose wire format concatenates base and quote
// without a separator (Binance); it is ignored by every other exchange.
func ParseSymbolFromExchange(exchangeName, wireSymbol, quoteHint string) (string, error) {
	switch exchangeName {
	case "binance":
		upper := strings.ToUpper(wireSymbol)
		hint := strings.ToUpper(quoteHint)
		if hint == "" || !strings.HasSuffix(upper, hint) {
			return NormalizeSymbol(upper), nil
		}
		base := strings.TrimSuffix(upper, hint)
		return FormatSymbol(base, hint), nil
	case "bitbank", "coincheck", "bitflyer", "gmocoin":
		parts := strings.Split(strings.ToUpper(wireSymbol), "_")
		if len(parts) != 2 {
			return "", fmt.Errorf("domain: malformed %s symbol %q", exchangeName, wireSymbol)
		}
		return FormatSymbol(parts[0], parts[1]), nil
	case "upbit":
		parts := strings.Split(strings.ToUpper(wireSymbol), "-")
		if len(parts) != 2 {
			return "", fmt.Errorf("domain: malformed upbit symbol %q", wireSymbol)
		}
		// upbit orders quote-base; canonical form is base/quote.
		return FormatSymbol(parts[1], parts[0]), nil
	default:
		return "", fmt.Errorf("domain: unknown exchange %q for symbol parsing", exchangeName)
	}
}

// NormalizeSymbol upper-cases a symbol already in "BASE/QUOTE" form, or
// attempts to split a bare concatenated symbol (e.g. "BTCUSDT") against a
// short list of common quote assets when no separator is present.
func NormalizeSymbol(symbol string) string {
	if strings.Contains(symbol, "/") {
		return strings.ToUpper(symbol)
	}

	upper := strings.ToUpper(symbol)
	for _, quote := range []string{"USDT", "USDC", "BUSD", "JPY", "KRW", "BTC", "ETH"} {
		if base, ok := strings.CutSuffix(upper, quote); ok && base != "" {
			return base + "/" + quote
		}
	}
	return upper
}

// ParseSymbol splits a canonical "BASE/QUOTE" symbol into its two assets.
func ParseSymbol(symbol string) (base, quote string, err error) {
	parts := strings.Split(symbol, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("domain: invalid symbol format %q, expected BASE/QUOTE", symbol)
	}
	return strings.ToUpper(parts[0]), strings.ToUpper(parts[1]), nil
}

// FormatSymbol joins base and quote into canonical "BASE/QUOTE" form.
func FormatSymbol(base, quote string) string {
	return strings.ToUpper(base) + "/" + strings.ToUpper(quote)
}
