package signing

import (
	"net/url"
)

// BuildMessageSortedQuery constructs Binance's native signing message: the
// URL-encoded query string with keys sorted alphabetically (matching
// net/url.Values.Encode), timestamp and recvWindow folded into the query
// itself rather than concatenated separately. This is the one scheme
// among the six that signs a sorted query string instead of a
// concatenated "timestamp+method+path+..." message — kept as Binance's
// own native scheme rather than forced into the other two shapes.
func BuildMessageSortedQuery(params []Param) string {
	values := url.Values{}
	for _, p := range params {
		values.Set(p.Key, p.Value)
	}
	return values.Encode()
}

const (
	BinanceHeaderAPIKey      = "X-MBX-APIKEY"
	BinanceDefaultRecvWindow = "5000"
)
