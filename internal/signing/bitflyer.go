package signing

// BuildMessageTimestampedPathBody constructs the "timestamped method +
// path + body" signing message (§4.5 scheme 1), used by bitFlyer and
// GMO Coin:
//
//	message = timestamp + METHOD + path + ("?"+query if query present) + (compact_json(body) if body present)
//
// path must already carry its leading "/" (EndpointRequest.EndpointPath
// guarantees this); stripping it breaks every signed endpoint on these
// exchanges.
func BuildMessageTimestampedPathBody(timestamp, method, path string, query []Param, body []Param) string {
	msg := timestamp + method + path

	if len(query) > 0 {
		msg += "?" + QueryStringInsertionOrder(query)
	}
	if len(body) > 0 {
		msg += CompactJSONInsertionOrder(body)
	}
	return msg
}

// BitflyerHeaders names the request headers bitFlyer-style signing
// attaches, for callers building the final header set.
const (
	BitflyerHeaderAPIKey    = "ACCESS-KEY"
	BitflyerHeaderTimestamp = "ACCESS-TIMESTAMP"
	BitflyerHeaderSignature = "ACCESS-SIGN"
)
