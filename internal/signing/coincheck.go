package signing

// BuildMessageURLScoped constructs the "URL-scoped" signing message
// (§4.5 scheme 3), used by Coincheck:
//
//	message = nonce + fullURL + body
//
// Unlike the other two schemes, the full URL (not just the path) is part
// of the signed data, so query params must already be encoded into
// fullURL by the caller before this is invoked.
func BuildMessageURLScoped(nonce, fullURL, bodyJSON string) string {
	return nonce + fullURL + bodyJSON
}

const (
	CoincheckHeaderAPIKey    = "ACCESS-KEY"
	CoincheckHeaderNonce     = "ACCESS-NONCE"
	CoincheckHeaderSignature = "ACCESS-SIGNATURE"
)
