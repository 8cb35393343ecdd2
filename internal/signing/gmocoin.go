package signing

// GMO Coin uses the same "timestamped method + path + body" scheme as
// bitFlyer (§4.5 scheme 1); BuildMessageTimestampedPathBody is shared.
// Header names differ.
const (
	GMOCoinHeaderAPIKey    = "API-KEY"
	GMOCoinHeaderTimestamp = "API-TIMESTAMP"
	GMOCoinHeaderSignature = "API-SIGN"
)
