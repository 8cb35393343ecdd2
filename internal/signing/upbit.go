package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
)

// BuildQueryHash returns the lowercase hex SHA-512 digest of the
// insertion-order query string, the value Upbit's JWT payload carries as
// query_hash for private endpoints that take query parameters.
func BuildQueryHash(query []Param) string {
	sum := sha512.Sum512([]byte(QueryStringInsertionOrder(query)))
	return hex.EncodeToString(sum[:])
}

// upbitClaims is the JWT payload Upbit expects: access_key and a nonce
// always, plus query_hash/query_hash_alg only when the request carries
// query parameters.
type upbitClaims struct {
	AccessKey   string `json:"access_key"`
	Nonce       string `json:"nonce"`
	QueryHash   string `json:"query_hash,omitempty"`
	QueryHashAl string `json:"query_hash_alg,omitempty"`
}

// BuildUpbitJWT constructs and signs an HS256 JWT carrying accessKey,
// nonce, and (if query is non-empty) a SHA-512 query_hash, per Upbit's
// authentication contract. This is a fifth signing scheme, supplemented
// beyond the three schemes named in §4.5 because Upbit's private
// endpoints are JWT-based rather than header-HMAC-based; accepted here
// since the spec's per-exchange signer is explicitly pluggable ("each
// exchange supplies a pure function").
func BuildUpbitJWT(accessKey, secretKey, nonce string, query []Param) (string, error) {
	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", err
	}

	claims := upbitClaims{AccessKey: accessKey, Nonce: nonce}
	if len(query) > 0 {
		claims.QueryHash = BuildQueryHash(query)
		claims.QueryHashAl = "SHA512"
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	signingInput := base64URLEncode(headerJSON) + "." + base64URLEncode(claimsJSON)
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(signingInput))
	signature := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return signingInput + "." + signature, nil
}

func base64URLEncode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

const UpbitHeaderAuthorization = "Authorization"
