package signing

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpbitJWT_NoQueryOmitsQueryHash(t *testing.T) {
	token, err := BuildUpbitJWT("access-key", "secret-key", "nonce-1", nil)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var claims map[string]any
	require.NoError(t, json.Unmarshal(claimsJSON, &claims))

	assert.Equal(t, "access-key", claims["access_key"])
	assert.Equal(t, "nonce-1", claims["nonce"])
	_, hasQueryHash := claims["query_hash"]
	assert.False(t, hasQueryHash)
}

func TestBuildUpbitJWT_WithQuerySetsQueryHash(t *testing.T) {
	query := []Param{{Key: "market", Value: "KRW-BTC"}}
	token, err := BuildUpbitJWT("access-key", "secret-key", "nonce-1", query)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var claims map[string]any
	require.NoError(t, json.Unmarshal(claimsJSON, &claims))

	assert.Equal(t, BuildQueryHash(query), claims["query_hash"])
	assert.Equal(t, "SHA512", claims["query_hash_alg"])
}

func TestBuildUpbitJWT_Deterministic(t *testing.T) {
	a, err := BuildUpbitJWT("k", "s", "n", nil)
	require.NoError(t, err)
	b, err := BuildUpbitJWT("k", "s", "n", nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildQueryHash_IsHexSHA512Length(t *testing.T) {
	hash := BuildQueryHash([]Param{{Key: "market", Value: "KRW-BTC"}})
	assert.Len(t, hash, 128)
}
