package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNonceGenerator_GenerateIsUnique(t *testing.T) {
	ng := NewNonceGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		n := ng.Generate()
		assert.False(t, seen[n], "duplicate nonce generated: %s", n)
		seen[n] = true
	}
}

func TestNonceGenerator_GenerateInt64IsMonotonicWithinSameMillisecond(t *testing.T) {
	ng := NewNonceGenerator()
	a := ng.GenerateInt64()
	b := ng.GenerateInt64()
	assert.Less(t, a, b)
}

func TestNonceGenerator_GenerateInt64IsUnique(t *testing.T) {
	ng := NewNonceGenerator()
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		n := ng.GenerateInt64()
		assert.False(t, seen[n])
		seen[n] = true
	}
}

func TestTimestampNonce_ReturnsPositiveMilliseconds(t *testing.T) {
	assert.Greater(t, TimestampNonce(), int64(0))
}
