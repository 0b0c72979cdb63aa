package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"session token", TokenSize256},
		{"custom size", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEmpty(t, token)
			require.NotContains(t, token, "=")

			// Verify token is unique (generate another and compare)
			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"zero size", 0},
		{"negative size", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.Error(t, err)
			require.Empty(t, token)
		})
	}
}

func TestSecretDigest(t *testing.T) {
	key, err := NewDigestKey()
	require.NoError(t, err)
	require.Len(t, key, DigestKeySize)

	a1, err := SecretDigest(key, "hunter2")
	require.NoError(t, err)
	a2, err := SecretDigest(key, "hunter2")
	require.NoError(t, err)
	b, err := SecretDigest(key, "hunter3")
	require.NoError(t, err)

	require.Len(t, a1, 32)
	require.True(t, DigestEqual(a1, a2), "digest should be deterministic for a key")
	require.False(t, DigestEqual(a1, b), "different secrets should differ")

	otherKey, err := NewDigestKey()
	require.NoError(t, err)
	c, err := SecretDigest(otherKey, "hunter2")
	require.NoError(t, err)
	require.False(t, DigestEqual(a1, c), "digest should depend on the key")
}

func TestSecretDigest_KeyTooLong(t *testing.T) {
	_, err := SecretDigest(make([]byte, 65), "x")
	require.Error(t, err)
}

func TestGenerateToken_EntropyQuality(t *testing.T) {
	// Generate multiple tokens and ensure they're all different
	const count = 100
	tokens := make(map[string]bool, count)

	for range count {
		token, err := GenerateToken(TokenSize256)
		require.NoError(t, err)
		require.NotContains(t, tokens, token, "duplicate token generated")
		tokens[token] = true
	}
}
