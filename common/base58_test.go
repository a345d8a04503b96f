package common

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	pub := key.PublicKey()

	got, err := ParseAddress(pub.String())
	require.NoError(t, err)
	assert.Equal(t, pub, got)

	_, err = ParseAddress(EncodeBytesToBase58([]byte{1, 2, 3}))
	assert.Error(t, err)

	_, err = ParseAddress("0OIl")
	assert.Error(t, err)
}

func TestShortenAddress(t *testing.T) {
	assert.Equal(t, "abcd...wxyz", ShortenAddress("abcdefghijklmnopqrstuvwxyz", 4))
	assert.Equal(t, "short", ShortenAddress("short", 4))
	assert.False(t, IsValidBase58(""))
}
