package common

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// EncodeBytesToBase58 encodes bytes directly to base58
func EncodeBytesToBase58(bytes []byte) string {
	return base58.Encode(bytes)
}

// DecodeBase58ToBytes decodes base58 string to bytes
func DecodeBase58ToBytes(base58Str string) ([]byte, error) {
	bytes, err := base58.Decode(base58Str)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base58 string: %w", err)
	}
	return bytes, nil
}

// IsValidBase58 checks if a string is valid base58
func IsValidBase58(str string) bool {
	decoded, err := base58.Decode(str)
	return err == nil && len(decoded) > 0
}

// ParseAddress decodes a base58 address and checks it is exactly 32 bytes.
func ParseAddress(str string) (solana.PublicKey, error) {
	b, err := DecodeBase58ToBytes(str)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if len(b) != solana.PublicKeyLength {
		return solana.PublicKey{}, fmt.Errorf("address %q decodes to %d bytes, want %d", str, len(b), solana.PublicKeyLength)
	}
	return solana.PublicKeyFromBytes(b), nil
}

// ShortenAddress keeps the first and last n characters for log lines.
func ShortenAddress(str string, n int) string {
	if n <= 0 || len(str) <= 2*n+3 {
		return str
	}
	return str[:n] + "..." + str[len(str)-n:]
}
