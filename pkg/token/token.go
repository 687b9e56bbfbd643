package token

import (
	"crypto/rand"
	"fmt"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// CodeLength is the length used for order codes and payment correlation tokens.
const CodeLength = 10

// New returns a URL-safe random string of length n.
func New(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token length must be positive")
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	for i, b := range buf {
		// 64-char alphabet, so masking keeps the distribution uniform.
		buf[i] = alphabet[b&63]
	}
	return string(buf), nil
}

// NewCode returns a fresh order-code/correlation token.
func NewCode() (string, error) {
	return New(CodeLength)
}
