// File: internal/services/user_services/codegen.go
package user_services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeAlphabet deliberately excludes lowercase and ambiguous characters so
// codes survive being read aloud or retyped from an email client. 32 symbols
// over 7 characters gives ~34 billion combinations, far beyond any attempt
// ceiling.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultCodeLength is used when the caller does not override the length.
const DefaultCodeLength = 7

// GenerateConfirmationCode produces a cryptographically random code of the
// given length over the given alphabet. An empty alphabet falls back to the
// default one.
func GenerateConfirmationCode(length int, alphabet string) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", length)
	}
	if alphabet == "" {
		alphabet = codeAlphabet
	}

	// Index runes, not bytes, so multi-byte alphabets stay intact.
	symbols := []rune(alphabet)
	max := big.NewInt(int64(len(symbols)))
	code := make([]rune, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to draw random code character: %w", err)
		}
		code[i] = symbols[n.Int64()]
	}
	return string(code), nil
}
