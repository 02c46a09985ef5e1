// File: internal/services/user_services/hasher.go
package user_services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// SecretHasher is the one-way hashing primitive a SecretLock is built on.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Compare(secret, hash string) (bool, error)
}

// BcryptHasher hashes long-lived secrets (account passwords) with bcrypt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher creates a bcrypt hasher; cost <= 0 uses the library default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

func (h *BcryptHasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(secret, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("failed to compare secret: %w", err)
	}
	return true, nil
}

// CodeHasher hashes short-lived confirmation codes with salted SHA-256 and a
// constant-time comparison. Codes are single-use and gated by the lock's
// attempt ceiling, so the bcrypt work factor is unnecessary here.
type CodeHasher struct{}

func NewCodeHasher() *CodeHasher {
	return &CodeHasher{}
}

func (h *CodeHasher) Hash(secret string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	sum := sha256.Sum256(append(salt, []byte(secret)...))
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(sum[:]), nil
}

func (h *CodeHasher) Compare(secret, hash string) (bool, error) {
	parts := strings.SplitN(hash, "$", 2)
	if len(parts) != 2 {
		return false, errors.New("malformed code hash")
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return false, errors.New("malformed code hash salt")
	}
	want, err := hex.DecodeString(parts[1])
	if err != nil {
		return false, errors.New("malformed code hash digest")
	}
	sum := sha256.Sum256(append(salt, []byte(secret)...))
	return subtle.ConstantTimeCompare(sum[:], want) == 1, nil
}
