package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrInvalidLength = errors.New("OTP length must be between 4 and 10")
	ErrMismatch      = errors.New("OTP does not match")
)

const (
	DefaultLength = 6
	MinLength     = 4
	MaxLength     = 10
)

// Generate creates a cryptographically secure numeric OTP of the specified length.
// Length must be between 4 and 10 digits.
func Generate(length int) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", ErrInvalidLength
	}

	// Calculate the maximum value for the given length (e.g., 999999 for 6 digits)
	max := new(big.Int)
	max.Exp(big.NewInt(10), big.NewInt(int64(length)), nil)

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	// Format with leading zeros
	format := fmt.Sprintf("%%0%dd", length)
	return fmt.Sprintf(format, n), nil
}

// GenerateDefault creates a 6-digit OTP.
func GenerateDefault() (string, error) {
	return Generate(DefaultLength)
}

// Hash creates a SHA-256 hash of the OTP code.
// The hash is returned as a hex-encoded string.
func Hash(code string) string {
	code = strings.TrimSpace(code)

	h := sha256.New()
	h.Write([]byte(code))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify compares a plaintext OTP code against a hash.
// Returns nil if they match, ErrMismatch if they don't.
func Verify(hash, code string) error {
	code = strings.TrimSpace(code)

	computedHash := Hash(code)

	// Constant-time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare([]byte(hash), []byte(computedHash)) != 1 {
		return ErrMismatch
	}

	return nil
}

// IsWellFormed reports whether code looks like a numeric OTP of the given
// length. It does not verify the code against anything.
func IsWellFormed(code string, length int) bool {
	code = strings.TrimSpace(code)
	if len(code) != length {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
