// Package auth provides API key generation and caller context helpers.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
)

// Generated key format: ak_{prefix}_{secret}
// Example: ak_7a9x3k_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
//
// The key is the caller's credential and is returned by the profile
// view, so it is stored as issued. An administrator may overwrite it
// with an arbitrary string; authentication looks keys up verbatim and
// never enforces this format on presented credentials.
const (
	KeyPrefixLen = 6  // Visible prefix length (hex encoded 3 bytes)
	KeySecretLen = 32 // Secret length (hex encoded 16 bytes)
)

var keyFormatRegex = regexp.MustCompile(`^ak_[a-f0-9]{6}_[a-f0-9]{32}$`)

// GenerateAPIKey creates a new opaque API key.
func GenerateAPIKey() (string, error) {
	prefixBytes := make([]byte, 3)
	if _, err := rand.Read(prefixBytes); err != nil {
		return "", fmt.Errorf("generate prefix: %w", err)
	}

	secretBytes := make([]byte, 16)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}

	return fmt.Sprintf("ak_%s_%s",
		hex.EncodeToString(prefixBytes),
		hex.EncodeToString(secretBytes),
	), nil
}

// ValidateKeyFormat checks if the key matches the generated format.
func ValidateKeyFormat(key string) bool {
	return keyFormatRegex.MatchString(key)
}

// QuickHash returns a SHA256 hash of the input for cache keys.
// This is NOT for credential storage, only for cache key derivation.
func QuickHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16]) // Use first 16 bytes (32 hex chars)
}
