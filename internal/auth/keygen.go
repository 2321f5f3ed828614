// Package auth provides token generation and password hashing utilities.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Token format: sk_{stamp}_{secret}
// Example: sk_lx3k9f2a_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
// The stamp is the issuance time in base36 milliseconds; the secret is
// 16 random bytes hex encoded.
const tokenSecretBytes = 16

var (
	// ErrInvalidTokenFormat indicates the token does not match the
	// expected shape.
	ErrInvalidTokenFormat = errors.New("invalid API key token format")

	tokenFormatRegex = regexp.MustCompile(`^sk_[0-9a-z]{1,13}_[a-f0-9]{32}$`)
)

// GenerateToken creates a new opaque API key token. The caller passes the
// result to the issuance endpoint verbatim; the token carries no state of
// its own.
func GenerateToken() (string, error) {
	secret := make([]byte, tokenSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}

	stamp := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return fmt.Sprintf("sk_%s_%s", stamp, hex.EncodeToString(secret)), nil
}

// ValidateTokenFormat checks if a token matches the generated shape.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}
