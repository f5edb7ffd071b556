package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Token format: rr_{prefix}_{secret}
// Example: rr_7a9x3k_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
// The prefix is logged for traceability; the secret never is.
const (
	TokenPrefixLen = 6  // Visible prefix length (hex encoded 3 bytes)
	TokenSecretLen = 32 // Secret length (hex encoded 16 bytes)
)

var (
	// ErrInvalidTokenFormat indicates the session token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid session token format")
	// tokenFormatRegex validates the token format.
	tokenFormatRegex = regexp.MustCompile(`^rr_([a-f0-9]{6})_([a-f0-9]{32})$`)
)

// GeneratedToken contains the parts of a newly issued session token.
type GeneratedToken struct {
	Plaintext string // Full token (returned to the client once)
	Digest    string // SHA256 digest used as the session store key
	Prefix    string // 6-char visible prefix, safe to log
}

// GenerateToken creates a new opaque session token.
func GenerateToken() (*GeneratedToken, error) {
	// Generate 3-byte prefix (6 hex chars)
	prefixBytes := make([]byte, 3)
	if _, err := rand.Read(prefixBytes); err != nil {
		return nil, fmt.Errorf("generate prefix: %w", err)
	}
	prefix := hex.EncodeToString(prefixBytes)

	// Generate 16-byte secret (32 hex chars)
	secretBytes := make([]byte, 16)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	secret := hex.EncodeToString(secretBytes)

	plaintext := fmt.Sprintf("rr_%s_%s", prefix, secret)

	return &GeneratedToken{
		Plaintext: plaintext,
		Digest:    TokenDigest(plaintext),
		Prefix:    prefix,
	}, nil
}

// ParsedToken contains the parsed parts of a session token.
type ParsedToken struct {
	Prefix string
	Secret string
}

// ParseToken extracts the components from a plaintext session token.
// Returns an error if the format is invalid.
func ParseToken(token string) (*ParsedToken, error) {
	matches := tokenFormatRegex.FindStringSubmatch(token)
	if matches == nil {
		return nil, ErrInvalidTokenFormat
	}

	return &ParsedToken{
		Prefix: matches[1],
		Secret: matches[2],
	}, nil
}

// ValidateTokenFormat checks if the token matches the expected format.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}
