package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashIdentifier creates a consistent hash of an email or phone number for
// logging without exposing PII.
func HashIdentifier(identifier string) string {
	hash := sha256.Sum256([]byte(strings.TrimSpace(identifier)))
	return hex.EncodeToString(hash[:])[:12]
}

// HashToken hashes opaque secrets (access tokens, OTP codes) for log correlation.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])[:8]
}

// NormalizePhone strips surrounding space and a leading '+'. The auth
// provider stores numbers without the '+', so both spellings compare equal.
func NormalizePhone(phone string) string {
	return strings.TrimPrefix(strings.TrimSpace(phone), "+")
}
