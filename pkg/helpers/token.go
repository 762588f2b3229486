package helpers

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateOpaqueToken returns n cryptographically random bytes encoded as a
// URL-safe string. Used for the verification links sent by email; only a
// bcrypt hash of the result is ever persisted.
func GenerateOpaqueToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
