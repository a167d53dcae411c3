// Package cryptoutil holds small helpers shared by the vault and config
// layers: hex validation and key generation.
package cryptoutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// IsHexString reports whether s consists entirely of hexadecimal characters
// (0-9, a-f, A-F). It returns true for an empty string, so callers should check
// length separately when a minimum size is required.
func IsHexString(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

// RandomKeyHex returns n random bytes hex-encoded, suitable as a vault
// key when n is 32.
func RandomKeyHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
