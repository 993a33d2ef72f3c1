package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewSecret returns a random 256-bit hex-encoded signing secret.
func NewSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating jwt secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
