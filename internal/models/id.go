package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewID creates a prefixed random identifier, e.g. "spr-3f9a1c04b2d7".
// Six random bytes keep IDs short enough for URLs and chat messages
// while making collisions a non-concern at workspace scale.
func NewID(prefix string) (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("models: generate id: %w", err)
	}
	return prefix + "-" + hex.EncodeToString(b), nil
}

// NewToken creates a 32-char hex token for invites and API auth.
func NewToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("models: generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
