// Package id generates the opaque 32-char identifiers used for request,
// marking and workflow-step ids across the API surface.
package id

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID32 returns 16 random bytes as exactly 32 lowercase hex characters,
// no separators or prefixes.
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
