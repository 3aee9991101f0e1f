// Package token issues opaque push tokens and derives their storage keys.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
)

// Keygen issues opaque unique tokens and hashes them into storage keys.
// Pushes are never stored under the raw token handed to clients.
type Keygen struct{}

// NewKeygen creates a new Keygen.
func NewKeygen() *Keygen {
	return &Keygen{}
}

// Issue returns a new opaque unique token, lexicographically sortable by issue time.
func (k *Keygen) Issue(now time.Time) string {
	return ulid.MustNewDefault(now).String()
}

// HashKey derives the storage key for a raw token.
func (k *Keygen) HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
