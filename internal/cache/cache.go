// Package cache provides a read-through snapshot cache for push lookups.
//
// Lookups are keyed by the (token, room) pair. Any caller that mutates a share
// must evict the entry for that pair before relying on a lookup again.
package cache

import (
	"context"
	"fmt"

	"github.com/songii00/random-push/internal/domain"
)

// keyPrefix namespaces all push snapshot keys
const keyPrefix = "random_push"

// Cache defines the interface for push snapshot caching to enable mocking
type Cache interface {
	// GetPush returns the cached snapshot for a token and room, and whether it was present
	GetPush(ctx context.Context, token, roomID string) (*domain.Push, bool, error)

	// SetPush stores a snapshot keyed by the push's token and room
	SetPush(ctx context.Context, push *domain.Push) error

	// EvictPush removes the snapshot for a token and room
	EvictPush(ctx context.Context, token, roomID string) error
}

// Key builds the cache key for a token and room
func Key(token, roomID string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, token, roomID)
}
