package cache

import (
	"context"
	"sync"

	"github.com/songii00/random-push/internal/domain"
)

// memoryCache is an in-process Cache used by tests and local development
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]domain.Push
}

// NewMemoryCache creates an empty in-memory push cache
func NewMemoryCache() Cache {
	return &memoryCache{entries: make(map[string]domain.Push)}
}

func (c *memoryCache) GetPush(ctx context.Context, token, roomID string) (*domain.Push, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	push, ok := c.entries[Key(token, roomID)]
	if !ok {
		return nil, false, nil
	}
	out := push
	return &out, true, nil
}

func (c *memoryCache) SetPush(ctx context.Context, push *domain.Push) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[Key(push.Token, push.RoomID)] = *push
	return nil
}

func (c *memoryCache) EvictPush(ctx context.Context, token, roomID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, Key(token, roomID))
	return nil
}
