package store

import (
	"context"
	"time"

	"github.com/songii00/random-push/internal/store/schema"
)

// Store defines the interface for database operations
type Store interface {
	// CreatePush persists a push and its shares in a single transaction.
	// Either everything is written or nothing is.
	CreatePush(ctx context.Context, push *schema.Push, shares []schema.PushShare) error
	// GetPush retrieves a push with its shares by hashed token and room
	GetPush(ctx context.Context, token, roomID string) (*schema.Push, error)
	// ClaimFirstShare atomically claims the first unclaimed share of a push for
	// claimUserID and increments the push's claimed amount by the share amount.
	// It returns the claimed amount, or domain.ErrShareExhausted when no
	// unclaimed share remains.
	ClaimFirstShare(ctx context.Context, pushID int64, claimUserID string, now time.Time) (int, error)
}
