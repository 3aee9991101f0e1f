package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songii00/random-push/internal/domain"
	"github.com/songii00/random-push/internal/store"
	"github.com/songii00/random-push/internal/store/schema"
)

func seedPush(t *testing.T, s store.Store, token, roomID string, amounts []int) *schema.Push {
	t.Helper()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	total := 0
	for _, amount := range amounts {
		total += amount
	}

	p := &schema.Push{
		Token:       token,
		RoomID:      roomID,
		UserID:      "creator",
		TotalAmount: total,
		CreatedAt:   now,
	}
	shares := make([]schema.PushShare, len(amounts))
	for i, amount := range amounts {
		shares[i] = schema.PushShare{Amount: amount, UserID: "creator", CreatedAt: now}
	}
	require.NoError(t, s.CreatePush(context.Background(), p, shares))
	return p
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	created := seedPush(t, s, "hashed-1", "room-1", []int{100, 200, 300})
	assert.NotZero(t, created.ID)

	got, err := s.GetPush(ctx, "hashed-1", "room-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 600, got.TotalAmount)
	require.Len(t, got.Shares, 3)

	// Shares come back in insertion order.
	assert.Equal(t, []int{100, 200, 300}, []int{got.Shares[0].Amount, got.Shares[1].Amount, got.Shares[2].Amount})

	_, err = s.GetPush(ctx, "hashed-1", "other-room")
	assert.ErrorIs(t, err, domain.ErrPushNotFound)
}

func TestMemoryStore_ClaimFirstShare(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 5, 0, 0, time.UTC)

	p := seedPush(t, s, "hashed-2", "room-1", []int{100, 200})

	amount, err := s.ClaimFirstShare(ctx, p.ID, "alice", now)
	require.NoError(t, err)
	assert.Equal(t, 100, amount)

	amount, err = s.ClaimFirstShare(ctx, p.ID, "bob", now)
	require.NoError(t, err)
	assert.Equal(t, 200, amount)

	_, err = s.ClaimFirstShare(ctx, p.ID, "carol", now)
	assert.ErrorIs(t, err, domain.ErrShareExhausted)

	got, err := s.GetPush(ctx, "hashed-2", "room-1")
	require.NoError(t, err)
	assert.Equal(t, 300, got.ClaimedAmount)
	for _, share := range got.Shares {
		assert.True(t, share.Claimed)
		require.NotNil(t, share.ClaimedAt)
		assert.Equal(t, now, *share.ClaimedAt)
	}
	assert.Equal(t, "alice", got.Shares[0].ClaimUserID)
	assert.Equal(t, "bob", got.Shares[1].ClaimUserID)
}

func TestMemoryStore_ClaimUnknownPush(t *testing.T) {
	s := store.NewMemoryStore()

	_, err := s.ClaimFirstShare(context.Background(), 42, "alice", time.Now())
	assert.ErrorIs(t, err, domain.ErrPushNotFound)
}
