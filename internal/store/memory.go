package store

import (
	"context"
	"sync"
	"time"

	"github.com/songii00/random-push/internal/domain"
	"github.com/songii00/random-push/internal/store/schema"
)

// memoryStore is a mutex-guarded in-memory Store used by tests and local
// development. It mirrors the transactional semantics of the PostgreSQL store:
// claims are serialized and never double-assign a share.
type memoryStore struct {
	mu         sync.Mutex
	nextPushID int64
	nextRowID  int64
	pushes     map[int64]*schema.Push
	shares     map[int64][]schema.PushShare
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() Store {
	return &memoryStore{
		nextPushID: 1,
		nextRowID:  1,
		pushes:     make(map[int64]*schema.Push),
		shares:     make(map[int64][]schema.PushShare),
	}
}

func (s *memoryStore) CreatePush(ctx context.Context, push *schema.Push, shares []schema.PushShare) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	push.ID = s.nextPushID
	s.nextPushID++

	stored := make([]schema.PushShare, len(shares))
	for i, share := range shares {
		share.ID = s.nextRowID
		share.PushID = push.ID
		s.nextRowID++
		stored[i] = share
		shares[i] = share
	}

	copied := *push
	s.pushes[push.ID] = &copied
	s.shares[push.ID] = stored
	return nil
}

func (s *memoryStore) GetPush(ctx context.Context, token, roomID string) (*schema.Push, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, push := range s.pushes {
		if push.Token == token && push.RoomID == roomID {
			out := *push
			out.Shares = append([]schema.PushShare(nil), s.shares[push.ID]...)
			return &out, nil
		}
	}
	return nil, domain.ErrPushNotFound
}

func (s *memoryStore) ClaimFirstShare(ctx context.Context, pushID int64, claimUserID string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	push, ok := s.pushes[pushID]
	if !ok {
		return 0, domain.ErrPushNotFound
	}

	shares := s.shares[pushID]
	for i := range shares {
		if shares[i].Claimed {
			continue
		}
		claimedAt := now
		shares[i].Claimed = true
		shares[i].ClaimUserID = claimUserID
		shares[i].ClaimedAt = &claimedAt
		push.ClaimedAmount += shares[i].Amount
		return shares[i].Amount, nil
	}
	return 0, domain.ErrShareExhausted
}
