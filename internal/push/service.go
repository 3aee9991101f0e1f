// Package push implements the random push lifecycle: create, lookup, claim
// eligibility, claim, and status queries.
package push

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/songii00/random-push/internal/adapter"
	"github.com/songii00/random-push/internal/cache"
	"github.com/songii00/random-push/internal/domain"
	"github.com/songii00/random-push/internal/logger"
	"github.com/songii00/random-push/internal/partition"
	"github.com/songii00/random-push/internal/store"
	"github.com/songii00/random-push/internal/store/schema"
	"github.com/songii00/random-push/internal/token"
)

// Service manages the push lifecycle on top of the storage and cache collaborators
type Service struct {
	store    store.Store
	cache    cache.Cache
	keygen   *token.Keygen
	splitter *partition.Splitter
	clock    adapter.Clock
}

// NewService creates a push lifecycle service
func NewService(s store.Store, c cache.Cache, keygen *token.Keygen, splitter *partition.Splitter, clock adapter.Clock) *Service {
	return &Service{
		store:    s,
		cache:    c,
		keygen:   keygen,
		splitter: splitter,
		clock:    clock,
	}
}

// IssueToken returns a new opaque token for a push about to be created
func (s *Service) IssueToken() string {
	return s.keygen.Issue(s.clock.Now())
}

// Create partitions total into count shares and persists the push with its
// shares atomically. The push is stored under the hashed form of rawToken and
// every share is stamped with the creator.
func (s *Service) Create(ctx context.Context, total, count int, userID, roomID, rawToken string) error {
	amounts, err := s.splitter.Split(total, count)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	p := &schema.Push{
		Token:       s.keygen.HashKey(rawToken),
		RoomID:      roomID,
		UserID:      userID,
		TotalAmount: total,
		CreatedAt:   now,
	}

	shares := make([]schema.PushShare, len(amounts))
	for i, amount := range amounts {
		shares[i] = schema.PushShare{
			Amount:    amount,
			UserID:    userID,
			CreatedAt: now,
		}
	}

	return s.store.CreatePush(ctx, p, shares)
}

// Lookup returns the push for a raw token and room, reading through the cache.
// A cached snapshot is only coherent because every successful claim evicts it.
func (s *Service) Lookup(ctx context.Context, rawToken, roomID string) (*domain.Push, error) {
	hashed := s.keygen.HashKey(rawToken)

	cached, found, err := s.cache.GetPush(ctx, hashed, roomID)
	if err != nil {
		// Degrade to a storage read on cache failure.
		logger.Warn("push cache read failed, falling back to store",
			zap.String("room_id", roomID),
			zap.Error(err),
		)
	}
	if found {
		return cached, nil
	}

	row, err := s.store.GetPush(ctx, hashed, roomID)
	if err != nil {
		return nil, err
	}

	p := toDomainPush(row)
	if err := s.cache.SetPush(ctx, p); err != nil {
		logger.Warn("push cache write failed",
			zap.String("room_id", roomID),
			zap.Error(err),
		)
	}
	return p, nil
}

// GetStatus returns the creator-facing status of a push. Only the creator may
// query it, and only within 7 days of creation; both failures surface as the
// same validation error.
func (s *Service) GetStatus(ctx context.Context, requesterID, rawToken, roomID string) (*domain.PushStatus, error) {
	p, err := s.Lookup(ctx, rawToken, roomID)
	if err != nil {
		return nil, err
	}

	if p.UserID != requesterID {
		return nil, domain.ErrValidationFailed
	}
	if s.clock.Now().Add(-domain.StatusWindow).After(p.CreatedAt) {
		return nil, domain.ErrValidationFailed
	}

	claimed := p.ClaimedShares()
	claims := make([]domain.ClaimRecord, 0, len(claimed))
	for _, share := range claimed {
		claims = append(claims, domain.ClaimRecord{
			Amount: share.Amount,
			UserID: share.ClaimUserID,
		})
	}

	return &domain.PushStatus{
		PushTime:      p.CreatedAt,
		TotalAmount:   p.TotalAmount,
		ClaimedAmount: p.ClaimedAmount,
		Claims:        claims,
	}, nil
}

// ValidateClaim reports whether attempt is eligible to claim a share of
// existing. Checks run in order and short-circuit on the first failure:
//
//  1. the creator cannot claim their own push
//  2. a push with no claimed shares yet is rejected
//  3. a user claims at most once per push
//  4. only users in the push's room may claim
//
// Rule 2 looks inverted (one would expect "no unclaimed share remains"), but
// it is the released behavior and changing it would break existing callers.
func (s *Service) ValidateClaim(existing *domain.Push, attempt domain.ClaimAttempt) bool {
	if existing.UserID == attempt.UserID {
		return false
	}

	claimed := existing.ClaimedShares()
	if len(claimed) == 0 {
		return false
	}

	for _, share := range claimed {
		if share.ClaimUserID == attempt.UserID {
			return false
		}
	}

	if attempt.RoomID != existing.RoomID {
		return false
	}

	return true
}

// Claim assigns the first unclaimed share of existing to the attempting user
// and returns the claimed amount. The caller must have run ValidateClaim first;
// Claim does not re-validate. The share update and the claimed-amount increment
// commit in one transaction.
func (s *Service) Claim(ctx context.Context, existing *domain.Push, attempt domain.ClaimAttempt) (int, error) {
	return s.store.ClaimFirstShare(ctx, existing.ID, attempt.UserID, s.clock.Now())
}

// IsExpired reports whether the claim window of a push has closed
func (s *Service) IsExpired(p *domain.Push) bool {
	return s.clock.Now().Add(-domain.ClaimWindow).After(p.CreatedAt)
}

// InvalidateCache evicts the cached snapshot for a push. Callers must invoke
// this after every successful Claim.
func (s *Service) InvalidateCache(ctx context.Context, p *domain.Push) error {
	return s.cache.EvictPush(ctx, p.Token, p.RoomID)
}

func toDomainPush(row *schema.Push) *domain.Push {
	shares := make([]domain.PushShare, len(row.Shares))
	for i, share := range row.Shares {
		shares[i] = domain.PushShare{
			ID:          share.ID,
			PushID:      share.PushID,
			Amount:      share.Amount,
			UserID:      share.UserID,
			Claimed:     share.Claimed,
			ClaimUserID: share.ClaimUserID,
			CreatedAt:   share.CreatedAt,
			ClaimedAt:   cloneTime(share.ClaimedAt),
		}
	}

	return &domain.Push{
		ID:            row.ID,
		Token:         row.Token,
		RoomID:        row.RoomID,
		UserID:        row.UserID,
		TotalAmount:   row.TotalAmount,
		ClaimedAmount: row.ClaimedAmount,
		CreatedAt:     row.CreatedAt,
		Shares:        shares,
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	out := *t
	return &out
}
