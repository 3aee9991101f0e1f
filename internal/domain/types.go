package domain

import (
	"time"
)

// Window constants for the push lifecycle.
const (
	// ClaimWindow is how long shares of a push remain claimable after creation.
	ClaimWindow = 10 * time.Minute
	// StatusWindow is how long the creator may query the status of a push after creation.
	StatusWindow = 7 * 24 * time.Hour
)

// Push represents a single money-scatter event created by one user for a chat room.
// Immutable after creation except for ClaimedAmount, which only increases.
type Push struct {
	ID            int64       `json:"id"`
	Token         string      `json:"token"`
	RoomID        string      `json:"room_id"`
	UserID        string      `json:"user_id"`
	TotalAmount   int         `json:"total_amount"`
	ClaimedAmount int         `json:"claimed_amount"`
	CreatedAt     time.Time   `json:"created_at"`
	Shares        []PushShare `json:"shares"`
}

// PushShare is one of the N randomized sub-amounts belonging to a push.
// It transitions unclaimed -> claimed exactly once and never reverts.
type PushShare struct {
	ID          int64      `json:"id"`
	PushID      int64      `json:"push_id"`
	Amount      int        `json:"amount"`
	UserID      string     `json:"user_id"`
	Claimed     bool       `json:"claimed"`
	ClaimUserID string     `json:"claim_user_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
}

// ClaimAttempt carries the identity of a user trying to claim a share of a push.
type ClaimAttempt struct {
	UserID string
	RoomID string
}

// ClaimRecord is one claimed share as reported by a status query.
type ClaimRecord struct {
	Amount int    `json:"amount"`
	UserID string `json:"user_id"`
}

// PushStatus is the creator-facing view of a push: when it was scattered, how much,
// how much has been claimed, and by whom.
type PushStatus struct {
	PushTime      time.Time     `json:"push_time"`
	TotalAmount   int           `json:"total_amount"`
	ClaimedAmount int           `json:"claimed_amount"`
	Claims        []ClaimRecord `json:"claims"`
}

// ClaimedShares returns the claimed shares of a push in stored order.
func (p *Push) ClaimedShares() []PushShare {
	var claimed []PushShare
	for _, share := range p.Shares {
		if share.Claimed {
			claimed = append(claimed, share)
		}
	}
	return claimed
}

// UnclaimedShares returns the shares of a push that are still open, in stored order.
func (p *Push) UnclaimedShares() []PushShare {
	var open []PushShare
	for _, share := range p.Shares {
		if !share.Claimed {
			open = append(open, share)
		}
	}
	return open
}
