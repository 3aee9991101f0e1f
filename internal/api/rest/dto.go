package rest

import (
	"time"

	"github.com/songii00/random-push/internal/domain"
)

// CreatePushRequest is the body of POST /api/v1/pushes
type CreatePushRequest struct {
	// TotalAmount is the amount to scatter, in the smallest currency unit
	TotalAmount int `json:"total_amount" binding:"required,gt=0"`
	// ShareCount is the number of shares to scatter the amount into
	ShareCount int `json:"share_count" binding:"required,gt=0"`
}

// CreatePushResponse returns the token identifying the created push
type CreatePushResponse struct {
	Token string `json:"token"`
}

// ClaimPushResponse returns the amount assigned to the claimant
type ClaimPushResponse struct {
	Amount int `json:"amount"`
}

// ClaimRecordDTO is one claimed share in a status response
type ClaimRecordDTO struct {
	Amount int    `json:"amount"`
	UserID string `json:"user_id"`
}

// PushStatusResponse is the creator-facing status of a push
type PushStatusResponse struct {
	PushTime      time.Time        `json:"push_time"`
	TotalAmount   int              `json:"total_amount"`
	ClaimedAmount int              `json:"claimed_amount"`
	Claims        []ClaimRecordDTO `json:"claims"`
}

// NewPushStatusResponse maps a domain status to its response DTO
func NewPushStatusResponse(status *domain.PushStatus) PushStatusResponse {
	claims := make([]ClaimRecordDTO, 0, len(status.Claims))
	for _, claim := range status.Claims {
		claims = append(claims, ClaimRecordDTO{
			Amount: claim.Amount,
			UserID: claim.UserID,
		})
	}
	return PushStatusResponse{
		PushTime:      status.PushTime,
		TotalAmount:   status.TotalAmount,
		ClaimedAmount: status.ClaimedAmount,
		Claims:        claims,
	}
}
