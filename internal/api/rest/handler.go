package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/songii00/random-push/internal/domain"
	"github.com/songii00/random-push/internal/push"
)

// Request headers identifying the calling user and the chat room
const (
	headerUserID = "X-USER-ID"
	headerRoomID = "X-ROOM-ID"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// CreatePush scatters an amount into shares for the caller's room
	// POST /api/v1/pushes
	CreatePush(c *gin.Context)

	// ClaimPush assigns one unclaimed share of a push to the caller
	// PUT /api/v1/pushes/:token/claim
	ClaimPush(c *gin.Context)

	// GetPushStatus returns the creator-facing status of a push
	// GET /api/v1/pushes/:token
	GetPushStatus(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	service *push.Service
}

// NewHandler creates a new REST API handler
func NewHandler(service *push.Service) Handler {
	return &handler{service: service}
}

// CreatePush scatters an amount into shares for the caller's room
func (h *handler) CreatePush(c *gin.Context) {
	userID, roomID, ok := identity(c)
	if !ok {
		return
	}

	var req CreatePushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if req.TotalAmount < req.ShareCount {
		respondBadRequest(c, "total_amount must be at least share_count")
		return
	}

	rawToken := h.service.IssueToken()
	err := h.service.Create(c.Request.Context(), req.TotalAmount, req.ShareCount, userID, roomID, rawToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			respondBadRequest(c, "Invalid push parameters")
			return
		}
		respondInternalError(c, err, "Failed to create push")
		return
	}

	c.JSON(http.StatusCreated, CreatePushResponse{Token: rawToken})
}

// ClaimPush assigns one unclaimed share of a push to the caller
func (h *handler) ClaimPush(c *gin.Context) {
	userID, roomID, ok := identity(c)
	if !ok {
		return
	}
	rawToken := c.Param("token")

	existing, err := h.service.Lookup(c.Request.Context(), rawToken, roomID)
	if err != nil {
		if errors.Is(err, domain.ErrPushNotFound) {
			respondNotFound(c, "Push not found")
			return
		}
		respondInternalError(c, err, "Failed to look up push")
		return
	}

	if h.service.IsExpired(existing) {
		respondForbidden(c, "Push claim window has expired")
		return
	}

	attempt := domain.ClaimAttempt{UserID: userID, RoomID: roomID}
	if !h.service.ValidateClaim(existing, attempt) {
		respondForbidden(c, "Not eligible to claim this push")
		return
	}

	amount, err := h.service.Claim(c.Request.Context(), existing, attempt)
	if err != nil {
		if errors.Is(err, domain.ErrShareExhausted) {
			respondConflict(c, "All shares have been claimed")
			return
		}
		respondInternalError(c, err, "Failed to claim push")
		return
	}

	// A cached snapshot is stale after a claim; evict before anyone reads it.
	if err := h.service.InvalidateCache(c.Request.Context(), existing); err != nil {
		respondInternalError(c, err, "Failed to invalidate push cache")
		return
	}

	c.JSON(http.StatusOK, ClaimPushResponse{Amount: amount})
}

// GetPushStatus returns the creator-facing status of a push
func (h *handler) GetPushStatus(c *gin.Context) {
	userID, roomID, ok := identity(c)
	if !ok {
		return
	}
	rawToken := c.Param("token")

	status, err := h.service.GetStatus(c.Request.Context(), userID, rawToken, roomID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPushNotFound):
			respondNotFound(c, "Push not found")
		case errors.Is(err, domain.ErrValidationFailed):
			respondValidationError(c, "Status query validation failed")
		default:
			respondInternalError(c, err, "Failed to get push status")
		}
		return
	}

	c.JSON(http.StatusOK, NewPushStatusResponse(status))
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// identity extracts the calling user and room headers, rejecting the request
// when either is missing.
func identity(c *gin.Context) (userID, roomID string, ok bool) {
	userID = c.GetHeader(headerUserID)
	roomID = c.GetHeader(headerRoomID)
	if userID == "" || roomID == "" {
		respondBadRequest(c, "X-USER-ID and X-ROOM-ID headers are required")
		return "", "", false
	}
	return userID, roomID, true
}
