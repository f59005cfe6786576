package handlers

import (
	"net/http"

	"github.com/fcadmin/matchvote-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VoteHandler handles the public vote-casting endpoint
type VoteHandler struct {
	voteService services.VoteService
}

// NewVoteHandler creates a new VoteHandler
func NewVoteHandler(voteService services.VoteService) *VoteHandler {
	return &VoteHandler{
		voteService: voteService,
	}
}

// SubmitVoteRequest is the request body for POST /polls/:id/vote
type SubmitVoteRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
}

// SubmitVote handles POST /polls/:id/vote. This is the only endpoint exposed
// to anonymous voters; rate limiting belongs to the edge in front of it.
func (h *VoteHandler) SubmitVote(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	var request SubmitVoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tally, err := h.voteService.SubmitVote(c.Request.Context(), id, request.PlayerID)
	if err != nil {
		respondPollError(c, err)
		return
	}
	c.JSON(http.StatusOK, tally)
}

// GetTally handles GET /polls/:id/tally
func (h *VoteHandler) GetTally(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	tally, err := h.voteService.GetLiveTally(c.Request.Context(), id)
	if err != nil {
		respondPollError(c, err)
		return
	}
	c.JSON(http.StatusOK, tally)
}
