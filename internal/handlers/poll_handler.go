package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PollHandler handles poll lifecycle HTTP requests
type PollHandler struct {
	pollService services.PollService
}

// NewPollHandler creates a new PollHandler
func NewPollHandler(pollService services.PollService) *PollHandler {
	return &PollHandler{
		pollService: pollService,
	}
}

// ActivationRequest is the wire form of an activation policy
type ActivationRequest struct {
	Type    string     `json:"type" binding:"required"`
	StartAt *time.Time `json:"startAt"`
	EndAt   *time.Time `json:"endAt"`
}

// CreatePollRequest is the request body for POST /polls
type CreatePollRequest struct {
	TemplateID  string             `json:"templateId"`
	MatchID     string             `json:"matchId"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	PlayerIDs   []string           `json:"playerIds"`
	Activation  *ActivationRequest `json:"activation"`
}

// CreatePoll handles POST /polls, ad hoc or from a template
func (h *PollHandler) CreatePoll(c *gin.Context) {
	var request CreatePollRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreatePollInput{
		MatchID:     request.MatchID,
		Title:       request.Title,
		Description: request.Description,
		PlayerIDs:   request.PlayerIDs,
		CreatedBy:   operatorFromContext(c),
	}
	if request.Activation != nil {
		input.Activation = &models.ActivationPolicy{
			Type:    models.ActivationType(request.Activation.Type),
			StartAt: request.Activation.StartAt,
			EndAt:   request.Activation.EndAt,
		}
	}

	var poll *models.Poll
	var err error
	if request.TemplateID != "" {
		templateID, idErr := primitive.ObjectIDFromHex(request.TemplateID)
		if idErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID format"})
			return
		}
		poll, err = h.pollService.CreatePollFromTemplate(c.Request.Context(), templateID, input)
	} else {
		poll, err = h.pollService.CreatePoll(c.Request.Context(), input)
	}
	if err != nil {
		respondPollError(c, err)
		return
	}
	c.JSON(http.StatusCreated, poll)
}

// AttachPolicy handles POST /polls/:id/policy
func (h *PollHandler) AttachPolicy(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	var request ActivationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	poll, err := h.pollService.AttachPolicy(c.Request.Context(), id, models.ActivationPolicy{
		Type:    models.ActivationType(request.Type),
		StartAt: request.StartAt,
		EndAt:   request.EndAt,
	})
	if err != nil {
		respondPollError(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

// ActivatePoll handles POST /polls/:id/activate
func (h *PollHandler) ActivatePoll(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	poll, err := h.pollService.ActivatePoll(c.Request.Context(), id)
	if err != nil {
		respondPollError(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

// ClosePoll handles POST /polls/:id/close
func (h *PollHandler) ClosePoll(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	poll, err := h.pollService.ClosePoll(c.Request.Context(), id)
	if err != nil {
		respondPollError(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

// CancelPoll handles DELETE /polls/:id
func (h *PollHandler) CancelPoll(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	if err := h.pollService.CancelPoll(c.Request.Context(), id); err != nil {
		respondPollError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Poll cancelled"})
}

// GetPollByID handles GET /polls/:id
func (h *PollHandler) GetPollByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	poll, err := h.pollService.GetPollByID(c.Request.Context(), id)
	if err != nil {
		respondPollError(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

// GetPolls handles GET /polls
func (h *PollHandler) GetPolls(c *gin.Context) {
	polls, err := h.pollService.GetPolls(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve polls: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, polls)
}

// GetPollsByStatus handles GET /polls/status/:status
func (h *PollHandler) GetPollsByStatus(c *gin.Context) {
	status := models.PollStatus(c.Param("status"))
	switch status {
	case models.PollStatusDraft, models.PollStatusArmed, models.PollStatusActive, models.PollStatusClosed, models.PollStatusArchived:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid poll status"})
		return
	}
	polls, err := h.pollService.GetPollsByStatus(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve polls: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, polls)
}

// GetPollsByMatch handles GET /polls/match/:matchId
func (h *PollHandler) GetPollsByMatch(c *gin.Context) {
	polls, err := h.pollService.GetPollsByMatch(c.Request.Context(), c.Param("matchId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve polls: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, polls)
}

// GetActivePolls handles GET /polls/active
func (h *PollHandler) GetActivePolls(c *gin.Context) {
	polls, err := h.pollService.GetActivePolls(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve polls: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, polls)
}

// GetArchivedPolls handles GET /polls/archived?matchId=
func (h *PollHandler) GetArchivedPolls(c *gin.Context) {
	polls, err := h.pollService.GetArchivedPolls(c.Request.Context(), c.Query("matchId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve polls: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, polls)
}

// respondPollError maps engine errors onto HTTP statuses
func respondPollError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
	case errors.Is(err, models.ErrActiveConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrPollNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": "Poll is not accepting votes"})
	case errors.Is(err, models.ErrUnknownOption):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Player is not an option of this poll"})
	case errors.Is(err, models.ErrTooFewOptions), errors.Is(err, models.ErrDuplicateOption):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// operatorFromContext pulls the authenticated operator's email set by the
// auth middleware; empty for unauthenticated calls.
func operatorFromContext(c *gin.Context) string {
	if email, ok := c.Get("userEmail"); ok {
		if s, ok := email.(string); ok {
			return s
		}
	}
	return ""
}
