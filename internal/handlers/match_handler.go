package handlers

import (
	"net/http"
	"time"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/repositories"
	"github.com/fcadmin/matchvote-backend/internal/scheduler"
	"github.com/gin-gonic/gin"
)

// MatchHandler ingests match-status events from the external feed
type MatchHandler struct {
	scheduler *scheduler.PollScheduler
	eventRepo repositories.MatchEventRepository
}

// NewMatchHandler creates a new MatchHandler
func NewMatchHandler(sched *scheduler.PollScheduler, eventRepo repositories.MatchEventRepository) *MatchHandler {
	return &MatchHandler{
		scheduler: sched,
		eventRepo: eventRepo,
	}
}

// MatchStatusRequest is the request body for POST /matches/:matchId/status
type MatchStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateMatchStatus handles POST /matches/:matchId/status
func (h *MatchHandler) UpdateMatchStatus(c *gin.Context) {
	matchID := c.Param("matchId")
	var request MatchStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := models.MatchStatus(request.Status)
	switch status {
	case models.MatchStatusUpcoming, models.MatchStatusLive, models.MatchStatusCompleted, models.MatchStatusPostponed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid match status"})
		return
	}

	if err := h.scheduler.HandleMatchStatusChanged(c.Request.Context(), matchID, status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process match event: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Match status recorded"})
}

// GetMatchEvents handles GET /matches/:matchId/events
func (h *MatchHandler) GetMatchEvents(c *gin.Context) {
	events, err := h.eventRepo.FindByMatch(c.Request.Context(), c.Param("matchId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve match events: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetRecentEvents handles GET /matches/events?since=. Without a since
// parameter the dashboard gets the last 24 hours of feed activity.
func (h *MatchHandler) GetRecentEvents(c *gin.Context) {
	since := time.Now().Add(-24 * time.Hour)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid since timestamp, expected RFC 3339"})
			return
		}
		since = parsed
	}

	events, err := h.eventRepo.FindSince(c.Request.Context(), since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve match events: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}
