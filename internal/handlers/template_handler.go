package handlers

import (
	"errors"
	"net/http"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateHandler handles poll template HTTP requests
type TemplateHandler struct {
	templateService services.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(templateService services.TemplateService) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
	}
}

// TemplateRequest is the request body for creating and updating templates
type TemplateRequest struct {
	Name                  string   `json:"name" binding:"required"`
	Description           string   `json:"description"`
	DefaultPlayerIDs      []string `json:"defaultPlayerIds"`
	DefaultAutoStart      bool     `json:"defaultAutoStart"`
	DefaultScheduledStart bool     `json:"defaultScheduledStart"`
}

// CreateTemplate handles POST /templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var request TemplateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	template := &models.PollTemplate{
		Name:                  request.Name,
		Description:           request.Description,
		DefaultPlayerIDs:      request.DefaultPlayerIDs,
		DefaultAutoStart:      request.DefaultAutoStart,
		DefaultScheduledStart: request.DefaultScheduledStart,
		CreatedBy:             operatorFromContext(c),
	}
	created, err := h.templateService.CreateTemplate(c.Request.Context(), template)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetTemplateByID handles GET /templates/:id
func (h *TemplateHandler) GetTemplateByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	template, err := h.templateService.GetTemplateByID(c.Request.Context(), id)
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// GetTemplates handles GET /templates
func (h *TemplateHandler) GetTemplates(c *gin.Context) {
	templates, err := h.templateService.GetTemplates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve templates: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, templates)
}

// UpdateTemplate handles PUT /templates/:id
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	var request TemplateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	template := &models.PollTemplate{
		ID:                    id,
		Name:                  request.Name,
		Description:           request.Description,
		DefaultPlayerIDs:      request.DefaultPlayerIDs,
		DefaultAutoStart:      request.DefaultAutoStart,
		DefaultScheduledStart: request.DefaultScheduledStart,
	}
	updated, err := h.templateService.UpdateTemplate(c.Request.Context(), template)
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteTemplate handles DELETE /templates/:id. Deleting a template never
// affects polls created from it.
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}
	if err := h.templateService.DeleteTemplate(c.Request.Context(), id); err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

func respondTemplateError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
