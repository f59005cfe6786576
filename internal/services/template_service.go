package services

import (
	"context"
	"errors"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure TemplateServiceImpl implements TemplateService
var _ TemplateService = (*TemplateServiceImpl)(nil)

// TemplateServiceImpl handles poll template management. Templates are pure
// blueprints; nothing here ever touches polls created from them.
type TemplateServiceImpl struct {
	templateRepo repositories.PollTemplateRepository
}

// NewTemplateService creates a new TemplateServiceImpl
func NewTemplateService(templateRepo repositories.PollTemplateRepository) *TemplateServiceImpl {
	return &TemplateServiceImpl{templateRepo: templateRepo}
}

// CreateTemplate creates a new template
func (s *TemplateServiceImpl) CreateTemplate(ctx context.Context, template *models.PollTemplate) (*models.PollTemplate, error) {
	if template.Name == "" {
		return nil, errors.New("template name is required")
	}
	if err := s.templateRepo.Create(ctx, template); err != nil {
		slog.Error("Failed to create template", "error", err, "name", template.Name)
		return nil, err
	}
	slog.Info("Template created", "templateId", template.ID.Hex(), "name", template.Name)
	return template, nil
}

// GetTemplateByID retrieves a template by ID
func (s *TemplateServiceImpl) GetTemplateByID(ctx context.Context, id primitive.ObjectID) (*models.PollTemplate, error) {
	return s.templateRepo.FindByID(ctx, id)
}

// GetTemplates retrieves all templates
func (s *TemplateServiceImpl) GetTemplates(ctx context.Context) ([]*models.PollTemplate, error) {
	return s.templateRepo.FindAll(ctx)
}

// UpdateTemplate updates a template. Existing polls keep the copy they were
// instantiated with.
func (s *TemplateServiceImpl) UpdateTemplate(ctx context.Context, template *models.PollTemplate) (*models.PollTemplate, error) {
	if template.Name == "" {
		return nil, errors.New("template name is required")
	}
	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, err
	}
	return s.templateRepo.FindByID(ctx, template.ID)
}

// DeleteTemplate deletes a template. Always safe: polls hold copies.
func (s *TemplateServiceImpl) DeleteTemplate(ctx context.Context, id primitive.ObjectID) error {
	return s.templateRepo.Delete(ctx, id)
}
