package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PollTemplateRepository is an in-memory repositories.PollTemplateRepository
type PollTemplateRepository struct {
	mu        sync.Mutex
	templates map[primitive.ObjectID]*models.PollTemplate
}

// NewPollTemplateRepository creates an empty in-memory template repository
func NewPollTemplateRepository() repositories.PollTemplateRepository {
	return &PollTemplateRepository{
		templates: make(map[primitive.ObjectID]*models.PollTemplate),
	}
}

// Create stores a new template
func (r *PollTemplateRepository) Create(ctx context.Context, template *models.PollTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if template.ID.IsZero() {
		template.ID = primitive.NewObjectID()
	}
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()
	r.templates[template.ID] = cloneTemplate(template)
	return nil
}

// FindByID finds a template by ID
func (r *PollTemplateRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PollTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	template, ok := r.templates[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneTemplate(template), nil
}

// FindAll finds all templates sorted by name
func (r *PollTemplateRepository) FindAll(ctx context.Context) ([]*models.PollTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	templates := []*models.PollTemplate{}
	for _, template := range r.templates {
		templates = append(templates, cloneTemplate(template))
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}

// Update replaces a stored template
func (r *PollTemplateRepository) Update(ctx context.Context, template *models.PollTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[template.ID]; !ok {
		return models.ErrNotFound
	}
	template.UpdatedAt = time.Now()
	r.templates[template.ID] = cloneTemplate(template)
	return nil
}

// Delete removes a template
func (r *PollTemplateRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.templates, id)
	return nil
}

// Count counts stored templates
func (r *PollTemplateRepository) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.templates)), nil
}

func cloneTemplate(t *models.PollTemplate) *models.PollTemplate {
	clone := *t
	clone.DefaultPlayerIDs = append([]string(nil), t.DefaultPlayerIDs...)
	return &clone
}
