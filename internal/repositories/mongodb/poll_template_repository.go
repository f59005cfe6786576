package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PollTemplateRepository implements the repositories.PollTemplateRepository interface
type PollTemplateRepository struct {
	collection *mongo.Collection
}

// NewPollTemplateRepository creates a new PollTemplateRepository
func NewPollTemplateRepository(db *mongo.Database) repositories.PollTemplateRepository {
	return &PollTemplateRepository{
		collection: db.Collection("poll_templates"),
	}
}

// Create creates a new template
func (r *PollTemplateRepository) Create(ctx context.Context, template *models.PollTemplate) error {
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, template)
	if err != nil {
		return err
	}
	template.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a template by ID
func (r *PollTemplateRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PollTemplate, error) {
	var template models.PollTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// FindAll finds all templates sorted by name
func (r *PollTemplateRepository) FindAll(ctx context.Context) ([]*models.PollTemplate, error) {
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []*models.PollTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []*models.PollTemplate{}
	}
	return templates, nil
}

// Update updates a template
func (r *PollTemplateRepository) Update(ctx context.Context, template *models.PollTemplate) error {
	template.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": template.ID}, template)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete deletes a template. Polls copy templates at instantiation, so
// deletion is always safe regardless of existing polls.
func (r *PollTemplateRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Count counts all templates
func (r *PollTemplateRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
