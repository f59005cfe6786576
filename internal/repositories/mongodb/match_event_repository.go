package mongodb

import (
	"context"
	"time"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MatchEventRepository implements the repositories.MatchEventRepository interface
type MatchEventRepository struct {
	collection *mongo.Collection
}

// NewMatchEventRepository creates a new MatchEventRepository
func NewMatchEventRepository(db *mongo.Database) repositories.MatchEventRepository {
	return &MatchEventRepository{
		collection: db.Collection("match_events"),
	}
}

// Create records an ingested match-status event
func (r *MatchEventRepository) Create(ctx context.Context, event *models.MatchEvent) error {
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}
	res, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return err
	}
	event.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByMatch finds all recorded events for a match, newest first
func (r *MatchEventRepository) FindByMatch(ctx context.Context, matchID string) ([]*models.MatchEvent, error) {
	return r.find(ctx, bson.M{"matchId": matchID})
}

// FindSince finds events received at or after the given time
func (r *MatchEventRepository) FindSince(ctx context.Context, since time.Time) ([]*models.MatchEvent, error) {
	return r.find(ctx, bson.M{"receivedAt": bson.M{"$gte": since}})
}

func (r *MatchEventRepository) find(ctx context.Context, filter bson.M) ([]*models.MatchEvent, error) {
	// The _id tiebreak keeps events ingested within the same clock instant in
	// insertion order, newest first.
	opts := options.Find().SetSort(bson.D{{Key: "receivedAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.MatchEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	if events == nil {
		events = []*models.MatchEvent{}
	}
	return events, nil
}
