package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PollRepository implements the repositories.PollRepository interface
type PollRepository struct {
	collection *mongo.Collection
}

// NewPollRepository creates a new PollRepository
func NewPollRepository(db *mongo.Database) repositories.PollRepository {
	return &PollRepository{
		collection: db.Collection("polls"),
	}
}

// Create creates a new poll
func (r *PollRepository) Create(ctx context.Context, poll *models.Poll) error {
	poll.CreatedAt = time.Now()
	poll.UpdatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, poll)
	if err != nil {
		return err
	}
	poll.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID finds a poll by ID
func (r *PollRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Poll, error) {
	var poll models.Poll
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&poll)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &poll, nil
}

// FindAll finds all polls, newest first
func (r *PollRepository) FindAll(ctx context.Context) ([]*models.Poll, error) {
	return r.find(ctx, bson.M{})
}

// FindByStatus finds polls in any of the given statuses
func (r *PollRepository) FindByStatus(ctx context.Context, statuses []models.PollStatus) ([]*models.Poll, error) {
	return r.find(ctx, bson.M{"status": bson.M{"$in": statuses}})
}

// FindByMatch finds all polls attached to a match
func (r *PollRepository) FindByMatch(ctx context.Context, matchID string) ([]*models.Poll, error) {
	return r.find(ctx, bson.M{"matchId": matchID})
}

// FindActiveByMatch finds the poll currently active for a match, if any.
// Returns (nil, nil) when no poll is active for the match.
func (r *PollRepository) FindActiveByMatch(ctx context.Context, matchID string) (*models.Poll, error) {
	var poll models.Poll
	filter := bson.M{"matchId": matchID, "status": models.PollStatusActive}
	err := r.collection.FindOne(ctx, filter).Decode(&poll)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &poll, nil
}

// FindArchived finds archived polls, optionally filtered by match
func (r *PollRepository) FindArchived(ctx context.Context, matchID string) ([]*models.Poll, error) {
	filter := bson.M{"status": models.PollStatusArchived}
	if matchID != "" {
		filter["matchId"] = matchID
	}
	return r.find(ctx, filter)
}

// AttachPolicy sets the activation policy on a DRAFT poll and arms it in one
// write.
func (r *PollRepository) AttachPolicy(ctx context.Context, id primitive.ObjectID, policy models.ActivationPolicy) error {
	filter := bson.M{"_id": id, "status": models.PollStatusDraft}
	update := bson.M{"$set": bson.M{
		"activation": policy,
		"status":     models.PollStatusArmed,
		"updatedAt":  time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to attach activation policy: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.diagnoseStatusMiss(ctx, id, models.PollStatusDraft)
	}
	return nil
}

// UpdateStatus flips the poll status from exactly `from` to `to` as a
// compare-and-swap. Concurrent trigger sources racing on the same transition
// see models.ErrInvalidState for all but the winner.
func (r *PollRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.PollStatus) error {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update poll status: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.diagnoseStatusMiss(ctx, id, from)
	}
	return nil
}

// IncrementVote adds one vote for the given player. The status guard, the
// option-counter increment and the total increment live in a single document
// update, so no reader can observe one without the other and no concurrent
// writer can lose an update.
func (r *PollRepository) IncrementVote(ctx context.Context, id primitive.ObjectID, playerID string) error {
	filter := bson.M{
		"_id":              id,
		"status":           models.PollStatusActive,
		"options.playerId": playerID,
	}
	update := bson.M{
		"$inc": bson.M{"options.$.votes": 1, "totalVotes": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to increment vote: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.diagnoseVoteMiss(ctx, id, playerID)
	}
	return nil
}

// ArchiveResults writes the results snapshot and flips CLOSED -> ARCHIVED in
// one update. The CLOSED guard makes the archival write-once.
func (r *PollRepository) ArchiveResults(ctx context.Context, id primitive.ObjectID, results *models.PollResults) error {
	filter := bson.M{"_id": id, "status": models.PollStatusClosed}
	update := bson.M{"$set": bson.M{
		"status":    models.PollStatusArchived,
		"results":   results,
		"updatedAt": time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to archive poll results: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.diagnoseStatusMiss(ctx, id, models.PollStatusClosed)
	}
	return nil
}

// Delete deletes a poll by ID
func (r *PollRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *PollRepository) find(ctx context.Context, filter bson.M) ([]*models.Poll, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var polls []*models.Poll
	if err := cursor.All(ctx, &polls); err != nil {
		return nil, err
	}
	if polls == nil {
		polls = []*models.Poll{}
	}
	return polls, nil
}

// diagnoseStatusMiss turns an unmatched CAS write into the right taxonomy
// error by re-reading the document.
func (r *PollRepository) diagnoseStatusMiss(ctx context.Context, id primitive.ObjectID, expected models.PollStatus) error {
	poll, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("poll is %s, expected %s: %w", poll.Status, expected, models.ErrInvalidState)
}

// diagnoseVoteMiss distinguishes a vote against an inactive poll from a vote
// for an unknown player.
func (r *PollRepository) diagnoseVoteMiss(ctx context.Context, id primitive.ObjectID, playerID string) error {
	poll, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if poll.Status != models.PollStatusActive {
		return fmt.Errorf("poll is %s: %w", poll.Status, models.ErrPollNotActive)
	}
	if !poll.HasOption(playerID) {
		return fmt.Errorf("player %s: %w", playerID, models.ErrUnknownOption)
	}
	return errors.New("vote increment matched no document")
}
