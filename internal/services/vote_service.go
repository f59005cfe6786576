package services

import (
	"context"
	"fmt"

	"github.com/fcadmin/matchvote-backend/internal/cache"
	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/repositories"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure VoteServiceImpl implements VoteService
var _ VoteService = (*VoteServiceImpl)(nil)

// VoteServiceImpl is the vote-submission hot path. All counting is delegated
// to the repository's single atomic increment; this layer adds the receipt,
// the derived tally and the best-effort cache write-through.
type VoteServiceImpl struct {
	pollRepo   repositories.PollRepository
	tallyCache *cache.TallyCache // optional; nil disables caching
}

// NewVoteService creates a new VoteServiceImpl
func NewVoteService(pollRepo repositories.PollRepository, tallyCache *cache.TallyCache) *VoteServiceImpl {
	return &VoteServiceImpl{
		pollRepo:   pollRepo,
		tallyCache: tallyCache,
	}
}

// SubmitVote counts one vote for the player on the poll and returns the live
// tally. Repeat voters are not rejected; the receipt ID gives an outer layer
// a handle for idempotency if it ever wants one.
func (s *VoteServiceImpl) SubmitVote(ctx context.Context, pollID primitive.ObjectID, playerID string) (*models.Tally, error) {
	if err := s.pollRepo.IncrementVote(ctx, pollID, playerID); err != nil {
		return nil, err
	}

	poll, err := s.pollRepo.FindByID(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("vote counted but tally read failed: %w", err)
	}

	tally := models.BuildTally(poll)
	tally.ReceiptID = uuid.NewString()

	if s.tallyCache != nil {
		if err := s.tallyCache.SetTally(ctx, pollID.Hex(), tally); err != nil {
			// The cache only serves reads; the vote is already durable.
			slog.Warn("Failed to refresh tally cache", "error", err, "pollId", pollID.Hex())
		}
	}
	return tally, nil
}

// GetLiveTally returns the current derived tally for a poll, preferring the
// cache when one is configured. Cached tallies are eventually consistent
// within the cache TTL.
func (s *VoteServiceImpl) GetLiveTally(ctx context.Context, pollID primitive.ObjectID) (*models.Tally, error) {
	if s.tallyCache != nil {
		cached, err := s.tallyCache.GetTally(ctx, pollID.Hex())
		if err != nil {
			slog.Warn("Tally cache read failed", "error", err, "pollId", pollID.Hex())
		} else if cached != nil {
			cached.ReceiptID = ""
			return cached, nil
		}
	}

	poll, err := s.pollRepo.FindByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	tally := models.BuildTally(poll)

	if s.tallyCache != nil && poll.Status == models.PollStatusActive {
		if err := s.tallyCache.SetTally(ctx, pollID.Hex(), tally); err != nil {
			slog.Warn("Failed to populate tally cache", "error", err, "pollId", pollID.Hex())
		}
	}
	return tally, nil
}
