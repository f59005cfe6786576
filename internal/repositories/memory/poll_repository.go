// Package memory provides mutex-guarded in-memory implementations of the
// repository interfaces. They carry the same atomicity guarantees as the
// MongoDB implementations and back the package tests as well as standalone
// runs without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PollRepository is an in-memory repositories.PollRepository
type PollRepository struct {
	mu    sync.Mutex
	polls map[primitive.ObjectID]*models.Poll
}

// NewPollRepository creates an empty in-memory poll repository
func NewPollRepository() repositories.PollRepository {
	return &PollRepository{
		polls: make(map[primitive.ObjectID]*models.Poll),
	}
}

// Create stores a new poll
func (r *PollRepository) Create(ctx context.Context, poll *models.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if poll.ID.IsZero() {
		poll.ID = primitive.NewObjectID()
	}
	poll.CreatedAt = time.Now()
	poll.UpdatedAt = time.Now()
	r.polls[poll.ID] = clonePoll(poll)
	return nil
}

// FindByID finds a poll by ID
func (r *PollRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	poll, ok := r.polls[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return clonePoll(poll), nil
}

// FindAll finds all polls, newest first
func (r *PollRepository) FindAll(ctx context.Context) ([]*models.Poll, error) {
	return r.findWhere(func(p *models.Poll) bool { return true })
}

// FindByStatus finds polls in any of the given statuses
func (r *PollRepository) FindByStatus(ctx context.Context, statuses []models.PollStatus) ([]*models.Poll, error) {
	return r.findWhere(func(p *models.Poll) bool {
		for _, status := range statuses {
			if p.Status == status {
				return true
			}
		}
		return false
	})
}

// FindByMatch finds all polls attached to a match
func (r *PollRepository) FindByMatch(ctx context.Context, matchID string) ([]*models.Poll, error) {
	return r.findWhere(func(p *models.Poll) bool { return p.MatchID == matchID })
}

// FindActiveByMatch finds the active poll for a match; (nil, nil) when none
func (r *PollRepository) FindActiveByMatch(ctx context.Context, matchID string) (*models.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, poll := range r.polls {
		if poll.MatchID == matchID && poll.Status == models.PollStatusActive {
			return clonePoll(poll), nil
		}
	}
	return nil, nil
}

// FindArchived finds archived polls, optionally filtered by match
func (r *PollRepository) FindArchived(ctx context.Context, matchID string) ([]*models.Poll, error) {
	return r.findWhere(func(p *models.Poll) bool {
		if p.Status != models.PollStatusArchived {
			return false
		}
		return matchID == "" || p.MatchID == matchID
	})
}

// AttachPolicy sets the activation policy on a DRAFT poll and arms it
func (r *PollRepository) AttachPolicy(ctx context.Context, id primitive.ObjectID, policy models.ActivationPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	poll, ok := r.polls[id]
	if !ok {
		return models.ErrNotFound
	}
	if poll.Status != models.PollStatusDraft {
		return fmt.Errorf("poll is %s, expected %s: %w", poll.Status, models.PollStatusDraft, models.ErrInvalidState)
	}
	poll.Activation = policy
	poll.Status = models.PollStatusArmed
	poll.UpdatedAt = time.Now()
	return nil
}

// UpdateStatus flips the status from exactly `from` to `to`
func (r *PollRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.PollStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	poll, ok := r.polls[id]
	if !ok {
		return models.ErrNotFound
	}
	if poll.Status != from {
		return fmt.Errorf("poll is %s, expected %s: %w", poll.Status, from, models.ErrInvalidState)
	}
	poll.Status = to
	poll.UpdatedAt = time.Now()
	return nil
}

// IncrementVote adds one vote for the given player while holding the lock, so
// the option counter and the total move together.
func (r *PollRepository) IncrementVote(ctx context.Context, id primitive.ObjectID, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	poll, ok := r.polls[id]
	if !ok {
		return models.ErrNotFound
	}
	if poll.Status != models.PollStatusActive {
		return fmt.Errorf("poll is %s: %w", poll.Status, models.ErrPollNotActive)
	}
	for i := range poll.Options {
		if poll.Options[i].PlayerID == playerID {
			poll.Options[i].Votes++
			poll.TotalVotes++
			poll.UpdatedAt = time.Now()
			return nil
		}
	}
	return fmt.Errorf("player %s: %w", playerID, models.ErrUnknownOption)
}

// ArchiveResults writes the snapshot and flips CLOSED -> ARCHIVED atomically
func (r *PollRepository) ArchiveResults(ctx context.Context, id primitive.ObjectID, results *models.PollResults) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	poll, ok := r.polls[id]
	if !ok {
		return models.ErrNotFound
	}
	if poll.Status != models.PollStatusClosed {
		return fmt.Errorf("poll is %s, expected %s: %w", poll.Status, models.PollStatusClosed, models.ErrInvalidState)
	}
	poll.Results = cloneResults(results)
	poll.Status = models.PollStatusArchived
	poll.UpdatedAt = time.Now()
	return nil
}

// Delete removes a poll
func (r *PollRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.polls[id]; !ok {
		return models.ErrNotFound
	}
	delete(r.polls, id)
	return nil
}

func (r *PollRepository) findWhere(match func(*models.Poll) bool) ([]*models.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	polls := []*models.Poll{}
	for _, poll := range r.polls {
		if match(poll) {
			polls = append(polls, clonePoll(poll))
		}
	}
	sort.Slice(polls, func(i, j int) bool {
		return polls[i].CreatedAt.After(polls[j].CreatedAt)
	})
	return polls, nil
}

// clonePoll deep-copies a poll so callers never share mutable state with the
// store.
func clonePoll(p *models.Poll) *models.Poll {
	clone := *p
	clone.Options = append([]models.PollOption(nil), p.Options...)
	clone.Results = cloneResults(p.Results)
	return &clone
}

func cloneResults(res *models.PollResults) *models.PollResults {
	if res == nil {
		return nil
	}
	clone := *res
	clone.Rankings = append([]models.Ranking(nil), res.Rankings...)
	return &clone
}
