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

// MatchEventRepository is an in-memory repositories.MatchEventRepository
type MatchEventRepository struct {
	mu     sync.Mutex
	events []*models.MatchEvent
}

// NewMatchEventRepository creates an empty in-memory event repository
func NewMatchEventRepository() repositories.MatchEventRepository {
	return &MatchEventRepository{}
}

// Create records an event
func (r *MatchEventRepository) Create(ctx context.Context, event *models.MatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}
	clone := *event
	r.events = append(r.events, &clone)
	return nil
}

// FindByMatch finds all recorded events for a match, newest first
func (r *MatchEventRepository) FindByMatch(ctx context.Context, matchID string) ([]*models.MatchEvent, error) {
	return r.findWhere(func(e *models.MatchEvent) bool { return e.MatchID == matchID })
}

// FindSince finds events received at or after the given time
func (r *MatchEventRepository) FindSince(ctx context.Context, since time.Time) ([]*models.MatchEvent, error) {
	return r.findWhere(func(e *models.MatchEvent) bool { return !e.ReceivedAt.Before(since) })
}

func (r *MatchEventRepository) findWhere(match func(*models.MatchEvent) bool) ([]*models.MatchEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Walk the log newest insertion first; the stable sort below then breaks
	// equal-timestamp ties toward the most recently recorded event.
	events := []*models.MatchEvent{}
	for i := len(r.events) - 1; i >= 0; i-- {
		if match(r.events[i]) {
			clone := *r.events[i]
			events = append(events, &clone)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].ReceivedAt.After(events[j].ReceivedAt)
	})
	return events, nil
}
