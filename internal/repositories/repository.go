package repositories

import (
	"context"
	"time"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PollRepository defines the interface for poll data operations.
//
// UpdateStatus and IncrementVote are the two writes the engine's atomicity
// contract rests on: UpdateStatus is a compare-and-swap on the expected prior
// status, and IncrementVote updates the matching option counter and the poll
// total as a single write.
type PollRepository interface {
	Create(ctx context.Context, poll *models.Poll) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Poll, error)
	FindAll(ctx context.Context) ([]*models.Poll, error)
	FindByStatus(ctx context.Context, statuses []models.PollStatus) ([]*models.Poll, error)
	FindByMatch(ctx context.Context, matchID string) ([]*models.Poll, error)
	FindActiveByMatch(ctx context.Context, matchID string) (*models.Poll, error)
	FindArchived(ctx context.Context, matchID string) ([]*models.Poll, error)

	// AttachPolicy sets the activation policy on a DRAFT poll and arms it in
	// one write. Returns models.ErrInvalidState once the poll has left DRAFT.
	AttachPolicy(ctx context.Context, id primitive.ObjectID, policy models.ActivationPolicy) error

	// UpdateStatus flips the status from exactly `from` to `to`. It returns
	// models.ErrInvalidState when the poll is no longer in `from`, so racing
	// schedulers cannot apply the same transition twice.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to models.PollStatus) error

	// IncrementVote atomically adds one vote to the given player's option and
	// to the poll total, provided the poll is ACTIVE and carries the option.
	// It returns models.ErrPollNotActive or models.ErrUnknownOption otherwise.
	IncrementVote(ctx context.Context, id primitive.ObjectID, playerID string) error

	// ArchiveResults writes the results snapshot and flips CLOSED -> ARCHIVED
	// in one atomic update, so a reader can never observe ARCHIVED without
	// results.
	ArchiveResults(ctx context.Context, id primitive.ObjectID, results *models.PollResults) error

	// Delete removes a poll. Only DRAFT and ARMED polls may be deleted; the
	// service layer enforces that rule.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PollTemplateRepository defines the interface for poll template operations
type PollTemplateRepository interface {
	Create(ctx context.Context, template *models.PollTemplate) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PollTemplate, error)
	FindAll(ctx context.Context) ([]*models.PollTemplate, error)
	Update(ctx context.Context, template *models.PollTemplate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// MatchEventRepository records ingested match-status changes
type MatchEventRepository interface {
	Create(ctx context.Context, event *models.MatchEvent) error
	FindByMatch(ctx context.Context, matchID string) ([]*models.MatchEvent, error)
	FindSince(ctx context.Context, since time.Time) ([]*models.MatchEvent, error)
}

// AdminUserRepository defines the interface for dashboard operator accounts
type AdminUserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error)
}
