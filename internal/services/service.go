package services

import (
	"context"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreatePollInput carries everything needed to create a poll ad hoc or from a
// template. A non-nil Activation arms the poll immediately; nil leaves it in
// DRAFT until a policy is attached.
type CreatePollInput struct {
	MatchID     string
	Title       string
	Description string
	PlayerIDs   []string
	Activation  *models.ActivationPolicy
	CreatedBy   string
}

// PollService defines the interface for poll lifecycle operations
type PollService interface {
	// CreatePoll creates a poll ad hoc from the given input
	CreatePoll(ctx context.Context, input CreatePollInput) (*models.Poll, error)

	// CreatePollFromTemplate copies a template into a new poll. Later edits
	// to the template never touch the created poll.
	CreatePollFromTemplate(ctx context.Context, templateID primitive.ObjectID, input CreatePollInput) (*models.Poll, error)

	// AttachPolicy arms a DRAFT poll with an activation policy
	AttachPolicy(ctx context.Context, id primitive.ObjectID, policy models.ActivationPolicy) (*models.Poll, error)

	// ActivatePoll transitions an armed poll to ACTIVE. Activating an
	// already-active poll is a no-op returning the current state. Activation
	// is refused with models.ErrActiveConflict while another poll for the
	// same match is active.
	ActivatePoll(ctx context.Context, id primitive.ObjectID) (*models.Poll, error)

	// ClosePoll transitions an ACTIVE poll to CLOSED, compiles the ranked
	// results snapshot and archives it. Closing an archived poll returns the
	// stored snapshot without recomputation.
	ClosePoll(ctx context.Context, id primitive.ObjectID) (*models.Poll, error)

	// CancelPoll deletes a poll that has not yet activated. Once ACTIVE the
	// only exit is ClosePoll; votes are never discarded.
	CancelPoll(ctx context.Context, id primitive.ObjectID) error

	GetPollByID(ctx context.Context, id primitive.ObjectID) (*models.Poll, error)
	GetPolls(ctx context.Context) ([]*models.Poll, error)
	GetPollsByStatus(ctx context.Context, status models.PollStatus) ([]*models.Poll, error)
	GetPollsByMatch(ctx context.Context, matchID string) ([]*models.Poll, error)
	GetActivePolls(ctx context.Context) ([]*models.Poll, error)
	GetArchivedPolls(ctx context.Context, matchID string) ([]*models.Poll, error)
}

// VoteService defines the interface for the vote-submission hot path
type VoteService interface {
	// SubmitVote counts one vote for the player and returns the live tally.
	// Rejects with models.ErrPollNotActive or models.ErrUnknownOption; safe
	// under arbitrary concurrency.
	SubmitVote(ctx context.Context, pollID primitive.ObjectID, playerID string) (*models.Tally, error)

	// GetLiveTally returns the current derived tally, served from the cache
	// when one is configured.
	GetLiveTally(ctx context.Context, pollID primitive.ObjectID) (*models.Tally, error)
}

// TemplateService defines the interface for poll template management
type TemplateService interface {
	CreateTemplate(ctx context.Context, template *models.PollTemplate) (*models.PollTemplate, error)
	GetTemplateByID(ctx context.Context, id primitive.ObjectID) (*models.PollTemplate, error)
	GetTemplates(ctx context.Context) ([]*models.PollTemplate, error)
	UpdateTemplate(ctx context.Context, template *models.PollTemplate) (*models.PollTemplate, error)
	DeleteTemplate(ctx context.Context, id primitive.ObjectID) error
}

// AuthService defines the interface for dashboard authentication
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, name, email, password, role string) (*models.AdminUser, error)
}
