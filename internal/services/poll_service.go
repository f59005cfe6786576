package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fcadmin/matchvote-backend/internal/cache"
	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure PollServiceImpl implements PollService
var _ PollService = (*PollServiceImpl)(nil)

// PollServiceImpl handles the poll lifecycle: creation, arming, activation,
// closing and archival.
type PollServiceImpl struct {
	pollRepo     repositories.PollRepository
	templateRepo repositories.PollTemplateRepository
	tallyCache   *cache.TallyCache // optional; nil disables caching
}

// NewPollService creates a new PollServiceImpl
func NewPollService(
	pollRepo repositories.PollRepository,
	templateRepo repositories.PollTemplateRepository,
	tallyCache *cache.TallyCache,
) *PollServiceImpl {
	return &PollServiceImpl{
		pollRepo:     pollRepo,
		templateRepo: templateRepo,
		tallyCache:   tallyCache,
	}
}

// CreatePoll creates a poll ad hoc. With an activation policy supplied the
// poll is born ARMED; without one it rests in DRAFT.
func (s *PollServiceImpl) CreatePoll(ctx context.Context, input CreatePollInput) (*models.Poll, error) {
	options, err := models.NewPollOptions(input.PlayerIDs)
	if err != nil {
		return nil, err
	}

	status := models.PollStatusDraft
	activation := models.ActivationPolicy{Type: models.ActivationManual}
	if input.Activation != nil {
		if err := validatePolicy(*input.Activation, input.MatchID); err != nil {
			return nil, err
		}
		activation = *input.Activation
		status = models.PollStatusArmed
	}

	poll := &models.Poll{
		MatchID:     input.MatchID,
		Title:       input.Title,
		Description: input.Description,
		Options:     options,
		Status:      status,
		Activation:  activation,
		CreatedBy:   input.CreatedBy,
	}
	if err := s.pollRepo.Create(ctx, poll); err != nil {
		slog.Error("Failed to create poll", "error", err, "title", input.Title)
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}

	slog.Info("Poll created", "pollId", poll.ID.Hex(), "matchId", poll.MatchID, "status", poll.Status, "policy", activation.Type)
	return poll, nil
}

// CreatePollFromTemplate copies a template's defaults into a new poll. The
// template is read once here; later template edits never reach the poll.
func (s *PollServiceImpl) CreatePollFromTemplate(ctx context.Context, templateID primitive.ObjectID, input CreatePollInput) (*models.Poll, error) {
	template, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("template lookup failed: %w", err)
	}

	if len(input.PlayerIDs) == 0 {
		input.PlayerIDs = append([]string(nil), template.DefaultPlayerIDs...)
	}
	if input.Title == "" {
		input.Title = template.Name
	}
	if input.Description == "" {
		input.Description = template.Description
	}
	if input.Activation == nil {
		if policy := defaultPolicyFromTemplate(template, input.MatchID); policy != nil {
			input.Activation = policy
		}
	}
	return s.CreatePoll(ctx, input)
}

// AttachPolicy arms a DRAFT poll with an activation policy
func (s *PollServiceImpl) AttachPolicy(ctx context.Context, id primitive.ObjectID, policy models.ActivationPolicy) (*models.Poll, error) {
	poll, err := s.pollRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validatePolicy(policy, poll.MatchID); err != nil {
		return nil, err
	}
	if err := s.pollRepo.AttachPolicy(ctx, id, policy); err != nil {
		return nil, err
	}
	return s.pollRepo.FindByID(ctx, id)
}

// ActivatePoll transitions ARMED -> ACTIVE. Racing trigger sources are
// expected: activating an already-active poll returns it unchanged.
func (s *PollServiceImpl) ActivatePoll(ctx context.Context, id primitive.ObjectID) (*models.Poll, error) {
	poll, err := s.pollRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch poll.Status {
	case models.PollStatusActive:
		return poll, nil // idempotent
	case models.PollStatusArmed:
		// proceed
	default:
		return nil, fmt.Errorf("poll is %s: %w", poll.Status, models.ErrInvalidState)
	}

	// At most one active poll per match.
	if poll.MatchID != "" {
		active, err := s.pollRepo.FindActiveByMatch(ctx, poll.MatchID)
		if err != nil {
			return nil, fmt.Errorf("failed to check for active poll on match %s: %w", poll.MatchID, err)
		}
		if active != nil && active.ID != poll.ID {
			slog.Warn("Poll activation deferred", "pollId", id.Hex(), "matchId", poll.MatchID, "activePollId", active.ID.Hex())
			return nil, fmt.Errorf("poll %s holds match %s: %w", active.ID.Hex(), poll.MatchID, models.ErrActiveConflict)
		}
	}

	err = s.pollRepo.UpdateStatus(ctx, id, models.PollStatusArmed, models.PollStatusActive)
	if err != nil {
		if errors.Is(err, models.ErrInvalidState) {
			// Lost the race to another trigger source; if the winner made it
			// active, that is the outcome we wanted.
			current, findErr := s.pollRepo.FindByID(ctx, id)
			if findErr == nil && current.Status == models.PollStatusActive {
				return current, nil
			}
		}
		return nil, err
	}

	slog.Info("Poll activated", "pollId", id.Hex(), "matchId", poll.MatchID)
	return s.pollRepo.FindByID(ctx, id)
}

// ClosePoll transitions ACTIVE -> CLOSED, compiles the results snapshot and
// archives it. The compile step is idempotent: a poll that is already
// ARCHIVED comes back with its stored snapshot untouched.
func (s *PollServiceImpl) ClosePoll(ctx context.Context, id primitive.ObjectID) (*models.Poll, error) {
	poll, err := s.pollRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch poll.Status {
	case models.PollStatusArchived:
		return poll, nil // already closed and compiled
	case models.PollStatusClosed:
		// A previous close was interrupted between the flip and the archive
		// write; finish the job.
		return s.compileAndArchive(ctx, id)
	case models.PollStatusActive:
		// proceed
	default:
		return nil, fmt.Errorf("poll is %s: %w", poll.Status, models.ErrInvalidState)
	}

	err = s.pollRepo.UpdateStatus(ctx, id, models.PollStatusActive, models.PollStatusClosed)
	if err != nil {
		if errors.Is(err, models.ErrInvalidState) {
			// Another closer (scheduler tick, manual command, match end) won.
			current, findErr := s.pollRepo.FindByID(ctx, id)
			if findErr == nil {
				switch current.Status {
				case models.PollStatusArchived:
					return current, nil
				case models.PollStatusClosed:
					return s.compileAndArchive(ctx, id)
				}
			}
		}
		return nil, err
	}

	slog.Info("Poll closed", "pollId", id.Hex(), "matchId", poll.MatchID)
	return s.compileAndArchive(ctx, id)
}

// compileAndArchive freezes the tally of a CLOSED poll into its archived
// snapshot. No votes can land after the CLOSED flip, so the re-read here sees
// the final counters.
func (s *PollServiceImpl) compileAndArchive(ctx context.Context, id primitive.ObjectID) (*models.Poll, error) {
	poll, err := s.pollRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if poll.Status == models.PollStatusArchived {
		return poll, nil
	}

	results := CompileResults(poll, time.Now())
	err = s.pollRepo.ArchiveResults(ctx, id, results)
	if err != nil {
		if errors.Is(err, models.ErrInvalidState) {
			current, findErr := s.pollRepo.FindByID(ctx, id)
			if findErr == nil && current.Status == models.PollStatusArchived {
				return current, nil
			}
		}
		slog.Error("Failed to archive poll results", "error", err, "pollId", id.Hex())
		return nil, err
	}

	if s.tallyCache != nil {
		if err := s.tallyCache.Invalidate(ctx, id.Hex()); err != nil {
			slog.Warn("Failed to invalidate tally cache", "error", err, "pollId", id.Hex())
		}
	}

	slog.Info("Poll archived", "pollId", id.Hex(), "totalVotes", results.TotalVotes, "winner", results.Winner.PlayerID)
	return s.pollRepo.FindByID(ctx, id)
}

// CancelPoll deletes a poll that has not activated yet
func (s *PollServiceImpl) CancelPoll(ctx context.Context, id primitive.ObjectID) error {
	poll, err := s.pollRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if poll.Status != models.PollStatusDraft && poll.Status != models.PollStatusArmed {
		return fmt.Errorf("poll is %s: %w", poll.Status, models.ErrInvalidState)
	}
	if err := s.pollRepo.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("Poll cancelled", "pollId", id.Hex(), "status", poll.Status)
	return nil
}

// GetPollByID retrieves a poll by its ID
func (s *PollServiceImpl) GetPollByID(ctx context.Context, id primitive.ObjectID) (*models.Poll, error) {
	return s.pollRepo.FindByID(ctx, id)
}

// GetPolls retrieves all polls
func (s *PollServiceImpl) GetPolls(ctx context.Context) ([]*models.Poll, error) {
	return s.pollRepo.FindAll(ctx)
}

// GetPollsByStatus retrieves polls in the given status
func (s *PollServiceImpl) GetPollsByStatus(ctx context.Context, status models.PollStatus) ([]*models.Poll, error) {
	return s.pollRepo.FindByStatus(ctx, []models.PollStatus{status})
}

// GetPollsByMatch retrieves all polls attached to a match
func (s *PollServiceImpl) GetPollsByMatch(ctx context.Context, matchID string) ([]*models.Poll, error) {
	return s.pollRepo.FindByMatch(ctx, matchID)
}

// GetActivePolls retrieves all currently active polls
func (s *PollServiceImpl) GetActivePolls(ctx context.Context) ([]*models.Poll, error) {
	return s.pollRepo.FindByStatus(ctx, []models.PollStatus{models.PollStatusActive})
}

// GetArchivedPolls retrieves archived polls, optionally filtered by match
func (s *PollServiceImpl) GetArchivedPolls(ctx context.Context, matchID string) ([]*models.Poll, error) {
	return s.pollRepo.FindArchived(ctx, matchID)
}

// validatePolicy checks the activation policy against the poll's match link
func validatePolicy(policy models.ActivationPolicy, matchID string) error {
	switch policy.Type {
	case models.ActivationManual:
		return nil
	case models.ActivationOnMatchLive:
		if matchID == "" {
			return errors.New("match-linked activation requires a match")
		}
		return nil
	case models.ActivationScheduled:
		if policy.StartAt == nil {
			return errors.New("scheduled activation requires a start time")
		}
		if policy.EndAt != nil && !policy.EndAt.After(*policy.StartAt) {
			return errors.New("scheduled end time must be after the start time")
		}
		return nil
	default:
		return fmt.Errorf("unknown activation policy %q", policy.Type)
	}
}

// defaultPolicyFromTemplate maps a template's default flags onto a policy.
// AutoStart needs a match to listen to; without one the flags degrade to
// manual arming so the poll is still usable.
func defaultPolicyFromTemplate(template *models.PollTemplate, matchID string) *models.ActivationPolicy {
	if template.DefaultAutoStart && matchID != "" {
		return &models.ActivationPolicy{Type: models.ActivationOnMatchLive}
	}
	if template.DefaultAutoStart || template.DefaultScheduledStart {
		return &models.ActivationPolicy{Type: models.ActivationManual}
	}
	return nil
}
