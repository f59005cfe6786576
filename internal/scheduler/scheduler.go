// Package scheduler drives automatic poll activation and closing. A single
// recurring evaluator sweeps every armed or active poll each tick and applies
// its activation policy; match-feed events are recorded and evaluated
// immediately as they arrive.
//
// Trigger conditions are thresholds, not edges: a poll whose start time
// passed while the process was down still activates on the next tick, and a
// match that went live before a restart is re-read from the recorded event
// trail.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/repositories"
	"github.com/fcadmin/matchvote-backend/internal/services"
	"golang.org/x/exp/slog"
)

// PollScheduler evaluates poll activation policies on a fixed tick
type PollScheduler struct {
	pollService services.PollService
	pollRepo    repositories.PollRepository
	eventRepo   repositories.MatchEventRepository
	interval    time.Duration
	now         func() time.Time
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewPollScheduler creates a new PollScheduler. The tick interval bounds the
// latency between a trigger condition becoming true and the transition being
// applied; it never affects whether a transition eventually happens.
func NewPollScheduler(
	pollService services.PollService,
	pollRepo repositories.PollRepository,
	eventRepo repositories.MatchEventRepository,
	interval time.Duration,
) *PollScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &PollScheduler{
		pollService: pollService,
		pollRepo:    pollRepo,
		eventRepo:   eventRepo,
		interval:    interval,
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start runs the tick loop until Stop is called. Run it in a goroutine.
func (s *PollScheduler) Start() {
	slog.Info("Poll scheduler starting", "tickInterval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Poll scheduler shutting down")
			return
		case <-ticker.C:
			s.EvaluateTick(s.ctx)
		}
	}
}

// Stop gracefully stops the tick loop
func (s *PollScheduler) Stop() {
	s.cancel()
}

// EvaluateTick sweeps every non-terminal poll once and applies its activation
// policy. A failure on one poll never stops evaluation of the rest; failed
// transitions are retried on the next tick.
func (s *PollScheduler) EvaluateTick(ctx context.Context) {
	polls, err := s.pollRepo.FindByStatus(ctx, []models.PollStatus{models.PollStatusArmed, models.PollStatusActive})
	if err != nil {
		slog.Error("Scheduler failed to list polls for tick", "error", err)
		return
	}

	now := s.now()
	for _, poll := range polls {
		if err := s.evaluatePoll(ctx, poll, now); err != nil {
			slog.Warn("Scheduler failed to evaluate poll", "error", err, "pollId", poll.ID.Hex())
		}
	}
}

// HandleMatchStatusChanged ingests one match-feed event: it is recorded for
// the audit trail, then the match's polls are evaluated immediately rather
// than waiting for the next tick. The just-ingested status is applied
// directly; re-reading the trail here could return an equal-timestamp older
// event instead of this one.
func (s *PollScheduler) HandleMatchStatusChanged(ctx context.Context, matchID string, status models.MatchStatus) error {
	event := &models.MatchEvent{MatchID: matchID, Status: status, ReceivedAt: s.now()}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return err
	}
	slog.Info("Match status changed", "matchId", matchID, "status", status)

	polls, err := s.pollRepo.FindByMatch(ctx, matchID)
	if err != nil {
		return err
	}
	for _, poll := range polls {
		if poll.Activation.Type != models.ActivationOnMatchLive {
			continue
		}
		if err := s.applyMatchStatus(ctx, poll, status); err != nil {
			slog.Warn("Failed to evaluate poll for match event", "error", err, "pollId", poll.ID.Hex(), "matchId", matchID)
		}
	}
	return nil
}

func (s *PollScheduler) evaluatePoll(ctx context.Context, poll *models.Poll, now time.Time) error {
	switch poll.Activation.Type {
	case models.ActivationManual:
		return nil // only explicit admin commands move manual polls

	case models.ActivationScheduled:
		return s.evaluateScheduled(ctx, poll, now)

	case models.ActivationOnMatchLive:
		return s.evaluateMatchLinked(ctx, poll)

	default:
		slog.Warn("Poll has unknown activation policy", "pollId", poll.ID.Hex(), "policy", poll.Activation.Type)
		return nil
	}
}

func (s *PollScheduler) evaluateScheduled(ctx context.Context, poll *models.Poll, now time.Time) error {
	policy := poll.Activation
	if poll.Status == models.PollStatusArmed && policy.StartAt != nil && !now.Before(*policy.StartAt) {
		return s.activate(ctx, poll)
	}
	if poll.Status == models.PollStatusActive && policy.EndAt != nil && !now.Before(*policy.EndAt) {
		_, err := s.pollService.ClosePoll(ctx, poll.ID)
		return err
	}
	return nil
}

// evaluateMatchLinked reads the match's latest recorded status instead of
// reacting to the event edge, so a status change observed before a restart
// still takes effect.
func (s *PollScheduler) evaluateMatchLinked(ctx context.Context, poll *models.Poll) error {
	status, ok, err := s.latestMatchStatus(ctx, poll.MatchID)
	if err != nil {
		return err
	}
	if !ok {
		return nil // no feed event recorded yet
	}
	return s.applyMatchStatus(ctx, poll, status)
}

// applyMatchStatus applies one match status to one match-linked poll. Polls
// outside ARMED/ACTIVE fall through untouched.
func (s *PollScheduler) applyMatchStatus(ctx context.Context, poll *models.Poll, status models.MatchStatus) error {
	if poll.Status == models.PollStatusArmed && status == models.MatchStatusLive {
		return s.activate(ctx, poll)
	}
	if poll.Status == models.PollStatusActive && status == models.MatchStatusCompleted {
		_, err := s.pollService.ClosePoll(ctx, poll.ID)
		return err
	}
	return nil
}

func (s *PollScheduler) activate(ctx context.Context, poll *models.Poll) error {
	_, err := s.pollService.ActivatePoll(ctx, poll.ID)
	if err != nil {
		if errors.Is(err, models.ErrActiveConflict) {
			// Another poll holds the match; stay armed and retry next tick.
			slog.Warn("Activation deferred, match already has an active poll", "pollId", poll.ID.Hex(), "matchId", poll.MatchID)
			return nil
		}
		if errors.Is(err, models.ErrInvalidState) {
			// A racing trigger source applied the transition first.
			return nil
		}
		return err
	}
	return nil
}

func (s *PollScheduler) latestMatchStatus(ctx context.Context, matchID string) (models.MatchStatus, bool, error) {
	events, err := s.eventRepo.FindByMatch(ctx, matchID)
	if err != nil {
		return "", false, err
	}
	if len(events) == 0 {
		return "", false, nil
	}
	// Events are returned newest first.
	return events[0].Status, true, nil
}
