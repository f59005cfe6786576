package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/repositories/memory"
)

func newTestPollService() (*PollServiceImpl, *TemplateServiceImpl) {
	pollRepo := memory.NewPollRepository()
	templateRepo := memory.NewPollTemplateRepository()
	return NewPollService(pollRepo, templateRepo, nil), NewTemplateService(templateRepo)
}

func manualPolicy() *models.ActivationPolicy {
	return &models.ActivationPolicy{Type: models.ActivationManual}
}

func TestCreatePollArmsWithPolicy(t *testing.T) {
	svc, _ := newTestPollService()
	ctx := context.Background()

	poll, err := svc.CreatePoll(ctx, CreatePollInput{
		Title:      "Best player",
		PlayerIDs:  []string{"p1", "p2"},
		Activation: manualPolicy(),
	})
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}
	if poll.Status != models.PollStatusArmed {
		t.Errorf("Expected status %s, got %s", models.PollStatusArmed, poll.Status)
	}
}

func TestCreatePollWithoutPolicyStaysDraft(t *testing.T) {
	svc, _ := newTestPollService()
	ctx := context.Background()

	poll, err := svc.CreatePoll(ctx, CreatePollInput{
		Title:     "Best player",
		PlayerIDs: []string{"p1", "p2"},
	})
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}
	if poll.Status != models.PollStatusDraft {
		t.Errorf("Expected status %s, got %s", models.PollStatusDraft, poll.Status)
	}

	// Arming it later moves it to ARMED.
	armed, err := svc.AttachPolicy(ctx, poll.ID, *manualPolicy())
	if err != nil {
		t.Fatalf("AttachPolicy failed: %v", err)
	}
	if armed.Status != models.PollStatusArmed {
		t.Errorf("Expected status %s after arming, got %s", models.PollStatusArmed, armed.Status)
	}
}

func TestCreatePollValidation(t *testing.T) {
	svc, _ := newTestPollService()
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreatePollInput
	}{
		{
			name:  "too few options",
			input: CreatePollInput{Title: "x", PlayerIDs: []string{"p1"}, Activation: manualPolicy()},
		},
		{
			name:  "duplicate options",
			input: CreatePollInput{Title: "x", PlayerIDs: []string{"p1", "p1"}, Activation: manualPolicy()},
		},
		{
			name: "match-linked policy without match",
			input: CreatePollInput{
				Title:      "x",
				PlayerIDs:  []string{"p1", "p2"},
				Activation: &models.ActivationPolicy{Type: models.ActivationOnMatchLive},
			},
		},
		{
			name: "scheduled policy without start",
			input: CreatePollInput{
				Title:      "x",
				PlayerIDs:  []string{"p1", "p2"},
				Activation: &models.ActivationPolicy{Type: models.ActivationScheduled},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreatePoll(ctx, tt.input); err == nil {
				t.Error("Expected creation to fail")
			}
		})
	}
}

func TestCreatePollFromTemplateCopies(t *testing.T) {
	svc, templateSvc := newTestPollService()
	ctx := context.Background()

	template, err := templateSvc.CreateTemplate(ctx, &models.PollTemplate{
		Name:             "MVP of the match",
		Description:      "Pick the best player",
		DefaultPlayerIDs: []string{"p1", "p2", "p3"},
	})
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	poll, err := svc.CreatePollFromTemplate(ctx, template.ID, CreatePollInput{MatchID: "m1"})
	if err != nil {
		t.Fatalf("CreatePollFromTemplate failed: %v", err)
	}
	if poll.Title != "MVP of the match" {
		t.Errorf("Expected template name as title, got %q", poll.Title)
	}
	if len(poll.Options) != 3 {
		t.Fatalf("Expected 3 options from template, got %d", len(poll.Options))
	}

	// Editing and even deleting the template must not touch the poll.
	template.DefaultPlayerIDs = []string{"p9", "p10"}
	if _, err := templateSvc.UpdateTemplate(ctx, template); err != nil {
		t.Fatalf("UpdateTemplate failed: %v", err)
	}
	if err := templateSvc.DeleteTemplate(ctx, template.ID); err != nil {
		t.Fatalf("DeleteTemplate failed: %v", err)
	}

	reread, err := svc.GetPollByID(ctx, poll.ID)
	if err != nil {
		t.Fatalf("GetPollByID failed: %v", err)
	}
	if len(reread.Options) != 3 || reread.Options[0].PlayerID != "p1" {
		t.Error("Poll options changed after template edit/delete")
	}
}

func TestActivatePollIdempotent(t *testing.T) {
	svc, _ := newTestPollService()
	ctx := context.Background()

	poll, _ := svc.CreatePoll(ctx, CreatePollInput{
		Title: "x", PlayerIDs: []string{"p1", "p2"}, Activation: manualPolicy(),
	})

	first, err := svc.ActivatePoll(ctx, poll.ID)
	if err != nil {
		t.Fatalf("First activation failed: %v", err)
	}
	if first.Status != models.PollStatusActive {
		t.Fatalf("Expected ACTIVE, got %s", first.Status)
	}

	second, err := svc.ActivatePoll(ctx, poll.ID)
	if err != nil {
		t.Fatalf("Second activation should be a no-op, got error: %v", err)
	}
	if second.Status != models.PollStatusActive {
		t.Errorf("Expected ACTIVE after repeat activation, got %s", second.Status)
	}
}

func TestActivatePollMutualExclusionPerMatch(t *testing.T) {
	svc, _ := newTestPollService()
	ctx := context.Background()

	first, _ := svc.CreatePoll(ctx, CreatePollInput{
		Title: "first", MatchID: "m1", PlayerIDs: []string{"p1", "p2"}, Activation: manualPolicy(),
	})
	second, _ := svc.CreatePoll(ctx, CreatePollInput{
		Title: "second", MatchID: "m1", PlayerIDs: []string{"p3", "p4"}, Activation: manualPolicy(),
	})

	if _, err := svc.ActivatePoll(ctx, first.ID); err != nil {
		t.Fatalf("First activation failed: %v", err)
	}

	_, err := svc.ActivatePoll(ctx, second.ID)
	if !errors.Is(err, models.ErrActiveConflict) {
		t.Fatalf("Expected ErrActiveConflict, got %v", err)
	}

	// The loser stays armed and becomes activatable once the match frees up.
	stillArmed, _ := svc.GetPollByID(ctx, second.ID)
	if stillArmed.Status != models.PollStatusArmed {
		t.Errorf("Expected deferred poll to stay ARMED, got %s", stillArmed.Status)
	}

	if _, err := svc.ClosePoll(ctx, first.ID); err != nil {
		t.Fatalf("ClosePoll failed: %v", err)
	}
	if _, err := svc.ActivatePoll(ctx, second.ID); err != nil {
		t.Fatalf("Activation after close failed: %v", err)
	}
}

func TestClosePollCompilesAndArchives(t *testing.T) {
	svc, _ := newTestPollService()
	pollRepo := svc.pollRepo
	ctx := context.Background()

	poll, _ := svc.CreatePoll(ctx, CreatePollInput{
		Title: "x", PlayerIDs: []string{"p1", "p2"}, Activation: manualPolicy(),
	})
	if _, err := svc.ActivatePoll(ctx, poll.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		if err := pollRepo.IncrementVote(ctx, poll.ID, "p1"); err != nil {
			t.Fatalf("IncrementVote failed: %v", err)
		}
	}

	closed, err := svc.ClosePoll(ctx, poll.ID)
	if err != nil {
		t.Fatalf("ClosePoll failed: %v", err)
	}
	if closed.Status != models.PollStatusArchived {
		t.Fatalf("Expected ARCHIVED, got %s", closed.Status)
	}
	if closed.Results == nil {
		t.Fatal("Archived poll is missing its results snapshot")
	}
	if closed.Results.Winner.PlayerID != "p1" {
		t.Errorf("Expected winner p1, got %s", closed.Results.Winner.PlayerID)
	}
	if closed.Results.TotalVotes != 10 {
		t.Errorf("Expected 10 total votes, got %d", closed.Results.TotalVotes)
	}
}

func TestClosePollIdempotent(t *testing.T) {
	svc, _ := newTestPollService()
	ctx := context.Background()

	poll, _ := svc.CreatePoll(ctx, CreatePollInput{
		Title: "x", PlayerIDs: []string{"p1", "p2"}, Activation: manualPolicy(),
	})
	svc.ActivatePoll(ctx, poll.ID)

	first, err := svc.ClosePoll(ctx, poll.ID)
	if err != nil {
		t.Fatalf("First close failed: %v", err)
	}

	// Closing again returns the stored snapshot, not a recomputation.
	second, err := svc.ClosePoll(ctx, poll.ID)
	if err != nil {
		t.Fatalf("Second close should be benign, got: %v", err)
	}
	if !second.Results.ClosedAt.Equal(first.Results.ClosedAt) {
		t.Error("Recompiled results on repeat close; expected stored snapshot")
	}
}

func TestClosePollNotActive(t *testing.T) {
	svc, _ := newTestPollService()
	ctx := context.Background()

	poll, _ := svc.CreatePoll(ctx, CreatePollInput{
		Title: "x", PlayerIDs: []string{"p1", "p2"}, Activation: manualPolicy(),
	})

	_, err := svc.ClosePoll(ctx, poll.ID)
	if !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState closing an armed poll, got %v", err)
	}
}

func TestCancelPoll(t *testing.T) {
	svc, _ := newTestPollService()
	ctx := context.Background()

	armed, _ := svc.CreatePoll(ctx, CreatePollInput{
		Title: "x", PlayerIDs: []string{"p1", "p2"}, Activation: manualPolicy(),
	})
	if err := svc.CancelPoll(ctx, armed.ID); err != nil {
		t.Fatalf("Cancelling an armed poll failed: %v", err)
	}
	if _, err := svc.GetPollByID(ctx, armed.ID); !errors.Is(err, models.ErrNotFound) {
		t.Error("Expected cancelled poll to be gone")
	}

	// Once active, cancellation is refused; the only exit is a close that
	// preserves the tally.
	active, _ := svc.CreatePoll(ctx, CreatePollInput{
		Title: "y", PlayerIDs: []string{"p1", "p2"}, Activation: manualPolicy(),
	})
	svc.ActivatePoll(ctx, active.ID)
	if err := svc.CancelPoll(ctx, active.ID); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("Expected ErrInvalidState cancelling an active poll, got %v", err)
	}
}

func TestScheduledPolicyValidation(t *testing.T) {
	svc, _ := newTestPollService()
	ctx := context.Background()

	start := time.Now().Add(time.Hour)
	endBefore := start.Add(-time.Minute)
	_, err := svc.CreatePoll(ctx, CreatePollInput{
		Title:     "x",
		PlayerIDs: []string{"p1", "p2"},
		Activation: &models.ActivationPolicy{
			Type:    models.ActivationScheduled,
			StartAt: &start,
			EndAt:   &endBefore,
		},
	})
	if err == nil {
		t.Fatal("Expected end-before-start policy to be rejected")
	}
}
