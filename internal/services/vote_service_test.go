package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fcadmin/matchvote-backend/internal/models"
	"github.com/fcadmin/matchvote-backend/internal/repositories/memory"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newActivePoll(t *testing.T, pollSvc *PollServiceImpl, playerIDs []string) primitive.ObjectID {
	t.Helper()
	ctx := context.Background()
	poll, err := pollSvc.CreatePoll(ctx, CreatePollInput{
		Title:      "Best player",
		PlayerIDs:  playerIDs,
		Activation: manualPolicy(),
	})
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}
	if _, err := pollSvc.ActivatePoll(ctx, poll.ID); err != nil {
		t.Fatalf("ActivatePoll failed: %v", err)
	}
	return poll.ID
}

func TestSubmitVoteConcurrent(t *testing.T) {
	pollRepo := memory.NewPollRepository()
	pollSvc := NewPollService(pollRepo, memory.NewPollTemplateRepository(), nil)
	voteSvc := NewVoteService(pollRepo, nil)
	ctx := context.Background()

	pollID := newActivePoll(t, pollSvc, []string{"p1", "p2", "p3"})

	// 1000 voters race; every vote must land exactly once.
	votesPer := map[string]int{"p1": 500, "p2": 300, "p3": 200}
	var wg sync.WaitGroup
	for playerID, n := range votesPer {
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(playerID string) {
				defer wg.Done()
				if _, err := voteSvc.SubmitVote(ctx, pollID, playerID); err != nil {
					t.Errorf("SubmitVote failed: %v", err)
				}
			}(playerID)
		}
	}
	wg.Wait()

	poll, err := pollSvc.GetPollByID(ctx, pollID)
	if err != nil {
		t.Fatalf("GetPollByID failed: %v", err)
	}
	if poll.TotalVotes != 1000 {
		t.Errorf("Expected 1000 total votes, got %d", poll.TotalVotes)
	}
	if got := poll.SumOptionVotes(); got != poll.TotalVotes {
		t.Errorf("Option sum %d does not match total %d", got, poll.TotalVotes)
	}
	for _, option := range poll.Options {
		if int(option.Votes) != votesPer[option.PlayerID] {
			t.Errorf("Player %s: expected %d votes, got %d", option.PlayerID, votesPer[option.PlayerID], option.Votes)
		}
	}

	tally, err := voteSvc.GetLiveTally(ctx, pollID)
	if err != nil {
		t.Fatalf("GetLiveTally failed: %v", err)
	}
	wantPct := map[string]float64{"p1": 50, "p2": 30, "p3": 20}
	for _, ranking := range tally.Options {
		if ranking.Percentage != wantPct[ranking.PlayerID] {
			t.Errorf("Player %s: expected %.0f%%, got %f", ranking.PlayerID, wantPct[ranking.PlayerID], ranking.Percentage)
		}
	}
}

func TestSubmitVoteReturnsReceiptAndTally(t *testing.T) {
	pollRepo := memory.NewPollRepository()
	pollSvc := NewPollService(pollRepo, memory.NewPollTemplateRepository(), nil)
	voteSvc := NewVoteService(pollRepo, nil)
	ctx := context.Background()

	pollID := newActivePoll(t, pollSvc, []string{"p1", "p2"})

	tally, err := voteSvc.SubmitVote(ctx, pollID, "p1")
	if err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}
	if tally.ReceiptID == "" {
		t.Error("Expected a vote receipt")
	}
	if tally.TotalVotes != 1 {
		t.Errorf("Expected tally total 1, got %d", tally.TotalVotes)
	}

	// Repeat votes from the same voter are counted, not rejected.
	again, err := voteSvc.SubmitVote(ctx, pollID, "p1")
	if err != nil {
		t.Fatalf("Second SubmitVote failed: %v", err)
	}
	if again.ReceiptID == tally.ReceiptID {
		t.Error("Expected a fresh receipt per vote")
	}
	if again.TotalVotes != 2 {
		t.Errorf("Expected tally total 2, got %d", again.TotalVotes)
	}
}

func TestSubmitVoteRejectedWhenNotActive(t *testing.T) {
	pollRepo := memory.NewPollRepository()
	pollSvc := NewPollService(pollRepo, memory.NewPollTemplateRepository(), nil)
	voteSvc := NewVoteService(pollRepo, nil)
	ctx := context.Background()

	pollID := newActivePoll(t, pollSvc, []string{"p1", "p2"})
	if _, err := voteSvc.SubmitVote(ctx, pollID, "p1"); err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}

	if _, err := pollSvc.ClosePoll(ctx, pollID); err != nil {
		t.Fatalf("ClosePoll failed: %v", err)
	}

	_, err := voteSvc.SubmitVote(ctx, pollID, "p1")
	if !errors.Is(err, models.ErrPollNotActive) {
		t.Fatalf("Expected ErrPollNotActive, got %v", err)
	}

	// The rejected vote must not have touched the archived counts.
	poll, _ := pollSvc.GetPollByID(ctx, pollID)
	if poll.TotalVotes != 1 {
		t.Errorf("Expected 1 vote after rejected submission, got %d", poll.TotalVotes)
	}
	if poll.Results.TotalVotes != 1 {
		t.Errorf("Expected archived results unchanged, got %d", poll.Results.TotalVotes)
	}
}

func TestSubmitVoteUnknownOption(t *testing.T) {
	pollRepo := memory.NewPollRepository()
	pollSvc := NewPollService(pollRepo, memory.NewPollTemplateRepository(), nil)
	voteSvc := NewVoteService(pollRepo, nil)
	ctx := context.Background()

	pollID := newActivePoll(t, pollSvc, []string{"p1", "p2"})

	_, err := voteSvc.SubmitVote(ctx, pollID, "p99")
	if !errors.Is(err, models.ErrUnknownOption) {
		t.Fatalf("Expected ErrUnknownOption, got %v", err)
	}

	poll, _ := pollSvc.GetPollByID(ctx, pollID)
	if poll.TotalVotes != 0 {
		t.Errorf("Expected no votes counted, got %d", poll.TotalVotes)
	}
}

func TestSubmitVoteUnknownPoll(t *testing.T) {
	pollRepo := memory.NewPollRepository()
	voteSvc := NewVoteService(pollRepo, nil)

	_, err := voteSvc.SubmitVote(context.Background(), primitive.NewObjectID(), "p1")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetLiveTallyFallsBackToRepository(t *testing.T) {
	pollRepo := memory.NewPollRepository()
	pollSvc := NewPollService(pollRepo, memory.NewPollTemplateRepository(), nil)
	voteSvc := NewVoteService(pollRepo, nil)
	ctx := context.Background()

	pollID := newActivePoll(t, pollSvc, []string{"p1", "p2"})
	for i := 0; i < 3; i++ {
		if _, err := voteSvc.SubmitVote(ctx, pollID, "p2"); err != nil {
			t.Fatalf("SubmitVote failed: %v", err)
		}
	}

	tally, err := voteSvc.GetLiveTally(ctx, pollID)
	if err != nil {
		t.Fatalf("GetLiveTally failed: %v", err)
	}
	if tally.ReceiptID != "" {
		t.Error("Tally reads must not carry a receipt")
	}
	if tally.TotalVotes != 3 {
		t.Errorf("Expected 3 votes, got %d", tally.TotalVotes)
	}
}
