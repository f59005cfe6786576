package models

import (
	"errors"
	"testing"
)

func TestNewPollOptions(t *testing.T) {
	tests := []struct {
		name      string
		playerIDs []string
		wantErr   error
	}{
		{
			name:      "valid option set",
			playerIDs: []string{"p1", "p2", "p3"},
		},
		{
			name:      "single option rejected",
			playerIDs: []string{"p1"},
			wantErr:   ErrTooFewOptions,
		},
		{
			name:      "empty option set rejected",
			playerIDs: nil,
			wantErr:   ErrTooFewOptions,
		},
		{
			name:      "duplicate player rejected",
			playerIDs: []string{"p1", "p2", "p1"},
			wantErr:   ErrDuplicateOption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			options, err := NewPollOptions(tt.playerIDs)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(options) != len(tt.playerIDs) {
				t.Errorf("Expected %d options, got %d", len(tt.playerIDs), len(options))
			}
			for i, option := range options {
				if option.PlayerID != tt.playerIDs[i] {
					t.Errorf("Option %d: expected player %s, got %s", i, tt.playerIDs[i], option.PlayerID)
				}
				if option.Votes != 0 {
					t.Errorf("Option %d: expected zero votes, got %d", i, option.Votes)
				}
			}
		})
	}
}

func TestNewPollOptionsRejectsEmptyPlayerID(t *testing.T) {
	if _, err := NewPollOptions([]string{"p1", ""}); err == nil {
		t.Fatal("Expected error for empty player ID")
	}
}

func TestPercentageZeroGuard(t *testing.T) {
	// A poll with no votes shows 0% everywhere instead of dividing by zero.
	if got := Percentage(0, 0); got != 0 {
		t.Errorf("Expected 0%% for empty poll, got %f", got)
	}
	if got := Percentage(5, 10); got != 50 {
		t.Errorf("Expected 50%%, got %f", got)
	}
	if got := Percentage(1, 3); got < 33.3 || got > 33.4 {
		t.Errorf("Expected ~33.3%%, got %f", got)
	}
}

func TestSumOptionVotesMatchesTotal(t *testing.T) {
	poll := &Poll{
		Options: []PollOption{
			{PlayerID: "p1", Votes: 7},
			{PlayerID: "p2", Votes: 3},
		},
		TotalVotes: 10,
	}
	if got := poll.SumOptionVotes(); got != poll.TotalVotes {
		t.Errorf("Option sum %d does not match total %d", got, poll.TotalVotes)
	}
}

func TestHasOption(t *testing.T) {
	poll := &Poll{Options: []PollOption{{PlayerID: "p1"}, {PlayerID: "p2"}}}
	if !poll.HasOption("p1") {
		t.Error("Expected p1 to be an option")
	}
	if poll.HasOption("p9") {
		t.Error("Did not expect p9 to be an option")
	}
}
