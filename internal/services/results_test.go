package services

import (
	"math"
	"testing"
	"time"

	"github.com/fcadmin/matchvote-backend/internal/models"
)

func TestCompileResultsRanksByVotes(t *testing.T) {
	poll := &models.Poll{
		Options: []models.PollOption{
			{PlayerID: "p2", Votes: 300},
			{PlayerID: "p1", Votes: 500},
			{PlayerID: "p3", Votes: 200},
		},
		TotalVotes: 1000,
	}

	results := CompileResults(poll, time.Now())

	wantOrder := []string{"p1", "p2", "p3"}
	for i, want := range wantOrder {
		if results.Rankings[i].PlayerID != want {
			t.Errorf("Ranking %d: expected %s, got %s", i, want, results.Rankings[i].PlayerID)
		}
	}
	if results.Winner.PlayerID != "p1" {
		t.Errorf("Expected winner p1, got %s", results.Winner.PlayerID)
	}
	if results.TotalVotes != 1000 {
		t.Errorf("Expected total 1000, got %d", results.TotalVotes)
	}

	wantPct := []float64{50, 30, 20}
	for i, want := range wantPct {
		if results.Rankings[i].Percentage != want {
			t.Errorf("Ranking %d: expected %.1f%%, got %f", i, want, results.Rankings[i].Percentage)
		}
	}
}

func TestCompileResultsTieBreakByPlayerID(t *testing.T) {
	// Equal counts order by ascending player ID, not insertion order.
	poll := &models.Poll{
		Options: []models.PollOption{
			{PlayerID: "p2", Votes: 10},
			{PlayerID: "p1", Votes: 10},
		},
		TotalVotes: 20,
	}

	results := CompileResults(poll, time.Now())

	if results.Rankings[0].PlayerID != "p1" || results.Rankings[1].PlayerID != "p2" {
		t.Errorf("Expected tie ordered p1, p2; got %s, %s",
			results.Rankings[0].PlayerID, results.Rankings[1].PlayerID)
	}
	if results.Winner.PlayerID != "p1" {
		t.Errorf("Expected deterministic winner p1, got %s", results.Winner.PlayerID)
	}
}

func TestCompileResultsPercentagesSumToHundred(t *testing.T) {
	poll := &models.Poll{
		Options: []models.PollOption{
			{PlayerID: "p1", Votes: 1},
			{PlayerID: "p2", Votes: 1},
			{PlayerID: "p3", Votes: 1},
		},
		TotalVotes: 3,
	}

	results := CompileResults(poll, time.Now())

	var sum float64
	for _, ranking := range results.Rankings {
		sum += ranking.Percentage
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("Expected percentages to sum to 100, got %f", sum)
	}
}

func TestCompileResultsZeroVotes(t *testing.T) {
	poll := &models.Poll{
		Options: []models.PollOption{
			{PlayerID: "p1"},
			{PlayerID: "p2"},
		},
	}

	results := CompileResults(poll, time.Now())

	for _, ranking := range results.Rankings {
		if ranking.Percentage != 0 {
			t.Errorf("Expected 0%% for empty poll, got %f for %s", ranking.Percentage, ranking.PlayerID)
		}
	}
	if results.Winner.PlayerID != "p1" {
		t.Errorf("Expected winner p1 by tie-break, got %s", results.Winner.PlayerID)
	}
}
