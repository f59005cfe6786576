package services

import (
	"sort"
	"time"

	"github.com/fcadmin/matchvote-backend/internal/models"
)

// CompileResults freezes a poll's tally into its ranked archival snapshot.
// Options are ranked descending by votes; equal counts are broken by
// ascending player ID so the ordering is deterministic regardless of option
// insertion order. Percentages are computed once here and never recomputed
// after archival.
func CompileResults(poll *models.Poll, closedAt time.Time) *models.PollResults {
	rankings := make([]models.Ranking, 0, len(poll.Options))
	for _, option := range poll.Options {
		rankings = append(rankings, models.Ranking{
			PlayerID:   option.PlayerID,
			Votes:      option.Votes,
			Percentage: models.Percentage(option.Votes, poll.TotalVotes),
		})
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Votes != rankings[j].Votes {
			return rankings[i].Votes > rankings[j].Votes
		}
		return rankings[i].PlayerID < rankings[j].PlayerID
	})

	return &models.PollResults{
		Rankings:   rankings,
		Winner:     rankings[0],
		TotalVotes: poll.TotalVotes,
		ClosedAt:   closedAt,
	}
}
