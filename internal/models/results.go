package models

import "time"

// Ranking is a single row of an archived result, frozen at close time
type Ranking struct {
	PlayerID   string  `bson:"playerId" json:"playerId"`
	Votes      int64   `bson:"votes" json:"votes"`
	Percentage float64 `bson:"percentage" json:"percentage"`
}

// Tally is the live, derived view of a poll's counters returned to voters.
// Percentages are computed on the way out and never stored.
type Tally struct {
	PollID     string    `json:"pollId"`
	ReceiptID  string    `json:"receiptId,omitempty"`
	TotalVotes int64     `json:"totalVotes"`
	Options    []Ranking `json:"options"`
}

// BuildTally derives the current tally from a poll's counters
func BuildTally(poll *Poll) *Tally {
	options := make([]Ranking, 0, len(poll.Options))
	for _, option := range poll.Options {
		options = append(options, Ranking{
			PlayerID:   option.PlayerID,
			Votes:      option.Votes,
			Percentage: Percentage(option.Votes, poll.TotalVotes),
		})
	}
	return &Tally{
		PollID:     poll.ID.Hex(),
		TotalVotes: poll.TotalVotes,
		Options:    options,
	}
}

// PollResults is the immutable snapshot produced when a poll closes.
// Rankings are sorted descending by votes, ties broken by ascending player ID.
type PollResults struct {
	Rankings   []Ranking `bson:"rankings" json:"rankings"`
	Winner     Ranking   `bson:"winner" json:"winner"`
	TotalVotes int64     `bson:"totalVotes" json:"totalVotes"`
	ClosedAt   time.Time `bson:"closedAt" json:"closedAt"`
}
