package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PollStatus represents the lifecycle status of a poll
type PollStatus string

const (
	PollStatusDraft    PollStatus = "DRAFT"
	PollStatusArmed    PollStatus = "ARMED"
	PollStatusActive   PollStatus = "ACTIVE"
	PollStatusClosed   PollStatus = "CLOSED"
	PollStatusArchived PollStatus = "ARCHIVED"
)

// ActivationType represents the rule governing when a poll opens
type ActivationType string

const (
	ActivationManual      ActivationType = "MANUAL"
	ActivationOnMatchLive ActivationType = "AUTO_ON_MATCH_LIVE"
	ActivationScheduled   ActivationType = "SCHEDULED"
)

// ActivationPolicy describes when a poll transitions from armed to active.
// StartAt/EndAt are only set for SCHEDULED polls; a nil EndAt means the poll
// stays open until closed manually or by its linked match ending.
type ActivationPolicy struct {
	Type    ActivationType `bson:"type" json:"type"`
	StartAt *time.Time     `bson:"startAt,omitempty" json:"startAt,omitempty"`
	EndAt   *time.Time     `bson:"endAt,omitempty" json:"endAt,omitempty"`
}

// PollOption is a single votable entry, one per player
type PollOption struct {
	PlayerID string `bson:"playerId" json:"playerId"`
	Votes    int64  `bson:"votes" json:"votes"`
}

// Poll represents a "best player of the match" voting instance
type Poll struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MatchID     string             `bson:"matchId,omitempty" json:"matchId,omitempty"` // empty means unassigned
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Options     []PollOption       `bson:"options" json:"options"`
	TotalVotes  int64              `bson:"totalVotes" json:"totalVotes"`
	Status      PollStatus         `bson:"status" json:"status"`
	Activation  ActivationPolicy   `bson:"activation" json:"activation"`
	Results     *PollResults       `bson:"results,omitempty" json:"results,omitempty"`
	CreatedBy   string             `bson:"createdBy" json:"createdBy"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedBy   string             `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

var (
	// ErrTooFewOptions is returned when a poll is created with fewer than two players
	ErrTooFewOptions = errors.New("a poll requires at least two options")
	// ErrDuplicateOption is returned when the same player appears twice in the option set
	ErrDuplicateOption = errors.New("poll options must be unique by player")
)

// NewPollOptions builds the fixed option set for a poll from the selected
// player IDs. The option set is validated once here and never mutated after
// the poll leaves DRAFT.
func NewPollOptions(playerIDs []string) ([]PollOption, error) {
	if len(playerIDs) < 2 {
		return nil, ErrTooFewOptions
	}
	seen := make(map[string]bool, len(playerIDs))
	options := make([]PollOption, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		if playerID == "" {
			return nil, errors.New("poll options must reference a player")
		}
		if seen[playerID] {
			return nil, ErrDuplicateOption
		}
		seen[playerID] = true
		options = append(options, PollOption{PlayerID: playerID})
	}
	return options, nil
}

// HasOption reports whether the poll carries an option for the given player
func (p *Poll) HasOption(playerID string) bool {
	for _, option := range p.Options {
		if option.PlayerID == playerID {
			return true
		}
	}
	return false
}

// SumOptionVotes recomputes the total from the option counters. It must always
// equal TotalVotes; the repository updates both in a single atomic write.
func (p *Poll) SumOptionVotes() int64 {
	var sum int64
	for _, option := range p.Options {
		sum += option.Votes
	}
	return sum
}

// Percentage returns the live display percentage for a vote count against a
// total. The zero-guard keeps an untouched poll at 0% for every option.
func Percentage(votes, totalVotes int64) float64 {
	if totalVotes < 1 {
		totalVotes = 1
	}
	return float64(votes) / float64(totalVotes) * 100
}

// IsTerminal reports whether the poll has reached its final state
func (s PollStatus) IsTerminal() bool {
	return s == PollStatusArchived
}
