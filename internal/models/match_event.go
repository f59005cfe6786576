package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MatchStatus mirrors the status values emitted by the external match feed
type MatchStatus string

const (
	MatchStatusUpcoming  MatchStatus = "UPCOMING"
	MatchStatusLive      MatchStatus = "LIVE"
	MatchStatusCompleted MatchStatus = "COMPLETED"
	MatchStatusPostponed MatchStatus = "POSTPONED"
)

// MatchEvent records a single match-status change ingested from the feed.
// Events are persisted before evaluation so operators can trace why a poll
// opened or closed.
type MatchEvent struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MatchID    string             `bson:"matchId" json:"matchId"`
	Status     MatchStatus        `bson:"status" json:"status"`
	ReceivedAt time.Time          `bson:"receivedAt" json:"receivedAt"`
}
