package models

import "errors"

// Engine error taxonomy. Callers match these with errors.Is; the HTTP layer
// maps them onto status codes.
var (
	// ErrNotFound indicates an unknown poll or template ID
	ErrNotFound = errors.New("not found")

	// ErrInvalidState indicates a transition requested from a state that
	// forbids it. Callers treat it as a benign no-op (e.g. closing an
	// already-closed poll), not a fatal condition.
	ErrInvalidState = errors.New("invalid poll state for requested transition")

	// ErrPollNotActive indicates a vote against a poll that is not ACTIVE
	ErrPollNotActive = errors.New("poll is not active")

	// ErrUnknownOption indicates a vote for a player not in the option set
	ErrUnknownOption = errors.New("player is not an option of this poll")

	// ErrActiveConflict indicates activation was deferred because another
	// poll for the same match is already active. The scheduler retries on
	// the next tick.
	ErrActiveConflict = errors.New("another poll for this match is already active")
)
