package quest

import (
	"errors"
	"fmt"
	"time"
)

// Lifecycle errors.
var (
	ErrInvalidTransition = errors.New("invalid quest transition")
	ErrUnknownQuest      = errors.New("unknown quest")
)

// Status is a quest's lifecycle state. Transitions only move forward:
// offered -> accepted -> completed, with abandonment open from either
// non-terminal state.
type Status string

const (
	StatusOffered   Status = "offered"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Quest is one generated quest instance bound to a player and session.
// AlignmentBand, ThreatTier, and Seed snapshot the world state the quest was
// generated against.
type Quest struct {
	ID          string `json:"id"`
	Player      string `json:"player"`
	Session     string `json:"session"`
	Template    string `json:"template"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Giver       string `json:"giver"`
	Difficulty  int    `json:"difficulty"`
	Faction     string `json:"faction,omitempty"`

	AlignmentBand string `json:"alignment_band"`
	ThreatTier    string `json:"threat_tier"`
	Seed          int64  `json:"seed"`

	Status    Status    `json:"status"`
	Outcome   string    `json:"outcome,omitempty"`
	Hooks     Hooks     `json:"hooks"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Accept moves an offered quest to accepted.
func Accept(q Quest, now time.Time) (Quest, error) {
	if q.Status != StatusOffered {
		return q, transitionErr(q, StatusAccepted)
	}
	q.Status = StatusAccepted
	q.UpdatedAt = now
	return q, nil
}

// Complete moves an accepted quest to completed, records how it was resolved,
// and surfaces its consequence hooks for the caller to apply in the same
// transaction.
func Complete(q Quest, outcome string, now time.Time) (Quest, Hooks, error) {
	if q.Status != StatusAccepted {
		return q, Hooks{}, transitionErr(q, StatusCompleted)
	}
	q.Status = StatusCompleted
	q.Outcome = outcome
	q.UpdatedAt = now
	return q, q.Hooks, nil
}

// Abandon moves an offered or accepted quest to abandoned. Hooks are forfeit.
func Abandon(q Quest, now time.Time) (Quest, error) {
	if q.Status != StatusOffered && q.Status != StatusAccepted {
		return q, transitionErr(q, StatusAbandoned)
	}
	q.Status = StatusAbandoned
	q.UpdatedAt = now
	return q, nil
}

// transitionErr reports the quest's actual status so the caller can tell a
// double-complete from a never-accepted offer.
func transitionErr(q Quest, to Status) error {
	return fmt.Errorf("%w: quest %s is %s, cannot move to %s", ErrInvalidTransition, q.ID, q.Status, to)
}
