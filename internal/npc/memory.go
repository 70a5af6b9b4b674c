// Package npc tracks per-(player, NPC) trust, fear, and interaction history.
// Relationships are created on first interaction; the history is append-only
// and queried most recent first.
package npc

import (
	"errors"
	"fmt"
	"time"

	"github.com/GameMasterRPG/GalacticConsequence/internal/event"
)

// ErrUnknownNPC is returned when a registry is configured and the named NPC
// is not in it. Without a registry the store auto-registers.
var ErrUnknownNPC = errors.New("unknown npc")

// Interaction is one record in a relationship's history.
type Interaction struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	TrustDelta  int       `json:"trust_delta"`
	FearDelta   int       `json:"fear_delta"`
	Timestamp   time.Time `json:"timestamp"`
}

// Relationship is the memory one NPC holds about one player.
type Relationship struct {
	Player          string        `json:"player"`
	NPC             string        `json:"npc"`
	Trust           int           `json:"trust"` // -100..100
	Fear            int           `json:"fear"`  // 0..100
	Mood            string        `json:"mood"`
	History         []Interaction `json:"history"`
	LastInteraction time.Time     `json:"last_interaction"`
}

// Registry restricts interactions to a known set of NPCs. A nil registry is
// permissive.
type Registry struct {
	known map[string]struct{}
}

// NewRegistry builds a registry from NPC names.
func NewRegistry(names []string) *Registry {
	r := &Registry{known: make(map[string]struct{}, len(names))}
	for _, n := range names {
		r.known[n] = struct{}{}
	}
	return r
}

// Check returns ErrUnknownNPC if name is not registered.
func (r *Registry) Check(name string) error {
	if r == nil {
		return nil
	}
	if _, ok := r.known[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNPC, name)
	}
	return nil
}

// Apply folds one interaction into the relationship: trust and fear move by
// their deltas and clamp to their domains, the history grows by one record,
// and the mood is rederived. Never mutates cur.
func Apply(cur Relationship, in Interaction) (Relationship, event.Event, error) {
	next := cur
	next.Trust = clamp(cur.Trust+in.TrustDelta, -100, 100)
	next.Fear = clamp(cur.Fear+in.FearDelta, 0, 100)
	next.Mood = MoodFor(next.Trust, next.Fear)
	next.LastInteraction = in.Timestamp

	next.History = make([]Interaction, len(cur.History), len(cur.History)+1)
	copy(next.History, cur.History)
	next.History = append(next.History, in)

	desc := fmt.Sprintf("%s with %s: %s [trust %+d, fear %d, %s]",
		in.Type, cur.NPC, in.Description, next.Trust, next.Fear, next.Mood)

	return next, event.Event{
		Timestamp:   in.Timestamp,
		Category:    event.NPCInteraction,
		Description: desc,
		Player:      cur.Player,
		NPC:         cur.NPC,
	}, nil
}

// MoodFor derives a mood label from trust and fear. Fear dominates: a
// terrified NPC is not warm no matter how much it trusts.
func MoodFor(trust, fear int) string {
	switch {
	case fear >= 80:
		return "terrified"
	case fear >= 50:
		return "fearful"
	case trust <= -50:
		return "hostile"
	case trust <= -10:
		return "wary"
	case trust >= 60:
		return "devoted"
	case trust >= 20:
		return "warm"
	default:
		return "neutral"
	}
}

// History returns one page of the interaction history, most recent first.
// Page is zero-based. Never mutates the relationship.
func History(rel Relationship, page, size int) []Interaction {
	if size <= 0 {
		size = 10
	}
	n := len(rel.History)
	start := n - page*size
	if start <= 0 {
		return nil
	}
	end := start - size
	if end < 0 {
		end = 0
	}

	out := make([]Interaction, 0, start-end)
	for i := start - 1; i >= end; i-- {
		out = append(out, rel.History[i])
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
