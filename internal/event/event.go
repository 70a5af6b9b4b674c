// Package event defines the append-only world event record shared by every
// engine subsystem. Events are never mutated or deleted; total order is by
// sequence number, which the store assigns in commit order.
package event

import "time"

// Category classifies what kind of consequence an event records.
type Category string

const (
	FactionAction    Category = "faction_action"
	AlignmentShift   Category = "alignment_shift"
	ThreatEscalation Category = "threat_escalation"
	NPCInteraction   Category = "npc_interaction"
	QuestLifecycle   Category = "quest_lifecycle"
)

// Event is one immutable audit record of a derived consequence.
// Seq is zero until the store commits the event.
type Event struct {
	Seq         uint64    `db:"seq" json:"seq"`
	Timestamp   time.Time `db:"ts" json:"timestamp"`
	Category    Category  `db:"category" json:"category"`
	Description string    `db:"description" json:"description"`

	// Optional entity references.
	Player  string `db:"player" json:"player,omitempty"`
	Faction string `db:"faction" json:"faction,omitempty"`
	NPC     string `db:"npc" json:"npc,omitempty"`
	Quest   string `db:"quest" json:"quest,omitempty"`
}

// Filter selects a subset of the event log. Zero fields match everything.
type Filter struct {
	Player   string
	Faction  string
	Category Category
	Since    time.Time
	Limit    int
}

// Match reports whether e passes the filter (Limit is applied by the caller).
func (f Filter) Match(e Event) bool {
	if f.Player != "" && e.Player != f.Player {
		return false
	}
	if f.Faction != "" && e.Faction != f.Faction {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	return true
}
