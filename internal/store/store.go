// Package store provides persistence for world state behind a narrow
// key-indexed contract: entity records keyed by kind and natural id, plus an
// append-only world event sequence. Two implementations exist: SQLite for
// the server and an in-memory store for tests.
package store

import (
	"github.com/GameMasterRPG/GalacticConsequence/internal/event"
)

// Kind names an entity table.
type Kind string

const (
	KindAlignment    Kind = "alignment"
	KindThreat       Kind = "threat"
	KindFaction      Kind = "faction"
	KindRelationship Kind = "relationship"
	KindQuest        Kind = "quest"
	KindRegion       Kind = "region"
)

// Put is one pending entity write. State must be JSON-marshalable.
type Put struct {
	Kind  Kind
	Key   string
	State any
}

// Batch groups entity writes and event appends that must become visible
// together. An empty batch commits trivially.
type Batch struct {
	Puts   []Put
	Events []event.Event
}

// Append records an entity write.
func (b *Batch) Append(kind Kind, key string, state any) {
	b.Puts = append(b.Puts, Put{Kind: kind, Key: key, State: state})
}

// Log records an event append.
func (b *Batch) Log(e event.Event) {
	b.Events = append(b.Events, e)
}

// Store is the persistence contract the engine consumes. Apply is
// all-or-nothing: on error no put and no event of the batch is visible.
type Store interface {
	// Get unmarshals the state for (kind, key) into out.
	// Returns false if no record exists.
	Get(kind Kind, key string, out any) (bool, error)

	// Keys lists all keys stored under kind.
	Keys(kind Kind) ([]string, error)

	// Apply commits the batch atomically and returns the appended events
	// with their assigned sequence numbers, in commit order.
	Apply(b *Batch) ([]event.Event, error)

	// Events returns events matching the filter, oldest first.
	Events(f event.Filter) ([]event.Event, error)

	// EventCount returns the total number of committed events.
	EventCount() (uint64, error)

	Close() error
}
