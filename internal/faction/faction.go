// Package faction owns per-faction strategic state and the deterministic
// decision logic that turns accumulated player hostility, resources, and
// territory pressure into faction actions.
package faction

import (
	"errors"
	"fmt"
	"time"

	"github.com/GameMasterRPG/GalacticConsequence/internal/event"
)

var (
	// ErrInvalidDelta is returned for awareness/hostility increases outside 0..100.
	ErrInvalidDelta = errors.New("invalid delta")
	// ErrUnknownFaction is returned when the named faction does not exist.
	ErrUnknownFaction = errors.New("unknown faction")
)

// Goal is a faction's current strategic posture.
type Goal string

const (
	Expand      Goal = "expand"
	Consolidate Goal = "consolidate"
	Retaliate   Goal = "retaliate"
	Negotiate   Goal = "negotiate"
)

// Pursuit thresholds: past these a faction starts actively hunting a player.
const (
	pursuitAwareness = 50
	pursuitHostility = 30
)

// State is one faction's strategic state. Initialized once at world
// bootstrap, mutated only by this engine, never deleted.
type State struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Priority int    `json:"priority"` // deterministic tie-break rank, lower wins

	// Territory holds the region ids this faction controls. A region is
	// claimed by at most one faction; the orchestrator's region ownership
	// index enforces the exclusion.
	Territory map[string]bool `json:"territory"`

	Resources int `json:"resources"` // non-negative

	// Per-player signals accumulated through UpdateAwareness.
	Hostility map[string]int `json:"hostility"` // -100..100
	Awareness map[string]int `json:"awareness"` // 0..100

	// GoalOrder is the faction's preference among equally scored goals.
	GoalOrder []Goal `json:"goal_order"`

	Goal     Goal      `json:"goal"`
	LastTick time.Time `json:"last_tick"`
}

// UpdateAwareness is the only way external actions feed hostility into the
// engine. Both increases must lie in 0..100; hostilityInc raises the
// hostility score directly and may be negative input only through the
// separate Negotiate path, never here.
func UpdateAwareness(cur State, player string, awarenessInc, hostilityInc int, desc string, now time.Time) (State, event.Event, error) {
	if awarenessInc < 0 || awarenessInc > 100 {
		return cur, event.Event{}, fmt.Errorf("%w: awareness increase %d", ErrInvalidDelta, awarenessInc)
	}
	if hostilityInc < 0 || hostilityInc > 100 {
		return cur, event.Event{}, fmt.Errorf("%w: hostility increase %d", ErrInvalidDelta, hostilityInc)
	}

	next := cloneState(cur)
	next.Awareness[player] = clamp(next.Awareness[player]+awarenessInc, 0, 100)
	next.Hostility[player] = clamp(next.Hostility[player]+hostilityInc, -100, 100)

	text := fmt.Sprintf("%s takes note of %s: %s [awareness %d, hostility %+d]",
		cur.Name, player, desc, next.Awareness[player], next.Hostility[player])
	if next.Awareness[player] > pursuitAwareness && next.Hostility[player] > pursuitHostility {
		text += fmt.Sprintf("; %s marks %s as a priority target", cur.Name, player)
	}

	return next, event.Event{
		Timestamp:   now,
		Category:    event.FactionAction,
		Description: text,
		Player:      player,
		Faction:     cur.ID,
	}, nil
}

// AdjustHostility moves a player's hostility by delta (either sign) without
// the UpdateAwareness bounds. Used by quest consequence hooks and Negotiate.
func AdjustHostility(cur State, player string, delta int) State {
	next := cloneState(cur)
	next.Hostility[player] = clamp(next.Hostility[player]+delta, -100, 100)
	return next
}

// cloneState deep-copies the maps so transitions never alias the snapshot.
func cloneState(cur State) State {
	next := cur
	next.Territory = make(map[string]bool, len(cur.Territory))
	for k, v := range cur.Territory {
		next.Territory[k] = v
	}
	next.Hostility = make(map[string]int, len(cur.Hostility))
	for k, v := range cur.Hostility {
		next.Hostility[k] = v
	}
	next.Awareness = make(map[string]int, len(cur.Awareness))
	for k, v := range cur.Awareness {
		next.Awareness[k] = v
	}
	return next
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
