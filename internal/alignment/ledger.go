// Package alignment tracks a player's cumulative light/dark morality score
// and the state derived from it: net alignment, corruption, and the
// descriptive tier other subsystems use as a selection signal.
package alignment

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GameMasterRPG/GalacticConsequence/internal/event"
)

// ActionType classifies the moral weight of a player action.
type ActionType string

const (
	Light   ActionType = "light"
	Dark    ActionType = "dark"
	Neutral ActionType = "neutral"
)

// ErrInvalidActionType is returned for action types outside {light, dark, neutral}.
var ErrInvalidActionType = errors.New("invalid action type")

// Corruption accrues one point per corruptionStep cumulative dark points
// beyond corruptionFloor, capped at 100. It never decreases here — only an
// explicit redemption mechanism (not part of this engine) can reset it.
const (
	corruptionFloor = 50
	corruptionStep  = 10
)

// Alignment is one player's morality ledger. Created on the first
// alignment-affecting action, never deleted.
type Alignment struct {
	Player          string    `json:"player"`
	LightPoints     int       `json:"light_points"`
	DarkPoints      int       `json:"dark_points"`
	CorruptionLevel int       `json:"corruption_level"`
	LastEvent       time.Time `json:"last_event"`
}

// Net returns light minus dark points clamped to [-100, 100].
func (a Alignment) Net() int {
	net := a.LightPoints - a.DarkPoints
	if net > 100 {
		return 100
	}
	if net < -100 {
		return -100
	}
	return net
}

// Tier maps net alignment onto fixed descriptive bands.
func (a Alignment) Tier() string {
	switch net := a.Net(); {
	case net > 50:
		return "Light Side Devotee"
	case net >= 10:
		return "Light Side Leaning"
	case net >= -10:
		return "Balanced"
	case net >= -50:
		return "Dark Side Leaning"
	default:
		return "Dark Side Adept"
	}
}

// Input is one alignment-affecting action.
type Input struct {
	Type        ActionType
	Shift       int
	Description string
}

// Apply computes the ledger state after one action. It never mutates cur;
// the orchestrator owns loading the snapshot and committing the result.
//
// A shift whose sign disagrees with the action type is coerced to its
// magnitude rather than rejected. The coercion is logged and noted in the
// emitted event so callers can spot misuse.
func Apply(cur Alignment, in Input, now time.Time) (Alignment, event.Event, error) {
	switch in.Type {
	case Light, Dark, Neutral:
	default:
		return cur, event.Event{}, fmt.Errorf("%w: %q", ErrInvalidActionType, in.Type)
	}

	next := cur
	mag := in.Shift
	if mag < 0 {
		mag = -mag
	}
	coerced := false

	switch in.Type {
	case Light:
		coerced = in.Shift < 0
		next.LightPoints += mag
	case Dark:
		coerced = in.Shift > 0
		next.DarkPoints += mag
	case Neutral:
		// Points untouched; the action is still logged.
	}

	if coerced {
		slog.Warn("alignment shift sign coerced to magnitude",
			"player", cur.Player,
			"action_type", in.Type,
			"shift", in.Shift,
		)
	}

	// Corruption is sticky: recompute the target from cumulative dark points
	// and only ever move up.
	if next.DarkPoints > corruptionFloor {
		target := (next.DarkPoints - corruptionFloor) / corruptionStep
		if target > 100 {
			target = 100
		}
		if target > next.CorruptionLevel {
			next.CorruptionLevel = target
		}
	}
	next.LastEvent = now

	desc := fmt.Sprintf("%s action (%+d): %s [net %+d, %s]",
		in.Type, in.Shift, in.Description, next.Net(), next.Tier())
	if coerced {
		desc += " (shift sign coerced)"
	}

	return next, event.Event{
		Timestamp:   now,
		Category:    event.AlignmentShift,
		Description: desc,
		Player:      cur.Player,
	}, nil
}
