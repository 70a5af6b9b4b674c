// Package threat derives a player's notoriety and difficulty tier from the
// severity of their recorded actions. Notoriety is unbounded above, decays
// toward zero when unused, and maps onto a monotone tier banding.
package threat

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDelta is returned for out-of-range numeric inputs.
var ErrInvalidDelta = errors.New("invalid delta")

// Tier is the derived difficulty band. Bands are a tunable policy, not a
// contract, but they are monotone and total over notoriety.
type Tier string

const (
	Low      Tier = "Low"
	Guarded  Tier = "Guarded"
	Elevated Tier = "Elevated"
	Severe   Tier = "Severe"
	Critical Tier = "Critical"
)

// Decay and bounty policy constants.
const (
	decayPerHour      = 1.0  // notoriety lost per idle hour
	bountyDecayFactor = 50   // credits lost per idle hour
	bountySeverityMin = 5    // severity at which a bounty starts accruing
	bountyPerSeverity = 500  // credits added per severity point above the minimum
)

// Level is one player's threat state. Created lazily on first recorded action.
type Level struct {
	Player     string    `json:"player"`
	Notoriety  float64   `json:"notoriety"`
	Bounty     int       `json:"bounty"`
	LastAction time.Time `json:"last_action"`
}

// Tier returns the current band for the level's notoriety.
func (l Level) Tier() Tier {
	return TierFor(l.Notoriety)
}

// TierFor maps notoriety onto its band.
func TierFor(notoriety float64) Tier {
	switch {
	case notoriety <= 10:
		return Low
	case notoriety <= 30:
		return Guarded
	case notoriety <= 60:
		return Elevated
	case notoriety <= 100:
		return Severe
	default:
		return Critical
	}
}

// Record raises notoriety by severity. Severe actions also grow the bounty
// on the player's head. Severity must be non-negative.
func Record(cur Level, severity int, now time.Time) (Level, error) {
	if severity < 0 {
		return cur, fmt.Errorf("%w: severity %d", ErrInvalidDelta, severity)
	}

	next := cur
	next.Notoriety += float64(severity)
	if severity >= bountySeverityMin {
		next.Bounty += severity * bountyPerSeverity
	}
	next.LastAction = now
	return next, nil
}

// Decay reduces notoriety by a time-proportional amount, floored at zero.
// The bounty fades alongside it: an unseen player stops being worth hunting.
func Decay(cur Level, elapsed time.Duration) Level {
	if elapsed <= 0 {
		return cur
	}

	next := cur
	hours := elapsed.Hours()
	next.Notoriety -= hours * decayPerHour
	if next.Notoriety < 0 {
		next.Notoriety = 0
	}
	next.Bounty -= int(hours * bountyDecayFactor)
	if next.Bounty < 0 {
		next.Bounty = 0
	}
	return next
}
