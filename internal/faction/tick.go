// Tick execution: one evaluation cycle of a faction's decision logic,
// applied to snapshots. Every tick yields at least one FactionAction event,
// including an explicit no-op record when nothing changed.
package faction

import (
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/GameMasterRPG/GalacticConsequence/internal/event"
)

// TickResult is everything one faction tick changed. Changed always holds
// the ticking faction's new state; a contested expansion also carries the
// displaced incumbent's.
type TickResult struct {
	Faction  string
	Decision Decision
	Changed  map[string]State
	Events   []event.Event

	// Retaliation escalates the target's threat level upstream.
	EscalatePlayer   string
	EscalateSeverity int
}

// ExecuteTick runs one tick for the faction id against the current snapshot
// of all faction states and regions. It never mutates its inputs.
func ExecuteTick(id string, states map[string]State, regions map[string]Region, now time.Time) (TickResult, error) {
	st, ok := states[id]
	if !ok {
		return TickResult{}, fmt.Errorf("%w: %q", ErrUnknownFaction, id)
	}

	sig := buildSignals(states, regions)
	dec := Decide(st, sig)

	res := TickResult{
		Faction:  id,
		Decision: dec,
		Changed:  map[string]State{},
	}
	next := cloneState(st)
	next.Goal = dec.Goal
	next.LastTick = now

	switch dec.Goal {
	case Expand:
		executeExpand(&res, &next, dec, states, regions, now)
	case Retaliate:
		executeRetaliate(&res, &next, dec, now)
	case Consolidate:
		executeConsolidate(&res, &next, dec, regions, now)
	case Negotiate:
		executeNegotiate(&res, &next, dec, now)
	}

	res.Changed[id] = next
	return res, nil
}

func executeExpand(res *TickResult, next *State, dec Decision, states map[string]State, regions map[string]Region, now time.Time) {
	region := dec.TargetRegion
	next.Resources -= expandCost
	next.Territory[region] = true

	desc := fmt.Sprintf("%s expands into %s (%s)", next.Name, region, dec.Reason)

	// Displace the incumbent, if any. Eligibility was decided against the
	// same snapshot, so the strength comparison already held.
	for fid, other := range states {
		if fid == next.ID || !other.Territory[region] {
			continue
		}
		loser := cloneState(other)
		delete(loser.Territory, region)
		res.Changed[fid] = loser
		desc = fmt.Sprintf("%s seizes %s from %s (%s)", next.Name, region, other.Name, dec.Reason)
		res.Events = append(res.Events, event.Event{
			Timestamp:   now,
			Category:    event.FactionAction,
			Description: fmt.Sprintf("%s loses %s to %s", other.Name, region, next.Name),
			Faction:     fid,
		})
	}

	res.Events = append([]event.Event{{
		Timestamp:   now,
		Category:    event.FactionAction,
		Description: desc,
		Faction:     next.ID,
	}}, res.Events...)
}

func executeRetaliate(res *TickResult, next *State, dec Decision, now time.Time) {
	target := dec.TargetPlayer
	next.Resources -= retaliateCost
	next.Hostility[target] = clamp(next.Hostility[target]+standingPenalty, -100, 100)

	res.EscalatePlayer = target
	res.EscalateSeverity = next.Hostility[target] / 10

	res.Events = append(res.Events, event.Event{
		Timestamp: now,
		Category:  event.FactionAction,
		Description: fmt.Sprintf("%s retaliates against %s (%s): standing drops to %+d, hunters dispatched",
			next.Name, target, dec.Reason, -next.Hostility[target]),
		Player:  target,
		Faction: next.ID,
	})
}

func executeConsolidate(res *TickResult, next *State, dec Decision, regions map[string]Region, now time.Time) {
	income := consolidateBase
	for id := range next.Territory {
		income += int(regions[id].Richness * richnessIncome)
	}
	next.Resources += income

	res.Events = append(res.Events, event.Event{
		Timestamp: now,
		Category:  event.FactionAction,
		Description: fmt.Sprintf("%s consolidates (%s): resources up %s to %s",
			next.Name, dec.Reason, humanize.Comma(int64(income)), humanize.Comma(int64(next.Resources))),
		Faction: next.ID,
	})
}

func executeNegotiate(res *TickResult, next *State, dec Decision, now time.Time) {
	target, _ := mostCooperative(*next)
	if target == "" {
		res.Events = append(res.Events, event.Event{
			Timestamp:   now,
			Category:    event.FactionAction,
			Description: fmt.Sprintf("%s tick no-op, reason: no known players to negotiate with", next.Name),
			Faction:     next.ID,
		})
		return
	}

	next.Hostility[target] = clamp(next.Hostility[target]-negotiateRelief, -100, 100)
	res.Events = append(res.Events, event.Event{
		Timestamp: now,
		Category:  event.FactionAction,
		Description: fmt.Sprintf("%s opens negotiations with %s (%s): hostility eased to %+d",
			next.Name, target, dec.Reason, next.Hostility[target]),
		Player:  target,
		Faction: next.ID,
	})
}

// mostCooperative returns the known player with the lowest hostility score.
func mostCooperative(st State) (string, int) {
	players := make([]string, 0, len(st.Hostility))
	for p := range st.Hostility {
		players = append(players, p)
	}
	if len(players) == 0 {
		return "", 0
	}
	sort.Strings(players)

	best, bestH := "", 101
	for _, p := range players {
		if h := st.Hostility[p]; h < bestH {
			best, bestH = p, h
		}
	}
	return best, bestH
}

// buildSignals assembles the cross-faction view used by Decide.
func buildSignals(states map[string]State, regions map[string]Region) Signals {
	sig := Signals{
		Regions:   regions,
		Owner:     map[string]string{},
		Resources: map[string]int{},
	}
	for id, st := range states {
		sig.Resources[id] = st.Resources
		for region := range st.Territory {
			sig.Owner[region] = id
		}
	}
	return sig
}
