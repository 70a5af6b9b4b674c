// Strategic goal selection. The decision is an explicit weighted-score table
// over the four goals, with faction-specific preference order breaking ties,
// so identical input state always yields the identical decision.
package faction

import (
	"fmt"
	"sort"
)

// Tuning constants for the decision table and goal execution.
const (
	expandCost       = 300
	retaliateCost    = 200
	lowResources     = 500
	retaliateTrigger = 70  // hostility above this demands retaliation
	moderateTrigger  = 30  // hostility above this is worth negotiating over
	consolidateBase  = 100 // flat income per consolidation
	richnessIncome   = 200 // extra income per unit of held-region richness
	negotiateRelief  = 20  // hostility reduction granted by negotiation
	standingPenalty  = 10  // extra hostility locked in by retaliation
)

// Signals is the cross-faction world view a single faction decides against.
type Signals struct {
	Regions   map[string]Region
	Owner     map[string]string // region id -> owning faction id
	Resources map[string]int    // faction id -> resources
}

// Decision is the outcome of one evaluation of the score table.
type Decision struct {
	Goal         Goal   `json:"goal"`
	Reason       string `json:"reason"`
	TargetPlayer string `json:"target_player,omitempty"`
	TargetRegion string `json:"target_region,omitempty"`
}

// defaultGoalOrder breaks ties for factions without a configured preference.
var defaultGoalOrder = []Goal{Retaliate, Expand, Consolidate, Negotiate}

// Decide evaluates the weighted score table for one faction.
func Decide(st State, sig Signals) Decision {
	maxPlayer, maxHostility := dominantHostility(st)
	region, regionScore := bestExpansion(st, sig)

	scores := map[Goal]int{}
	reasons := map[Goal]string{}
	targets := map[Goal]string{}

	// Retaliate: a player's hostility has crossed the trigger and the
	// faction can afford to strike back.
	if maxHostility > retaliateTrigger && st.Resources >= retaliateCost {
		scores[Retaliate] = 60 + maxHostility/2
		reasons[Retaliate] = fmt.Sprintf("hostility toward %s at %d exceeds %d", maxPlayer, maxHostility, retaliateTrigger)
		targets[Retaliate] = maxPlayer
	}

	// Expand: resources suffice, an unclaimed or weakly held region exists,
	// and no hostile threat dominates attention.
	if region != "" && st.Resources >= expandCost && maxHostility <= retaliateTrigger {
		scores[Expand] = 50 + regionScore
		reasons[Expand] = fmt.Sprintf("region %s is open for the taking", region)
	}

	// Consolidate: low resources or contested territory demand turning inward.
	switch {
	case st.Resources < lowResources:
		scores[Consolidate] = 70
		reasons[Consolidate] = fmt.Sprintf("resources at %d below %d", st.Resources, lowResources)
	case territoryContested(st, sig):
		scores[Consolidate] = 60
		reasons[Consolidate] = "held territory is contested by a stronger rival"
	default:
		scores[Consolidate] = 20
		reasons[Consolidate] = "no pressing strategic pressure"
	}

	// Negotiate: moderate hostility while poorer than the rivals' mean.
	if maxHostility > moderateTrigger && maxHostility <= retaliateTrigger &&
		st.Resources < rivalMean(st.ID, sig) {
		scores[Negotiate] = 65
		reasons[Negotiate] = fmt.Sprintf("moderate hostility (%d) and resources below rival mean", maxHostility)
		targets[Negotiate] = maxPlayer
	}

	goal := pickGoal(scores, st.GoalOrder)
	dec := Decision{
		Goal:         goal,
		Reason:       reasons[goal],
		TargetPlayer: targets[goal],
	}
	if goal == Expand {
		dec.TargetRegion = region
	}
	return dec
}

// pickGoal selects the highest score; ties fall to the faction's preference
// order, then the default order.
func pickGoal(scores map[Goal]int, order []Goal) Goal {
	if len(order) == 0 {
		order = defaultGoalOrder
	}
	best := Consolidate
	bestScore := -1
	for _, g := range order {
		if s, ok := scores[g]; ok && s > bestScore {
			best, bestScore = g, s
		}
	}
	// Goals missing from the preference list still participate, after it.
	for _, g := range defaultGoalOrder {
		if containsGoal(order, g) {
			continue
		}
		if s, ok := scores[g]; ok && s > bestScore {
			best, bestScore = g, s
		}
	}
	return best
}

func containsGoal(goals []Goal, g Goal) bool {
	for _, x := range goals {
		if x == g {
			return true
		}
	}
	return false
}

// dominantHostility returns the player with the highest hostility score.
// Map iteration order must not leak into the result, so ties resolve to the
// lexicographically smallest player id.
func dominantHostility(st State) (string, int) {
	players := make([]string, 0, len(st.Hostility))
	for p := range st.Hostility {
		players = append(players, p)
	}
	sort.Strings(players)

	best, bestH := "", -101
	for _, p := range players {
		if h := st.Hostility[p]; h > bestH {
			best, bestH = p, h
		}
	}
	if best == "" {
		return "", 0
	}
	return best, bestH
}

// bestExpansion returns the most attractive eligible region and a richness
// score contribution (0..30). Eligible means unclaimed, or held by an
// incumbent whose strength is strictly below ours — ties favor the incumbent.
func bestExpansion(st State, sig Signals) (string, int) {
	ids := make([]string, 0, len(sig.Regions))
	for id := range sig.Regions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	best, bestRichness := "", -1.0
	for _, id := range ids {
		r := sig.Regions[id]
		owner, claimed := sig.Owner[id]
		if claimed {
			if owner == st.ID {
				continue
			}
			incumbent := float64(sig.Resources[owner]) * (1 + r.Defense)
			if incumbent >= float64(st.Resources) {
				continue
			}
		}
		if r.Richness > bestRichness {
			best, bestRichness = id, r.Richness
		}
	}
	if best == "" {
		return "", 0
	}
	return best, int(bestRichness * 30)
}

// territoryContested reports whether a rival outmatches us over a held region.
func territoryContested(st State, sig Signals) bool {
	for id := range st.Territory {
		r := sig.Regions[id]
		ours := float64(st.Resources) * (1 + r.Defense)
		for fid, res := range sig.Resources {
			if fid == st.ID {
				continue
			}
			if float64(res) > ours {
				return true
			}
		}
	}
	return false
}

// rivalMean is the mean resource level of every other faction.
func rivalMean(id string, sig Signals) int {
	total, n := 0, 0
	for fid, res := range sig.Resources {
		if fid == id {
			continue
		}
		total += res
		n++
	}
	if n == 0 {
		return 0
	}
	return total / n
}
