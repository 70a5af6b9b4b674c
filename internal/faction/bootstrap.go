// World bootstrap: seed factions and their starting territory.
package faction

import (
	"fmt"
	"time"
)

// Config describes one faction at world bootstrap.
type Config struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Priority  int      `yaml:"priority"`
	Resources int      `yaml:"resources"`
	Territory []string `yaml:"territory"`
	GoalOrder []Goal   `yaml:"goal_order"`
}

// DefaultConfigs seeds the four stock factions.
func DefaultConfigs() []Config {
	return []Config{
		{
			ID:        "hegemony",
			Name:      "Stellar Hegemony",
			Priority:  1,
			Resources: 10000,
			Territory: []string{"sector-01", "sector-02", "sector-03", "sector-04"},
			GoalOrder: []Goal{Retaliate, Expand, Consolidate, Negotiate},
		},
		{
			ID:        "liberation",
			Name:      "Liberation Front",
			Priority:  2,
			Resources: 2000,
			Territory: []string{"sector-09"},
			GoalOrder: []Goal{Expand, Negotiate, Consolidate, Retaliate},
		},
		{
			ID:        "syndicate",
			Name:      "Shadow Syndicate",
			Priority:  3,
			Resources: 5000,
			Territory: []string{"sector-06", "sector-07"},
			GoalOrder: []Goal{Retaliate, Consolidate, Expand, Negotiate},
		},
		{
			ID:        "mercantile",
			Name:      "Mercantile Authority",
			Priority:  4,
			Resources: 3000,
			Territory: []string{"sector-11"},
			GoalOrder: []Goal{Consolidate, Expand, Negotiate, Retaliate},
		},
	}
}

// Bootstrap builds initial faction states from configs, enforcing the
// territory mutual-exclusion invariant across the whole set.
func Bootstrap(cfgs []Config, regions []Region, now time.Time) (map[string]State, error) {
	known := make(map[string]bool, len(regions))
	for _, r := range regions {
		known[r.ID] = true
	}

	claimed := map[string]string{}
	states := make(map[string]State, len(cfgs))
	for _, c := range cfgs {
		if c.ID == "" || c.Name == "" {
			return nil, fmt.Errorf("faction config missing id or name: %+v", c)
		}
		if _, dup := states[c.ID]; dup {
			return nil, fmt.Errorf("duplicate faction id %q", c.ID)
		}

		st := State{
			ID:        c.ID,
			Name:      c.Name,
			Priority:  c.Priority,
			Resources: c.Resources,
			Territory: map[string]bool{},
			Hostility: map[string]int{},
			Awareness: map[string]int{},
			GoalOrder: c.GoalOrder,
			Goal:      Consolidate,
			LastTick:  now,
		}
		for _, region := range c.Territory {
			if !known[region] {
				return nil, fmt.Errorf("faction %q claims unknown region %q", c.ID, region)
			}
			if owner, taken := claimed[region]; taken {
				return nil, fmt.Errorf("region %q claimed by both %q and %q", region, owner, c.ID)
			}
			claimed[region] = c.ID
			st.Territory[region] = true
		}
		states[c.ID] = st
	}
	return states, nil
}
