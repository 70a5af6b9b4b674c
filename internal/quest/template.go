// Package quest procedurally offers quests from a weighted template set and
// validates their forward-only lifecycle. Selection is deterministic given a
// seed derived from world state, so identical worlds yield identical offers.
package quest

import (
	"github.com/GameMasterRPG/GalacticConsequence/internal/threat"
)

// Hooks are consequences a quest's resolution feeds back into the world.
// The orchestrator applies them within the completion transaction.
type Hooks struct {
	AlignmentShift int            `yaml:"alignment_shift" json:"alignment_shift,omitempty"`
	FactionImpact  map[string]int `yaml:"faction_impact" json:"faction_impact,omitempty"`
}

// Template is one generatable quest shape. Empty eligibility slices match
// any value of that signal.
type Template struct {
	Name        string `yaml:"name"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Giver       string `yaml:"giver"`
	Difficulty  int    `yaml:"difficulty"` // base 1..10, adjusted by threat tier

	AlignmentBands []string      `yaml:"alignment_bands"`
	ThreatTiers    []threat.Tier `yaml:"threat_tiers"`

	// FactionResponse templates answer an elevated-hostility faction: they
	// are only eligible while some faction's hostility is elevated, and get
	// a selection bias when one is.
	FactionResponse bool `yaml:"faction_response"`

	Weight int   `yaml:"weight"`
	Hooks  Hooks `yaml:"hooks"`
}

// DefaultTemplates is a complete template set: the unconstrained tail
// guarantees a non-empty eligible set for every alignment band and threat
// tier, so ErrNoEligibleQuest can only mean a broken custom configuration.
func DefaultTemplates() []Template {
	return []Template{
		{
			Name:           "holocron-recovery",
			Title:          "Ancient Holocron Recovery",
			Description:    "A repository of forbidden knowledge has surfaced in contested ruins. Recover it before it is misused.",
			Giver:          "Archivist of the Hidden Order",
			Difficulty:     6,
			AlignmentBands: []string{"Light Side Devotee", "Light Side Leaning"},
			Weight:         4,
			Hooks:          Hooks{AlignmentShift: 10},
		},
		{
			Name:           "refugee-escort",
			Title:          "Escort the Refugees",
			Description:    "Displaced families need safe passage through patrolled space to a hidden sanctuary.",
			Giver:          "Underground Network",
			Difficulty:     4,
			AlignmentBands: []string{"Light Side Devotee", "Light Side Leaning", "Balanced"},
			Weight:         5,
			Hooks:          Hooks{AlignmentShift: 5},
		},
		{
			Name:           "artifact-seizure",
			Title:          "Seize the Dark Artifact",
			Description:    "A relic of terrible power calls to those strong enough to claim it. The path is guarded.",
			Giver:          "Veiled Cultist",
			Difficulty:     7,
			AlignmentBands: []string{"Dark Side Leaning", "Dark Side Adept"},
			Weight:         4,
			Hooks:          Hooks{AlignmentShift: -10},
		},
		{
			Name:           "rival-elimination",
			Title:          "Eliminate the Rival",
			Description:    "A rogue operative keeps disrupting your patron's business. Deal with them permanently.",
			Giver:          "Crime Lord",
			Difficulty:     6,
			AlignmentBands: []string{"Dark Side Leaning", "Dark Side Adept", "Balanced"},
			Weight:         3,
			Hooks:          Hooks{AlignmentShift: -8},
		},
		{
			Name:        "shake-pursuit",
			Title:       "Shake the Pursuit",
			Description: "Hunters are closing in. Go to ground, scrub your trail, and let the heat die down.",
			Giver:       "Underground Fixer",
			Difficulty:  5,
			ThreatTiers: []threat.Tier{threat.Elevated, threat.Severe, threat.Critical},
			Weight:      5,
		},
		{
			Name:        "prove-your-worth",
			Title:       "Prove Your Worth",
			Description: "A potential employer wants evidence of your skills before offering serious work.",
			Giver:       "Prospective Employer",
			Difficulty:  2,
			ThreatTiers: []threat.Tier{threat.Low, threat.Guarded},
			Weight:      4,
		},
		{
			Name:            "faction-reprisal",
			Title:           "Answer the Reprisal",
			Description:     "A powerful faction has marked you. Strike their staging ground before their hunters reach you.",
			Giver:           "Sympathetic Defector",
			Difficulty:      8,
			FactionResponse: true,
			Weight:          6,
		},
		{
			Name:            "broker-peace",
			Title:           "Broker an Uneasy Peace",
			Description:     "An intermediary offers a path to cool a faction's anger toward you, for a price.",
			Giver:           "Neutral Intermediary",
			Difficulty:      5,
			FactionResponse: true,
			Weight:          4,
		},
		{
			Name:        "cargo-run",
			Title:       "Cargo Delivery Run",
			Description: "A shipment needs to reach a remote outpost. The cargo is valuable and the route is not safe.",
			Giver:       "Shipping Concern",
			Difficulty:  3,
			Weight:      3,
		},
		{
			Name:        "missing-person",
			Title:       "Missing Person Investigation",
			Description: "Someone vanished under strange circumstances. The family pays well for answers.",
			Giver:       "Worried Family",
			Difficulty:  3,
			Weight:      3,
		},
		{
			Name:        "derelict-salvage",
			Title:       "Salvage the Derelict",
			Description: "A dead ship drifts in a contested lane, holds intact. First crew aboard keeps the cargo.",
			Giver:       "Salvage Guild",
			Difficulty:  4,
			Weight:      3,
		},
	}
}
