package quest

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/GameMasterRPG/GalacticConsequence/internal/threat"
)

// ErrNoEligibleQuest means no template matched the player's current state.
var ErrNoEligibleQuest = errors.New("no quest template eligible for player state")

// hostileBias multiplies a faction-response template's weight while some
// faction's hostility toward the player is elevated.
const (
	hostileBias       = 3
	elevatedHostility = 60
)

// GenContext is the player-state snapshot a quest is generated against.
type GenContext struct {
	Player  string
	Session string

	AlignmentTier string
	ThreatTier    string
	Hostility     map[string]int // faction id -> hostility toward the player
	EventCount    uint64
	Now           time.Time
}

// Generate picks one quest from the template set, weighted and deterministic:
// the same player, session, and world event count always yield the same quest.
func Generate(templates []Template, ctx GenContext) (Quest, error) {
	type candidate struct {
		tmpl   Template
		weight int
	}

	hostileFaction := mostHostileFaction(ctx.Hostility)

	var pool []candidate
	total := 0
	for _, t := range templates {
		if !matchBand(t.AlignmentBands, ctx.AlignmentTier) {
			continue
		}
		if !matchTier(t.ThreatTiers, ctx.ThreatTier) {
			continue
		}
		w := t.Weight
		if w <= 0 {
			w = 1
		}
		if t.FactionResponse {
			if hostileFaction == "" {
				continue
			}
			w *= hostileBias
		}
		pool = append(pool, candidate{tmpl: t, weight: w})
		total += w
	}
	if len(pool) == 0 {
		return Quest{}, fmt.Errorf("%w: player %q alignment %q threat %q",
			ErrNoEligibleQuest, ctx.Player, ctx.AlignmentTier, ctx.ThreatTier)
	}

	seed := seedFor(ctx)
	rng := rand.New(rand.NewSource(seed))
	pick := rng.Intn(total)
	var chosen Template
	for _, c := range pool {
		pick -= c.weight
		if pick < 0 {
			chosen = c.tmpl
			break
		}
	}

	q := Quest{
		ID:            newQuestID(rng),
		Player:        ctx.Player,
		Session:       ctx.Session,
		Template:      chosen.Name,
		Title:         chosen.Title,
		Description:   chosen.Description,
		Giver:         chosen.Giver,
		Difficulty:    adjustDifficulty(chosen.Difficulty, ctx.ThreatTier),
		AlignmentBand: ctx.AlignmentTier,
		ThreatTier:    ctx.ThreatTier,
		Seed:          seed,
		Status:        StatusOffered,
		Hooks:         chosen.Hooks,
		CreatedAt:     ctx.Now,
		UpdatedAt:     ctx.Now,
	}
	if chosen.FactionResponse {
		q.Faction = hostileFaction
		q.Description = fmt.Sprintf("%s The faction in question: %s.", q.Description, hostileFaction)
		hooks := Hooks{AlignmentShift: chosen.Hooks.AlignmentShift, FactionImpact: map[string]int{}}
		for f, d := range chosen.Hooks.FactionImpact {
			hooks.FactionImpact[f] = d
		}
		hooks.FactionImpact[hostileFaction] = -negotiatedRelief(chosen)
		q.Hooks = hooks
	}
	return q, nil
}

// negotiatedRelief sizes the hostility reduction a faction-response quest
// grants on completion. Harder quests buy more goodwill.
func negotiatedRelief(t Template) int {
	return 10 + t.Difficulty*2
}

// seedFor derives the deterministic RNG seed from the generation context.
func seedFor(ctx GenContext) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%s\x00%d", ctx.Player, ctx.Session, ctx.EventCount)
	return int64(h.Sum64())
}

// newQuestID draws a UUID from the deterministic stream so offers replay
// identically from identical world state.
func newQuestID(rng *rand.Rand) string {
	var b [16]byte
	rng.Read(b[:])
	id, err := uuid.FromBytes(b[:])
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// adjustDifficulty raises base difficulty for hunted players.
func adjustDifficulty(base int, tier string) int {
	switch tier {
	case "Severe":
		base++
	case "Critical":
		base += 2
	}
	if base > 10 {
		base = 10
	}
	if base < 1 {
		base = 1
	}
	return base
}

func matchBand(bands []string, tier string) bool {
	if len(bands) == 0 {
		return true
	}
	for _, b := range bands {
		if b == tier {
			return true
		}
	}
	return false
}

func matchTier(tiers []threat.Tier, tier string) bool {
	if len(tiers) == 0 {
		return true
	}
	for _, t := range tiers {
		if string(t) == tier {
			return true
		}
	}
	return false
}

// mostHostileFaction returns the faction with elevated hostility toward the
// player, highest score first, ties to the smallest id.
func mostHostileFaction(hostility map[string]int) string {
	ids := make([]string, 0, len(hostility))
	for id := range hostility {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	best, bestH := "", elevatedHostility-1
	for _, id := range ids {
		if h := hostility[id]; h > bestH {
			best, bestH = id, h
		}
	}
	return best
}
