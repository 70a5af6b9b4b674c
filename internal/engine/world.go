// Package engine orchestrates the consequence subsystems: it owns the
// canonical world state, loads snapshots, runs the pure transition functions,
// and commits their outputs atomically with the events they produced.
package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/GameMasterRPG/GalacticConsequence/internal/alignment"
	"github.com/GameMasterRPG/GalacticConsequence/internal/dialogue"
	"github.com/GameMasterRPG/GalacticConsequence/internal/event"
	"github.com/GameMasterRPG/GalacticConsequence/internal/faction"
	"github.com/GameMasterRPG/GalacticConsequence/internal/npc"
	"github.com/GameMasterRPG/GalacticConsequence/internal/quest"
	"github.com/GameMasterRPG/GalacticConsequence/internal/store"
	"github.com/GameMasterRPG/GalacticConsequence/internal/threat"
)

const defaultLockWait = 2 * time.Second

// Options configures world construction. Zero values get sensible defaults.
type Options struct {
	Seed        int64
	RegionCount int
	Factions    []faction.Config
	Templates   []quest.Template
	NPCNames    []string // empty means any NPC name is accepted
	Dialogue    dialogue.Generator
	LockWait    time.Duration
	Clock       func() time.Time
}

// World is the orchestrator. All mutation goes through its operation methods;
// reads come from the in-memory mirror, which only ever reflects committed
// state.
type World struct {
	store store.Store
	gen   dialogue.Generator
	locks *lockTable
	clock func() time.Time

	templates []quest.Template
	registry  *npc.Registry

	mu            sync.RWMutex
	alignments    map[string]alignment.Alignment
	threats       map[string]threat.Level
	relationships map[string]npc.Relationship
	factions      map[string]faction.State
	regions       map[string]faction.Region
	quests        map[string]quest.Quest
	players       map[string]struct{}
}

// NewWorld loads world state from the store, bootstrapping factions and
// regions on first run.
func NewWorld(st store.Store, opts Options) (*World, error) {
	if opts.RegionCount <= 0 {
		opts.RegionCount = 12
	}
	if len(opts.Factions) == 0 {
		opts.Factions = faction.DefaultConfigs()
	}
	if len(opts.Templates) == 0 {
		opts.Templates = quest.DefaultTemplates()
	}
	if opts.LockWait <= 0 {
		opts.LockWait = defaultLockWait
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	w := &World{
		store:         st,
		gen:           opts.Dialogue,
		locks:         newLockTable(opts.LockWait),
		clock:         opts.Clock,
		templates:     opts.Templates,
		alignments:    map[string]alignment.Alignment{},
		threats:       map[string]threat.Level{},
		relationships: map[string]npc.Relationship{},
		factions:      map[string]faction.State{},
		regions:       map[string]faction.Region{},
		quests:        map[string]quest.Quest{},
		players:       map[string]struct{}{},
	}
	if len(opts.NPCNames) > 0 {
		w.registry = npc.NewRegistry(opts.NPCNames)
	}

	if err := w.load(); err != nil {
		return nil, err
	}
	if len(w.factions) == 0 {
		if err := w.bootstrap(opts); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *World) load() error {
	if err := loadKind(w.store, store.KindAlignment, w.alignments); err != nil {
		return err
	}
	if err := loadKind(w.store, store.KindThreat, w.threats); err != nil {
		return err
	}
	if err := loadKind(w.store, store.KindRelationship, w.relationships); err != nil {
		return err
	}
	if err := loadKind(w.store, store.KindFaction, w.factions); err != nil {
		return err
	}
	if err := loadKind(w.store, store.KindRegion, w.regions); err != nil {
		return err
	}
	if err := loadKind(w.store, store.KindQuest, w.quests); err != nil {
		return err
	}

	for p := range w.alignments {
		w.players[p] = struct{}{}
	}
	for p := range w.threats {
		w.players[p] = struct{}{}
	}
	for _, rel := range w.relationships {
		w.players[rel.Player] = struct{}{}
	}
	for _, q := range w.quests {
		w.players[q.Player] = struct{}{}
	}

	slog.Info("world state loaded",
		"players", len(w.players),
		"factions", len(w.factions),
		"regions", len(w.regions),
		"quests", len(w.quests),
	)
	return nil
}

func loadKind[T any](st store.Store, kind store.Kind, into map[string]T) error {
	keys, err := st.Keys(kind)
	if err != nil {
		return fmt.Errorf("list %s: %w", kind, err)
	}
	for _, k := range keys {
		var v T
		if _, err := st.Get(kind, k, &v); err != nil {
			return fmt.Errorf("load %s %q: %w", kind, k, err)
		}
		into[k] = v
	}
	return nil
}

// bootstrap seeds regions and factions on an empty world, committing the
// initial state and one founding event per faction.
func (w *World) bootstrap(opts Options) error {
	now := w.clock()
	regions := faction.GenerateRegions(opts.Seed, opts.RegionCount)
	states, err := faction.Bootstrap(opts.Factions, regions, now)
	if err != nil {
		return fmt.Errorf("bootstrap factions: %w", err)
	}

	var b store.Batch
	for _, r := range regions {
		b.Append(store.KindRegion, r.ID, r)
	}

	ids := make([]string, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		st := states[id]
		b.Append(store.KindFaction, id, st)
		b.Log(event.Event{
			Timestamp:   now,
			Category:    event.FactionAction,
			Description: fmt.Sprintf("%s establishes control over %d sectors", st.Name, len(st.Territory)),
			Faction:     id,
		})
	}

	if _, err := w.store.Apply(&b); err != nil {
		return fmt.Errorf("commit bootstrap: %w", err)
	}

	for _, r := range regions {
		w.regions[r.ID] = r
	}
	for id, st := range states {
		w.factions[id] = st
	}

	slog.Info("world bootstrapped", "seed", opts.Seed, "regions", len(regions), "factions", len(states))
	return nil
}

// Close flushes nothing (commits are synchronous) and closes the store.
func (w *World) Close() error {
	return w.store.Close()
}

func relKey(player, npcName string) string {
	return player + "\x00" + npcName
}

// --- committed-state readers ---

// Alignment returns a player's ledger snapshot.
func (w *World) Alignment(player string) (alignment.Alignment, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, ok := w.alignments[player]
	return a, ok
}

// Threat returns a player's threat snapshot.
func (w *World) Threat(player string) (threat.Level, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	l, ok := w.threats[player]
	return l, ok
}

// Relationship returns the memory npcName holds about player.
func (w *World) Relationship(player, npcName string) (npc.Relationship, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	rel, ok := w.relationships[relKey(player, npcName)]
	return rel, ok
}

// Faction returns one faction's state.
func (w *World) Faction(id string) (faction.State, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st, ok := w.factions[id]
	return st, ok
}

// Factions returns all faction states ordered by priority then id.
func (w *World) Factions() []faction.State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]faction.State, 0, len(w.factions))
	for _, st := range w.factions {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Regions returns all regions ordered by id.
func (w *World) Regions() []faction.Region {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]faction.Region, 0, len(w.regions))
	for _, r := range w.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Quest returns one quest by id.
func (w *World) Quest(id string) (quest.Quest, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	q, ok := w.quests[id]
	return q, ok
}

// QuestsFor returns a player's quests, oldest first.
func (w *World) QuestsFor(player string) []quest.Quest {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]quest.Quest, 0, 4)
	for _, q := range w.quests {
		if q.Player == player {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Players returns every known player id, sorted.
func (w *World) Players() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.playersLocked()
}

func (w *World) playersLocked() []string {
	out := make([]string, 0, len(w.players))
	for p := range w.players {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Events queries the committed event log.
func (w *World) Events(f event.Filter) ([]event.Event, error) {
	return w.store.Events(f)
}

// EventCount returns the committed event total.
func (w *World) EventCount() (uint64, error) {
	return w.store.EventCount()
}
