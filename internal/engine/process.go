package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
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

// A dark act this severe is notorious enough to raise the actor's threat level.
const darkThreatMin = 7

// Result carries the committed outcome of one operation: the events as
// persisted (with sequence numbers) and the snapshots the operation changed.
type Result struct {
	Events []event.Event `json:"events"`

	Alignment    *alignment.Alignment     `json:"alignment,omitempty"`
	Threat       *threat.Level            `json:"threat,omitempty"`
	Relationship *npc.Relationship        `json:"relationship,omitempty"`
	Factions     map[string]faction.State `json:"factions,omitempty"`
	Quest        *quest.Quest             `json:"quest,omitempty"`
	Reply        string                   `json:"reply,omitempty"`
}

// RecordAlignmentAction applies one moral action to a player's ledger.
// Witnessing factions grow aware of the player, and a sufficiently severe
// dark act raises the player's threat level, all in the same commit.
func (w *World) RecordAlignmentAction(ctx context.Context, player string, in alignment.Input, witnesses []string) (Result, error) {
	switch in.Type {
	case alignment.Light, alignment.Dark, alignment.Neutral:
	default:
		return Result{}, fmt.Errorf("%w: %q", alignment.ErrInvalidActionType, in.Type)
	}

	w.mu.RLock()
	for _, f := range witnesses {
		if _, ok := w.factions[f]; !ok {
			w.mu.RUnlock()
			return Result{}, fmt.Errorf("%w: witness %q", faction.ErrUnknownFaction, f)
		}
	}
	w.mu.RUnlock()

	mag := in.Shift
	if mag < 0 {
		mag = -mag
	}
	escalates := in.Type == alignment.Dark && mag >= darkThreatMin

	keys := []lockKey{{domAlignment, player}}
	if escalates {
		keys = append(keys, lockKey{domThreat, player})
	}
	for _, f := range witnesses {
		keys = append(keys, lockKey{domFaction, f})
	}
	release, err := w.locks.acquire(keys)
	if err != nil {
		return Result{}, err
	}
	defer release()

	now := w.clock()

	w.mu.RLock()
	curAlign, ok := w.alignments[player]
	if !ok {
		curAlign = alignment.Alignment{Player: player}
	}
	curLevel, hasLevel := w.threats[player]
	if !hasLevel {
		curLevel = threat.Level{Player: player}
	}
	witnessStates := make(map[string]faction.State, len(witnesses))
	for _, f := range witnesses {
		witnessStates[f] = w.factions[f]
	}
	w.mu.RUnlock()

	nextAlign, ev, err := alignment.Apply(curAlign, in, now)
	if err != nil {
		return Result{}, err
	}

	var b store.Batch
	b.Append(store.KindAlignment, player, nextAlign)
	b.Log(ev)

	var nextLevel *threat.Level
	if escalates {
		lvl, err := threat.Record(curLevel, mag, now)
		if err != nil {
			return Result{}, err
		}
		b.Append(store.KindThreat, player, lvl)
		if lvl.Tier() != curLevel.Tier() {
			b.Log(event.Event{
				Timestamp: now,
				Category:  event.ThreatEscalation,
				Description: fmt.Sprintf("%s's notoriety reaches %.0f, threat tier now %s",
					player, lvl.Notoriety, lvl.Tier()),
				Player: player,
			})
		}
		nextLevel = &lvl
	}

	awarenessInc := clampDelta(mag)
	hostilityInc := 0
	if in.Type == alignment.Dark {
		hostilityInc = awarenessInc
	}
	nextFactions := map[string]faction.State{}
	sorted := append([]string(nil), witnesses...)
	sort.Strings(sorted)
	for _, f := range sorted {
		st, fev, err := faction.UpdateAwareness(witnessStates[f], player, awarenessInc, hostilityInc,
			"witnessed: "+in.Description, now)
		if err != nil {
			return Result{}, err
		}
		b.Append(store.KindFaction, f, st)
		b.Log(fev)
		nextFactions[f] = st
	}

	events, err := w.store.Apply(&b)
	if err != nil {
		return Result{}, fmt.Errorf("commit alignment action: %w", err)
	}

	w.mu.Lock()
	w.alignments[player] = nextAlign
	if nextLevel != nil {
		w.threats[player] = *nextLevel
	}
	for f, st := range nextFactions {
		w.factions[f] = st
	}
	w.players[player] = struct{}{}
	w.mu.Unlock()

	res := Result{Events: events, Alignment: &nextAlign, Threat: nextLevel}
	if len(nextFactions) > 0 {
		res.Factions = nextFactions
	}
	return res, nil
}

// UpdateFactionAwareness feeds one observed player action into a faction's
// awareness and hostility scores.
func (w *World) UpdateFactionAwareness(ctx context.Context, factionID, player string, awarenessInc, hostilityInc int, desc string) (Result, error) {
	if awarenessInc < 0 || awarenessInc > 100 {
		return Result{}, fmt.Errorf("%w: awareness increase %d", faction.ErrInvalidDelta, awarenessInc)
	}
	if hostilityInc < 0 || hostilityInc > 100 {
		return Result{}, fmt.Errorf("%w: hostility increase %d", faction.ErrInvalidDelta, hostilityInc)
	}
	w.mu.RLock()
	_, ok := w.factions[factionID]
	w.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", faction.ErrUnknownFaction, factionID)
	}

	release, err := w.locks.acquire([]lockKey{{domFaction, factionID}})
	if err != nil {
		return Result{}, err
	}
	defer release()

	now := w.clock()
	w.mu.RLock()
	cur := w.factions[factionID]
	w.mu.RUnlock()

	next, ev, err := faction.UpdateAwareness(cur, player, awarenessInc, hostilityInc, desc, now)
	if err != nil {
		return Result{}, err
	}

	var b store.Batch
	b.Append(store.KindFaction, factionID, next)
	b.Log(ev)
	events, err := w.store.Apply(&b)
	if err != nil {
		return Result{}, fmt.Errorf("commit awareness update: %w", err)
	}

	w.mu.Lock()
	w.factions[factionID] = next
	w.players[player] = struct{}{}
	w.mu.Unlock()

	return Result{Events: events, Factions: map[string]faction.State{factionID: next}}, nil
}

// RecordNPCInteraction folds one interaction into an NPC's memory of the
// player. When the player spoke, a reply is generated from the updated
// relationship; dialogue failures degrade to a canned line, never an error.
func (w *World) RecordNPCInteraction(ctx context.Context, player, npcName string, in npc.Interaction, playerMessage string) (Result, error) {
	if err := w.registry.Check(npcName); err != nil {
		return Result{}, err
	}

	key := relKey(player, npcName)
	release, err := w.locks.acquire([]lockKey{{domRelationship, key}})
	if err != nil {
		return Result{}, err
	}
	defer release()

	if in.Timestamp.IsZero() {
		in.Timestamp = w.clock()
	}

	w.mu.RLock()
	cur, ok := w.relationships[key]
	w.mu.RUnlock()
	if !ok {
		cur = npc.Relationship{Player: player, NPC: npcName, Mood: npc.MoodFor(0, 0)}
	}

	next, ev, err := npc.Apply(cur, in)
	if err != nil {
		return Result{}, err
	}

	var b store.Batch
	b.Append(store.KindRelationship, key, next)
	b.Log(ev)
	events, err := w.store.Apply(&b)
	if err != nil {
		return Result{}, fmt.Errorf("commit interaction: %w", err)
	}

	w.mu.Lock()
	w.relationships[key] = next
	w.players[player] = struct{}{}
	w.mu.Unlock()

	res := Result{Events: events, Relationship: &next}
	if playerMessage != "" {
		res.Reply = w.npcReply(ctx, next, playerMessage)
	}
	return res, nil
}

// npcReply generates dialogue outside any lock or transaction.
func (w *World) npcReply(ctx context.Context, rel npc.Relationship, msg string) string {
	if w.gen == nil {
		return dialogue.FallbackReply(rel)
	}
	reply, err := w.gen.Reply(ctx, dialogue.SystemPrompt(rel), dialogue.BuildPrompt(rel, msg))
	if err != nil {
		slog.Warn("dialogue generation failed, using fallback",
			"npc", rel.NPC, "player", rel.Player, "error", err)
		return dialogue.FallbackReply(rel)
	}
	return reply
}

// GenerateQuest offers a new quest tuned to the player's current alignment,
// threat tier, and faction standing. Offers replay deterministically from
// identical world state.
func (w *World) GenerateQuest(ctx context.Context, player, session string) (Result, error) {
	release, err := w.locks.acquire([]lockKey{{domQuest, "offer\x00" + player}})
	if err != nil {
		return Result{}, err
	}
	defer release()

	now := w.clock()

	w.mu.RLock()
	a := w.alignments[player]
	a.Player = player
	lvl := w.threats[player]
	hostility := map[string]int{}
	for id, st := range w.factions {
		if h, ok := st.Hostility[player]; ok {
			hostility[id] = h
		}
	}
	w.mu.RUnlock()

	count, err := w.store.EventCount()
	if err != nil {
		return Result{}, fmt.Errorf("event count: %w", err)
	}

	q, err := quest.Generate(w.templates, quest.GenContext{
		Player:        player,
		Session:       session,
		AlignmentTier: a.Tier(),
		ThreatTier:    string(lvl.Tier()),
		Hostility:     hostility,
		EventCount:    count,
		Now:           now,
	})
	if err != nil {
		return Result{}, err
	}

	var b store.Batch
	b.Append(store.KindQuest, q.ID, q)
	b.Log(event.Event{
		Timestamp: now,
		Category:  event.QuestLifecycle,
		Description: fmt.Sprintf("quest offered to %s: %q (difficulty %d, from %s)",
			player, q.Title, q.Difficulty, q.Giver),
		Player: player,
		Quest:  q.ID,
	})
	events, err := w.store.Apply(&b)
	if err != nil {
		return Result{}, fmt.Errorf("commit quest offer: %w", err)
	}

	w.mu.Lock()
	w.quests[q.ID] = q
	w.players[player] = struct{}{}
	w.mu.Unlock()

	return Result{Events: events, Quest: &q}, nil
}

// AdvanceQuest moves a quest through its lifecycle. On completion, details
// records how the player resolved it, and the quest's consequence hooks apply
// in the same commit: a failed transition changes nothing and emits nothing.
func (w *World) AdvanceQuest(ctx context.Context, questID string, to quest.Status, details string) (Result, error) {
	w.mu.RLock()
	q, ok := w.quests[questID]
	w.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", quest.ErrUnknownQuest, questID)
	}

	// The lock set derives from the template's hooks, which never change
	// after generation, so computing it before locking is safe.
	keys := []lockKey{{domQuest, questID}}
	if to == quest.StatusCompleted {
		if q.Hooks.AlignmentShift != 0 {
			keys = append(keys, lockKey{domAlignment, q.Player})
		}
		for f := range q.Hooks.FactionImpact {
			keys = append(keys, lockKey{domFaction, f})
		}
	}
	release, err := w.locks.acquire(keys)
	if err != nil {
		return Result{}, err
	}
	defer release()

	now := w.clock()
	w.mu.RLock()
	q = w.quests[questID]
	w.mu.RUnlock()

	var (
		next  quest.Quest
		hooks quest.Hooks
	)
	switch to {
	case quest.StatusAccepted:
		next, err = quest.Accept(q, now)
	case quest.StatusCompleted:
		next, hooks, err = quest.Complete(q, details, now)
	case quest.StatusAbandoned:
		next, err = quest.Abandon(q, now)
	default:
		return Result{}, fmt.Errorf("%w: target status %q", quest.ErrInvalidTransition, to)
	}
	if err != nil {
		return Result{}, err
	}

	desc := fmt.Sprintf("quest %s by %s: %q", next.Status, q.Player, q.Title)
	if next.Outcome != "" {
		desc += fmt.Sprintf(" (%s)", next.Outcome)
	}

	var b store.Batch
	b.Append(store.KindQuest, questID, next)
	b.Log(event.Event{
		Timestamp:   now,
		Category:    event.QuestLifecycle,
		Description: desc,
		Player:      q.Player,
		Quest:       questID,
	})

	res := Result{Quest: &next}

	var nextAlign *alignment.Alignment
	if hooks.AlignmentShift != 0 {
		w.mu.RLock()
		cur, ok := w.alignments[q.Player]
		w.mu.RUnlock()
		if !ok {
			cur = alignment.Alignment{Player: q.Player}
		}
		kind := alignment.Light
		if hooks.AlignmentShift < 0 {
			kind = alignment.Dark
		}
		a, ev, err := alignment.Apply(cur, alignment.Input{
			Type:        kind,
			Shift:       hooks.AlignmentShift,
			Description: fmt.Sprintf("consequence of completing %q", q.Title),
		}, now)
		if err != nil {
			return Result{}, err
		}
		b.Append(store.KindAlignment, q.Player, a)
		b.Log(ev)
		nextAlign = &a
	}

	nextFactions := map[string]faction.State{}
	impacted := make([]string, 0, len(hooks.FactionImpact))
	for f := range hooks.FactionImpact {
		impacted = append(impacted, f)
	}
	sort.Strings(impacted)
	for _, f := range impacted {
		w.mu.RLock()
		cur, ok := w.factions[f]
		w.mu.RUnlock()
		if !ok {
			slog.Warn("quest hook names unknown faction, skipping", "quest", questID, "faction", f)
			continue
		}
		delta := hooks.FactionImpact[f]
		st := faction.AdjustHostility(cur, q.Player, delta)
		b.Append(store.KindFaction, f, st)
		b.Log(event.Event{
			Timestamp: now,
			Category:  event.FactionAction,
			Description: fmt.Sprintf("%s's hostility toward %s shifts by %+d after %q",
				cur.Name, q.Player, delta, q.Title),
			Player:  q.Player,
			Faction: f,
		})
		nextFactions[f] = st
	}

	events, err := w.store.Apply(&b)
	if err != nil {
		return Result{}, fmt.Errorf("commit quest transition: %w", err)
	}

	w.mu.Lock()
	w.quests[questID] = next
	if nextAlign != nil {
		w.alignments[q.Player] = *nextAlign
	}
	for f, st := range nextFactions {
		w.factions[f] = st
	}
	w.mu.Unlock()

	res.Events = events
	res.Alignment = nextAlign
	if len(nextFactions) > 0 {
		res.Factions = nextFactions
	}
	return res, nil
}

// Tick runs one decision cycle for the named faction, or for every faction
// in priority order when id is empty. Retaliation feeds the target's threat
// level within the same commit.
func (w *World) Tick(ctx context.Context, id string) (Result, error) {
	w.mu.RLock()
	if id != "" {
		if _, ok := w.factions[id]; !ok {
			w.mu.RUnlock()
			return Result{}, fmt.Errorf("%w: %q", faction.ErrUnknownFaction, id)
		}
	}
	factionIDs := make([]string, 0, len(w.factions))
	for fid := range w.factions {
		factionIDs = append(factionIDs, fid)
	}
	players := w.playersLocked()
	w.mu.RUnlock()

	// Expansion can displace any incumbent and retaliation can touch any
	// known player, so a tick locks the full faction and threat key space.
	keys := make([]lockKey, 0, len(factionIDs)+len(players))
	for _, p := range players {
		keys = append(keys, lockKey{domThreat, p})
	}
	for _, fid := range factionIDs {
		keys = append(keys, lockKey{domFaction, fid})
	}
	release, err := w.locks.acquire(keys)
	if err != nil {
		return Result{}, err
	}
	defer release()

	now := w.clock()

	w.mu.RLock()
	working := make(map[string]faction.State, len(w.factions))
	for fid, st := range w.factions {
		working[fid] = st
	}
	regions := make(map[string]faction.Region, len(w.regions))
	for rid, r := range w.regions {
		regions[rid] = r
	}
	levels := make(map[string]threat.Level, len(w.threats))
	for p, l := range w.threats {
		levels[p] = l
	}
	w.mu.RUnlock()

	ticking := factionIDs
	if id != "" {
		ticking = []string{id}
	} else {
		sort.Slice(ticking, func(i, j int) bool {
			if working[ticking[i]].Priority != working[ticking[j]].Priority {
				return working[ticking[i]].Priority < working[ticking[j]].Priority
			}
			return ticking[i] < ticking[j]
		})
	}

	var b store.Batch
	changed := map[string]bool{}
	changedLevels := map[string]threat.Level{}
	for _, fid := range ticking {
		tr, err := faction.ExecuteTick(fid, working, regions, now)
		if err != nil {
			return Result{}, err
		}
		for cid, st := range tr.Changed {
			working[cid] = st
			changed[cid] = true
		}
		for _, ev := range tr.Events {
			b.Log(ev)
		}

		if tr.EscalatePlayer != "" && tr.EscalateSeverity > 0 {
			cur, ok := changedLevels[tr.EscalatePlayer]
			if !ok {
				cur, ok = levels[tr.EscalatePlayer]
				if !ok {
					cur = threat.Level{Player: tr.EscalatePlayer}
				}
			}
			lvl, err := threat.Record(cur, tr.EscalateSeverity, now)
			if err != nil {
				return Result{}, err
			}
			changedLevels[tr.EscalatePlayer] = lvl
			if lvl.Tier() != cur.Tier() {
				b.Log(event.Event{
					Timestamp: now,
					Category:  event.ThreatEscalation,
					Description: fmt.Sprintf("%s retaliation pushes %s's threat tier to %s",
						working[fid].Name, tr.EscalatePlayer, lvl.Tier()),
					Player:  tr.EscalatePlayer,
					Faction: fid,
				})
			}
		}

		slog.Info("faction tick",
			"faction", fid,
			"goal", tr.Decision.Goal,
			"reason", tr.Decision.Reason,
		)
	}

	changedIDs := make([]string, 0, len(changed))
	for cid := range changed {
		changedIDs = append(changedIDs, cid)
	}
	sort.Strings(changedIDs)
	for _, cid := range changedIDs {
		b.Append(store.KindFaction, cid, working[cid])
	}
	escalated := make([]string, 0, len(changedLevels))
	for p := range changedLevels {
		escalated = append(escalated, p)
	}
	sort.Strings(escalated)
	for _, p := range escalated {
		b.Append(store.KindThreat, p, changedLevels[p])
	}

	events, err := w.store.Apply(&b)
	if err != nil {
		return Result{}, fmt.Errorf("commit tick: %w", err)
	}

	w.mu.Lock()
	for _, cid := range changedIDs {
		w.factions[cid] = working[cid]
	}
	for p, lvl := range changedLevels {
		w.threats[p] = lvl
		w.players[p] = struct{}{}
	}
	w.mu.Unlock()

	res := Result{Events: events, Factions: map[string]faction.State{}}
	for _, cid := range changedIDs {
		res.Factions[cid] = working[cid]
	}
	return res, nil
}

// DecayThreats applies idle decay to every player's notoriety and bounty.
// Decay is policy, not a consequence, so it writes no events.
func (w *World) DecayThreats(ctx context.Context, elapsed time.Duration) error {
	if elapsed <= 0 {
		return nil
	}

	w.mu.RLock()
	players := make([]string, 0, len(w.threats))
	for p := range w.threats {
		players = append(players, p)
	}
	w.mu.RUnlock()
	sort.Strings(players)
	if len(players) == 0 {
		return nil
	}

	keys := make([]lockKey, 0, len(players))
	for _, p := range players {
		keys = append(keys, lockKey{domThreat, p})
	}
	release, err := w.locks.acquire(keys)
	if err != nil {
		return err
	}
	defer release()

	var b store.Batch
	next := map[string]threat.Level{}
	w.mu.RLock()
	for _, p := range players {
		cur := w.threats[p]
		lvl := threat.Decay(cur, elapsed)
		if lvl != cur {
			next[p] = lvl
			b.Append(store.KindThreat, p, lvl)
		}
	}
	w.mu.RUnlock()
	if len(next) == 0 {
		return nil
	}

	if _, err := w.store.Apply(&b); err != nil {
		return fmt.Errorf("commit decay: %w", err)
	}

	w.mu.Lock()
	for p, lvl := range next {
		w.threats[p] = lvl
	}
	w.mu.Unlock()
	return nil
}

func clampDelta(v int) int {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}
