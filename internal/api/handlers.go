package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/GameMasterRPG/GalacticConsequence/internal/alignment"
	"github.com/GameMasterRPG/GalacticConsequence/internal/event"
	"github.com/GameMasterRPG/GalacticConsequence/internal/npc"
	"github.com/GameMasterRPG/GalacticConsequence/internal/quest"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.World.EventCount()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"name":     "Galactic Consequence",
		"players":  len(s.World.Players()),
		"factions": len(s.World.Factions()),
		"regions":  len(s.World.Regions()),
		"events":   count,
	})
}

// handleAlignment serves GET /api/v1/alignment/:player.
func (s *Server) handleAlignment(w http.ResponseWriter, r *http.Request) {
	player := pathPart(r, 4)
	if player == "" {
		http.Error(w, "missing player id", http.StatusBadRequest)
		return
	}

	a, ok := s.World.Alignment(player)
	if !ok {
		// No recorded action yet means a balanced, uncorrupted ledger.
		a = alignment.Alignment{Player: player}
	}
	writeJSON(w, map[string]any{
		"player":           a.Player,
		"light_points":     a.LightPoints,
		"dark_points":      a.DarkPoints,
		"net":              a.Net(),
		"tier":             a.Tier(),
		"corruption_level": a.CorruptionLevel,
		"last_event":       a.LastEvent,
	})
}

// handleThreat serves GET /api/v1/threat/:player.
func (s *Server) handleThreat(w http.ResponseWriter, r *http.Request) {
	player := pathPart(r, 4)
	if player == "" {
		http.Error(w, "missing player id", http.StatusBadRequest)
		return
	}

	lvl, _ := s.World.Threat(player)
	lvl.Player = player
	writeJSON(w, map[string]any{
		"player":      lvl.Player,
		"notoriety":   lvl.Notoriety,
		"tier":        lvl.Tier(),
		"bounty":      lvl.Bounty,
		"last_action": lvl.LastAction,
	})
}

func (s *Server) handleFactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.World.Factions())
}

// handleFactionDetail serves GET /api/v1/faction/:id.
func (s *Server) handleFactionDetail(w http.ResponseWriter, r *http.Request) {
	id := pathPart(r, 4)
	if id == "" {
		http.Error(w, "missing faction id", http.StatusBadRequest)
		return
	}
	st, ok := s.World.Faction(id)
	if !ok {
		http.Error(w, "faction not found", http.StatusNotFound)
		return
	}

	events, err := s.World.Events(event.Filter{Faction: id, Limit: 20})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"faction":       st,
		"recent_events": events,
	})
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	type regionEntry struct {
		ID       string  `json:"id"`
		Richness float64 `json:"richness"`
		Defense  float64 `json:"defense"`
		Owner    string  `json:"owner,omitempty"`
	}

	owners := map[string]string{}
	for _, st := range s.World.Factions() {
		for region := range st.Territory {
			owners[region] = st.ID
		}
	}

	var result []regionEntry
	for _, reg := range s.World.Regions() {
		result = append(result, regionEntry{
			ID:       reg.ID,
			Richness: reg.Richness,
			Defense:  reg.Defense,
			Owner:    owners[reg.ID],
		})
	}
	writeJSON(w, result)
}

// handleRelationship serves GET /api/v1/npc/:player/:npc with optional
// ?page and ?size for the interaction history.
func (s *Server) handleRelationship(w http.ResponseWriter, r *http.Request) {
	player, npcName := pathPart(r, 4), pathPart(r, 5)
	if player == "" || npcName == "" {
		http.Error(w, "usage: /api/v1/npc/:player/:npc", http.StatusBadRequest)
		return
	}

	rel, ok := s.World.Relationship(player, npcName)
	if !ok {
		http.Error(w, "no recorded relationship", http.StatusNotFound)
		return
	}

	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", 10)
	writeJSON(w, map[string]any{
		"player":           rel.Player,
		"npc":              rel.NPC,
		"trust":            rel.Trust,
		"fear":             rel.Fear,
		"mood":             rel.Mood,
		"last_interaction": rel.LastInteraction,
		"total":            len(rel.History),
		"page":             page,
		"history":          npc.History(rel, page, size),
	})
}

// handleQuests serves GET /api/v1/quests/:player.
func (s *Server) handleQuests(w http.ResponseWriter, r *http.Request) {
	player := pathPart(r, 4)
	if player == "" {
		http.Error(w, "missing player id", http.StatusBadRequest)
		return
	}
	writeJSON(w, s.World.QuestsFor(player))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	f := event.Filter{
		Player:   r.URL.Query().Get("player"),
		Faction:  r.URL.Query().Get("faction"),
		Category: event.Category(r.URL.Query().Get("category")),
		Limit:    queryInt(r, "limit", 50),
	}
	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			http.Error(w, "since must be RFC3339", http.StatusBadRequest)
			return
		}
		f.Since = t
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 50
	}

	events, err := s.World.Events(f)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if events == nil {
		events = []event.Event{}
	}
	writeJSON(w, events)
}

// actionRequest is the body of POST /api/v1/action. Type selects which
// fields matter.
type actionRequest struct {
	Type   string `json:"type"`
	Player string `json:"player"`

	// type "alignment"
	ActionType  string   `json:"action_type"`
	Shift       int      `json:"shift"`
	Description string   `json:"description"`
	Witnesses   []string `json:"witnesses"`

	// type "faction_awareness"
	Faction           string `json:"faction"`
	AwarenessIncrease int    `json:"awareness_increase"`
	HostilityIncrease int    `json:"hostility_increase"`

	// type "npc_interaction"
	NPC             string `json:"npc"`
	InteractionType string `json:"interaction_type"`
	Location        string `json:"location"`
	TrustDelta      int    `json:"trust_delta"`
	FearDelta       int    `json:"fear_delta"`
	Message         string `json:"message"`

	// type "quest_generate"
	Session string `json:"session"`

	// type "quest_advance"
	QuestID string `json:"quest_id"`
	Status  string `json:"status"`
	Details string `json:"details"` // completion outcome text
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	var (
		res interface{}
		err error
	)
	switch req.Type {
	case "alignment":
		if req.Player == "" {
			http.Error(w, "missing player", http.StatusBadRequest)
			return
		}
		res, err = s.World.RecordAlignmentAction(r.Context(), req.Player, alignment.Input{
			Type:        alignment.ActionType(req.ActionType),
			Shift:       req.Shift,
			Description: req.Description,
		}, req.Witnesses)

	case "faction_awareness":
		if req.Player == "" || req.Faction == "" {
			http.Error(w, "missing player or faction", http.StatusBadRequest)
			return
		}
		res, err = s.World.UpdateFactionAwareness(r.Context(), req.Faction, req.Player,
			req.AwarenessIncrease, req.HostilityIncrease, req.Description)

	case "npc_interaction":
		if req.Player == "" || req.NPC == "" {
			http.Error(w, "missing player or npc", http.StatusBadRequest)
			return
		}
		res, err = s.World.RecordNPCInteraction(r.Context(), req.Player, req.NPC, npc.Interaction{
			Type:        req.InteractionType,
			Description: req.Description,
			Location:    req.Location,
			TrustDelta:  req.TrustDelta,
			FearDelta:   req.FearDelta,
		}, req.Message)

	case "quest_generate":
		if req.Player == "" {
			http.Error(w, "missing player", http.StatusBadRequest)
			return
		}
		res, err = s.World.GenerateQuest(r.Context(), req.Player, req.Session)

	case "quest_advance":
		if req.QuestID == "" {
			http.Error(w, "missing quest_id", http.StatusBadRequest)
			return
		}
		res, err = s.World.AdvanceQuest(r.Context(), req.QuestID, quest.Status(req.Status), req.Details)

	default:
		http.Error(w, fmt.Sprintf("unknown action type %q", req.Type), http.StatusBadRequest)
		return
	}

	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, res)
}

// handleTick runs a faction decision cycle on demand: one faction if the
// body names it, all factions otherwise.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Faction string `json:"faction"`
	}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
	}

	res, err := s.World.Tick(r.Context(), req.Faction)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, res)
}
